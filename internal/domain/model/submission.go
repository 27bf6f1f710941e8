package model

import "time"

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "DRAFT"
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
)

// Submission is a participant's (or team's) deliverable for a hackathon.
// SubmittedAt is non-nil iff Status is SUBMITTED.
type Submission struct {
	ID            string           `json:"id"`
	HackathonID   string           `json:"hackathon_id"`
	ParticipantID string           `json:"participant_id"`
	TeamID        *string          `json:"team_id,omitempty"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	RepoURL       *string          `json:"repo_url,omitempty"`
	DemoURL       *string          `json:"demo_url,omitempty"`
	Status        SubmissionStatus `json:"status"`
	SubmittedAt   *time.Time       `json:"submitted_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	Participant    *Participant     `json:"participant,omitempty"`     // For display
	Team           *Team            `json:"team,omitempty"`            // For display
	HackathonTitle *string          `json:"hackathon_title,omitempty"` // For display
	Files          []SubmissionFile `json:"files,omitempty"`
	Tracks         []TrackView      `json:"tracks,omitempty"` // Flattened problem statements
}

type SubmissionFile struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}
