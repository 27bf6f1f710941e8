package model

import (
	"time"
)

type HackathonType string
type HackathonStatus string

const (
	TypeIndividual HackathonType = "INDIVIDUAL"
	TypeTeam       HackathonType = "TEAM"

	StatusUpcoming         HackathonStatus = "UPCOMING"
	StatusPublished        HackathonStatus = "PUBLISHED"
	StatusRegistrationOpen HackathonStatus = "REGISTRATION_OPEN"
	StatusInProgress       HackathonStatus = "IN_PROGRESS"
	StatusSubmissionOpen   HackathonStatus = "SUBMISSION_OPEN"
	StatusLive             HackathonStatus = "LIVE"
	StatusCompleted        HackathonStatus = "COMPLETED"
	StatusCancelled        HackathonStatus = "CANCELLED"
)

// ActiveStatuses is the fixed set counted as "active" by platform stats.
var ActiveStatuses = []HackathonStatus{
	StatusPublished,
	StatusRegistrationOpen,
	StatusInProgress,
	StatusSubmissionOpen,
	StatusLive,
}

// statusTransitions is the closed transition graph for organizer-driven
// status updates. Publish bypasses it and jumps straight to LIVE.
var statusTransitions = map[HackathonStatus][]HackathonStatus{
	StatusUpcoming:         {StatusPublished, StatusLive, StatusCancelled},
	StatusPublished:        {StatusRegistrationOpen, StatusLive, StatusCancelled},
	StatusRegistrationOpen: {StatusInProgress, StatusLive, StatusCancelled},
	StatusInProgress:       {StatusSubmissionOpen, StatusLive, StatusCancelled},
	StatusSubmissionOpen:   {StatusLive, StatusCompleted, StatusCancelled},
	StatusLive:             {StatusCompleted, StatusCancelled},
	StatusCompleted:        {},
	StatusCancelled:        {},
}

func (s HackathonStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether the organizer may move a hackathon from
// status s to next.
func (s HackathonStatus) CanTransitionTo(next HackathonStatus) bool {
	for _, t := range statusTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

type Hackathon struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Slug                 string          `json:"slug"`
	Description          string          `json:"description"`
	Type                 HackathonType   `json:"type"`
	Status               HackathonStatus `json:"status"`
	MinTeamSize          int             `json:"min_team_size"`
	MaxTeamSize          int             `json:"max_team_size"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
	RegistrationDeadline *time.Time      `json:"registration_deadline,omitempty"`
	OrganizerID          string          `json:"organizer_id"`
	BannerURL            *string         `json:"banner_url,omitempty"`
	Location             *string         `json:"location,omitempty"`
	IsVirtual            bool            `json:"is_virtual"`
	PrizePool            *string         `json:"prize_pool,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	Organizer         *UserSummary       `json:"organizer,omitempty"` // For display
	ProblemStatements []ProblemStatement `json:"problem_statements,omitempty"`
	Counts            *HackathonCounts   `json:"_count,omitempty"` // Derived, never stored
}

// HackathonCounts carries the per-hackathon rollups attached to list/detail
// responses.
type HackathonCounts struct {
	Participants int `json:"participants"`
	Teams        int `json:"teams"`
	Submissions  int `json:"submissions"`
}

// ProblemStatement is an organizer-defined track. Tracks are created with
// the hackathon and immutable afterwards.
type ProblemStatement struct {
	ID           string    `json:"id"`
	HackathonID  string    `json:"hackathon_id"`
	UploadedByID string    `json:"uploaded_by_id"`
	TrackNumber  int       `json:"track_number"`
	TrackTitle   string    `json:"track_title"`
	Description  *string   `json:"description,omitempty"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	CreatedAt    time.Time `json:"created_at"`
}

// TrackView is the flattened {title, number} shape embedded in submission
// responses.
type TrackView struct {
	Title  string `json:"title"`
	Number int    `json:"number"`
}
