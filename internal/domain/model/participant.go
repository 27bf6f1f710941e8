package model

import "time"

type ParticipantRole string

const (
	ParticipantLeader ParticipantRole = "LEADER"
	ParticipantMember ParticipantRole = "MEMBER"
)

// Participant is a user's registration record for one hackathon. The
// (user_id, hackathon_id) pair is unique at the schema level; duplicate
// registrations surface as a conflict, never as a second row.
type Participant struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	HackathonID   string          `json:"hackathon_id"`
	TeamID        *string         `json:"team_id,omitempty"`
	Role          ParticipantRole `json:"role"`
	SelectedTrack *int            `json:"selected_track,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	User *UserSummary `json:"user,omitempty"` // For display
	Team *Team        `json:"team,omitempty"` // For display
}

type Team struct {
	ID          string    `json:"id"`
	HackathonID string    `json:"hackathon_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeaderID    string    `json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`

	Members []Participant `json:"members,omitempty"`
}
