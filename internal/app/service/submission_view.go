package service

import (
	"time"

	"hackhub/internal/domain/model"
)

type SubmissionType string

const (
	SubmissionTypeIndividual SubmissionType = "INDIVIDUAL"
	SubmissionTypeTeam       SubmissionType = "TEAM"
)

// FileView is the public projection of a submission file.
type FileView struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
}

// SubmissionHackathonView is the trimmed hackathon shape embedded in
// submission responses, with problem statements flattened to tracks.
type SubmissionHackathonView struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Tracks []model.TrackView `json:"tracks"`
}

// SubmissionView is the response shape shared by every submission read and
// write path. The derived fields (Type, RepositoryURL, SelectedTrack,
// IsDraft/IsFinal) are recomputed here and nowhere else, so create, list,
// get and update cannot drift apart.
type SubmissionView struct {
	ID            string                  `json:"id"`
	HackathonID   string                  `json:"hackathon_id"`
	ParticipantID string                  `json:"participant_id"`
	TeamID        *string                 `json:"team_id,omitempty"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	RepositoryURL *string                 `json:"repository_url,omitempty"`
	DemoURL       *string                 `json:"demo_url,omitempty"`
	Status        model.SubmissionStatus  `json:"status"`
	Type          SubmissionType          `json:"type"`
	IsDraft       bool                    `json:"is_draft"`
	IsFinal       bool                    `json:"is_final"`
	SubmittedAt   *time.Time              `json:"submitted_at"`
	SubmitterID   string                  `json:"submitter_id,omitempty"`
	Submitter     *model.UserSummary      `json:"submitter,omitempty"`
	SelectedTrack *int                    `json:"selected_track,omitempty"`
	TeamInfo      *model.Team             `json:"team_info,omitempty"`
	Hackathon     SubmissionHackathonView `json:"hackathon"`
	Files         []FileView              `json:"files"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewSubmissionView maps a loaded submission to its response shape. Pure;
// everything it derives comes from the submission and its includes.
func NewSubmissionView(sub *model.Submission) SubmissionView {
	view := SubmissionView{
		ID:            sub.ID,
		HackathonID:   sub.HackathonID,
		ParticipantID: sub.ParticipantID,
		TeamID:        sub.TeamID,
		Title:         sub.Title,
		Description:   sub.Description,
		RepositoryURL: sub.RepoURL,
		DemoURL:       sub.DemoURL,
		Status:        sub.Status,
		Type:          SubmissionTypeIndividual,
		IsDraft:       sub.Status == model.SubmissionDraft,
		IsFinal:       sub.Status == model.SubmissionSubmitted,
		SubmittedAt:   sub.SubmittedAt,
		TeamInfo:      sub.Team,
		Files:         []FileView{},
		CreatedAt:     sub.CreatedAt,
		UpdatedAt:     sub.UpdatedAt,
	}

	if sub.TeamID != nil {
		view.Type = SubmissionTypeTeam
	}

	if sub.Participant != nil {
		view.SubmitterID = sub.Participant.UserID
		view.Submitter = sub.Participant.User
		view.SelectedTrack = sub.Participant.SelectedTrack
	}

	view.Hackathon = SubmissionHackathonView{
		ID:     sub.HackathonID,
		Tracks: sub.Tracks,
	}
	if sub.HackathonTitle != nil {
		view.Hackathon.Title = *sub.HackathonTitle
	}
	if view.Hackathon.Tracks == nil {
		view.Hackathon.Tracks = []model.TrackView{}
	}

	for _, f := range sub.Files {
		view.Files = append(view.Files, FileView{
			Name:        f.FileName,
			URL:         f.FileURL,
			Type:        f.FileType,
			Size:        f.FileSize,
			DownloadURL: f.FileURL,
		})
	}

	return view
}
