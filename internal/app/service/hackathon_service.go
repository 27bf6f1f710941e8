package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"
	"hackhub/internal/domain/repository"
	"hackhub/internal/platform/metrics"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type HackathonService struct {
	hackathonRepo   repository.HackathonRepository
	participantRepo repository.ParticipantRepository
	submissionRepo  repository.SubmissionRepository
	userRepo        repository.UserRepository
}

func NewHackathonService(
	hackathonRepo repository.HackathonRepository,
	participantRepo repository.ParticipantRepository,
	submissionRepo repository.SubmissionRepository,
	userRepo repository.UserRepository,
) *HackathonService {
	return &HackathonService{
		hackathonRepo:   hackathonRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		userRepo:        userRepo,
	}
}

type TrackSpec struct {
	TrackNumber int     `json:"track_number"`
	TrackTitle  string  `json:"track_title"`
	Description *string `json:"description,omitempty"`
	FileName    string  `json:"file_name"`
	FileURL     string  `json:"file_url"`
	FileType    string  `json:"file_type"`
	FileSize    int64   `json:"file_size"`
}

type CreateHackathonRequest struct {
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	AllowIndividual      bool        `json:"allow_individual"`
	MinTeamSize          int         `json:"min_team_size"`
	MaxTeamSize          int         `json:"max_team_size"`
	StartDate            time.Time   `json:"start_date"`
	EndDate              time.Time   `json:"end_date"`
	RegistrationDeadline *time.Time  `json:"registration_deadline,omitempty"`
	BannerURL            *string     `json:"banner_url,omitempty"`
	Location             *string     `json:"location,omitempty"`
	IsVirtual            bool        `json:"is_virtual"`
	PrizeAmount          *float64    `json:"prize_amount,omitempty"`
	PrizeCurrency        string      `json:"prize_currency,omitempty"`
	Tracks               []TrackSpec `json:"tracks,omitempty"`
}

type UpdateHackathonRequest struct {
	Title                *string    `json:"title,omitempty"`
	Description          *string    `json:"description,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	BannerURL            *string    `json:"banner_url,omitempty"`
	Location             *string    `json:"location,omitempty"`
	IsVirtual            *bool      `json:"is_virtual,omitempty"`
	MinTeamSize          *int       `json:"min_team_size,omitempty"`
	MaxTeamSize          *int       `json:"max_team_size,omitempty"`
}

// Create persists a new hackathon with status UPCOMING. Tracks, when given,
// are created in the same transaction as the hackathon row.
func (s *HackathonService) Create(ctx context.Context, organizerID string, req CreateHackathonRequest) (*model.Hackathon, error) {
	if req.Title == "" || req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, common.Errorf("title, start_date and end_date are required: %w", common.ErrBadRequest)
	}

	hackathonType := model.TypeTeam
	if req.AllowIndividual {
		hackathonType = model.TypeIndividual
	}

	h := &model.Hackathon{
		ID:                   uuid.NewString(),
		Title:                req.Title,
		Slug:                 slug.Make(req.Title),
		Description:          req.Description,
		Type:                 hackathonType,
		Status:               model.StatusUpcoming,
		MinTeamSize:          req.MinTeamSize,
		MaxTeamSize:          req.MaxTeamSize,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		RegistrationDeadline: req.RegistrationDeadline,
		OrganizerID:          organizerID,
		BannerURL:            req.BannerURL,
		Location:             req.Location,
		IsVirtual:            req.IsVirtual,
	}
	if h.MinTeamSize == 0 {
		h.MinTeamSize = 1
	}
	if h.MaxTeamSize == 0 {
		h.MaxTeamSize = 5
	}
	if req.PrizeAmount != nil {
		currency := req.PrizeCurrency
		if currency == "" {
			currency = "USD"
		}
		pool := fmt.Sprintf("%s %.2f", currency, *req.PrizeAmount)
		h.PrizePool = &pool
	}

	tracks := make([]model.ProblemStatement, 0, len(req.Tracks))
	for _, t := range req.Tracks {
		tracks = append(tracks, model.ProblemStatement{
			ID:           uuid.NewString(),
			HackathonID:  h.ID,
			UploadedByID: organizerID,
			TrackNumber:  t.TrackNumber,
			TrackTitle:   t.TrackTitle,
			Description:  t.Description,
			FileName:     t.FileName,
			FileURL:      t.FileURL,
			FileType:     t.FileType,
			FileSize:     t.FileSize,
		})
	}

	if err := s.hackathonRepo.CreateWithTracks(ctx, h, tracks); err != nil {
		return nil, common.Errorf("failed to create hackathon: %w", err)
	}
	metrics.HackathonsCreatedTotal.Inc()

	h.ProblemStatements = tracks
	s.attachOrganizer(ctx, h)
	return h, nil
}

func (s *HackathonService) List(ctx context.Context, filter repository.HackathonFilter) ([]model.Hackathon, error) {
	return s.hackathonRepo.List(ctx, filter)
}

// Get returns the hackathon with its tracks, counts and organizer summary.
func (s *HackathonService) Get(ctx context.Context, id string) (*model.Hackathon, error) {
	h, err := s.hackathonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err // common.ErrNotFound or wrapped internal
	}

	tracks, err := s.hackathonRepo.GetTracks(ctx, h.ID)
	if err != nil {
		log.Printf("WARN: Failed to fetch tracks for hackathon %s: %v", h.ID, err)
	}
	h.ProblemStatements = tracks

	counts, err := s.hackathonRepo.GetCounts(ctx, h.ID)
	if err != nil {
		log.Printf("WARN: Failed to fetch counts for hackathon %s: %v", h.ID, err)
	}
	h.Counts = counts

	s.attachOrganizer(ctx, h)
	return h, nil
}

// Update applies a partial patch. Absent fields are left untouched.
func (s *HackathonService) Update(ctx context.Context, userID, id string, req UpdateHackathonRequest) (*model.Hackathon, error) {
	h, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		h.Title = *req.Title
		h.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		h.Description = *req.Description
	}
	if req.StartDate != nil {
		h.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		h.EndDate = *req.EndDate
	}
	if req.RegistrationDeadline != nil {
		h.RegistrationDeadline = req.RegistrationDeadline
	}
	if req.BannerURL != nil {
		h.BannerURL = req.BannerURL
	}
	if req.Location != nil {
		h.Location = req.Location
	}
	if req.IsVirtual != nil {
		h.IsVirtual = *req.IsVirtual
	}
	if req.MinTeamSize != nil {
		h.MinTeamSize = *req.MinTeamSize
	}
	if req.MaxTeamSize != nil {
		h.MaxTeamSize = *req.MaxTeamSize
	}

	if err := s.hackathonRepo.Update(ctx, h); err != nil {
		return nil, common.Errorf("failed to update hackathon: %w", err)
	}
	s.attachOrganizer(ctx, h)
	return h, nil
}

// Publish sets the hackathon live. It does not validate dates or tracks
// before going live; see the design notes.
func (s *HackathonService) Publish(ctx context.Context, userID, id string) (*model.Hackathon, error) {
	h, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.hackathonRepo.UpdateStatus(ctx, h.ID, model.StatusLive); err != nil {
		return nil, common.Errorf("failed to publish hackathon: %w", err)
	}
	h.Status = model.StatusLive
	s.attachOrganizer(ctx, h)
	return h, nil
}

// UpdateStatus moves the hackathon along the status graph. Transitions not
// in the graph fail with bad request.
func (s *HackathonService) UpdateStatus(ctx context.Context, userID, id string, status model.HackathonStatus) (*model.Hackathon, error) {
	h, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, common.Errorf("unknown hackathon status %q: %w", status, common.ErrBadRequest)
	}
	if !h.Status.CanTransitionTo(status) {
		return nil, common.Errorf("cannot transition hackathon from %s to %s: %w", h.Status, status, common.ErrBadRequest)
	}

	if err := s.hackathonRepo.UpdateStatus(ctx, h.ID, status); err != nil {
		return nil, common.Errorf("failed to update hackathon status: %w", err)
	}
	h.Status = status
	s.attachOrganizer(ctx, h)
	return h, nil
}

func (s *HackathonService) Remove(ctx context.Context, userID, id string) error {
	h, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.hackathonRepo.Delete(ctx, h.ID); err != nil {
		return common.Errorf("failed to delete hackathon: %w", err)
	}
	return nil
}

// MyHackathon is a hackathon the caller participates in, with the caller's
// own submissions attached.
type MyHackathon struct {
	model.Hackathon
	Submissions []SubmissionView `json:"submissions"`
}

func (s *HackathonService) GetMyHackathons(ctx context.Context, userID string) ([]MyHackathon, error) {
	participations, err := s.participantRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to list participations: %w", err)
	}

	submissions, err := s.submissionRepo.List(ctx, repository.SubmissionFilter{UserID: userID})
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}
	byHackathon := map[string][]SubmissionView{}
	for i := range submissions {
		view := NewSubmissionView(&submissions[i])
		byHackathon[submissions[i].HackathonID] = append(byHackathon[submissions[i].HackathonID], view)
	}

	result := []MyHackathon{}
	for _, p := range participations {
		h, err := s.hackathonRepo.FindByID(ctx, p.HackathonID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue // hackathon deleted since registration
			}
			return nil, common.Errorf("failed to load hackathon %s: %w", p.HackathonID, err)
		}
		if counts, err := s.hackathonRepo.GetCounts(ctx, h.ID); err == nil {
			h.Counts = counts
		}
		s.attachOrganizer(ctx, h)

		subs := byHackathon[h.ID]
		if subs == nil {
			subs = []SubmissionView{}
		}
		result = append(result, MyHackathon{Hackathon: *h, Submissions: subs})
	}
	return result, nil
}

// RosterEntry is a participant row in the organizer's roster view, flagged
// with whether that participant (or their team) has a submission.
type RosterEntry struct {
	model.Participant
	HasSubmission bool    `json:"has_submission"`
	SubmissionID  *string `json:"submission_id"`
}

func (s *HackathonService) GetParticipants(ctx context.Context, hackathonID string) ([]RosterEntry, error) {
	if _, err := s.hackathonRepo.FindByID(ctx, hackathonID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, common.Errorf("failed to list participants: %w", err)
	}

	// Group members by team so each leader's row carries the full team.
	membersByTeam := map[string][]model.Participant{}
	for _, p := range participants {
		if p.TeamID != nil {
			membersByTeam[*p.TeamID] = append(membersByTeam[*p.TeamID], p)
		}
	}
	teams := map[string]*model.Team{}

	entries := []RosterEntry{}
	for _, p := range participants {
		if p.TeamID != nil {
			team, ok := teams[*p.TeamID]
			if !ok {
				team, err = s.participantRepo.FindTeamByID(ctx, *p.TeamID)
				if err != nil {
					log.Printf("WARN: Failed to fetch team %s: %v", *p.TeamID, err)
				} else {
					team.Members = membersByTeam[*p.TeamID]
					teams[*p.TeamID] = team
				}
			}
			p.Team = team
		}

		entry := RosterEntry{Participant: p}
		sub, err := s.submissionRepo.FindFirstForParticipantOrTeam(ctx, hackathonID, p.ID, p.TeamID)
		if err == nil {
			entry.HasSubmission = true
			entry.SubmissionID = &sub.ID
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("failed to check submissions for participant %s: %w", p.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// findOwned loads the hackathon and enforces the organizer-only rule shared
// by every mutating operation.
func (s *HackathonService) findOwned(ctx context.Context, userID, id string) (*model.Hackathon, error) {
	h, err := s.hackathonRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.OrganizerID != userID {
		return nil, common.Errorf("only the organizer may modify this hackathon: %w", common.ErrForbidden)
	}
	return h, nil
}

func (s *HackathonService) attachOrganizer(ctx context.Context, h *model.Hackathon) {
	if h.Organizer != nil {
		return
	}
	organizer, err := s.userRepo.FindByID(ctx, h.OrganizerID)
	if err != nil {
		log.Printf("WARN: Failed to fetch organizer %s: %v", h.OrganizerID, err)
		return
	}
	h.Organizer = organizer.Summary()
}
