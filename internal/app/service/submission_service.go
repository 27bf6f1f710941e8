package service

import (
	"context"
	"errors"
	"log"
	"time"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"
	"hackhub/internal/domain/repository"
	"hackhub/internal/platform/metrics"

	"github.com/google/uuid"
)

type SubmissionService struct {
	submissionRepo  repository.SubmissionRepository
	participantRepo repository.ParticipantRepository
	hackathonRepo   repository.HackathonRepository
	userRepo        repository.UserRepository
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	participantRepo repository.ParticipantRepository,
	hackathonRepo repository.HackathonRepository,
	userRepo repository.UserRepository,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo:  submissionRepo,
		participantRepo: participantRepo,
		hackathonRepo:   hackathonRepo,
		userRepo:        userRepo,
	}
}

type FileSpec struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type CreateSubmissionRequest struct {
	HackathonID   string     `json:"hackathon_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	RepositoryURL *string    `json:"repository_url,omitempty"`
	LiveURL       *string    `json:"live_url,omitempty"`
	TeamID        *string    `json:"team_id,omitempty"`
	IsDraft       bool       `json:"is_draft"`
	Files         []FileSpec `json:"files,omitempty"`
}

type UpdateSubmissionRequest struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	RepositoryURL *string `json:"repository_url,omitempty"`
	LiveURL       *string `json:"live_url,omitempty"`
	IsDraft       bool    `json:"is_draft"`
}

type ListSubmissionsRequest struct {
	HackathonID string
	UserID      string
	TeamID      string
	Status      model.SubmissionStatus
}

// Create records a submission for the caller's registration in the target
// hackathon. Callers without a participant row are rejected.
func (s *SubmissionService) Create(ctx context.Context, userID string, req CreateSubmissionRequest) (*SubmissionView, error) {
	if req.HackathonID == "" || req.Title == "" {
		return nil, common.Errorf("hackathon_id and title are required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("user not found: %w", common.ErrNotFound)
		}
		return nil, common.Errorf("failed to load user: %w", err)
	}

	participation, err := s.participantRepo.FindByUserAndHackathon(ctx, userID, req.HackathonID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("you must be registered for this hackathon to submit: %w", common.ErrForbidden)
		}
		return nil, common.Errorf("failed to check registration: %w", err)
	}

	now := time.Now()
	sub := &model.Submission{
		ID:            uuid.NewString(),
		HackathonID:   req.HackathonID,
		ParticipantID: participation.ID,
		TeamID:        req.TeamID,
		Title:         req.Title,
		Description:   req.Description,
		RepoURL:       req.RepositoryURL,
		DemoURL:       req.LiveURL,
		Status:        model.SubmissionSubmitted,
		SubmittedAt:   &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IsDraft {
		sub.Status = model.SubmissionDraft
		sub.SubmittedAt = nil
	}

	files := make([]model.SubmissionFile, 0, len(req.Files))
	for _, f := range req.Files {
		file := model.SubmissionFile{
			ID:           uuid.NewString(),
			SubmissionID: sub.ID,
			FileName:     f.Name,
			FileURL:      f.URL,
			FileType:     f.Type,
			FileSize:     f.Size,
		}
		if file.FileName == "" {
			file.FileName = "Unknown"
		}
		if file.FileType == "" {
			file.FileType = "application/octet-stream"
		}
		files = append(files, file)
	}

	if err := s.submissionRepo.CreateWithFiles(ctx, sub, files); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}
	metrics.SubmissionsTotal.Inc()

	participation.User = user.Summary()
	sub.Participant = participation
	sub.Files = files
	s.attachTracks(ctx, sub)

	view := NewSubmissionView(sub)
	return &view, nil
}

// FindAll lists submissions under the role-based visibility policy: an
// explicit user filter always wins; participants see only their own;
// organizers without a hackathon/user filter are scoped to hackathons they
// organize; judges and admins are unrestricted.
func (s *SubmissionService) FindAll(ctx context.Context, req ListSubmissionsRequest, userRole, userID string) ([]SubmissionView, error) {
	filter := repository.SubmissionFilter{
		HackathonID: req.HackathonID,
		UserID:      req.UserID,
		TeamID:      req.TeamID,
		Status:      req.Status,
	}

	if req.UserID == "" {
		switch userRole {
		case model.RoleParticipant:
			filter.UserID = userID
		case model.RoleOrganizer:
			if req.HackathonID == "" {
				ids, err := s.hackathonRepo.ListIDsByOrganizer(ctx, userID)
				if err != nil {
					return nil, common.Errorf("failed to list organizer hackathons: %w", err)
				}
				if len(ids) == 0 {
					return []SubmissionView{}, nil
				}
				filter.HackathonIDs = ids
			}
		}
		// JUDGE and ADMIN see everything
	}

	submissions, err := s.submissionRepo.List(ctx, filter)
	if err != nil {
		return nil, common.Errorf("failed to list submissions: %w", err)
	}

	// Batch the file and track includes instead of querying per row.
	submissionIDs := make([]string, 0, len(submissions))
	hackathonIDSet := map[string]struct{}{}
	hackathonIDs := []string{}
	for _, sub := range submissions {
		submissionIDs = append(submissionIDs, sub.ID)
		if _, ok := hackathonIDSet[sub.HackathonID]; !ok {
			hackathonIDSet[sub.HackathonID] = struct{}{}
			hackathonIDs = append(hackathonIDs, sub.HackathonID)
		}
	}

	filesBySubmission, err := s.submissionRepo.GetFilesBySubmissionIDs(ctx, submissionIDs)
	if err != nil {
		log.Printf("WARN: Failed to fetch submission files: %v", err)
		filesBySubmission = map[string][]model.SubmissionFile{}
	}
	tracksByHackathon, err := s.hackathonRepo.GetTracksByHackathonIDs(ctx, hackathonIDs)
	if err != nil {
		log.Printf("WARN: Failed to fetch hackathon tracks: %v", err)
		tracksByHackathon = map[string][]model.TrackView{}
	}

	views := []SubmissionView{}
	for i := range submissions {
		sub := &submissions[i]
		sub.Files = filesBySubmission[sub.ID]
		sub.Tracks = tracksByHackathon[sub.HackathonID]
		views = append(views, NewSubmissionView(sub))
	}
	return views, nil
}

// FindOne returns a single submission. Only privileged roles and the owning
// participant may read it.
func (s *SubmissionService) FindOne(ctx context.Context, id, userRole, userID string) (*SubmissionView, error) {
	sub, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	privileged := userRole == model.RoleOrganizer || userRole == model.RoleJudge || userRole == model.RoleAdmin
	isOwner := sub.Participant != nil && sub.Participant.UserID == userID
	if !privileged && !isOwner {
		return nil, common.Errorf("access denied: %w", common.ErrForbidden)
	}

	s.attachFiles(ctx, sub)
	s.attachTracks(ctx, sub)

	view := NewSubmissionView(sub)
	return &view, nil
}

// Update applies a partial patch to an owned submission. Status and
// submitted_at are always re-derived from is_draft, so toggling a
// submission back to draft clears its timestamp.
func (s *SubmissionService) Update(ctx context.Context, userID, id string, req UpdateSubmissionRequest) (*SubmissionView, error) {
	sub, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		sub.Title = *req.Title
	}
	if req.Description != nil {
		sub.Description = *req.Description
	}
	if req.RepositoryURL != nil {
		sub.RepoURL = req.RepositoryURL
	}
	if req.LiveURL != nil {
		sub.DemoURL = req.LiveURL
	}

	if req.IsDraft {
		sub.Status = model.SubmissionDraft
		sub.SubmittedAt = nil
	} else {
		now := time.Now()
		sub.Status = model.SubmissionSubmitted
		sub.SubmittedAt = &now
	}
	sub.UpdatedAt = time.Now()

	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, common.Errorf("failed to update submission: %w", err)
	}

	s.attachFiles(ctx, sub)
	s.attachTracks(ctx, sub)

	view := NewSubmissionView(sub)
	return &view, nil
}

func (s *SubmissionService) Remove(ctx context.Context, userID, id string) error {
	sub, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.submissionRepo.Delete(ctx, sub.ID); err != nil {
		return common.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

// findOwned loads the submission and enforces the owner-only rule shared by
// update and delete.
func (s *SubmissionService) findOwned(ctx context.Context, userID, id string) (*model.Submission, error) {
	sub, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Participant == nil || sub.Participant.UserID != userID {
		return nil, common.Errorf("you may only modify your own submissions: %w", common.ErrForbidden)
	}
	return sub, nil
}

func (s *SubmissionService) attachFiles(ctx context.Context, sub *model.Submission) {
	files, err := s.submissionRepo.GetFilesBySubmissionIDs(ctx, []string{sub.ID})
	if err != nil {
		log.Printf("WARN: Failed to fetch files for submission %s: %v", sub.ID, err)
		return
	}
	sub.Files = files[sub.ID]
}

func (s *SubmissionService) attachTracks(ctx context.Context, sub *model.Submission) {
	tracks, err := s.hackathonRepo.GetTracksByHackathonIDs(ctx, []string{sub.HackathonID})
	if err != nil {
		log.Printf("WARN: Failed to fetch tracks for hackathon %s: %v", sub.HackathonID, err)
		return
	}
	sub.Tracks = tracks[sub.HackathonID]
}
