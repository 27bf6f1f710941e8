package service

import (
	"context"
	"errors"
	"strings"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"
	"hackhub/internal/domain/repository"
	"hackhub/internal/platform/metrics"

	"github.com/google/uuid"
)

type RegistrationService struct {
	hackathonRepo   repository.HackathonRepository
	participantRepo repository.ParticipantRepository
}

func NewRegistrationService(
	hackathonRepo repository.HackathonRepository,
	participantRepo repository.ParticipantRepository,
) *RegistrationService {
	return &RegistrationService{
		hackathonRepo:   hackathonRepo,
		participantRepo: participantRepo,
	}
}

type TeamMemberSpec struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RegisterRequest struct {
	TeamName        string           `json:"team_name,omitempty"`
	TeamDescription string           `json:"team_description,omitempty"`
	TeamMembers     []TeamMemberSpec `json:"team_members,omitempty"`
	SelectedTrack   *int             `json:"selected_track,omitempty"`
}

type RegistrationResult struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	Participant *model.Participant `json:"participant"`
	Team        *model.Team        `json:"team,omitempty"`
}

// Register creates the caller's participant row for a hackathon, and a team
// when a non-blank team name is given. The duplicate check is advisory; the
// participant table's unique (user_id, hackathon_id) constraint is what
// actually rules out concurrent double registration.
func (s *RegistrationService) Register(ctx context.Context, userID, hackathonID string, req RegisterRequest) (*RegistrationResult, error) {
	if _, err := s.hackathonRepo.FindByID(ctx, hackathonID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("hackathon not found: %w", common.ErrNotFound)
		}
		return nil, common.Errorf("failed to load hackathon: %w", err)
	}

	existing, err := s.participantRepo.FindByUserAndHackathon(ctx, userID, hackathonID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, common.Errorf("failed to check existing registration: %w", err)
	}
	if existing != nil {
		return nil, common.Errorf("you are already registered for this hackathon: %w", common.ErrConflict)
	}

	if teamName := strings.TrimSpace(req.TeamName); teamName != "" {
		team := &model.Team{
			ID:          uuid.NewString(),
			HackathonID: hackathonID,
			Name:        teamName,
			Description: req.TeamDescription,
			LeaderID:    userID,
		}
		leader := &model.Participant{
			ID:            uuid.NewString(),
			UserID:        userID,
			HackathonID:   hackathonID,
			TeamID:        &team.ID,
			Role:          model.ParticipantLeader,
			SelectedTrack: req.SelectedTrack,
		}

		// Named team members are not persisted as participants here; they
		// would join through invitations, which this flow does not send.
		if err := s.participantRepo.CreateRegistration(ctx, team, leader); err != nil {
			return nil, err
		}
		metrics.RegistrationsTotal.Inc()

		return &RegistrationResult{
			Success:     true,
			Message:     "Successfully registered team for hackathon",
			Participant: leader,
			Team:        team,
		}, nil
	}

	participant := &model.Participant{
		ID:            uuid.NewString(),
		UserID:        userID,
		HackathonID:   hackathonID,
		Role:          model.ParticipantMember,
		SelectedTrack: req.SelectedTrack,
	}
	if err := s.participantRepo.CreateRegistration(ctx, nil, participant); err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.Inc()

	return &RegistrationResult{
		Success:     true,
		Message:     "Successfully registered for hackathon",
		Participant: participant,
	}, nil
}
