package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ParticipantRepository interface {
	// CreateRegistration inserts the participant, and the team first when
	// one is given, inside a single transaction. A duplicate
	// (user_id, hackathon_id) pair fails with common.ErrConflict via the
	// schema's unique constraint, closing the concurrent-registration race.
	CreateRegistration(ctx context.Context, team *model.Team, p *model.Participant) error
	FindByID(ctx context.Context, id string) (*model.Participant, error)
	FindByUserAndHackathon(ctx context.Context, userID, hackathonID string) (*model.Participant, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]model.Participant, error)
	ListByUser(ctx context.Context, userID string) ([]model.Participant, error)
	FindTeamByID(ctx context.Context, teamID string) (*model.Team, error)
	CountDistinctUsers(ctx context.Context) (int, error)
}

type pgParticipantRepository struct {
	db *sql.DB
}

func NewPgParticipantRepository(db *sql.DB) ParticipantRepository {
	return &pgParticipantRepository{db: db}
}

func (r *pgParticipantRepository) CreateRegistration(ctx context.Context, team *model.Team, p *model.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgParticipantRepository.CreateRegistration begin: %w", err)
	}
	defer tx.Rollback()

	if team != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO teams (id, hackathon_id, name, description, leader_id) VALUES ($1, $2, $3, $4, $5)`,
			team.ID, team.HackathonID, team.Name, team.Description, team.LeaderID,
		)
		if err != nil {
			return fmt.Errorf("pgParticipantRepository.CreateRegistration insert team: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO hackathon_participants (id, user_id, hackathon_id, team_id, role, selected_track) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.HackathonID, p.TeamID, p.Role, p.SelectedTrack,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // uq_participant_user_hackathon
			return fmt.Errorf("user is already registered for this hackathon: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgParticipantRepository.CreateRegistration insert participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgParticipantRepository.CreateRegistration commit: %w", err)
	}
	return nil
}

const participantColumns = `p.id, p.user_id, p.hackathon_id, p.team_id, p.role, p.selected_track, p.created_at`

func (r *pgParticipantRepository) FindByID(ctx context.Context, id string) (*model.Participant, error) {
	return r.findOne(ctx, "p.id = $1", id)
}

func (r *pgParticipantRepository) FindByUserAndHackathon(ctx context.Context, userID, hackathonID string) (*model.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM hackathon_participants p WHERE p.user_id = $1 AND p.hackathon_id = $2`
	p := &model.Participant{}
	err := r.db.QueryRowContext(ctx, query, userID, hackathonID).Scan(
		&p.ID, &p.UserID, &p.HackathonID, &p.TeamID, &p.Role, &p.SelectedTrack, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgParticipantRepository.FindByUserAndHackathon: %w", err)
	}
	return p, nil
}

func (r *pgParticipantRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM hackathon_participants p WHERE ` + where
	p := &model.Participant{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.UserID, &p.HackathonID, &p.TeamID, &p.Role, &p.SelectedTrack, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgParticipantRepository.findOne: %w", err)
	}
	return p, nil
}

// ListByHackathon includes each participant's user summary for roster views.
func (r *pgParticipantRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]model.Participant, error) {
	query := `SELECT ` + participantColumns + `, u.id, u.email, u.first_name, u.last_name, u.avatar_url
	          FROM hackathon_participants p
	          JOIN users u ON p.user_id = u.id
	          WHERE p.hackathon_id = $1
	          ORDER BY p.created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByHackathon query: %w", err)
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		var p model.Participant
		u := &model.UserSummary{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.HackathonID, &p.TeamID, &p.Role, &p.SelectedTrack, &p.CreatedAt,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.ListByHackathon scan: %w", err)
		}
		p.User = u
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByHackathon rows.Err: %w", err)
	}
	return participants, nil
}

func (r *pgParticipantRepository) ListByUser(ctx context.Context, userID string) ([]model.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM hackathon_participants p WHERE p.user_id = $1 ORDER BY p.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByUser query: %w", err)
	}
	defer rows.Close()

	participants := []model.Participant{}
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.UserID, &p.HackathonID, &p.TeamID, &p.Role, &p.SelectedTrack, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgParticipantRepository.ListByUser scan: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgParticipantRepository.ListByUser rows.Err: %w", err)
	}
	return participants, nil
}

func (r *pgParticipantRepository) FindTeamByID(ctx context.Context, teamID string) (*model.Team, error) {
	query := `SELECT id, hackathon_id, name, description, leader_id, created_at FROM teams WHERE id = $1`
	t := &model.Team{}
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(&t.ID, &t.HackathonID, &t.Name, &t.Description, &t.LeaderID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgParticipantRepository.FindTeamByID: %w", err)
	}
	return t, nil
}

func (r *pgParticipantRepository) CountDistinctUsers(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT user_id) FROM hackathon_participants`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgParticipantRepository.CountDistinctUsers: %w", err)
	}
	return total, nil
}
