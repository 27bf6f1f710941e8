package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hackhub/internal/common"
	"hackhub/internal/domain/model"
)

// HackathonFilter narrows List results. Search matches title or description
// case-insensitively.
type HackathonFilter struct {
	Status model.HackathonStatus
	Search string
}

type HackathonRepository interface {
	// CreateWithTracks persists the hackathon and its problem statement
	// tracks in a single transaction.
	CreateWithTracks(ctx context.Context, h *model.Hackathon, tracks []model.ProblemStatement) error
	FindByID(ctx context.Context, id string) (*model.Hackathon, error)
	List(ctx context.Context, filter HackathonFilter) ([]model.Hackathon, error)
	Update(ctx context.Context, h *model.Hackathon) error
	UpdateStatus(ctx context.Context, id string, status model.HackathonStatus) error
	Delete(ctx context.Context, id string) error

	GetTracks(ctx context.Context, hackathonID string) ([]model.ProblemStatement, error)
	GetTracksByHackathonIDs(ctx context.Context, hackathonIDs []string) (map[string][]model.TrackView, error)
	GetCounts(ctx context.Context, hackathonID string) (*model.HackathonCounts, error)
	ListIDsByOrganizer(ctx context.Context, organizerID string) ([]string, error)

	Count(ctx context.Context) (int, error)
	CountByStatuses(ctx context.Context, statuses []model.HackathonStatus) (int, error)
}

type pgHackathonRepository struct {
	db *sql.DB
}

func NewPgHackathonRepository(db *sql.DB) HackathonRepository {
	return &pgHackathonRepository{db: db}
}

const hackathonColumns = `h.id, h.title, h.slug, h.description, h.type, h.status,
       h.min_team_size, h.max_team_size, h.start_date, h.end_date, h.registration_deadline,
       h.organizer_id, h.banner_url, h.location, h.is_virtual, h.prize_pool,
       h.created_at, h.updated_at`

func scanHackathon(row interface{ Scan(...interface{}) error }, h *model.Hackathon) error {
	return row.Scan(
		&h.ID, &h.Title, &h.Slug, &h.Description, &h.Type, &h.Status,
		&h.MinTeamSize, &h.MaxTeamSize, &h.StartDate, &h.EndDate, &h.RegistrationDeadline,
		&h.OrganizerID, &h.BannerURL, &h.Location, &h.IsVirtual, &h.PrizePool,
		&h.CreatedAt, &h.UpdatedAt,
	)
}

func (r *pgHackathonRepository) CreateWithTracks(ctx context.Context, h *model.Hackathon, tracks []model.ProblemStatement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.CreateWithTracks begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO hackathons (id, title, slug, description, type, status, min_team_size, max_team_size,
	              start_date, end_date, registration_deadline, organizer_id, banner_url, location, is_virtual, prize_pool)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = tx.ExecContext(ctx, query,
		h.ID, h.Title, h.Slug, h.Description, h.Type, h.Status, h.MinTeamSize, h.MaxTeamSize,
		h.StartDate, h.EndDate, h.RegistrationDeadline, h.OrganizerID, h.BannerURL, h.Location, h.IsVirtual, h.PrizePool,
	)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.CreateWithTracks insert hackathon: %w", err)
	}

	if len(tracks) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO problem_statements (id, hackathon_id, uploaded_by_id, track_number, track_title, description, file_name, file_url, file_type, file_size)
		                                    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)
		if err != nil {
			return fmt.Errorf("pgHackathonRepository.CreateWithTracks prepare: %w", err)
		}
		defer stmt.Close()

		for _, t := range tracks {
			_, err := stmt.ExecContext(ctx, t.ID, h.ID, t.UploadedByID, t.TrackNumber, t.TrackTitle, t.Description, t.FileName, t.FileURL, t.FileType, t.FileSize)
			if err != nil {
				return fmt.Errorf("pgHackathonRepository.CreateWithTracks insert track %d: %w", t.TrackNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgHackathonRepository.CreateWithTracks commit: %w", err)
	}
	return nil
}

func (r *pgHackathonRepository) FindByID(ctx context.Context, id string) (*model.Hackathon, error) {
	query := `SELECT ` + hackathonColumns + ` FROM hackathons h WHERE h.id = $1`
	h := &model.Hackathon{}
	if err := scanHackathon(r.db.QueryRowContext(ctx, query, id), h); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgHackathonRepository.FindByID: %w", err)
	}
	return h, nil
}

// List returns hackathons newest-first, each annotated with its organizer
// summary and participant/team/submission counts.
func (r *pgHackathonRepository) List(ctx context.Context, filter HackathonFilter) ([]model.Hackathon, error) {
	var query strings.Builder
	query.WriteString(`
        SELECT ` + hackathonColumns + `,
               u.id, u.email, u.first_name, u.last_name, u.avatar_url,
               (SELECT COUNT(*) FROM hackathon_participants p WHERE p.hackathon_id = h.id),
               (SELECT COUNT(*) FROM teams t WHERE t.hackathon_id = h.id),
               (SELECT COUNT(*) FROM submissions s WHERE s.hackathon_id = h.id)
        FROM hackathons h
        JOIN users u ON h.organizer_id = u.id`)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("h.status = $%d", argID))
		args = append(args, filter.Status)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(h.title ILIKE $%d OR h.description ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + filter.Search + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY h.created_at DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.List query: %w", err)
	}
	defer rows.Close()

	hackathons := []model.Hackathon{}
	for rows.Next() {
		var h model.Hackathon
		org := &model.UserSummary{}
		counts := &model.HackathonCounts{}
		err := rows.Scan(
			&h.ID, &h.Title, &h.Slug, &h.Description, &h.Type, &h.Status,
			&h.MinTeamSize, &h.MaxTeamSize, &h.StartDate, &h.EndDate, &h.RegistrationDeadline,
			&h.OrganizerID, &h.BannerURL, &h.Location, &h.IsVirtual, &h.PrizePool,
			&h.CreatedAt, &h.UpdatedAt,
			&org.ID, &org.Email, &org.FirstName, &org.LastName, &org.AvatarURL,
			&counts.Participants, &counts.Teams, &counts.Submissions,
		)
		if err != nil {
			return nil, fmt.Errorf("pgHackathonRepository.List scan: %w", err)
		}
		h.Organizer = org
		h.Counts = counts
		hackathons = append(hackathons, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.List rows.Err: %w", err)
	}
	return hackathons, nil
}

func (r *pgHackathonRepository) Update(ctx context.Context, h *model.Hackathon) error {
	query := `UPDATE hackathons SET
	              title = $1, slug = $2, description = $3, status = $4, min_team_size = $5, max_team_size = $6,
	              start_date = $7, end_date = $8, registration_deadline = $9, banner_url = $10,
	              location = $11, is_virtual = $12, prize_pool = $13, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $14`
	_, err := r.db.ExecContext(ctx, query,
		h.Title, h.Slug, h.Description, h.Status, h.MinTeamSize, h.MaxTeamSize,
		h.StartDate, h.EndDate, h.RegistrationDeadline, h.BannerURL,
		h.Location, h.IsVirtual, h.PrizePool, h.ID,
	)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.Update: %w", err)
	}
	return nil
}

func (r *pgHackathonRepository) UpdateStatus(ctx context.Context, id string, status model.HackathonStatus) error {
	query := `UPDATE hackathons SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgHackathonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hackathons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgHackathonRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgHackathonRepository) GetTracks(ctx context.Context, hackathonID string) ([]model.ProblemStatement, error) {
	query := `SELECT id, hackathon_id, uploaded_by_id, track_number, track_title, description, file_name, file_url, file_type, file_size, created_at
	          FROM problem_statements WHERE hackathon_id = $1 ORDER BY track_number ASC`
	rows, err := r.db.QueryContext(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.GetTracks query: %w", err)
	}
	defer rows.Close()

	tracks := []model.ProblemStatement{}
	for rows.Next() {
		var t model.ProblemStatement
		if err := rows.Scan(&t.ID, &t.HackathonID, &t.UploadedByID, &t.TrackNumber, &t.TrackTitle, &t.Description, &t.FileName, &t.FileURL, &t.FileType, &t.FileSize, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgHackathonRepository.GetTracks scan: %w", err)
		}
		tracks = append(tracks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.GetTracks rows.Err: %w", err)
	}
	return tracks, nil
}

// GetTracksByHackathonIDs batch-fetches flattened track views, keyed by
// hackathon ID, so submission listings avoid a per-row query.
func (r *pgHackathonRepository) GetTracksByHackathonIDs(ctx context.Context, hackathonIDs []string) (map[string][]model.TrackView, error) {
	result := map[string][]model.TrackView{}
	if len(hackathonIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(hackathonIDs))
	args := make([]interface{}, len(hackathonIDs))
	for i, id := range hackathonIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT hackathon_id, track_title, track_number
	          FROM problem_statements WHERE hackathon_id IN (%s) ORDER BY track_number ASC`,
		strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.GetTracksByHackathonIDs query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hackathonID string
		var tv model.TrackView
		if err := rows.Scan(&hackathonID, &tv.Title, &tv.Number); err != nil {
			return nil, fmt.Errorf("pgHackathonRepository.GetTracksByHackathonIDs scan: %w", err)
		}
		result[hackathonID] = append(result[hackathonID], tv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.GetTracksByHackathonIDs rows.Err: %w", err)
	}
	return result, nil
}

func (r *pgHackathonRepository) GetCounts(ctx context.Context, hackathonID string) (*model.HackathonCounts, error) {
	query := `SELECT
	              (SELECT COUNT(*) FROM hackathon_participants p WHERE p.hackathon_id = $1),
	              (SELECT COUNT(*) FROM teams t WHERE t.hackathon_id = $1),
	              (SELECT COUNT(*) FROM submissions s WHERE s.hackathon_id = $1)`
	counts := &model.HackathonCounts{}
	if err := r.db.QueryRowContext(ctx, query, hackathonID).Scan(&counts.Participants, &counts.Teams, &counts.Submissions); err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.GetCounts: %w", err)
	}
	return counts, nil
}

func (r *pgHackathonRepository) ListIDsByOrganizer(ctx context.Context, organizerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM hackathons WHERE organizer_id = $1`, organizerID)
	if err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.ListIDsByOrganizer query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgHackathonRepository.ListIDsByOrganizer scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgHackathonRepository.ListIDsByOrganizer rows.Err: %w", err)
	}
	return ids, nil
}

func (r *pgHackathonRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM hackathons`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgHackathonRepository.Count: %w", err)
	}
	return total, nil
}

func (r *pgHackathonRepository) CountByStatuses(ctx context.Context, statuses []model.HackathonStatus) (int, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = s
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM hackathons WHERE status IN (%s)`, strings.Join(placeholders, ","))
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgHackathonRepository.CountByStatuses: %w", err)
	}
	return total, nil
}
