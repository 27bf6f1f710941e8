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

// SubmissionFilter narrows List results. HackathonIDs is used for
// organizer scoping (submissions under any of the caller's hackathons).
type SubmissionFilter struct {
	HackathonID  string
	UserID       string // filters on the owning participant's user
	TeamID       string
	Status       model.SubmissionStatus
	HackathonIDs []string
}

type SubmissionRepository interface {
	// CreateWithFiles persists the submission and its file rows in a
	// single transaction.
	CreateWithFiles(ctx context.Context, sub *model.Submission, files []model.SubmissionFile) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error)
	Update(ctx context.Context, sub *model.Submission) error
	Delete(ctx context.Context, id string) error

	GetFilesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string][]model.SubmissionFile, error)
	FindFirstForParticipantOrTeam(ctx context.Context, hackathonID, participantID string, teamID *string) (*model.Submission, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, hackathonID string) (map[model.SubmissionStatus]int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateWithFiles(ctx context.Context, sub *model.Submission, files []model.SubmissionFile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateWithFiles begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO submissions (id, hackathon_id, participant_id, team_id, title, description, repo_url, demo_url, status, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = tx.ExecContext(ctx, query,
		sub.ID, sub.HackathonID, sub.ParticipantID, sub.TeamID, sub.Title, sub.Description, sub.RepoURL, sub.DemoURL, sub.Status, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateWithFiles insert submission: %w", err)
	}

	if len(files) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO submission_files (id, submission_id, file_name, file_url, file_type, file_size)
		                                    VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return fmt.Errorf("pgSubmissionRepository.CreateWithFiles prepare: %w", err)
		}
		defer stmt.Close()

		for _, f := range files {
			if _, err := stmt.ExecContext(ctx, f.ID, sub.ID, f.FileName, f.FileURL, f.FileType, f.FileSize); err != nil {
				return fmt.Errorf("pgSubmissionRepository.CreateWithFiles insert file %s: %w", f.FileName, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateWithFiles commit: %w", err)
	}
	return nil
}

const submissionSelect = `
        SELECT s.id, s.hackathon_id, s.participant_id, s.team_id, s.title, s.description,
               s.repo_url, s.demo_url, s.status, s.submitted_at, s.created_at, s.updated_at,
               p.id, p.user_id, p.hackathon_id, p.team_id, p.role, p.selected_track, p.created_at,
               u.id, u.email, u.first_name, u.last_name, u.avatar_url,
               h.title
        FROM submissions s
        JOIN hackathon_participants p ON s.participant_id = p.id
        JOIN users u ON p.user_id = u.id
        JOIN hackathons h ON s.hackathon_id = h.id`

func scanSubmissionRow(row interface{ Scan(...interface{}) error }) (*model.Submission, error) {
	var s model.Submission
	p := &model.Participant{}
	u := &model.UserSummary{}
	var hackathonTitle string
	err := row.Scan(
		&s.ID, &s.HackathonID, &s.ParticipantID, &s.TeamID, &s.Title, &s.Description,
		&s.RepoURL, &s.DemoURL, &s.Status, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt,
		&p.ID, &p.UserID, &p.HackathonID, &p.TeamID, &p.Role, &p.SelectedTrack, &p.CreatedAt,
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.AvatarURL,
		&hackathonTitle,
	)
	if err != nil {
		return nil, err
	}
	p.User = u
	s.Participant = p
	s.HackathonTitle = &hackathonTitle
	return &s, nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	sub, err := scanSubmissionRow(r.db.QueryRowContext(ctx, submissionSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error) {
	var query strings.Builder
	query.WriteString(submissionSelect)

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.HackathonID != "" {
		conditions = append(conditions, fmt.Sprintf("s.hackathon_id = $%d", argID))
		args = append(args, filter.HackathonID)
		argID++
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("p.user_id = $%d", argID))
		args = append(args, filter.UserID)
		argID++
	}
	if filter.TeamID != "" {
		conditions = append(conditions, fmt.Sprintf("s.team_id = $%d", argID))
		args = append(args, filter.TeamID)
		argID++
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argID))
		args = append(args, filter.Status)
		argID++
	}
	if len(filter.HackathonIDs) > 0 {
		placeholders := make([]string, len(filter.HackathonIDs))
		for i, id := range filter.HackathonIDs {
			placeholders[i] = fmt.Sprintf("$%d", argID)
			args = append(args, id)
			argID++
		}
		conditions = append(conditions, fmt.Sprintf("s.hackathon_id IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY s.created_at DESC")

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.List query: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		sub, err := scanSubmissionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.List scan: %w", err)
		}
		submissions = append(submissions, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.List rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) Update(ctx context.Context, sub *model.Submission) error {
	query := `UPDATE submissions SET
	              title = $1, description = $2, repo_url = $3, demo_url = $4,
	              status = $5, submitted_at = $6, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $7`
	_, err := r.db.ExecContext(ctx, query, sub.Title, sub.Description, sub.RepoURL, sub.DemoURL, sub.Status, sub.SubmittedAt, sub.ID)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Update: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetFilesBySubmissionIDs batch-fetches file rows keyed by submission ID.
func (r *pgSubmissionRepository) GetFilesBySubmissionIDs(ctx context.Context, submissionIDs []string) (map[string][]model.SubmissionFile, error) {
	result := map[string][]model.SubmissionFile{}
	if len(submissionIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(submissionIDs))
	args := make([]interface{}, len(submissionIDs))
	for i, id := range submissionIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id, submission_id, file_name, file_url, file_type, file_size, created_at
	          FROM submission_files WHERE submission_id IN (%s) ORDER BY created_at ASC`,
		strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetFilesBySubmissionIDs query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.SubmissionFile
		if err := rows.Scan(&f.ID, &f.SubmissionID, &f.FileName, &f.FileURL, &f.FileType, &f.FileSize, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.GetFilesBySubmissionIDs scan: %w", err)
		}
		result[f.SubmissionID] = append(result[f.SubmissionID], f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.GetFilesBySubmissionIDs rows.Err: %w", err)
	}
	return result, nil
}

// FindFirstForParticipantOrTeam is used by roster views to flag whether a
// participant (directly or through their team) has submitted anything.
func (r *pgSubmissionRepository) FindFirstForParticipantOrTeam(ctx context.Context, hackathonID, participantID string, teamID *string) (*model.Submission, error) {
	query := `SELECT s.id, s.status FROM submissions s
	          WHERE s.hackathon_id = $1 AND (s.participant_id = $2 OR ($3::uuid IS NOT NULL AND s.team_id = $3))
	          LIMIT 1`
	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, hackathonID, participantID, teamID).Scan(&s.ID, &s.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindFirstForParticipantOrTeam: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgSubmissionRepository.Count: %w", err)
	}
	return total, nil
}

func (r *pgSubmissionRepository) CountByStatus(ctx context.Context, hackathonID string) (map[model.SubmissionStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM submissions WHERE hackathon_id = $1 GROUP BY status`, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.CountByStatus query: %w", err)
	}
	defer rows.Close()

	counts := map[model.SubmissionStatus]int{}
	for rows.Next() {
		var status model.SubmissionStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.CountByStatus scan: %w", err)
		}
		counts[status] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.CountByStatus rows.Err: %w", err)
	}
	return counts, nil
}
