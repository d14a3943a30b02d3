package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const progressColumns = `id, student_id, course_id, level_id, progress_status, completion_date, remarks`

// PostgresProgressRepository implements ProgressRepository using PostgreSQL
type PostgresProgressRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresProgressRepository creates a new PostgresProgressRepository
func NewPostgresProgressRepository(pool *pgxpool.Pool) *PostgresProgressRepository {
	return &PostgresProgressRepository{pool: pool}
}

// Get retrieves one progress row
func (r *PostgresProgressRepository) Get(ctx context.Context, studentID, courseID, levelID int64) (*domain.StudentProgress, error) {
	query := `
		SELECT ` + progressColumns + `
		FROM student_progress
		WHERE student_id = $1 AND course_id = $2 AND level_id = $3
	`
	p, err := scanProgress(r.pool.QueryRow(ctx, query, studentID, courseID, levelID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Save upserts a progress row. Two writers racing on a fresh triple both land on the same row
func (r *PostgresProgressRepository) Save(ctx context.Context, p *domain.StudentProgress) error {
	query := `
		INSERT INTO student_progress (student_id, course_id, level_id, progress_status, completion_date, remarks)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, course_id, level_id) DO UPDATE
		SET progress_status = EXCLUDED.progress_status,
		    completion_date = EXCLUDED.completion_date,
		    remarks = EXCLUDED.remarks,
		    updated_at = NOW()
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		p.StudentID,
		p.CourseID,
		p.LevelID,
		p.Status,
		p.CompletionDate,
		p.Remarks,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// ListByStudent lists a student's progress rows
func (r *PostgresProgressRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.StudentProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM student_progress WHERE student_id = $1 ORDER BY course_id, level_id`
	return r.list(ctx, query, studentID)
}

// ListByStudentAndCourse lists a student's progress rows within a course
func (r *PostgresProgressRepository) ListByStudentAndCourse(ctx context.Context, studentID, courseID int64) ([]*domain.StudentProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM student_progress WHERE student_id = $1 AND course_id = $2 ORDER BY level_id`
	return r.list(ctx, query, studentID, courseID)
}

func (r *PostgresProgressRepository) list(ctx context.Context, query string, args ...any) ([]*domain.StudentProgress, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var out []*domain.StudentProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProgress(row pgx.Row) (*domain.StudentProgress, error) {
	p := &domain.StudentProgress{}
	var status string
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.CourseID,
		&p.LevelID,
		&status,
		&p.CompletionDate,
		&p.Remarks,
	)
	if err != nil {
		return nil, err
	}
	if p.Status, err = domain.ParseProgressStatus(status); err != nil {
		return nil, fmt.Errorf("progress %d: %w", p.ID, err)
	}
	return p, nil
}
