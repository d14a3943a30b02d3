package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionAttemptConstraint = "uq_submission_attempt"

const submissionColumns = `
	s.id, s.student_id, s.activity_id, s.attempt_number, s.answers, s.submission_content,
	s.score, s.max_score, s.percentage, s.status, s.time_taken_minutes, s.feedback,
	s.submitted_at, s.graded_at
`

// PostgresSubmissionRepository implements SubmissionRepository using PostgreSQL
type PostgresSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubmissionRepository creates a new PostgresSubmissionRepository
func NewPostgresSubmissionRepository(pool *pgxpool.Pool) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{pool: pool}
}

// CountByStudentAndActivity counts a student's attempts at an activity
func (r *PostgresSubmissionRepository) CountByStudentAndActivity(ctx context.Context, studentID, activityID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM level_activity_submissions WHERE student_id = $1 AND activity_id = $2`,
		studentID, activityID,
	).Scan(&count)
	return count, err
}

// Create inserts a new submission
func (r *PostgresSubmissionRepository) Create(ctx context.Context, sub *domain.LevelActivitySubmission) error {
	query := `
		INSERT INTO level_activity_submissions (
			student_id, activity_id, attempt_number, answers, submission_content,
			score, max_score, percentage, status, time_taken_minutes, feedback, submitted_at, graded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		sub.StudentID,
		sub.ActivityID,
		sub.AttemptNumber,
		sub.Answers,
		sub.SubmissionContent,
		sub.Score,
		sub.MaxScore,
		sub.Percentage,
		sub.Status,
		sub.TimeTakenMinutes,
		sub.Feedback,
		sub.SubmittedAt,
		sub.GradedAt,
	).Scan(&sub.ID)
	if err != nil {
		if database.IsUniqueViolation(err, submissionAttemptConstraint) {
			return domain.ErrAttemptConflict
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by ID
func (r *PostgresSubmissionRepository) GetByID(ctx context.Context, id int64) (*domain.LevelActivitySubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM level_activity_submissions s WHERE s.id = $1`
	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// UpdateGrade persists grading results
func (r *PostgresSubmissionRepository) UpdateGrade(ctx context.Context, sub *domain.LevelActivitySubmission) error {
	query := `
		UPDATE level_activity_submissions
		SET score = $2, max_score = $3, percentage = $4, status = $5, feedback = $6,
		    graded_at = $7, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.Score,
		sub.MaxScore,
		sub.Percentage,
		sub.Status,
		sub.Feedback,
		sub.GradedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission grade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

// GetLatest retrieves a student's latest attempt at an activity
func (r *PostgresSubmissionRepository) GetLatest(ctx context.Context, studentID, activityID int64) (*domain.LevelActivitySubmission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM level_activity_submissions s
		WHERE s.student_id = $1 AND s.activity_id = $2
		ORDER BY s.attempt_number DESC, s.submitted_at DESC
		LIMIT 1
	`
	sub, err := scanSubmission(r.pool.QueryRow(ctx, query, studentID, activityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

// ListByStudentAndLevel lists a student's submissions for a level
func (r *PostgresSubmissionRepository) ListByStudentAndLevel(ctx context.Context, studentID, levelID int64) ([]*domain.LevelActivitySubmission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM level_activity_submissions s
		JOIN level_activities a ON a.id = s.activity_id
		WHERE s.student_id = $1 AND a.level_id = $2
		ORDER BY s.activity_id, s.attempt_number
	`
	rows, err := r.pool.Query(ctx, query, studentID, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.LevelActivitySubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubmission(row pgx.Row) (*domain.LevelActivitySubmission, error) {
	s := &domain.LevelActivitySubmission{}
	var status string
	err := row.Scan(
		&s.ID,
		&s.StudentID,
		&s.ActivityID,
		&s.AttemptNumber,
		&s.Answers,
		&s.SubmissionContent,
		&s.Score,
		&s.MaxScore,
		&s.Percentage,
		&status,
		&s.TimeTakenMinutes,
		&s.Feedback,
		&s.SubmittedAt,
		&s.GradedAt,
	)
	if err != nil {
		return nil, err
	}
	if s.Status, err = domain.ParseSubmissionStatus(status); err != nil {
		return nil, fmt.Errorf("submission %d: %w", s.ID, err)
	}
	return s, nil
}
