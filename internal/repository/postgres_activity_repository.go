package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLevelRepository implements LevelRepository using PostgreSQL
type PostgresLevelRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLevelRepository creates a new PostgresLevelRepository
func NewPostgresLevelRepository(pool *pgxpool.Pool) *PostgresLevelRepository {
	return &PostgresLevelRepository{pool: pool}
}

// GetByID retrieves a level by ID
func (r *PostgresLevelRepository) GetByID(ctx context.Context, id int64) (*domain.CourseLevel, error) {
	query := `
		SELECT id, course_id, level_number, level_name
		FROM course_levels
		WHERE id = $1
	`
	level := &domain.CourseLevel{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&level.ID, &level.CourseID, &level.LevelNumber, &level.LevelName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return level, nil
}

const activityColumns = `
	id, level_id, activity_type, title, description, instructions, content,
	passing_score, max_attempts, time_limit_minutes, is_required, created_at, updated_at
`

// PostgresActivityRepository implements ActivityRepository using PostgreSQL
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresActivityRepository creates a new PostgresActivityRepository
func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

// GetByID retrieves an activity by ID
func (r *PostgresActivityRepository) GetByID(ctx context.Context, id int64) (*domain.LevelActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM level_activities WHERE id = $1`
	activity, err := scanActivity(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return activity, err
}

// ListByLevel lists activities of a level
func (r *PostgresActivityRepository) ListByLevel(ctx context.Context, levelID int64) ([]*domain.LevelActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM level_activities WHERE level_id = $1 ORDER BY id`
	return r.list(ctx, query, levelID)
}

// ListRequiredByLevel lists required activities of a level
func (r *PostgresActivityRepository) ListRequiredByLevel(ctx context.Context, levelID int64) ([]*domain.LevelActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM level_activities WHERE level_id = $1 AND is_required ORDER BY id`
	return r.list(ctx, query, levelID)
}

func (r *PostgresActivityRepository) list(ctx context.Context, query string, args ...any) ([]*domain.LevelActivity, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []*domain.LevelActivity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func scanActivity(row pgx.Row) (*domain.LevelActivity, error) {
	a := &domain.LevelActivity{}
	var activityType string
	err := row.Scan(
		&a.ID,
		&a.LevelID,
		&activityType,
		&a.Title,
		&a.Description,
		&a.Instructions,
		&a.Content,
		&a.PassingScore,
		&a.MaxAttempts,
		&a.TimeLimitMinutes,
		&a.IsRequired,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.Type, err = domain.ParseActivityType(activityType); err != nil {
		return nil, fmt.Errorf("activity %d: %w", a.ID, err)
	}
	return a, nil
}
