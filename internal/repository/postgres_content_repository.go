package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contentColumns = `
	id, level_id, content_type, title, description, content,
	content_order, is_required, estimated_minutes, created_at, updated_at
`

// PostgresContentRepository implements ContentRepository using PostgreSQL
type PostgresContentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresContentRepository creates a new PostgresContentRepository
func NewPostgresContentRepository(pool *pgxpool.Pool) *PostgresContentRepository {
	return &PostgresContentRepository{pool: pool}
}

// GetByID retrieves a content item by ID
func (r *PostgresContentRepository) GetByID(ctx context.Context, id int64) (*domain.LevelContent, error) {
	query := `SELECT ` + contentColumns + ` FROM level_content WHERE id = $1`
	content, err := scanContent(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return content, err
}

// ListByLevel lists the content of a level; ties on content order fall back to ID
func (r *PostgresContentRepository) ListByLevel(ctx context.Context, levelID int64) ([]*domain.LevelContent, error) {
	query := `SELECT ` + contentColumns + ` FROM level_content WHERE level_id = $1 ORDER BY content_order, id`
	rows, err := r.pool.Query(ctx, query, levelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query level content: %w", err)
	}
	defer rows.Close()

	var items []*domain.LevelContent
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanContent(row pgx.Row) (*domain.LevelContent, error) {
	c := &domain.LevelContent{}
	var contentType string
	err := row.Scan(
		&c.ID,
		&c.LevelID,
		&contentType,
		&c.Title,
		&c.Description,
		&c.Content,
		&c.Order,
		&c.IsRequired,
		&c.EstimatedMinutes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Type, err = domain.ParseContentType(contentType); err != nil {
		return nil, fmt.Errorf("content %d: %w", c.ID, err)
	}
	return c, nil
}
