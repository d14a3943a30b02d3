package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRefreshTokenRepository implements RefreshTokenRepository using PostgreSQL
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRefreshTokenRepository creates a new PostgresRefreshTokenRepository
func NewPostgresRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

// Create creates a new ledger record
func (r *PostgresRefreshTokenRepository) Create(ctx context.Context, record *domain.RefreshTokenRecord) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, created_at, expires_at, user_agent, revoked)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		record.UserID,
		record.TokenHash,
		record.CreatedAt,
		record.ExpiresAt,
		record.UserAgent,
		record.Revoked,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

// GetByHash retrieves a ledger record by token hash
func (r *PostgresRefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshTokenRecord, error) {
	query := `
		SELECT id, user_id, token_hash, created_at, expires_at, last_used_at, user_agent, revoked
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	record := &domain.RefreshTokenRecord{}
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&record.ID,
		&record.UserID,
		&record.TokenHash,
		&record.CreatedAt,
		&record.ExpiresAt,
		&record.LastUsedAt,
		&record.UserAgent,
		&record.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// TouchLastUsed updates the last-used timestamp
func (r *PostgresRefreshTokenRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE refresh_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

// Revoke revokes a record by hash; already revoked records keep their original revoke time
func (r *PostgresRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = COALESCE(revoked_at, $2)
		WHERE token_hash = $1
	`
	tag, err := r.pool.Exec(ctx, query, tokenHash, at)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RevokeAllForUser revokes every unrevoked record of a user
func (r *PostgresRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE user_id = $1 AND revoked = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, userID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired deletes a batch of expired records
func (r *PostgresRefreshTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE id IN (
			SELECT id FROM refresh_tokens
			WHERE expires_at < $1
			LIMIT $2
		)
	`
	tag, err := r.pool.Exec(ctx, query, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteRevokedBefore deletes a batch of records revoked before cutoff
func (r *PostgresRefreshTokenRepository) DeleteRevokedBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE id IN (
			SELECT id FROM refresh_tokens
			WHERE revoked = TRUE AND revoked_at < $1
			LIMIT $2
		)
	`
	tag, err := r.pool.Exec(ctx, query, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete revoked refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
