package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/repository"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RefreshTokenService defines the refresh token ledger operations
type RefreshTokenService interface {
	// Issue records a freshly minted refresh token for user
	Issue(ctx context.Context, user *domain.User, rawToken, userAgent string) (*domain.RefreshTokenRecord, error)
	// Validate looks up the ledger record of rawToken and rejects revoked or expired records
	Validate(ctx context.Context, rawToken string) (*domain.RefreshTokenRecord, error)
	// Revoke revokes the record of rawToken. Missing or already revoked records are not an error
	Revoke(ctx context.Context, rawToken string) error
	// RevokeAllForUser revokes every live record of a user
	RevokeAllForUser(ctx context.Context, userID int64) (int64, error)
	// TouchLastUsed stamps a record as just used
	TouchLastUsed(ctx context.Context, record *domain.RefreshTokenRecord) error
}

// HashToken returns the stored form of a raw refresh token: base64(sha256(token))
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

type refreshTokenService struct {
	repo repository.RefreshTokenRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewRefreshTokenService creates a new RefreshTokenService
func NewRefreshTokenService(repo repository.RefreshTokenRepository, ttl time.Duration) RefreshTokenService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &refreshTokenService{repo: repo, ttl: ttl, now: time.Now}
}

func (s *refreshTokenService) Issue(ctx context.Context, user *domain.User, rawToken, userAgent string) (*domain.RefreshTokenRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.refresh_token.issue")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", user.ID))

	now := s.now()
	record := &domain.RefreshTokenRecord{
		UserID:    user.ID,
		TokenHash: HashToken(rawToken),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		UserAgent: userAgent,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return record, nil
}

func (s *refreshTokenService) Validate(ctx context.Context, rawToken string) (*domain.RefreshTokenRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.refresh_token.validate")
	defer span.End()

	record, err := s.repo.GetByHash(ctx, HashToken(rawToken))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if record == nil {
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrTokenNotFound
	}
	if record.Revoked {
		span.SetStatus(codes.Error, "revoked")
		return nil, domain.ErrRevokedToken
	}
	if record.IsExpired(s.now()) {
		span.SetStatus(codes.Error, "expired")
		return nil, domain.ErrInvalidOrExpiredToken
	}

	span.SetStatus(codes.Ok, "")
	return record, nil
}

func (s *refreshTokenService) Revoke(ctx context.Context, rawToken string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.refresh_token.revoke")
	defer span.End()

	matched, err := s.repo.Revoke(ctx, HashToken(rawToken), s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Bool("matched", matched))
	return nil
}

func (s *refreshTokenService) RevokeAllForUser(ctx context.Context, userID int64) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.refresh_token.revoke_all")
	defer span.End()

	n, err := s.repo.RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.Int64("revoked", n))
	return n, nil
}

func (s *refreshTokenService) TouchLastUsed(ctx context.Context, record *domain.RefreshTokenRecord) error {
	now := s.now()
	if err := s.repo.TouchLastUsed(ctx, record.ID, now); err != nil {
		return err
	}
	record.LastUsedAt = &now
	return nil
}
