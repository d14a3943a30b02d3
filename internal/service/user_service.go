package service

import (
	"context"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/repository"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// UserService defines admin account management operations
type UserService interface {
	// UpdateStatus sets an account's lifecycle status; suspension revokes every session
	UpdateStatus(ctx context.Context, userID int64, status string) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	ledger RefreshTokenService
}

// NewUserService creates a new UserService
func NewUserService(users repository.UserRepository, ledger RefreshTokenService) UserService {
	return &userService{users: users, ledger: ledger}
}

func (s *userService) UpdateStatus(ctx context.Context, userID int64, raw string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update_status")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	status, err := domain.ParseUserStatus(raw)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, domain.ErrAccountNotFound
	}

	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	user.Status = status

	if status == domain.UserStatusSuspended {
		n, err := s.ledger.RevokeAllForUser(ctx, userID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		span.SetAttributes(attribute.Int64("revoked_sessions", n))
	}

	span.SetStatus(codes.Ok, "")
	logger.Get().InfoContext(ctx, "user status updated", zap.Int64("user_id", userID), zap.String("status", string(status)))
	return user, nil
}
