package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/event"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/metrics"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/repository"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/token"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	BcryptCost int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Login verifies credentials and issues an access and a refresh token
	Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResult, error)
	// Register creates a pending account with the given role
	Register(ctx context.Context, req *dto.RegisterRequest, role domain.Role) error
	// RegisterTeacher creates a pending teacher account and its profile atomically
	RegisterTeacher(ctx context.Context, req *dto.TeacherRegisterRequest) error
	// RegisterStudent creates a pending student account and its profile atomically
	RegisterStudent(ctx context.Context, req *dto.StudentRegisterRequest) error
	// Refresh exchanges a refresh token for a new access token
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout revokes the refresh token if one is present
	Logout(ctx context.Context, refreshToken string) error
	// LogoutAll revokes every refresh token of the user with email
	LogoutAll(ctx context.Context, email string) error
	// Me returns the account of the user with email
	Me(ctx context.Context, email string) (*domain.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	ledger    RefreshTokenService
	codec     *token.Codec
	publisher event.Publisher
	config    *AuthServiceConfig
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison
	dummyHash []byte
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	ledger RefreshTokenService,
	codec *token.Codec,
	publisher event.Publisher,
	config *AuthServiceConfig,
) AuthService {
	if config == nil {
		config = &AuthServiceConfig{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if publisher == nil {
		publisher = event.NewNoOpPublisher()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), config.BcryptCost)
	return &authService{
		userRepo:  userRepo,
		ledger:    ledger,
		codec:     codec,
		publisher: publisher,
		config:    config,
		dummyHash: dummy,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	email := normalizeEmail(req.Email)
	span.SetAttributes(attribute.String("email", email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, s.loginFailed(ctx, span, email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, s.loginFailed(ctx, span, email)
	}

	if !user.CanAuthenticate() {
		span.SetStatus(codes.Error, "user suspended")
		metrics.RecordLogin(ctx, "suspended")
		logger.Get().WarnContext(ctx, "login rejected for suspended account", zap.Int64("user_id", user.ID))
		return nil, domain.ErrUserSuspended
	}

	subject := subjectOf(user)
	accessToken, _, err := s.codec.Issue(subject, token.Access)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	refreshToken, _, err := s.codec.Issue(subject, token.Refresh)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if _, err := s.ledger.Issue(ctx, user, refreshToken, userAgent); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	metrics.RecordLogin(ctx, "success")
	logger.Get().InfoContext(ctx, "user logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))

	return &dto.LoginResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// loginFailed reports unknown email and wrong password identically
func (s *authService) loginFailed(ctx context.Context, span trace.Span, email string) error {
	span.SetStatus(codes.Error, "invalid credentials")
	metrics.RecordLogin(ctx, "invalid_credentials")
	logger.Get().WarnContext(ctx, "login failed", zap.String("email", email))
	return domain.ErrInvalidCredentials
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, role domain.Role) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	span.SetAttributes(attribute.String("role", string(role)))

	user, err := s.newPendingUser(ctx, req, role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	s.registered(ctx, user)
	return nil
}

func (s *authService) RegisterTeacher(ctx context.Context, req *dto.TeacherRegisterRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register_teacher")
	defer span.End()

	user, err := s.newPendingUser(ctx, &req.RegisterRequest, domain.RoleTeacher)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.userRepo.CreateWithTeacherProfile(ctx, user, req.Profile()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	s.registered(ctx, user)
	return nil
}

func (s *authService) RegisterStudent(ctx context.Context, req *dto.StudentRegisterRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register_student")
	defer span.End()

	user, err := s.newPendingUser(ctx, &req.RegisterRequest, domain.RoleStudent)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.userRepo.CreateWithStudentProfile(ctx, user, req.Profile()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	s.registered(ctx, user)
	return nil
}

// normalizeEmail folds an address to its stored form; uniqueness is case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newPendingUser checks the email is free and hashes the password
func (s *authService) newPendingUser(ctx context.Context, req *dto.RegisterRequest, role domain.Role) (*domain.User, error) {
	email := normalizeEmail(req.Email)
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	return &domain.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.UserStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// registered logs and announces a new account. Publishing is best-effort
func (s *authService) registered(ctx context.Context, user *domain.User) {
	metrics.RecordRegistration(ctx, string(user.Role))
	logger.Get().InfoContext(ctx, "user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))

	evt := domain.NewUserRegisteredEvent(uuid.NewString(), user, time.Now())
	if err := s.publisher.Publish(ctx, evt); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish user registered event", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	accessToken, err := s.refresh(ctx, refreshToken)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRefresh(ctx, "rejected")
		logger.Get().WarnContext(ctx, "refresh rejected", zap.Error(err))
		return "", err
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordRefresh(ctx, "success")
	return accessToken, nil
}

func (s *authService) refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.ErrMissingToken
	}

	claims, err := s.codec.Verify(refreshToken, token.Refresh)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidOrExpiredToken, err)
	}

	record, err := s.ledger.Validate(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrUserNotFound
	}
	if user.ID != record.UserID {
		return "", domain.ErrTokenNotFound
	}
	if !user.CanAuthenticate() {
		return "", domain.ErrUserSuspended
	}

	if err := s.ledger.TouchLastUsed(ctx, record); err != nil {
		return "", err
	}

	accessToken, _, err := s.codec.Issue(subjectOf(user), token.Access)
	return accessToken, err
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	metrics.RecordLogout(ctx, "session")
	if refreshToken == "" {
		return nil
	}
	if err := s.ledger.Revoke(ctx, refreshToken); err != nil {
		span.RecordError(err)
		logger.Get().WarnContext(ctx, "failed to revoke refresh token on logout", zap.Error(err))
	}
	return nil
}

func (s *authService) LogoutAll(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout_all")
	defer span.End()

	user, err := s.Me(ctx, email)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	n, err := s.ledger.RevokeAllForUser(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	metrics.RecordLogout(ctx, "all")
	logger.Get().InfoContext(ctx, "revoked all sessions", zap.Int64("user_id", user.ID), zap.Int64("revoked", n))
	return nil
}

func (s *authService) Me(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func subjectOf(user *domain.User) token.Subject {
	return token.Subject{
		Email:       user.Email,
		FullName:    user.FullName,
		Authorities: user.Authorities(),
	}
}
