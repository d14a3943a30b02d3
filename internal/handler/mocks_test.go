package handler

import (
	"context"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest, userAgent string) (*dto.LoginResult, error) {
	args := m.Called(ctx, req, userAgent)
	if v := args.Get(0); v != nil {
		return v.(*dto.LoginResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest, role domain.Role) error {
	return m.Called(ctx, req, role).Error(0)
}

func (m *MockAuthService) RegisterTeacher(ctx context.Context, req *dto.TeacherRegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthService) RegisterStudent(ctx context.Context, req *dto.StudentRegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLearningService struct {
	mock.Mock
}

func (m *MockLearningService) ListActivities(ctx context.Context, levelID int64) ([]*dto.ActivityResponse, error) {
	args := m.Called(ctx, levelID)
	if v := args.Get(0); v != nil {
		return v.([]*dto.ActivityResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) GetActivity(ctx context.Context, activityID int64) (*dto.ActivityResponse, error) {
	args := m.Called(ctx, activityID)
	if v := args.Get(0); v != nil {
		return v.(*dto.ActivityResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) ListContent(ctx context.Context, levelID int64) ([]*dto.LevelContentResponse, error) {
	args := m.Called(ctx, levelID)
	if v := args.Get(0); v != nil {
		return v.([]*dto.LevelContentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) GetContent(ctx context.Context, contentID int64) (*dto.LevelContentResponse, error) {
	args := m.Called(ctx, contentID)
	if v := args.Get(0); v != nil {
		return v.(*dto.LevelContentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) Submit(ctx context.Context, studentID, activityID int64, req *dto.SubmitActivityRequest) (*dto.SubmissionResponse, error) {
	args := m.Called(ctx, studentID, activityID, req)
	if v := args.Get(0); v != nil {
		return v.(*dto.SubmissionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) LatestSubmission(ctx context.Context, studentID, activityID int64) (*dto.SubmissionResponse, error) {
	args := m.Called(ctx, studentID, activityID)
	if v := args.Get(0); v != nil {
		return v.(*dto.SubmissionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) ListSubmissions(ctx context.Context, studentID, levelID int64) ([]*dto.SubmissionResponse, error) {
	args := m.Called(ctx, studentID, levelID)
	if v := args.Get(0); v != nil {
		return v.([]*dto.SubmissionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) CanCompleteLevel(ctx context.Context, studentID, levelID int64) (bool, error) {
	args := m.Called(ctx, studentID, levelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLearningService) CompleteLevel(ctx context.Context, studentID, levelID int64) (*dto.ProgressResponse, error) {
	args := m.Called(ctx, studentID, levelID)
	if v := args.Get(0); v != nil {
		return v.(*dto.ProgressResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLearningService) ListProgress(ctx context.Context, studentID int64) ([]*dto.ProgressResponse, error) {
	args := m.Called(ctx, studentID)
	if v := args.Get(0); v != nil {
		return v.([]*dto.ProgressResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) UpdateProgress(ctx context.Context, studentID, courseID, levelID int64, req *dto.UpdateProgressRequest) (*dto.ProgressResponse, error) {
	args := m.Called(ctx, studentID, courseID, levelID, req)
	if v := args.Get(0); v != nil {
		return v.(*dto.ProgressResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressService) ListProgress(ctx context.Context, studentID, courseID int64) ([]*dto.ProgressResponse, error) {
	args := m.Called(ctx, studentID, courseID)
	if v := args.Get(0); v != nil {
		return v.([]*dto.ProgressResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProgressService) GradeSubmission(ctx context.Context, submissionID int64, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error) {
	args := m.Called(ctx, submissionID, req)
	if v := args.Get(0); v != nil {
		return v.(*dto.SubmissionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) UpdateStatus(ctx context.Context, userID int64, status string) (*domain.User, error) {
	args := m.Called(ctx, userID, status)
	if v := args.Get(0); v != nil {
		return v.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubChecker struct {
	err error
}

func (s stubChecker) HealthCheck(context.Context) error {
	return s.err
}
