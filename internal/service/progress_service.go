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
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ProgressService defines the teacher-facing grading and progress operations
type ProgressService interface {
	// UpdateProgress finds or creates the progress row and moves it to the requested status
	UpdateProgress(ctx context.Context, studentID, courseID, levelID int64, req *dto.UpdateProgressRequest) (*dto.ProgressResponse, error)
	// ListProgress lists a student's progress within a course
	ListProgress(ctx context.Context, studentID, courseID int64) ([]*dto.ProgressResponse, error)
	// GradeSubmission scores a submission and derives pass or fail
	GradeSubmission(ctx context.Context, submissionID int64, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error)
}

type progressService struct {
	users       repository.UserRepository
	levels      repository.LevelRepository
	activities  repository.ActivityRepository
	submissions repository.SubmissionRepository
	progress    repository.ProgressRepository
	publisher   event.Publisher
	defaultPass int
	now         func() time.Time
}

// NewProgressService creates a new ProgressService
func NewProgressService(
	users repository.UserRepository,
	levels repository.LevelRepository,
	activities repository.ActivityRepository,
	submissions repository.SubmissionRepository,
	progress repository.ProgressRepository,
	publisher event.Publisher,
	defaultPassingScore int,
) ProgressService {
	if publisher == nil {
		publisher = event.NewNoOpPublisher()
	}
	if defaultPassingScore <= 0 {
		defaultPassingScore = domain.DefaultPassingScore
	}
	return &progressService{
		users:       users,
		levels:      levels,
		activities:  activities,
		submissions: submissions,
		progress:    progress,
		publisher:   publisher,
		defaultPass: defaultPassingScore,
		now:         time.Now,
	}
}

func (s *progressService) UpdateProgress(ctx context.Context, studentID, courseID, levelID int64, req *dto.UpdateProgressRequest) (*dto.ProgressResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.progress.update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("student_id", studentID),
		attribute.Int64("course_id", courseID),
		attribute.Int64("level_id", levelID),
	)

	status, err := domain.ParseProgressStatus(req.Status)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.checkStudent(ctx, studentID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	level, err := s.levels.GetByID(ctx, levelID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if level == nil {
		span.SetStatus(codes.Error, "level not found")
		return nil, domain.ErrLevelNotFound
	}
	if level.CourseID != courseID {
		span.SetStatus(codes.Error, "level outside course")
		return nil, fmt.Errorf("%w: level %d does not belong to course %d", domain.ErrValidation, levelID, courseID)
	}

	progress, err := s.progress.Get(ctx, studentID, courseID, levelID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if progress == nil {
		progress = domain.NewStudentProgress(studentID, courseID, levelID)
	}

	wasCompleted := progress.Status == domain.ProgressCompleted
	progress.TransitionTo(status, s.now())
	progress.Remarks = strings.TrimSpace(req.Remarks)

	if err := s.progress.Save(ctx, progress); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	logger.Get().InfoContext(ctx, "progress updated",
		zap.Int64("student_id", studentID),
		zap.Int64("level_id", levelID),
		zap.String("status", string(status)),
	)
	if !wasCompleted && status == domain.ProgressCompleted {
		publishLevelCompleted(ctx, s.publisher, progress, s.now())
	}

	return dto.NewProgressResponse(progress), nil
}

// checkStudent verifies studentID names a student account
func (s *progressService) checkStudent(ctx context.Context, studentID int64) error {
	user, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if user == nil || user.Role != domain.RoleStudent {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (s *progressService) ListProgress(ctx context.Context, studentID, courseID int64) ([]*dto.ProgressResponse, error) {
	if err := s.checkStudent(ctx, studentID); err != nil {
		return nil, err
	}
	rows, err := s.progress.ListByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewProgressResponses(rows), nil
}

func (s *progressService) GradeSubmission(ctx context.Context, submissionID int64, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.progress.grade")
	defer span.End()

	span.SetAttributes(attribute.Int64("submission_id", submissionID))

	if req.Score == nil || *req.Score < 0 || req.MaxScore <= 0 || *req.Score > req.MaxScore {
		span.SetStatus(codes.Error, "invalid score")
		return nil, fmt.Errorf("%w: score must be between 0 and maxScore", domain.ErrValidation)
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if sub == nil {
		span.SetStatus(codes.Error, "submission not found")
		return nil, domain.ErrSubmissionNotFound
	}

	activity, err := s.activities.GetByID(ctx, sub.ActivityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if activity == nil {
		span.SetStatus(codes.Error, "activity not found")
		return nil, domain.ErrActivityNotFound
	}
	if activity.PassingScore == nil {
		score := s.defaultPass
		activity.PassingScore = &score
	}

	sub.ApplyScore(*req.Score, req.MaxScore, activity, s.now())
	sub.Feedback = strings.TrimSpace(req.Feedback)

	if err := s.submissions.UpdateGrade(ctx, sub); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("status", string(sub.Status)))
	span.SetStatus(codes.Ok, "")
	metrics.RecordGrading(ctx, string(sub.Status))
	logger.Get().InfoContext(ctx, "submission graded",
		zap.Int64("submission_id", sub.ID),
		zap.Float64("percentage", *sub.Percentage),
		zap.String("status", string(sub.Status)),
	)

	return dto.NewSubmissionResponse(sub, activity), nil
}
