package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/event"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/metrics"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/repository"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/retry"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// LearningServiceConfig holds configuration for LearningService
type LearningServiceConfig struct {
	// DefaultPassingScore applies to activities that set no threshold
	DefaultPassingScore int
	// AttemptRetries bounds retries when a concurrent submission takes the same attempt number
	AttemptRetries int
}

// LearningService defines the student-facing activity and level operations
type LearningService interface {
	// ListActivities lists the activities of a level
	ListActivities(ctx context.Context, levelID int64) ([]*dto.ActivityResponse, error)
	// GetActivity returns one activity
	GetActivity(ctx context.Context, activityID int64) (*dto.ActivityResponse, error)
	// ListContent lists the learning material of a level in content order
	ListContent(ctx context.Context, levelID int64) ([]*dto.LevelContentResponse, error)
	// GetContent returns one learning material item
	GetContent(ctx context.Context, contentID int64) (*dto.LevelContentResponse, error)
	// Submit records the next attempt of a student at an activity
	Submit(ctx context.Context, studentID, activityID int64, req *dto.SubmitActivityRequest) (*dto.SubmissionResponse, error)
	// LatestSubmission returns the latest attempt, or nil when there is none
	LatestSubmission(ctx context.Context, studentID, activityID int64) (*dto.SubmissionResponse, error)
	// ListSubmissions lists a student's attempts across a level's activities
	ListSubmissions(ctx context.Context, studentID, levelID int64) ([]*dto.SubmissionResponse, error)
	// CanCompleteLevel reports whether the latest attempt at every required activity passed
	CanCompleteLevel(ctx context.Context, studentID, levelID int64) (bool, error)
	// CompleteLevel marks the level completed once CanCompleteLevel holds
	CompleteLevel(ctx context.Context, studentID, levelID int64) (*dto.ProgressResponse, error)
	// ListProgress lists a student's progress rows
	ListProgress(ctx context.Context, studentID int64) ([]*dto.ProgressResponse, error)
}

type learningService struct {
	levels      repository.LevelRepository
	activities  repository.ActivityRepository
	contents    repository.ContentRepository
	submissions repository.SubmissionRepository
	progress    repository.ProgressRepository
	grader      Grader
	publisher   event.Publisher
	retrier     *retry.Retrier
	config      *LearningServiceConfig
	now         func() time.Time
}

// NewLearningService creates a new LearningService
func NewLearningService(
	levels repository.LevelRepository,
	activities repository.ActivityRepository,
	contents repository.ContentRepository,
	submissions repository.SubmissionRepository,
	progress repository.ProgressRepository,
	grader Grader,
	publisher event.Publisher,
	config *LearningServiceConfig,
) LearningService {
	if config == nil {
		config = &LearningServiceConfig{}
	}
	if config.DefaultPassingScore <= 0 {
		config.DefaultPassingScore = domain.DefaultPassingScore
	}
	if config.AttemptRetries <= 0 {
		config.AttemptRetries = 3
	}
	if grader == nil {
		grader = ManualGrader{}
	}
	if publisher == nil {
		publisher = event.NewNoOpPublisher()
	}
	return &learningService{
		levels:      levels,
		activities:  activities,
		contents:    contents,
		submissions: submissions,
		progress:    progress,
		grader:      grader,
		publisher:   publisher,
		retrier: retry.New(&retry.Config{
			MaxRetries:      config.AttemptRetries,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2,
			JitterFactor:    0.2,
			RetryIf: func(err error) bool {
				return errors.Is(err, domain.ErrAttemptConflict)
			},
		}),
		config: config,
		now:    time.Now,
	}
}

// withDefaults fills the configured passing score into an activity that sets none
func (s *learningService) withDefaults(a *domain.LevelActivity) *domain.LevelActivity {
	if a != nil && a.PassingScore == nil {
		score := s.config.DefaultPassingScore
		a.PassingScore = &score
	}
	return a
}

func (s *learningService) getActivity(ctx context.Context, activityID int64) (*domain.LevelActivity, error) {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, domain.ErrActivityNotFound
	}
	return s.withDefaults(activity), nil
}

func (s *learningService) getLevel(ctx context.Context, levelID int64) (*domain.CourseLevel, error) {
	level, err := s.levels.GetByID(ctx, levelID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, domain.ErrLevelNotFound
	}
	return level, nil
}

func (s *learningService) ListActivities(ctx context.Context, levelID int64) ([]*dto.ActivityResponse, error) {
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, dto.NewActivityResponse(s.withDefaults(a)))
	}
	return out, nil
}

func (s *learningService) GetActivity(ctx context.Context, activityID int64) (*dto.ActivityResponse, error) {
	activity, err := s.getActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityResponse(activity), nil
}

func (s *learningService) ListContent(ctx context.Context, levelID int64) ([]*dto.LevelContentResponse, error) {
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return nil, err
	}
	items, err := s.contents.ListByLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LevelContentResponse, 0, len(items))
	for _, c := range items {
		out = append(out, dto.NewLevelContentResponse(c))
	}
	return out, nil
}

func (s *learningService) GetContent(ctx context.Context, contentID int64) (*dto.LevelContentResponse, error) {
	item, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrContentNotFound
	}
	return dto.NewLevelContentResponse(item), nil
}

func (s *learningService) Submit(ctx context.Context, studentID, activityID int64, req *dto.SubmitActivityRequest) (*dto.SubmissionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.learning.submit")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("student_id", studentID),
		attribute.Int64("activity_id", activityID),
	)

	activity, err := s.getActivity(ctx, activityID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var sub *domain.LevelActivitySubmission
	result := s.retrier.DoWithCallback(ctx, func(ctx context.Context) error {
		count, err := s.submissions.CountByStudentAndActivity(ctx, studentID, activityID)
		if err != nil {
			return retry.Permanent(err)
		}
		next := count + 1
		if next > activity.EffectiveMaxAttempts() {
			return retry.Permanent(domain.ErrAttemptsExceeded)
		}

		sub = &domain.LevelActivitySubmission{
			StudentID:         studentID,
			ActivityID:        activityID,
			AttemptNumber:     next,
			Answers:           req.Answers,
			SubmissionContent: req.SubmissionContent,
			TimeTakenMinutes:  req.TimeTakenMinutes,
			Status:            domain.SubmissionSubmitted,
			SubmittedAt:       s.now(),
		}
		if err := s.grader.Grade(ctx, activity, sub); err != nil {
			return retry.Permanent(err)
		}
		return s.submissions.Create(ctx, sub)
	}, func(attempt int, err error, next time.Duration) {
		metrics.RecordAttemptRetry(ctx)
		logger.Get().Debug("attempt number taken, retrying", zap.Int("retry", attempt), zap.Duration("backoff", next))
	})

	if err := submitError(result); err != nil {
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordSubmission(ctx, string(activity.Type), "rejected")
		return nil, err
	}

	span.SetAttributes(attribute.Int("attempt_number", sub.AttemptNumber))
	span.SetStatus(codes.Ok, "")
	metrics.RecordSubmission(ctx, string(activity.Type), string(sub.Status))
	logger.Get().InfoContext(ctx, "activity submitted",
		zap.Int64("student_id", studentID),
		zap.Int64("activity_id", activityID),
		zap.Int("attempt", sub.AttemptNumber),
		zap.String("status", string(sub.Status)),
	)

	return dto.NewSubmissionResponse(sub, activity), nil
}

// submitError unwraps a retry result into the error callers should see
func submitError(result *retry.Result) error {
	switch {
	case result.Err == nil:
		return nil
	case errors.Is(result.Err, retry.ErrMaxRetriesExceeded):
		return fmt.Errorf("submission failed after %d attempts: %w", result.Attempts, result.LastError)
	case errors.Is(result.Err, retry.ErrContextCanceled):
		return fmt.Errorf("submission canceled: %w", context.Canceled)
	}
	return result.Err
}

func (s *learningService) LatestSubmission(ctx context.Context, studentID, activityID int64) (*dto.SubmissionResponse, error) {
	activity, err := s.getActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetLatest(ctx, studentID, activityID)
	if err != nil || sub == nil {
		return nil, err
	}
	return dto.NewSubmissionResponse(sub, activity), nil
}

func (s *learningService) ListSubmissions(ctx context.Context, studentID, levelID int64) ([]*dto.SubmissionResponse, error) {
	if _, err := s.getLevel(ctx, levelID); err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByLevel(ctx, levelID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.LevelActivity, len(activities))
	for _, a := range activities {
		byID[a.ID] = s.withDefaults(a)
	}

	subs, err := s.submissions.ListByStudentAndLevel(ctx, studentID, levelID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, dto.NewSubmissionResponse(sub, byID[sub.ActivityID]))
	}
	return out, nil
}

func (s *learningService) CanCompleteLevel(ctx context.Context, studentID, levelID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.learning.can_complete_level")
	defer span.End()

	if _, err := s.getLevel(ctx, levelID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	ok, err := s.canComplete(ctx, studentID, levelID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	span.SetAttributes(attribute.Bool("can_complete", ok))
	return ok, nil
}

// canComplete checks the latest attempt, not the best one, of every required activity
func (s *learningService) canComplete(ctx context.Context, studentID, levelID int64) (bool, error) {
	required, err := s.activities.ListRequiredByLevel(ctx, levelID)
	if err != nil {
		return false, err
	}
	for _, activity := range required {
		latest, err := s.submissions.GetLatest(ctx, studentID, activity.ID)
		if err != nil {
			return false, err
		}
		if latest == nil || !latest.IsPassed(s.withDefaults(activity)) {
			return false, nil
		}
	}
	return true, nil
}

func (s *learningService) CompleteLevel(ctx context.Context, studentID, levelID int64) (*dto.ProgressResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.learning.complete_level")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("student_id", studentID),
		attribute.Int64("level_id", levelID),
	)

	level, err := s.getLevel(ctx, levelID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ok, err := s.canComplete(ctx, studentID, levelID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ok {
		span.SetStatus(codes.Error, "requirements not met")
		metrics.RecordLevelCompletion(ctx, "requirements_not_met")
		return nil, domain.ErrRequirementsNotMet
	}

	progress, err := s.progress.Get(ctx, studentID, level.CourseID, level.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if progress == nil {
		progress = domain.NewStudentProgress(studentID, level.CourseID, level.ID)
	}

	wasCompleted := progress.Status == domain.ProgressCompleted
	progress.TransitionTo(domain.ProgressCompleted, s.now())
	if err := s.progress.Save(ctx, progress); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	if wasCompleted {
		metrics.RecordLevelCompletion(ctx, "already_completed")
	} else {
		metrics.RecordLevelCompletion(ctx, "completed")
		logger.Get().InfoContext(ctx, "level completed",
			zap.Int64("student_id", studentID),
			zap.Int64("course_id", level.CourseID),
			zap.Int64("level_id", level.ID),
		)
		publishLevelCompleted(ctx, s.publisher, progress, s.now())
	}

	return dto.NewProgressResponse(progress), nil
}

func (s *learningService) ListProgress(ctx context.Context, studentID int64) ([]*dto.ProgressResponse, error) {
	rows, err := s.progress.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewProgressResponses(rows), nil
}

// publishLevelCompleted announces a completion. Publishing is best-effort
func publishLevelCompleted(ctx context.Context, publisher event.Publisher, progress *domain.StudentProgress, now time.Time) {
	evt := domain.NewLevelCompletedEvent(uuid.NewString(), progress, now)
	if err := publisher.Publish(ctx, evt); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish level completed event",
			zap.Int64("student_id", progress.StudentID),
			zap.Int64("level_id", progress.LevelID),
			zap.Error(err),
		)
	}
}
