package domain

import (
	"fmt"
	"strings"
	"time"
)

// SubmissionStatus represents the lifecycle of one attempt
type SubmissionStatus string

const (
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionSubmitted  SubmissionStatus = "submitted"
	SubmissionGraded     SubmissionStatus = "graded"
	SubmissionPassed     SubmissionStatus = "passed"
	SubmissionFailed     SubmissionStatus = "failed"
)

// ParseSubmissionStatus parses a submission status case-insensitively
func ParseSubmissionStatus(s string) (SubmissionStatus, error) {
	switch SubmissionStatus(normalizeEnum(s)) {
	case SubmissionInProgress:
		return SubmissionInProgress, nil
	case SubmissionSubmitted:
		return SubmissionSubmitted, nil
	case SubmissionGraded:
		return SubmissionGraded, nil
	case SubmissionPassed:
		return SubmissionPassed, nil
	case SubmissionFailed:
		return SubmissionFailed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// LevelActivitySubmission is one attempt by a student at an activity
type LevelActivitySubmission struct {
	ID                int64            `json:"submissionId"`
	StudentID         int64            `json:"studentId"`
	ActivityID        int64            `json:"activityId"`
	AttemptNumber     int              `json:"attemptNumber"`
	Answers           string           `json:"answers"`
	SubmissionContent string           `json:"submissionContent"`
	Score             *int             `json:"score,omitempty"`
	MaxScore          *int             `json:"maxScore,omitempty"`
	Percentage        *float64         `json:"percentage,omitempty"`
	Status            SubmissionStatus `json:"status"`
	TimeTakenMinutes  *int             `json:"timeTakenMinutes,omitempty"`
	Feedback          string           `json:"feedback"`
	SubmittedAt       time.Time        `json:"submittedAt"`
	GradedAt          *time.Time       `json:"gradedAt,omitempty"`
}

// IsPassed reports whether the attempt counts as passed against activity.
// An explicit passed status wins; otherwise the percentage must reach the
// activity's passing score (60 when the activity sets none).
func (s *LevelActivitySubmission) IsPassed(activity *LevelActivity) bool {
	if s.Status == SubmissionPassed {
		return true
	}
	return s.Percentage != nil && *s.Percentage >= float64(activity.EffectivePassingScore())
}

// ApplyScore records a grade and derives percentage and pass/fail status
func (s *LevelActivitySubmission) ApplyScore(score, maxScore int, activity *LevelActivity, now time.Time) {
	pct := 0.0
	if maxScore > 0 {
		pct = float64(score) * 100 / float64(maxScore)
	}
	s.Score = &score
	s.MaxScore = &maxScore
	s.Percentage = &pct
	if pct >= float64(activity.EffectivePassingScore()) {
		s.Status = SubmissionPassed
	} else {
		s.Status = SubmissionFailed
	}
	s.GradedAt = &now
}

// normalizeEnum lowercases and maps spaces and dashes to underscores
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
