package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultPassingScore applies when an activity has no threshold of its own
	DefaultPassingScore = 60
	// DefaultMaxAttempts applies when an activity has no attempt ceiling of its own
	DefaultMaxAttempts = 3
)

// ActivityType represents the kind of level activity
type ActivityType string

const (
	ActivityQuiz       ActivityType = "quiz"
	ActivityPractice   ActivityType = "practice"
	ActivityAssignment ActivityType = "assignment"
	ActivityProject    ActivityType = "project"
)

// ParseActivityType parses an activity type case-insensitively
func ParseActivityType(s string) (ActivityType, error) {
	switch ActivityType(strings.ToLower(strings.TrimSpace(s))) {
	case ActivityQuiz:
		return ActivityQuiz, nil
	case ActivityPractice:
		return ActivityPractice, nil
	case ActivityAssignment:
		return ActivityAssignment, nil
	case ActivityProject:
		return ActivityProject, nil
	}
	return "", fmt.Errorf("%w: unknown activity type %q", ErrValidation, s)
}

// CourseLevel is an ordered unit of a course
type CourseLevel struct {
	ID          int64  `json:"levelId"`
	CourseID    int64  `json:"courseId"`
	LevelNumber int    `json:"levelNumber"`
	LevelName   string `json:"levelName"`
}

// LevelActivity is a gradable activity attached to a course level
type LevelActivity struct {
	ID               int64        `json:"activityId"`
	LevelID          int64        `json:"levelId"`
	Type             ActivityType `json:"activityType"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Instructions     string       `json:"instructions"`
	Content          string       `json:"content"`
	PassingScore     *int         `json:"passingScore,omitempty"`
	MaxAttempts      int          `json:"maxAttempts"`
	TimeLimitMinutes *int         `json:"timeLimitMinutes,omitempty"`
	IsRequired       bool         `json:"isRequired"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// EffectivePassingScore returns the activity threshold, or DefaultPassingScore when unset
func (a *LevelActivity) EffectivePassingScore() int {
	if a == nil || a.PassingScore == nil {
		return DefaultPassingScore
	}
	return *a.PassingScore
}

// EffectiveMaxAttempts returns the attempt ceiling, or DefaultMaxAttempts when unset
func (a *LevelActivity) EffectiveMaxAttempts() int {
	if a.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return a.MaxAttempts
}
