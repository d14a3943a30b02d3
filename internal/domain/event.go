package domain

import (
	"strconv"
	"time"
)

// EventType identifies a published domain event
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventLevelCompleted EventType = "level.completed"
)

// Event is the envelope published for downstream collaborators
// (certificate issuance, notifications)
type Event struct {
	ID         string      `json:"eventId"`
	Type       EventType   `json:"eventType"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
	key        string
}

// Key returns the partition key
func (e *Event) Key() string {
	return e.key
}

// UserRegisteredPayload is the body of a user.registered event
type UserRegisteredPayload struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// LevelCompletedPayload is the body of a level.completed event
type LevelCompletedPayload struct {
	StudentID      int64     `json:"studentId"`
	CourseID       int64     `json:"courseId"`
	LevelID        int64     `json:"levelId"`
	CompletionDate time.Time `json:"completionDate"`
}

// NewUserRegisteredEvent builds a user.registered event keyed by user id
func NewUserRegisteredEvent(id string, user *User, now time.Time) *Event {
	return &Event{
		ID:         id,
		Type:       EventUserRegistered,
		OccurredAt: now,
		Payload: UserRegisteredPayload{
			UserID:   user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
		key: strconv.FormatInt(user.ID, 10),
	}
}

// NewLevelCompletedEvent builds a level.completed event keyed by student id
func NewLevelCompletedEvent(id string, progress *StudentProgress, now time.Time) *Event {
	payload := LevelCompletedPayload{
		StudentID: progress.StudentID,
		CourseID:  progress.CourseID,
		LevelID:   progress.LevelID,
	}
	if progress.CompletionDate != nil {
		payload.CompletionDate = *progress.CompletionDate
	}
	return &Event{
		ID:         id,
		Type:       EventLevelCompleted,
		OccurredAt: now,
		Payload:    payload,
		key:        strconv.FormatInt(progress.StudentID, 10),
	}
}
