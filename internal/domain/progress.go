package domain

import (
	"fmt"
	"time"
)

// ProgressStatus represents a student's standing on a course level
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// ParseProgressStatus accepts "Not Started", "in-progress", "COMPLETED" and similar
func ParseProgressStatus(s string) (ProgressStatus, error) {
	switch ProgressStatus(normalizeEnum(s)) {
	case ProgressNotStarted:
		return ProgressNotStarted, nil
	case ProgressInProgress:
		return ProgressInProgress, nil
	case ProgressCompleted:
		return ProgressCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// StudentProgress tracks one (student, course, level) triple
type StudentProgress struct {
	ID             int64          `json:"progressId"`
	StudentID      int64          `json:"studentId"`
	CourseID       int64          `json:"courseId"`
	LevelID        int64          `json:"levelId"`
	Status         ProgressStatus `json:"progressStatus"`
	CompletionDate *time.Time     `json:"completionDate,omitempty"`
	Remarks        string         `json:"remarks"`
}

// NewStudentProgress returns an unsaved not_started row
func NewStudentProgress(studentID, courseID, levelID int64) *StudentProgress {
	return &StudentProgress{
		StudentID: studentID,
		CourseID:  courseID,
		LevelID:   levelID,
		Status:    ProgressNotStarted,
	}
}

// TransitionTo moves the row to status. The completion date is stamped when
// entering completed and cleared when leaving it; re-completing keeps the
// original date.
func (p *StudentProgress) TransitionTo(status ProgressStatus, today time.Time) {
	if status != ProgressCompleted {
		p.CompletionDate = nil
	} else if p.Status != ProgressCompleted || p.CompletionDate == nil {
		d := truncateToDate(today)
		p.CompletionDate = &d
	}
	p.Status = status
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
