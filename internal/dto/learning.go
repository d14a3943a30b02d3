package dto

import (
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
)

// SubmitActivityRequest represents an activity submission body
type SubmitActivityRequest struct {
	Answers           string `json:"answers"`
	SubmissionContent string `json:"submissionContent"`
	TimeTakenMinutes  *int   `json:"timeTakenMinutes" binding:"omitempty,gte=0"`
}

// GradeSubmissionRequest represents a teacher grading body
type GradeSubmissionRequest struct {
	Score    *int   `json:"score" binding:"required,gte=0"`
	MaxScore int    `json:"maxScore" binding:"required,gt=0,gtefield=Score"`
	Feedback string `json:"feedback"`
}

// UpdateProgressRequest represents a teacher progress update body
type UpdateProgressRequest struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// ActivityResponse represents a level activity
type ActivityResponse struct {
	ActivityID       int64  `json:"activityId"`
	LevelID          int64  `json:"levelId"`
	ActivityType     string `json:"activityType"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Instructions     string `json:"instructions"`
	PassingScore     int    `json:"passingScore"`
	MaxAttempts      int    `json:"maxAttempts"`
	TimeLimitMinutes *int   `json:"timeLimitMinutes,omitempty"`
	IsRequired       bool   `json:"isRequired"`
}

// NewActivityResponse converts a domain activity. Content is withheld since
// it may carry the answer key.
func NewActivityResponse(a *domain.LevelActivity) *ActivityResponse {
	return &ActivityResponse{
		ActivityID:       a.ID,
		LevelID:          a.LevelID,
		ActivityType:     string(a.Type),
		Title:            a.Title,
		Description:      a.Description,
		Instructions:     a.Instructions,
		PassingScore:     a.EffectivePassingScore(),
		MaxAttempts:      a.EffectiveMaxAttempts(),
		TimeLimitMinutes: a.TimeLimitMinutes,
		IsRequired:       a.IsRequired,
	}
}

// LevelContentResponse represents a learning material item of a level
type LevelContentResponse struct {
	ContentID        int64     `json:"contentId"`
	LevelID          int64     `json:"levelId"`
	ContentType      string    `json:"contentType"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Content          string    `json:"content"`
	ContentOrder     int       `json:"contentOrder"`
	IsRequired       bool      `json:"isRequired"`
	EstimatedMinutes *int      `json:"estimatedMinutes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewLevelContentResponse converts a domain content item
func NewLevelContentResponse(c *domain.LevelContent) *LevelContentResponse {
	return &LevelContentResponse{
		ContentID:        c.ID,
		LevelID:          c.LevelID,
		ContentType:      string(c.Type),
		Title:            c.Title,
		Description:      c.Description,
		Content:          c.Content,
		ContentOrder:     c.Order,
		IsRequired:       c.IsRequired,
		EstimatedMinutes: c.EstimatedMinutes,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// SubmissionResponse represents one activity attempt
type SubmissionResponse struct {
	SubmissionID      int64      `json:"submissionId"`
	StudentID         int64      `json:"studentId"`
	ActivityID        int64      `json:"activityId"`
	AttemptNumber     int        `json:"attemptNumber"`
	Answers           string     `json:"answers"`
	SubmissionContent string     `json:"submissionContent"`
	Score             *int       `json:"score"`
	MaxScore          *int       `json:"maxScore"`
	Percentage        *float64   `json:"percentage"`
	Status            string     `json:"status"`
	TimeTakenMinutes  *int       `json:"timeTakenMinutes"`
	Feedback          string     `json:"feedback"`
	SubmittedAt       time.Time  `json:"submittedAt"`
	GradedAt          *time.Time `json:"gradedAt"`
	IsPassed          bool       `json:"isPassed"`
}

// NewSubmissionResponse converts a submission, evaluating pass state against its activity
func NewSubmissionResponse(s *domain.LevelActivitySubmission, activity *domain.LevelActivity) *SubmissionResponse {
	return &SubmissionResponse{
		SubmissionID:      s.ID,
		StudentID:         s.StudentID,
		ActivityID:        s.ActivityID,
		AttemptNumber:     s.AttemptNumber,
		Answers:           s.Answers,
		SubmissionContent: s.SubmissionContent,
		Score:             s.Score,
		MaxScore:          s.MaxScore,
		Percentage:        s.Percentage,
		Status:            string(s.Status),
		TimeTakenMinutes:  s.TimeTakenMinutes,
		Feedback:          s.Feedback,
		SubmittedAt:       s.SubmittedAt,
		GradedAt:          s.GradedAt,
		IsPassed:          s.IsPassed(activity),
	}
}

// ProgressResponse represents a progress row
type ProgressResponse struct {
	ProgressID     int64   `json:"progressId"`
	StudentID      int64   `json:"studentId"`
	CourseID       int64   `json:"courseId"`
	LevelID        int64   `json:"levelId"`
	ProgressStatus string  `json:"progressStatus"`
	CompletionDate *string `json:"completionDate"`
	Remarks        string  `json:"remarks"`
}

// NewProgressResponse converts a progress row; the completion date is rendered as YYYY-MM-DD
func NewProgressResponse(p *domain.StudentProgress) *ProgressResponse {
	resp := &ProgressResponse{
		ProgressID:     p.ID,
		StudentID:      p.StudentID,
		CourseID:       p.CourseID,
		LevelID:        p.LevelID,
		ProgressStatus: string(p.Status),
		Remarks:        p.Remarks,
	}
	if p.CompletionDate != nil {
		d := p.CompletionDate.Format(time.DateOnly)
		resp.CompletionDate = &d
	}
	return resp
}

// NewProgressResponses converts a list of progress rows
func NewProgressResponses(rows []*domain.StudentProgress) []*ProgressResponse {
	out := make([]*ProgressResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, NewProgressResponse(p))
	}
	return out
}
