package domain

import (
	"fmt"
	"time"
)

// ContentType represents the medium of a level content item
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentVideo    ContentType = "video"
	ContentImage    ContentType = "image"
	ContentDocument ContentType = "document"
	ContentQuiz     ContentType = "quiz"
)

// ParseContentType parses a content type case-insensitively
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(normalizeEnum(s)) {
	case ContentText:
		return ContentText, nil
	case ContentVideo:
		return ContentVideo, nil
	case ContentImage:
		return ContentImage, nil
	case ContentDocument:
		return ContentDocument, nil
	case ContentQuiz:
		return ContentQuiz, nil
	}
	return "", fmt.Errorf("%w: unknown content type %q", ErrValidation, s)
}

// LevelContent is a learning material item of a course level.
// Content holds inline text or a file path depending on Type.
type LevelContent struct {
	ID               int64       `json:"contentId"`
	LevelID          int64       `json:"levelId"`
	Type             ContentType `json:"contentType"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Content          string      `json:"content"`
	Order            int         `json:"contentOrder"`
	IsRequired       bool        `json:"isRequired"`
	EstimatedMinutes *int        `json:"estimatedMinutes,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}
