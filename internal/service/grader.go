package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
)

// Grader strategies
const (
	GraderManual    = "manual"
	GraderAnswerKey = "answer_key"
)

// Grader decides the initial grade of a new submission. A grader that
// cannot grade leaves the submission in its submitted state.
type Grader interface {
	Grade(ctx context.Context, activity *domain.LevelActivity, sub *domain.LevelActivitySubmission) error
}

// NewGrader returns the grader named by kind
func NewGrader(kind string) (Grader, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", GraderManual:
		return ManualGrader{}, nil
	case GraderAnswerKey:
		return NewAnswerKeyGrader(), nil
	}
	return nil, fmt.Errorf("unknown grader %q", kind)
}

// ManualGrader leaves every submission for a teacher to grade
type ManualGrader struct{}

// Grade is a no-op
func (ManualGrader) Grade(ctx context.Context, activity *domain.LevelActivity, sub *domain.LevelActivitySubmission) error {
	return nil
}

// AnswerKeyGrader scores quiz answers against the answer key embedded in the
// activity content, e.g. {"answerKey": {"q1": "b", "q2": "4"}}. Answers are
// a JSON object of question id to answer.
type AnswerKeyGrader struct {
	now func() time.Time
}

// NewAnswerKeyGrader creates a new AnswerKeyGrader
func NewAnswerKeyGrader() *AnswerKeyGrader {
	return &AnswerKeyGrader{now: time.Now}
}

type quizContent struct {
	AnswerKey map[string]interface{} `json:"answerKey"`
}

// Grade scores quiz submissions; other activity types and quizzes without a
// usable key are left ungraded
func (g *AnswerKeyGrader) Grade(ctx context.Context, activity *domain.LevelActivity, sub *domain.LevelActivitySubmission) error {
	if activity.Type != domain.ActivityQuiz {
		return nil
	}

	var content quizContent
	if err := json.Unmarshal([]byte(activity.Content), &content); err != nil || len(content.AnswerKey) == 0 {
		return nil
	}

	answers := map[string]interface{}{}
	if strings.TrimSpace(sub.Answers) != "" {
		if err := json.Unmarshal([]byte(sub.Answers), &answers); err != nil {
			return fmt.Errorf("%w: answers must be a JSON object", domain.ErrValidation)
		}
	}

	score := 0
	for question, want := range content.AnswerKey {
		got, ok := answers[question]
		if ok && normalizeAnswer(got) == normalizeAnswer(want) {
			score++
		}
	}

	sub.ApplyScore(score, len(content.AnswerKey), activity, g.now())
	return nil
}

func normalizeAnswer(v interface{}) string {
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
}
