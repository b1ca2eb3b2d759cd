package model

import (
	"fmt"
	"time"

	"learnhub/internal/common"
)

type Question struct {
	ID            string   `json:"id"` // unique within its test
	Prompt        string   `json:"question"`
	Options       []string `json:"options"` // order-preserving, >= 2
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

type Test struct {
	ID               string     `json:"id"`
	CourseID         *string    `json:"course_id,omitempty"`
	CourseTitle      string     `json:"course_title"`
	Title            string     `json:"title"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	PassingScore     int        `json:"passing_score"` // 0-100
	Questions        []Question `json:"questions,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Validate enforces the catalog write-time invariants. Zero-question
// tests are rejected here, so scoring never divides by zero.
func (t *Test) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("test title is required: %w", common.ErrValidation)
	}
	if t.TimeLimitMinutes <= 0 {
		return fmt.Errorf("time limit must be positive: %w", common.ErrValidation)
	}
	if t.PassingScore < 0 || t.PassingScore > 100 {
		return fmt.Errorf("passing score must be between 0 and 100: %w", common.ErrValidation)
	}
	if len(t.Questions) == 0 {
		return fmt.Errorf("a test must have at least one question: %w", common.ErrValidation)
	}

	seen := make(map[string]bool, len(t.Questions))
	for i, q := range t.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: id is required: %w", i, common.ErrValidation)
		}
		if seen[q.ID] {
			return fmt.Errorf("question %q: duplicate id within test: %w", q.ID, common.ErrValidation)
		}
		seen[q.ID] = true
		if q.Prompt == "" {
			return fmt.Errorf("question %q: prompt is required: %w", q.ID, common.ErrValidation)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %q: must have at least 2 options: %w", q.ID, common.ErrValidation)
		}
		if !contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("question %q: correct answer must match one of the provided options: %w", q.ID, common.ErrValidation)
		}
	}
	return nil
}

// Sanitized returns a copy with every correct answer stripped, for
// pre-submission views.
func (t *Test) Sanitized() *Test {
	out := *t
	out.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		q.CorrectAnswer = ""
		out.Questions[i] = q
	}
	return &out
}

// AnswerKey maps every question id to its correct answer. Revealed to
// the caller only after a successful submission.
func (t *Test) AnswerKey() map[string]string {
	key := make(map[string]string, len(t.Questions))
	for _, q := range t.Questions {
		key[q.ID] = q.CorrectAnswer
	}
	return key
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
