package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTest() *Test {
	return &Test{
		Title:            "Go Basics",
		CourseTitle:      "Intro to Go",
		TimeLimitMinutes: 30,
		PassingScore:     50,
		Questions: []Question{
			{ID: "q1", Prompt: "Pick A", Options: []string{"A", "B"}, CorrectAnswer: "A"},
			{ID: "q2", Prompt: "Pick B", Options: []string{"A", "B"}, CorrectAnswer: "B"},
		},
	}
}

func TestTestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Test)
		wantErr string
	}{
		{"valid", func(*Test) {}, ""},
		{"missing title", func(tt *Test) { tt.Title = "" }, "title is required"},
		{"zero time limit", func(tt *Test) { tt.TimeLimitMinutes = 0 }, "time limit"},
		{"negative passing score", func(tt *Test) { tt.PassingScore = -1 }, "passing score"},
		{"passing score above 100", func(tt *Test) { tt.PassingScore = 101 }, "passing score"},
		{"zero questions", func(tt *Test) { tt.Questions = nil }, "at least one question"},
		{"question without id", func(tt *Test) { tt.Questions[0].ID = "" }, "id is required"},
		{"duplicate question id", func(tt *Test) { tt.Questions[1].ID = "q1" }, "duplicate id"},
		{"question without prompt", func(tt *Test) { tt.Questions[0].Prompt = "" }, "prompt is required"},
		{"single option", func(tt *Test) { tt.Questions[0].Options = []string{"A"} }, "at least 2 options"},
		{"correct answer not an option", func(tt *Test) { tt.Questions[0].CorrectAnswer = "C" }, "must match one of the provided options"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := validTest()
			tc.mutate(tt)
			err := tt.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTestSanitized(t *testing.T) {
	tt := validTest()
	clean := tt.Sanitized()

	for _, q := range clean.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}
	// The original must be untouched.
	assert.Equal(t, "A", tt.Questions[0].CorrectAnswer)

	// Nothing resembling an answer key may survive serialization.
	payload, err := json.Marshal(clean)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(payload), "correct_answer"))
}

func TestTestAnswerKey(t *testing.T) {
	tt := validTest()
	key := tt.AnswerKey()

	assert.Equal(t, map[string]string{"q1": "A", "q2": "B"}, key)
}
