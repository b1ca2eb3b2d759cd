package model

import "time"

// TestResult is the immutable record of one user's completed attempt
// at one test. At most one exists per (user, test) pair, enforced by a
// unique constraint in the persistence layer.
type TestResult struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TestID    string    `json:"test_id"`
	Score     int       `json:"score"` // 0-100
	Passed    bool      `json:"passed"`
	Submitted bool      `json:"submitted"`
	CreatedAt time.Time `json:"created_at"`
}
