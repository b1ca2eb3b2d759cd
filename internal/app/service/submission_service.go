package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"
	"learnhub/internal/domain/repository"
)

type SubmissionService struct {
	resultRepo repository.ResultRepository
	testRepo   repository.TestRepository
	userRepo   repository.UserRepository
	logger     *slog.Logger
}

func NewSubmissionService(
	resultRepo repository.ResultRepository,
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		resultRepo: resultRepo,
		testRepo:   testRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

type Answer struct {
	QuestionID     string `json:"question_id"`
	SelectedOption string `json:"selected_option"`
}

type SubmitRequest struct {
	Answers []Answer `json:"answers"`
}

type SubmitResponse struct {
	Score          int               `json:"score"`
	Passed         bool              `json:"passed"`
	CorrectAnswers map[string]string `json:"correct_answers"`
}

// Submit scores the answers against the test and records the result.
// Each user can submit a given test exactly once; the unique
// (user_id, test_id) constraint behind ResultRepository.Insert decides
// the winner when two submissions race.
func (s *SubmissionService) Submit(ctx context.Context, userID, testID string, req SubmitRequest) (*SubmitResponse, error) {
	test, err := s.testRepo.FindTestByID(ctx, testID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("test not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find test: %w", err)
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Friendly pre-check; the insert below is what actually enforces
	// submit-once under concurrency.
	if _, err := s.resultRepo.Find(ctx, userID, testID); err == nil {
		return nil, common.ErrAlreadySubmitted
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}

	score := scoreTest(test, req.Answers)
	passed := score >= test.PassingScore

	result := &model.TestResult{
		ID:        uuid.NewString(),
		UserID:    userID,
		TestID:    testID,
		Score:     score,
		Passed:    passed,
		Submitted: true,
	}
	if err := s.resultRepo.Insert(ctx, result); err != nil {
		return nil, err
	}

	s.logger.Info("test submitted", "user_id", userID, "test_id", testID, "score", score, "passed", passed)

	return &SubmitResponse{
		Score:          score,
		Passed:         passed,
		CorrectAnswers: test.AnswerKey(), // intentional post-submission reveal
	}, nil
}

// scoreTest counts exact matches between the selected option and the
// correct answer. A missing or unmatched answer counts as incorrect;
// when the payload repeats a question id, the last answer wins.
// The percentage is rounded half-up: floor(100*correct/total + 0.5).
func scoreTest(test *model.Test, answers []Answer) int {
	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedOption
	}

	correct := 0
	for _, q := range test.Questions {
		if selected[q.ID] == q.CorrectAnswer {
			correct++
		}
	}

	total := len(test.Questions) // never zero: rejected at catalog write time
	return (200*correct + total) / (2 * total)
}

type TestView struct {
	Test             *model.Test `json:"test"`
	AlreadySubmitted bool        `json:"already_submitted"`
	UserScore        *int        `json:"user_score,omitempty"`
	UserPassed       *bool       `json:"user_passed,omitempty"`
}

// GetTestForUser returns the test stripped of every correct answer,
// together with the caller's submission status for it.
func (s *SubmissionService) GetTestForUser(ctx context.Context, userID, testID string) (*TestView, error) {
	test, err := s.testRepo.FindTestByID(ctx, testID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("test not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find test: %w", err)
	}

	view := &TestView{Test: test.Sanitized()}

	result, err := s.resultRepo.Find(ctx, userID, testID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("failed to find result: %w", err)
	}

	view.AlreadySubmitted = true
	view.UserScore = &result.Score
	view.UserPassed = &result.Passed
	return view, nil
}

func (s *SubmissionService) ListMyResults(ctx context.Context, userID string) ([]model.TestResult, error) {
	return s.resultRepo.ListByUser(ctx, userID)
}
