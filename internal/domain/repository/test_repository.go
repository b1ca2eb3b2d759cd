package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"

	"github.com/google/uuid"
)

type TestRepository interface {
	CreateTest(ctx context.Context, tx *sql.Tx, test *model.Test) error
	FindTestByID(ctx context.Context, id string) (*model.Test, error)
	ListTests(ctx context.Context) ([]model.Test, error)
}

type pgTestRepository struct {
	db *sql.DB
}

func NewPgTestRepository(db *sql.DB) TestRepository {
	return &pgTestRepository{db: db}
}

func (r *pgTestRepository) CreateTest(ctx context.Context, tx *sql.Tx, t *model.Test) error {
	query := `INSERT INTO tests (id, course_id, course_title, title, time_limit_minutes, passing_score)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, query, t.ID, t.CourseID, t.CourseTitle, t.Title, t.TimeLimitMinutes, t.PassingScore); err != nil {
		return fmt.Errorf("pgTestRepository.CreateTest: %w", err)
	}

	qQuery := `INSERT INTO questions (id, test_id, question_id, prompt, options_json, correct_answer, sort_order)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i, q := range t.Questions {
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("pgTestRepository.CreateTest marshal options: %w", err)
		}
		if _, err := tx.ExecContext(ctx, qQuery, uuid.NewString(), t.ID, q.ID, q.Prompt, string(optionsJSON), q.CorrectAnswer, i); err != nil {
			return fmt.Errorf("pgTestRepository.CreateTest question %q: %w", q.ID, err)
		}
	}
	return nil
}

func (r *pgTestRepository) FindTestByID(ctx context.Context, id string) (*model.Test, error) {
	query := `SELECT id, course_id, course_title, title, time_limit_minutes, passing_score, created_at
	          FROM tests WHERE id = $1`
	t := &model.Test{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.CourseID, &t.CourseTitle, &t.Title, &t.TimeLimitMinutes, &t.PassingScore, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTestRepository.FindTestByID: %w", err)
	}

	questions, err := r.questionsForTest(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Questions = questions
	return t, nil
}

func (r *pgTestRepository) questionsForTest(ctx context.Context, testID string) ([]model.Question, error) {
	query := `SELECT question_id, prompt, options_json, correct_answer
	          FROM questions WHERE test_id = $1 ORDER BY sort_order`
	rows, err := r.db.QueryContext(ctx, query, testID)
	if err != nil {
		return nil, fmt.Errorf("pgTestRepository.questionsForTest: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var optionsJSON string
		if err := rows.Scan(&q.ID, &q.Prompt, &optionsJSON, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("pgTestRepository.questionsForTest scan: %w", err)
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return nil, fmt.Errorf("pgTestRepository.questionsForTest unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListTests returns test summaries without their questions.
func (r *pgTestRepository) ListTests(ctx context.Context) ([]model.Test, error) {
	query := `SELECT id, course_id, course_title, title, time_limit_minutes, passing_score, created_at
	          FROM tests ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgTestRepository.ListTests: %w", err)
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.CourseID, &t.CourseTitle, &t.Title, &t.TimeLimitMinutes, &t.PassingScore, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgTestRepository.ListTests scan: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}
