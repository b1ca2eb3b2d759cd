package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"
)

type ResultRepository interface {
	// Insert appends a result; the UNIQUE (user_id, test_id) constraint
	// makes a second insert for the same pair fail, which is translated
	// to ErrAlreadySubmitted. This is what closes the concurrent
	// double-submit race.
	Insert(ctx context.Context, result *model.TestResult) error
	Find(ctx context.Context, userID, testID string) (*model.TestResult, error)
	ListByUser(ctx context.Context, userID string) ([]model.TestResult, error)
}

type pgResultRepository struct {
	db *sql.DB
}

func NewPgResultRepository(db *sql.DB) ResultRepository {
	return &pgResultRepository{db: db}
}

func (r *pgResultRepository) Insert(ctx context.Context, result *model.TestResult) error {
	query := `INSERT INTO test_results (id, user_id, test_id, score, passed, submitted)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		result.ID, result.UserID, result.TestID, result.Score, result.Passed, result.Submitted)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("result for this test already recorded: %w", common.ErrAlreadySubmitted)
		}
		return fmt.Errorf("pgResultRepository.Insert: %w", err)
	}
	return nil
}

func (r *pgResultRepository) Find(ctx context.Context, userID, testID string) (*model.TestResult, error) {
	query := `SELECT id, user_id, test_id, score, passed, submitted, created_at
	          FROM test_results WHERE user_id = $1 AND test_id = $2`
	result := &model.TestResult{}
	err := r.db.QueryRowContext(ctx, query, userID, testID).Scan(
		&result.ID, &result.UserID, &result.TestID, &result.Score, &result.Passed, &result.Submitted, &result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgResultRepository.Find: %w", err)
	}
	return result, nil
}

func (r *pgResultRepository) ListByUser(ctx context.Context, userID string) ([]model.TestResult, error) {
	query := `SELECT id, user_id, test_id, score, passed, submitted, created_at
	          FROM test_results WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgResultRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		var result model.TestResult
		if err := rows.Scan(&result.ID, &result.UserID, &result.TestID, &result.Score, &result.Passed, &result.Submitted, &result.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgResultRepository.ListByUser scan: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
