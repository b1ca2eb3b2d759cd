package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, int, error)
	UpdateDetails(ctx context.Context, id, name, email string) error
	Delete(ctx context.Context, id string) error

	SetEmailVerifyToken(ctx context.Context, id, tokenHash string, expire time.Time) error
	ClearEmailVerifyToken(ctx context.Context, id string) error
	FindByVerifyTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	MarkEmailVerified(ctx context.Context, id string) error

	SetResetPasswordToken(ctx context.Context, id, tokenHash string, expire time.Time) error
	ClearResetPasswordToken(ctx context.Context, id string) error
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error)

	UpdatePassword(ctx context.Context, id, hashedPassword string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, hashed_password, role, email_verified,
	email_verify_token_hash, email_verify_expire,
	reset_password_token_hash, reset_password_expire,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.EmailVerified,
		&user.EmailVerifyTokenHash, &user.EmailVerifyExpire,
		&user.ResetPasswordTokenHash, &user.ResetPasswordExpire,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, hashed_password, role, email_verified)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.EmailVerified)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *pgUserRepository) UpdateDetails(ctx context.Context, id, name, email string) error {
	query := `UPDATE users SET name = $1, email = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, name, email, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.UpdateDetails: %w", err)
	}
	return requireRow(res)
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	return requireRow(res)
}

func (r *pgUserRepository) SetEmailVerifyToken(ctx context.Context, id, tokenHash string, expire time.Time) error {
	query := `UPDATE users SET email_verify_token_hash = $1, email_verify_expire = $2,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, tokenHash, expire, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetEmailVerifyToken: %w", err)
	}
	return requireRow(res)
}

func (r *pgUserRepository) ClearEmailVerifyToken(ctx context.Context, id string) error {
	query := `UPDATE users SET email_verify_token_hash = NULL, email_verify_expire = NULL,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgUserRepository.ClearEmailVerifyToken: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByVerifyTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE email_verify_token_hash = $1 AND email_verify_expire > NOW()`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByVerifyTokenHash: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	query := `UPDATE users SET email_verified = TRUE,
	          email_verify_token_hash = NULL, email_verify_expire = NULL,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.MarkEmailVerified: %w", err)
	}
	return requireRow(res)
}

func (r *pgUserRepository) SetResetPasswordToken(ctx context.Context, id, tokenHash string, expire time.Time) error {
	query := `UPDATE users SET reset_password_token_hash = $1, reset_password_expire = $2,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, tokenHash, expire, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetResetPasswordToken: %w", err)
	}
	return requireRow(res)
}

func (r *pgUserRepository) ClearResetPasswordToken(ctx context.Context, id string) error {
	query := `UPDATE users SET reset_password_token_hash = NULL, reset_password_expire = NULL,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgUserRepository.ClearResetPasswordToken: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE reset_password_token_hash = $1 AND reset_password_expire > NOW()`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByResetTokenHash: %w", err)
	}
	return user, err
}

// UpdatePassword replaces the stored hash and clears any outstanding
// reset token in the same statement.
func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1,
	          reset_password_token_hash = NULL, reset_password_expire = NULL,
	          updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
