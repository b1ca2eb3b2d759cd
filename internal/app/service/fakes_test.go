package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"
	"learnhub/internal/platform/mailer"
)

// In-memory fakes standing in for the Postgres repositories and the
// SMTP mailer. The result fake enforces the same (user, test)
// uniqueness the database constraint does, so the concurrency tests
// exercise the real contract.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]model.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) UpdateDetails(_ context.Context, id, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Name, u.Email = name, email
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) SetEmailVerifyToken(_ context.Context, id, tokenHash string, expire time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.EmailVerifyTokenHash, u.EmailVerifyExpire = &tokenHash, &expire
	return nil
}

func (r *fakeUserRepo) ClearEmailVerifyToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.EmailVerifyTokenHash, u.EmailVerifyExpire = nil, nil
	}
	return nil
}

func (r *fakeUserRepo) FindByVerifyTokenHash(_ context.Context, tokenHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailVerifyTokenHash != nil && *u.EmailVerifyTokenHash == tokenHash &&
			u.EmailVerifyExpire != nil && u.EmailVerifyExpire.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.EmailVerified = true
	u.EmailVerifyTokenHash, u.EmailVerifyExpire = nil, nil
	return nil
}

func (r *fakeUserRepo) SetResetPasswordToken(_ context.Context, id, tokenHash string, expire time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.ResetPasswordTokenHash, u.ResetPasswordExpire = &tokenHash, &expire
	return nil
}

func (r *fakeUserRepo) ClearResetPasswordToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.ResetPasswordTokenHash, u.ResetPasswordExpire = nil, nil
	}
	return nil
}

func (r *fakeUserRepo) FindByResetTokenHash(_ context.Context, tokenHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetPasswordTokenHash != nil && *u.ResetPasswordTokenHash == tokenHash &&
			u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	u.ResetPasswordTokenHash, u.ResetPasswordExpire = nil, nil
	return nil
}

// get returns the stored user without copy, for assertions.
func (r *fakeUserRepo) get(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type fakeTestRepo struct {
	mu    sync.Mutex
	tests map[string]*model.Test
}

func newFakeTestRepo(tests ...*model.Test) *fakeTestRepo {
	r := &fakeTestRepo{tests: make(map[string]*model.Test)}
	for _, t := range tests {
		r.tests[t.ID] = t
	}
	return r
}

func (r *fakeTestRepo) CreateTest(_ context.Context, _ *sql.Tx, test *model.Test) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tests[test.ID] = test
	return nil
}

func (r *fakeTestRepo) FindTestByID(_ context.Context, id string) (*model.Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return t, nil
}

func (r *fakeTestRepo) ListTests(_ context.Context) ([]model.Test, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Test
	for _, t := range r.tests {
		out = append(out, *t)
	}
	return out, nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]*model.TestResult // keyed by userID+"/"+testID
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]*model.TestResult)}
}

func (r *fakeResultRepo) Insert(_ context.Context, result *model.TestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := result.UserID + "/" + result.TestID
	if _, exists := r.results[key]; exists {
		return fmt.Errorf("result for this test already recorded: %w", common.ErrAlreadySubmitted)
	}
	cp := *result
	r.results[key] = &cp
	return nil
}

func (r *fakeResultRepo) Find(_ context.Context, userID, testID string) (*model.TestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.results[userID+"/"+testID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *result
	return &cp, nil
}

func (r *fakeResultRepo) ListByUser(_ context.Context, userID string) ([]model.TestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TestResult
	for _, result := range r.results {
		if result.UserID == userID {
			out = append(out, *result)
		}
	}
	return out, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) lastMessage() (mailer.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
