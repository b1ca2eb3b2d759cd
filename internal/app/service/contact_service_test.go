package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/common"
	"learnhub/internal/domain/model"
)

func newContactFixture(t *testing.T) (*ContactService, *fakeMailer) {
	t.Helper()
	users := newFakeUserRepo()
	require.NoError(t, users.Create(context.Background(), &model.User{
		ID:            "user-1",
		Name:          "Alice",
		Email:         "alice@example.com",
		Role:          model.RoleUser,
		EmailVerified: true,
	}))
	mail := &fakeMailer{}
	cfg := testConfig()
	cfg.ContactInbox = "owner@learnhub.local"
	cfg.FromEmail = "noreply@learnhub.local"
	return NewContactService(users, mail, cfg, testLogger()), mail
}

func TestContactRelay(t *testing.T) {
	svc, mail := newContactFixture(t)

	resp, err := svc.Relay(context.Background(), "user-1", ContactRequest{
		Name:    "Alice W.",
		Message: "The score on my last test looks off.",
	})
	require.NoError(t, err)
	assert.True(t, resp.Sent)
	assert.Empty(t, resp.Note)

	msg, ok := mail.lastMessage()
	require.True(t, ok)
	assert.Equal(t, "owner@learnhub.local", msg.To)
	// Replies must go to the authenticated account's address, whatever
	// the request body claims.
	assert.Equal(t, "alice@example.com", msg.ReplyTo)
	assert.Contains(t, msg.Subject, "Alice W.")
	assert.Contains(t, msg.TextBody, "alice@example.com")
	assert.Contains(t, msg.TextBody, "The score on my last test looks off.")
}

func TestContactRelay_NameDefaultsToAccount(t *testing.T) {
	svc, mail := newContactFixture(t)

	_, err := svc.Relay(context.Background(), "user-1", ContactRequest{
		Message: "Just saying hello.",
	})
	require.NoError(t, err)

	msg, ok := mail.lastMessage()
	require.True(t, ok)
	assert.Contains(t, msg.Subject, "Alice")
}

func TestContactRelay_MessageTooShort(t *testing.T) {
	svc, mail := newContactFixture(t)

	// Whitespace padding does not count toward the minimum length.
	_, err := svc.Relay(context.Background(), "user-1", ContactRequest{Message: "  hi  "})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, ok := mail.lastMessage()
	assert.False(t, ok, "no email may be dispatched for a rejected message")
}

// A delivery failure is reported to the client as sent=false, not as a
// request error.
func TestContactRelay_MailFailure(t *testing.T) {
	svc, mail := newContactFixture(t)
	mail.fail = true

	resp, err := svc.Relay(context.Background(), "user-1", ContactRequest{
		Message: "Is anyone reading these?",
	})
	require.NoError(t, err)
	assert.False(t, resp.Sent)
	assert.Equal(t, "email_not_sent", resp.Note)
}

func TestContactRelay_UnknownSender(t *testing.T) {
	svc, _ := newContactFixture(t)

	_, err := svc.Relay(context.Background(), "ghost", ContactRequest{
		Message: "A perfectly valid message.",
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
