package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueOneTimeToken(t *testing.T) {
	token, err := IssueOneTimeToken(time.Hour)
	require.NoError(t, err)

	assert.Len(t, token.Plaintext, oneTimeTokenBytes*2) // hex encoded
	assert.NotEqual(t, token.Plaintext, token.Hash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)
}

func TestMatchOneTimeToken_RoundTrip(t *testing.T) {
	token, err := IssueOneTimeToken(time.Hour)
	require.NoError(t, err)

	assert.Equal(t, token.Hash, MatchOneTimeToken(token.Plaintext))
	assert.NotEqual(t, token.Hash, MatchOneTimeToken(token.Plaintext+"x"))
	assert.NotEqual(t, token.Hash, MatchOneTimeToken(""))
}

func TestIssueOneTimeToken_Unique(t *testing.T) {
	a, err := IssueOneTimeToken(time.Hour)
	require.NoError(t, err)
	b, err := IssueOneTimeToken(time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a.Plaintext, b.Plaintext)
	assert.NotEqual(t, a.Hash, b.Hash)
}
