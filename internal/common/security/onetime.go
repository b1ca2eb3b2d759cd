package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// oneTimeTokenBytes is the entropy of verification and reset tokens.
const oneTimeTokenBytes = 20

// OneTimeToken is a single-use secret. The plaintext is emailed to the
// user exactly once; only the hash and expiry are ever persisted.
type OneTimeToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// IssueOneTimeToken generates a cryptographically random token valid
// for the given TTL.
func IssueOneTimeToken(ttl time.Duration) (OneTimeToken, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return OneTimeToken{}, fmt.Errorf("failed to generate random token: %w", err)
	}
	plaintext := hex.EncodeToString(buf)
	return OneTimeToken{
		Plaintext: plaintext,
		Hash:      MatchOneTimeToken(plaintext),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// MatchOneTimeToken is the one-way transform applied to a presented
// plaintext token before looking up its persisted hash.
func MatchOneTimeToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
