package security

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer creates and verifies signed session tokens. It wraps a
// jwtauth instance so the same key material drives both token issuance
// and the router's verification middleware.
type TokenIssuer struct {
	auth *jwtauth.JWTAuth
	exp  time.Duration
}

func NewTokenIssuer(key []byte, exp time.Duration) *TokenIssuer {
	return &TokenIssuer{
		auth: jwtauth.New("HS256", key, nil),
		exp:  exp,
	}
}

// JWTAuth exposes the underlying verifier for jwtauth middleware.
func (t *TokenIssuer) JWTAuth() *jwtauth.JWTAuth {
	return t.auth
}

// SessionTTL is the lifetime of issued session tokens; the session
// cookie expiry must match it.
func (t *TokenIssuer) SessionTTL() time.Duration {
	return t.exp
}

func (t *TokenIssuer) IssueSessionToken(userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(t.exp).Unix(),
	}
	_, tokenString, err := t.auth.Encode(claims)
	return tokenString, err
}

// TokenFromSessionCookie is a jwtauth token finder for the "token"
// cookie set by sendTokenResponse. jwtauth's own cookie finder looks
// for a cookie named "jwt", which is not what browsers hold here.
func TokenFromSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie("token")
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Helper functions to extract claims, used by the auth middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}
