package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/api/middleware"
	"learnhub/internal/common/security"
	"learnhub/internal/domain/model"
)

// protectedStack mirrors the router's auth chain: jwtauth verification
// with the header and session-cookie finders, then the Authenticator.
func protectedStack(tokens *security.TokenIssuer, next http.Handler) http.Handler {
	verify := jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader, security.TokenFromSessionCookie)
	return verify(middleware.Authenticator(next))
}

func TestAuthenticatorTokenSources(t *testing.T) {
	tokens := security.NewTokenIssuer([]byte("test-secret"), time.Hour)
	token, err := tokens.IssueSessionToken("user-1", string(model.RoleUser))
	require.NoError(t, err)

	var gotUserID string
	var gotRole model.Role
	handler := protectedStack(tokens, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = middleware.GetUserIDFromContext(r.Context())
		gotRole, _ = middleware.GetUserRoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", gotUserID)
		assert.Equal(t, model.RoleUser, gotRole)
	})

	// Browsers hold the session in the HTTP-only "token" cookie set by
	// sendTokenResponse; it must open protected routes on its own.
	t.Run("session cookie", func(t *testing.T) {
		gotUserID = ""
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", gotUserID)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-token"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := security.NewTokenIssuer([]byte("other-secret"), time.Hour)
		forged, err := other.IssueSessionToken("user-1", string(model.RoleAdmin))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	tokens := security.NewTokenIssuer([]byte("test-secret"), time.Hour)

	newHandler := func() http.Handler {
		guarded := middleware.RequireRole(model.Role.CanManageCatalog)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
		return protectedStack(tokens, guarded)
	}

	tests := []struct {
		role model.Role
		want int
	}{
		{model.RoleUser, http.StatusForbidden},
		{model.RolePublisher, http.StatusOK},
		{model.RoleAdmin, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			token, err := tokens.IssueSessionToken("user-1", string(tc.role))
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/tests", nil)
			req.AddCookie(&http.Cookie{Name: "token", Value: token})
			rec := httptest.NewRecorder()
			newHandler().ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
