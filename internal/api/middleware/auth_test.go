package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskward-app/taskward-api/internal/config"
	"github.com/taskward-app/taskward-api/internal/service/auth"
)

const middlewareTestSecret = "test-jwt-secret-thirty-two-chars!!"

func newTestAuthMiddleware(t *testing.T) (*AuthMiddleware, auth.JWTService) {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            middlewareTestSecret,
		TokenLifetimeDays:    7,
		TokenCacheSize:       100,
		TokenCacheTTLSeconds: 300,
	})
	require.NoError(t, err)

	cache := auth.NewTokenCache(100, 300*time.Second)
	authenticator := auth.NewAuthenticator(cache, jwtService, nil)
	return NewAuthMiddleware(authenticator), jwtService
}

// protectedEcho records the user ID placed in the context by the middleware.
func protectedEcho(gotUserID *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetUserID(r); ok {
			*gotUserID = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("passes a valid token and exposes the user ID", func(t *testing.T) {
		t.Parallel()

		mw, jwtService := newTestAuthMiddleware(t)
		userID := uuid.New()
		token, err := jwtService.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		var gotUserID uuid.UUID
		handler := mw.Authenticate(protectedEcho(&gotUserID))

		req := httptest.NewRequest(http.MethodGet, "/tasks/user", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("rejects a missing Authorization header", func(t *testing.T) {
		t.Parallel()

		mw, _ := newTestAuthMiddleware(t)
		handler := mw.Authenticate(protectedEcho(new(uuid.UUID)))

		req := httptest.NewRequest(http.MethodGet, "/tasks/user", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a header without the Bearer scheme", func(t *testing.T) {
		t.Parallel()

		mw, jwtService := newTestAuthMiddleware(t)
		token, err := jwtService.GenerateToken(context.Background(), uuid.New())
		require.NoError(t, err)

		handler := mw.Authenticate(protectedEcho(new(uuid.UUID)))

		req := httptest.NewRequest(http.MethodGet, "/tasks/user", nil)
		req.Header.Set("Authorization", "Basic "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		t.Parallel()

		mw, _ := newTestAuthMiddleware(t)
		handler := mw.Authenticate(protectedEcho(new(uuid.UUID)))

		req := httptest.NewRequest(http.MethodGet, "/tasks/user", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		t.Parallel()

		mw, _ := newTestAuthMiddleware(t)

		otherService, err := auth.NewJWTService(config.AuthConfig{
			JWTSecret:            "another-secret-that-is-32-bytes!",
			TokenLifetimeDays:    7,
			TokenCacheSize:       100,
			TokenCacheTTLSeconds: 300,
		})
		require.NoError(t, err)

		token, err := otherService.GenerateToken(context.Background(), uuid.New())
		require.NoError(t, err)

		handler := mw.Authenticate(protectedEcho(new(uuid.UUID)))

		req := httptest.NewRequest(http.MethodGet, "/tasks/user", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
