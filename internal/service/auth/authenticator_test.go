package auth

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingJWTService is a JWTService fake that records how many times
// ValidateToken runs, so tests can observe whether the cache short-circuited
// cryptographic verification.
type countingJWTService struct {
	validateCalls atomic.Int64
	claims        *Claims
	err           error
}

func (s *countingJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "token-for-" + userID.String(), nil
}

func (s *countingJWTService) ValidateToken(_ context.Context, _ string) (*Claims, error) {
	s.validateCalls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func TestAuthenticateMissingToken(t *testing.T) {
	t.Parallel()

	jwtSvc := &countingJWTService{claims: &Claims{UserID: uuid.New()}}
	authn := NewAuthenticator(NewTokenCache(10, time.Minute), jwtSvc, nil)

	got, err := authn.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, uuid.Nil, got)
	assert.EqualValues(t, 0, jwtSvc.validateCalls.Load(), "empty bearer must not reach the verifier")
}

func TestAuthenticateCacheHitSkipsVerification(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	jwtSvc := &countingJWTService{claims: &Claims{UserID: userID}}
	authn := NewAuthenticator(NewTokenCache(10, time.Minute), jwtSvc, nil)

	// First call misses the cache and verifies.
	got, err := authn.Authenticate(context.Background(), "bearer-token")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.EqualValues(t, 1, jwtSvc.validateCalls.Load())

	// Second call with the same bearer string hits the cache.
	got, err = authn.Authenticate(context.Background(), "bearer-token")
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.EqualValues(t, 1, jwtSvc.validateCalls.Load(),
		"cache hit must not invoke the verifier again")
}

func TestAuthenticateExpiredCacheEntryForcesReverification(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	jwtSvc := &countingJWTService{claims: &Claims{UserID: userID}}
	ttl := 50 * time.Millisecond
	authn := NewAuthenticator(NewTokenCache(10, ttl), jwtSvc, nil)

	_, err := authn.Authenticate(context.Background(), "bearer-token")
	require.NoError(t, err)
	require.EqualValues(t, 1, jwtSvc.validateCalls.Load())

	time.Sleep(3 * ttl)

	_, err = authn.Authenticate(context.Background(), "bearer-token")
	require.NoError(t, err)
	assert.EqualValues(t, 2, jwtSvc.validateCalls.Load(),
		"a lookup past the TTL must re-verify")
}

func TestAuthenticateVerificationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		svc     *countingJWTService
		wantErr error
	}{
		{
			name:    "invalid token",
			svc:     &countingJWTService{err: ErrInvalidToken},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired token",
			svc:     &countingJWTService{err: ErrExpiredToken},
			wantErr: ErrExpiredToken,
		},
		{
			name:    "valid token without user claim",
			svc:     &countingJWTService{claims: &Claims{UserID: uuid.Nil}},
			wantErr: ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			authn := NewAuthenticator(NewTokenCache(10, time.Minute), tt.svc, nil)

			got, err := authn.Authenticate(context.Background(), "some-token")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, uuid.Nil, got)
		})
	}
}

func TestAuthenticateEvictsStaleEntryOnFailure(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cache := NewTokenCache(10, time.Minute)
	jwtSvc := &countingJWTService{claims: &Claims{UserID: userID}}
	authn := NewAuthenticator(cache, jwtSvc, nil)

	// Populate the cache, then break verification and clear the cache entry
	// by hand to simulate a token that ages out between requests.
	_, err := authn.Authenticate(context.Background(), "bearer-token")
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	cache.Remove("bearer-token")
	jwtSvc.err = ErrExpiredToken

	_, err = authn.Authenticate(context.Background(), "bearer-token")
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Equal(t, 0, cache.Len(), "failed verification must leave no cache entry behind")
}
