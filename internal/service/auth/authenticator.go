package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
)

// Authenticator resolves a bearer token to a user ID on every protected
// request, consulting the token cache before falling back to cryptographic
// verification.
//
// Caching verified tokens trades a bounded staleness window (a revoked but
// unexpired token keeps working until its cache entry ages out or is
// evicted) for skipping the signature check on the hot path. The TTL caps
// that window; reducing it tightens revocation at the cost of more
// verification work.
type Authenticator struct {
	cache      *TokenCache
	jwtService JWTService
	logger     *slog.Logger
}

// NewAuthenticator creates an Authenticator with the given dependencies.
// The cache must be a constructed instance owned by the caller so tests can
// build isolated authenticators; there is no package-level cache state.
func NewAuthenticator(cache *TokenCache, jwtService JWTService, log *slog.Logger) *Authenticator {
	if log == nil {
		log = slog.Default()
	}
	return &Authenticator{
		cache:      cache,
		jwtService: jwtService,
		logger:     log.With(slog.String("component", "authenticator")),
	}
}

// Authenticate resolves the bearer token to the user ID it was issued for.
//
// Returns ErrMissingToken for an empty bearer, ErrInvalidToken or
// ErrExpiredToken when verification fails (evicting any stale cache entry
// under the same string), and ErrMalformedToken when a cryptographically
// valid token carries no user claim.
func (a *Authenticator) Authenticate(ctx context.Context, bearer string) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	if bearer == "" {
		return uuid.Nil, ErrMissingToken
	}

	if userID, ok := a.cache.Get(bearer); ok {
		log.Debug("token cache hit", "user_id", userID)
		return userID, nil
	}

	claims, err := a.jwtService.ValidateToken(ctx, bearer)
	if err != nil {
		// Drop whatever the cache holds under this string. A no-op when
		// the token was never cached.
		a.cache.Remove(bearer)
		return uuid.Nil, err
	}

	if claims.UserID == uuid.Nil {
		log.Debug("token verified but user claim is missing")
		return uuid.Nil, ErrMalformedToken
	}

	a.cache.Add(bearer, claims.UserID)
	log.Debug("token verified and cached", "user_id", claims.UserID)

	return claims.UserID, nil
}
