package store

import (
	"context"

	"github.com/taskward-app/taskward-api/internal/domain"
)

// MagicLinkStore defines the interface for magic link persistence.
//
// Consume is the only mutation: links are never physically deleted here,
// and the used flag never reverses. Retention of stale rows is an
// operational concern outside this interface.
type MagicLinkStore interface {
	// Create persists a freshly issued link keyed by its token value.
	// Returns ErrTokenExists on a token collision (retryable given the
	// entropy of token generation).
	Create(ctx context.Context, link *domain.MagicLink) error

	// GetByToken retrieves a link by its exact token string.
	// Returns ErrMagicLinkNotFound if no such link exists.
	GetByToken(ctx context.Context, token string) (*domain.MagicLink, error)

	// Consume atomically marks the link used, but only if it is not used
	// already. The implementation MUST use a conditional update
	// (UPDATE ... WHERE token = $1 AND used = FALSE) or equivalent
	// compare-and-swap so that two concurrent redeemers can never both
	// succeed. Returns ErrMagicLinkNotFound if the token is unknown and
	// ErrAlreadyConsumed if the conditional update matched no rows.
	Consume(ctx context.Context, token string) error
}
