package magiclink

import "errors"

// Magic link service errors. Each maps to a distinct, stable condition so
// the HTTP layer can branch without string matching.
var (
	// ErrInvalidLink indicates no link exists for the presented token.
	ErrInvalidLink = errors.New("magic link is invalid")

	// ErrAlreadyUsed indicates the link was already redeemed.
	ErrAlreadyUsed = errors.New("magic link has already been used")

	// ErrExpired indicates the link's redemption window has closed.
	ErrExpired = errors.New("magic link has expired")

	// ErrDeliveryFailed indicates the link was issued but the email could
	// not be delivered.
	ErrDeliveryFailed = errors.New("failed to deliver magic link email")
)
