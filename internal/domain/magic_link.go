package domain

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// magicTokenBytes is the number of random bytes in a magic-link token.
// 32 bytes gives 256 bits of entropy, hex-encoded to 64 characters.
const magicTokenBytes = 32

// MagicLinkLifetime is how long an issued link stays redeemable.
const MagicLinkLifetime = 15 * time.Minute

// Magic link validation errors
var (
	ErrEmptyMagicToken  = errors.New("magic link token cannot be empty")
	ErrEmptyMagicUserID = errors.New("magic link user ID cannot be empty")
	ErrZeroMagicExpiry  = errors.New("magic link expiry cannot be zero")
)

// MagicLink is a single-use, time-boxed login secret tied to a user.
//
// A link moves through exactly one of these paths:
//
//	issued -> consumed          (first redemption within the window)
//	issued -> expired           (terminal; the used flag is never set)
//
// Only the redeem path flips Used, and it does so at most once; the
// read-only validate path never mutates the link.
type MagicLink struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"` // Never expose the secret in JSON
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMagicLink creates a fresh, unconsumed link for the given user.
// The token is drawn from crypto/rand; the expiry is computed from now,
// which tests can pin with a fixed time.
func NewMagicLink(userID uuid.UUID, now time.Time) (*MagicLink, error) {
	token, err := generateMagicToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate magic link token: %w", err)
	}

	link := &MagicLink{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(MagicLinkLifetime),
		Used:      false,
		CreatedAt: now,
	}

	if err := link.Validate(); err != nil {
		return nil, err
	}

	return link, nil
}

// Validate checks if the MagicLink has valid data.
func (l *MagicLink) Validate() error {
	if l.ID == uuid.Nil {
		return ErrInvalidID
	}

	if l.UserID == uuid.Nil {
		return ErrEmptyMagicUserID
	}

	if l.Token == "" {
		return ErrEmptyMagicToken
	}

	if l.ExpiresAt.IsZero() {
		return ErrZeroMagicExpiry
	}

	return nil
}

// IsExpired reports whether the link's window has closed at the given time.
func (l *MagicLink) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// generateMagicToken returns a hex-encoded token with 256 bits of entropy.
func generateMagicToken() (string, error) {
	b := make([]byte, magicTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
