package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskward-app/taskward-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile replaces the user's display name and avatar URL.
	// This happens on every repeated Google login so the stored profile
	// tracks the provider's. Returns ErrUserNotFound if the user does
	// not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) error
}
