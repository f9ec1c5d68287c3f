package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskward-app/taskward-api/internal/domain"
)

// TaskUpdate carries the mutable fields of a task for partial updates.
// Nil pointers mean "leave unchanged".
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	ImageURL    *string
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByUserID returns all tasks owned by the given user, ordered with
	// incomplete tasks first, then most recently updated, then most
	// recently created.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update applies a partial update to the task owned by userID.
	// Returns ErrTaskNotFound if the task does not exist or belongs to a
	// different user; ownership is enforced in the same statement so a
	// foreign task is indistinguishable from a missing one.
	Update(ctx context.Context, id, userID uuid.UUID, update TaskUpdate) (*domain.Task, error)

	// Delete removes the task owned by userID.
	// Returns ErrTaskNotFound under the same ownership rule as Update.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}
