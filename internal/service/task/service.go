// Package task implements task CRUD orchestration on top of the task store,
// delegating image hosting to an external uploader.
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskward-app/taskward-api/internal/domain"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
	"github.com/taskward-app/taskward-api/internal/store"
)

// ImageUploader pushes image data to an external host and returns the
// public URL to store on the task.
type ImageUploader interface {
	Upload(ctx context.Context, source string) (string, error)
}

// CreateInput carries the fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Image       string // optional upload source (data URI or temp path)
}

// UpdateInput carries a partial update. Nil pointers mean "leave unchanged".
type UpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Image       *string // optional new upload source
}

// Service orchestrates task persistence and image delegation.
type Service struct {
	tasks    store.TaskStore
	uploader ImageUploader
	logger   *slog.Logger
}

// NewService creates a task Service. uploader may be nil, in which case
// image fields are ignored.
func NewService(tasks store.TaskStore, uploader ImageUploader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		tasks:    tasks,
		uploader: uploader,
		logger:   log.With(slog.String("component", "task_service")),
	}
}

// List returns the user's tasks, incomplete first, most recently touched
// first within each group.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.tasks.ListByUserID(ctx, userID)
}

// Create validates and persists a new task for the user, uploading the
// image first when one is supplied.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(userID, input.Title, input.Description)
	if err != nil {
		return nil, err
	}

	if input.Image != "" && s.uploader != nil {
		url, err := s.uploader.Upload(ctx, input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload task image: %w", err)
		}
		task.ImageURL = url
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task created", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// Update applies a partial update to a task the user owns.
func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, input UpdateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	update := store.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
	}

	if input.Image != nil && *input.Image != "" && s.uploader != nil {
		url, err := s.uploader.Upload(ctx, *input.Image)
		if err != nil {
			return nil, fmt.Errorf("failed to upload task image: %w", err)
		}
		update.ImageURL = &url
	}

	task, err := s.tasks.Update(ctx, id, userID, update)
	if err != nil {
		return nil, err
	}

	log.Info("task updated", "task_id", id, "user_id", userID)
	return task, nil
}

// Delete removes a task the user owns.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		return err
	}

	log.Info("task deleted", "task_id", id, "user_id", userID)
	return nil
}
