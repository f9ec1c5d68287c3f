package task

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskward-app/taskward-api/internal/domain"
	"github.com/taskward-app/taskward-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore that reproduces the
// ordering and ownership rules of the Postgres implementation.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *fakeTaskStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.UserID == userID {
			clone := *task
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeTaskStore) Update(
	_ context.Context,
	id, userID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	if update.ImageURL != nil {
		task.ImageURL = *update.ImageURL
	}
	task.UpdatedAt = time.Now().UTC()
	clone := *task
	return &clone, nil
}

func (s *fakeTaskStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

// fakeUploader returns a canned URL and records sources.
type fakeUploader struct {
	sources  []string
	failWith error
}

func (u *fakeUploader) Upload(_ context.Context, source string) (string, error) {
	if u.failWith != nil {
		return "", u.failWith
	}
	u.sources = append(u.sources, source)
	return "https://images.example.com/" + source, nil
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("without image", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeTaskStore(), &fakeUploader{}, nil)

		task, err := svc.Create(context.Background(), userID, CreateInput{Title: "Buy milk"})
		require.NoError(t, err)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Empty(t, task.ImageURL)
	})

	t.Run("with image delegates to uploader", func(t *testing.T) {
		t.Parallel()
		uploader := &fakeUploader{}
		svc := NewService(newFakeTaskStore(), uploader, nil)

		task, err := svc.Create(context.Background(), userID, CreateInput{
			Title: "Buy milk",
			Image: "receipt.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://images.example.com/receipt.png", task.ImageURL)
		assert.Equal(t, []string{"receipt.png"}, uploader.sources)
	})

	t.Run("upload failure aborts create", func(t *testing.T) {
		t.Parallel()
		tasks := newFakeTaskStore()
		svc := NewService(tasks, &fakeUploader{failWith: errors.New("upstream 503")}, nil)

		_, err := svc.Create(context.Background(), userID, CreateInput{
			Title: "Buy milk",
			Image: "receipt.png",
		})
		assert.Error(t, err)

		list, err := svc.List(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, list, "no task should be persisted when the upload fails")
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeTaskStore(), nil, nil)
		_, err := svc.Create(context.Background(), userID, CreateInput{Title: "  "})
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})
}

func TestListOrdersIncompleteFirst(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	tasks := newFakeTaskStore()
	svc := NewService(tasks, nil, nil)

	first, err := svc.Create(context.Background(), userID, CreateInput{Title: "done already"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), userID, CreateInput{Title: "still open"})
	require.NoError(t, err)

	completed := true
	_, err = svc.Update(context.Background(), first.ID, userID, UpdateInput{Completed: &completed})
	require.NoError(t, err)

	list, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "incomplete tasks come first")
	assert.Equal(t, first.ID, list[1].ID)
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	stranger := uuid.New()
	svc := NewService(newFakeTaskStore(), nil, nil)

	task, err := svc.Create(context.Background(), owner, CreateInput{Title: "mine"})
	require.NoError(t, err)

	title := "stolen"
	_, err = svc.Update(context.Background(), task.ID, stranger, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, store.ErrTaskNotFound,
		"a foreign task must be indistinguishable from a missing one")

	err = svc.Delete(context.Background(), task.ID, stranger)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	// The owner still can.
	err = svc.Delete(context.Background(), task.ID, owner)
	assert.NoError(t, err)
}
