package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskward-app/taskward-api/internal/api/shared"
	"github.com/taskward-app/taskward-api/internal/domain"
	"github.com/taskward-app/taskward-api/internal/service/task"
	"github.com/taskward-app/taskward-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore with the same ordering
// contract as the SQL implementation.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *t
	s.tasks[t.ID] = &copied
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			copied := *t
			out = append(out, &copied)
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
	ctx context.Context,
	id, userID uuid.UUID,
	update store.TaskUpdate,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Completed != nil {
		t.Completed = *update.Completed
	}
	if update.ImageURL != nil {
		t.ImageURL = *update.ImageURL
	}
	t.UpdatedAt = time.Now().UTC()
	copied := *t
	return &copied, nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

type taskHandlerFixture struct {
	router http.Handler
	store  *fakeTaskStore
	userID uuid.UUID
}

// newTaskHandlerFixture mounts the task routes behind a stub that injects
// the fixture's user ID, standing in for the auth middleware.
func newTaskHandlerFixture(t *testing.T) *taskHandlerFixture {
	t.Helper()

	taskStore := newFakeTaskStore()
	handler := NewTaskHandler(task.NewService(taskStore, nil, nil), nil)
	userID := uuid.New()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/tasks/user", handler.ListTasks)
	r.Post("/tasks", handler.CreateTask)
	r.Put("/tasks/{id}", handler.UpdateTask)
	r.Delete("/tasks/{id}", handler.DeleteTask)

	return &taskHandlerFixture{router: r, store: taskStore, userID: userID}
}

func (f *taskHandlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *taskHandlerFixture) createTask(t *testing.T, title string) domain.Task {
	t.Helper()

	w := f.do(t, http.MethodPost, "/tasks", CreateTaskRequest{Title: title})
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return created
}

func TestTaskHandler_CreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates a task owned by the authenticated user", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		created := fix.createTask(t, "Write release notes")

		assert.Equal(t, "Write release notes", created.Title)
		assert.Equal(t, fix.userID, created.UserID)
		assert.False(t, created.Completed)
	})

	t.Run("rejects an empty title", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		w := fix.do(t, http.MethodPost, "/tasks", CreateTaskRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskHandler_ListTasks(t *testing.T) {
	t.Parallel()

	t.Run("returns an empty array when the user has no tasks", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		w := fix.do(t, http.MethodGet, "/tasks/user", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("lists incomplete tasks before completed ones", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		first := fix.createTask(t, "first")
		second := fix.createTask(t, "second")

		completed := true
		w := fix.do(t, http.MethodPut, "/tasks/"+first.ID.String(), UpdateTaskRequest{Completed: &completed})
		require.Equal(t, http.StatusOK, w.Code)

		list := fix.do(t, http.MethodGet, "/tasks/user", nil)
		require.Equal(t, http.StatusOK, list.Code)

		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &tasks))
		require.Len(t, tasks, 2)
		assert.Equal(t, second.ID, tasks[0].ID)
		assert.Equal(t, first.ID, tasks[1].ID)
	})
}

func TestTaskHandler_UpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("applies only the provided fields", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		created := fix.createTask(t, "original title")

		title := "new title"
		w := fix.do(t, http.MethodPut, "/tasks/"+created.ID.String(), UpdateTaskRequest{Title: &title})
		require.Equal(t, http.StatusOK, w.Code)

		var updated domain.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Equal(t, "new title", updated.Title)
		assert.False(t, updated.Completed)
	})

	t.Run("updating another user's task reports not found", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		otherTask, err := domain.NewTask(uuid.New(), "someone else's", "")
		require.NoError(t, err)
		require.NoError(t, fix.store.Create(context.Background(), otherTask))

		title := "hijacked"
		w := fix.do(t, http.MethodPut, "/tasks/"+otherTask.ID.String(), UpdateTaskRequest{Title: &title})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a malformed task ID", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		w := fix.do(t, http.MethodPut, "/tasks/not-a-uuid", UpdateTaskRequest{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	t.Parallel()

	t.Run("deletes an owned task", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		created := fix.createTask(t, "to be deleted")

		w := fix.do(t, http.MethodDelete, "/tasks/"+created.ID.String(), nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		_, err := fix.store.GetByID(context.Background(), created.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("deleting another user's task reports not found", func(t *testing.T) {
		t.Parallel()

		fix := newTaskHandlerFixture(t)
		otherTask, err := domain.NewTask(uuid.New(), "someone else's", "")
		require.NoError(t, err)
		require.NoError(t, fix.store.Create(context.Background(), otherTask))

		w := fix.do(t, http.MethodDelete, "/tasks/"+otherTask.ID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
