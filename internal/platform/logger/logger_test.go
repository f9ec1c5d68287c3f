package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskward-app/taskward-api/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantErr   bool
	}{
		{"debug level", "debug", false},
		{"info level", "info", false},
		{"warn level", "warn", false},
		{"error level", "error", false},
		{"mixed case", "INFO", false},
		{"invalid level", "verbose", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tt.level})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, logger)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		buf, logger, cleanup := SetupTestLogger(t, nil)
		defer cleanup()

		ctx := WithLogger(context.Background(), logger.With(slog.String("trace_id", "abc")))
		FromContext(ctx).Info("hello")

		entries, err := buf.Entries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "abc", entries[0]["trace_id"])
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.Default().With(slog.String("component", "test"))

	t.Run("prefers context logger", func(t *testing.T) {
		stored := slog.Default().With(slog.String("source", "ctx"))
		ctx := WithLogger(context.Background(), stored)
		assert.Equal(t, stored, FromContextOrDefault(ctx, fallback))
	})

	t.Run("uses fallback when context empty", func(t *testing.T) {
		assert.Equal(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})
}
