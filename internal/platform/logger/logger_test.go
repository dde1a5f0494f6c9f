package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/deckgen/deckgen-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Run("returns a logger for each valid level", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: level})
			require.NoError(t, err, "level %q", level)
			require.NotNil(t, logger, "level %q", level)
		}
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "loud"})
		require.NoError(t, err)
		require.NotNil(t, logger)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("debug level enables debug records", func(t *testing.T) {
		logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "debug"})
		require.NoError(t, err)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	base := slog.Default()
	scoped := base.With("trace_id", "abc123")

	t.Run("round trip through context", func(t *testing.T) {
		t.Parallel()
		ctx := WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, FromContext(ctx))
		assert.Same(t, scoped, FromContextOrDefault(ctx, base))
	})

	t.Run("fallback when context has no logger", func(t *testing.T) {
		t.Parallel()
		assert.Same(t, base, FromContextOrDefault(context.Background(), base))
	})

	t.Run("default when neither is present", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	})
}
