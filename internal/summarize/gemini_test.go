package summarize

import (
	"context"
	"log/slog"
	"testing"

	"github.com/deckgen/deckgen-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewGeminiSummarizer_Validation(t *testing.T) {
	t.Parallel()

	valid := config.SummarizerConfig{
		Provider:     "gemini",
		GeminiAPIKey: "test-key",
		ModelName:    "gemini-2.0-flash",
	}

	t.Run("nil logger rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiSummarizer(context.Background(), nil, valid)
		assert.Error(t, err)
	})

	t.Run("missing api key rejected", func(t *testing.T) {
		t.Parallel()
		cfg := valid
		cfg.GeminiAPIKey = ""
		_, err := NewGeminiSummarizer(context.Background(), slog.Default(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing model name rejected", func(t *testing.T) {
		t.Parallel()
		cfg := valid
		cfg.ModelName = ""
		_, err := NewGeminiSummarizer(context.Background(), slog.Default(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
