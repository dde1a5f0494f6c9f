package summarize

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short text", Truncate("short text", 100))
	assert.Equal(t, "short text", Truncate("short text", 0), "zero max disables capping")

	truncated := Truncate("alpha beta gamma delta", 12)
	assert.Equal(t, "alpha beta", truncated, "cuts on a word boundary")

	noSpaces := Truncate(strings.Repeat("x", 50), 10)
	assert.Len(t, noSpaces, 10)
}

func TestExtractiveSummarizer_Summarize(t *testing.T) {
	t.Parallel()

	s := NewExtractiveSummarizer(nil, 0)

	t.Run("takes the lead sentence of each paragraph", func(t *testing.T) {
		t.Parallel()

		text := "Revenue grew twelve percent this quarter. Detail follows here at length.\n" +
			"Headcount remained flat across all regions. More detail follows here too."

		summary, err := s.Summarize(context.Background(), text)
		require.NoError(t, err)

		lines := strings.Split(summary, "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "Revenue grew twelve percent this quarter.", lines[0])
		assert.Equal(t, "Headcount remained flat across all regions.", lines[1])
	})

	t.Run("falls back to sentence splitting without paragraphs", func(t *testing.T) {
		t.Parallel()

		text := "One. Two. Three."
		summary, err := s.Summarize(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, "One.\nTwo.\nThree.", summary)
	})

	t.Run("caps the number of points", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		for i := 0; i < 30; i++ {
			sb.WriteString("A sufficiently long leading sentence goes here. Trailing detail.\n")
		}

		summary, err := s.Summarize(context.Background(), sb.String())
		require.NoError(t, err)
		assert.Len(t, strings.Split(summary, "\n"), defaultMaxSentences)
	})

	t.Run("empty input is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := s.Summarize(context.Background(), "   \n  ")
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("respects the input cap", func(t *testing.T) {
		t.Parallel()

		capped := NewExtractiveSummarizer(nil, 60)
		text := "This sentence sits inside the sixty character window here. " +
			"This later sentence sits past the cap and must not appear."

		summary, err := capped.Summarize(context.Background(), text)
		require.NoError(t, err)
		assert.NotContains(t, summary, "must not appear")
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		t.Parallel()

		text := "Results exceeded expectations in every market segment. Details below."
		first, err := s.Summarize(context.Background(), text)
		require.NoError(t, err)
		second, err := s.Summarize(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

