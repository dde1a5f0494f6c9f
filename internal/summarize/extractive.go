package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// Defaults for the extractive provider.
const (
	defaultMaxSentences = 12
	minSentenceChars    = 20
)

// ExtractiveSummarizer produces a summary by selecting the leading sentence
// of each paragraph, falling back to leading sentences of the whole text
// when the document has no paragraph structure. It is deterministic and
// needs no network access, which makes it the default provider.
type ExtractiveSummarizer struct {
	logger        *slog.Logger
	maxInputChars int
	maxSentences  int
}

// NewExtractiveSummarizer creates an ExtractiveSummarizer. maxInputChars
// caps how much of the document is considered; zero or less means no cap.
func NewExtractiveSummarizer(logger *slog.Logger, maxInputChars int) *ExtractiveSummarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractiveSummarizer{
		logger:        logger.With("component", "extractive_summarizer"),
		maxInputChars: maxInputChars,
		maxSentences:  defaultMaxSentences,
	}
}

// Summarize selects key sentences from text, one per line.
func (s *ExtractiveSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}

	text = strings.TrimSpace(Truncate(text, s.maxInputChars))
	if text == "" {
		return "", ErrEmptyInput
	}

	var points []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(points) >= s.maxSentences {
			break
		}
		sentence := leadSentence(paragraph)
		if len(sentence) >= minSentenceChars {
			points = append(points, sentence)
		}
	}

	// Documents without usable paragraph leads (single-block text, very
	// short lines) fall back to splitting the whole text into sentences.
	if len(points) == 0 {
		for _, sentence := range splitSentences(text) {
			if len(points) >= s.maxSentences {
				break
			}
			sentence = strings.TrimSpace(sentence)
			if sentence != "" {
				points = append(points, sentence)
			}
		}
	}

	if len(points) == 0 {
		return "", fmt.Errorf("%w: no usable sentences in input", ErrSummarizationFailed)
	}

	s.logger.DebugContext(ctx, "extractive summary produced",
		"input_chars", len(text),
		"points", len(points))

	return strings.Join(points, "\n"), nil
}

// leadSentence returns the first sentence of a paragraph, trimmed.
func leadSentence(paragraph string) string {
	paragraph = strings.TrimSpace(paragraph)
	if paragraph == "" {
		return ""
	}
	sentences := splitSentences(paragraph)
	if len(sentences) == 0 {
		return paragraph
	}
	return strings.TrimSpace(sentences[0])
}

// splitSentences breaks text on terminal punctuation followed by a space
// or end of input. Deliberately simple; abbreviations may over-split but
// the output is a bullet list where that is tolerable.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if atEnd || unicode.IsSpace(runes[i+1]) {
			sentence := strings.TrimSpace(string(runes[start : i+1]))
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 1
		}
	}
	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}
