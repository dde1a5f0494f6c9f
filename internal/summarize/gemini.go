package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/deckgen/deckgen-api/internal/config"
	"google.golang.org/genai"
)

// summaryPromptPrefix frames the extracted document text for the model.
const summaryPromptPrefix = "Summarize the following document into a concise set of key points " +
	"suitable for presentation slides. Use short declarative sentences, one point per line:\n\n"

// GeminiSummarizer produces document summaries through Google's Gemini API.
// Calls are retried with exponential backoff and jitter for transient
// failures; blocked content and malformed responses fail immediately.
type GeminiSummarizer struct {
	logger *slog.Logger
	config config.SummarizerConfig
	client *genai.Client
	model  string
}

// NewGeminiSummarizer creates a GeminiSummarizer from the given configuration.
func NewGeminiSummarizer(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.SummarizerConfig,
) (*GeminiSummarizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &GeminiSummarizer{
		logger: logger.With("component", "gemini_summarizer"),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Summarize generates a summary of the given document text.
func (g *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	prompt := summaryPromptPrefix + Truncate(text, g.config.MaxInputChars)

	summary, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}
	return summary, nil
}

// callWithRetry makes the API call up to MaxRetries+1 times, backing off
// exponentially with jitter between attempts. Permanent errors (blocked
// content, unusable responses) are returned immediately.
func (g *GeminiSummarizer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		summary, transient, err := g.call(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return summary, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			return "", err
		}
		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}
}

// call performs a single API request. transient reports whether a failure
// is worth retrying.
func (g *GeminiSummarizer) call(ctx context.Context, prompt string) (summary string, transient bool, err error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", true, fmt.Errorf("gemini API call error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", ErrInvalidResponse)
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", false, ErrContentBlocked
	}

	summary = strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", false, fmt.Errorf("%w: empty summary text", ErrInvalidResponse)
	}
	return summary, false, nil
}
