package summarize

import "errors"

// Common errors returned by summarizers
var (
	// ErrSummarizationFailed is a general error for summarization failures
	ErrSummarizationFailed = errors.New("failed to summarize document text")

	// ErrEmptyInput is returned when there is no text to summarize
	ErrEmptyInput = errors.New("input text cannot be empty")

	// ErrContentBlocked is returned when the model refuses the content
	ErrContentBlocked = errors.New("content blocked by safety filters")

	// ErrInvalidResponse is returned when the model response is unusable
	ErrInvalidResponse = errors.New("invalid response from model")

	// ErrTransientFailure is returned when retryable errors exhaust the
	// retry budget
	ErrTransientFailure = errors.New("transient failure during summarization")

	// ErrInvalidConfig is returned when summarizer configuration is invalid
	ErrInvalidConfig = errors.New("invalid summarizer configuration")
)
