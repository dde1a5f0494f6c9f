package service

import (
	"errors"
	"fmt"

	"github.com/deckgen/deckgen-api/internal/store"
)

// Common sentinel errors for the service layer
var (
	// ErrJobNotFound indicates that the requested job does not exist
	ErrJobNotFound = errors.New("job not found")

	// ErrResultNotFound indicates that no published artifact matches the
	// requested name
	ErrResultNotFound = errors.New("result not found")

	// ErrResultNotReady indicates the job owning the artifact has not
	// completed yet
	ErrResultNotReady = errors.New("result not ready")

	// ErrUnsupportedDocumentType indicates the uploaded file's extension
	// is not one the pipeline can process
	ErrUnsupportedDocumentType = errors.New("unsupported document type")

	// ErrEmptyUpload indicates the uploaded file carried no content
	ErrEmptyUpload = errors.New("uploaded document is empty")
)

// DocumentServiceError wraps errors from the document service with context.
type DocumentServiceError struct {
	// Operation is the operation that failed (e.g., "submit_document")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for DocumentServiceError.
func (e *DocumentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("document service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("document service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *DocumentServiceError) Unwrap() error {
	return e.Err
}

// NewDocumentServiceError creates a new DocumentServiceError.
// It returns known sentinel errors directly without wrapping.
func NewDocumentServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Service-level sentinels pass through untouched
	for _, sentinel := range []error{
		ErrJobNotFound,
		ErrResultNotFound,
		ErrResultNotReady,
		ErrUnsupportedDocumentType,
		ErrEmptyUpload,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	// Store-level sentinels map to their service-level equivalents
	if errors.Is(err, store.ErrJobNotFound) {
		return ErrJobNotFound
	}

	return &DocumentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
