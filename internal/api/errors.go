package api

import (
	"errors"
	"net/http"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/platform/filestore"
	"github.com/deckgen/deckgen-api/internal/service"
	"github.com/deckgen/deckgen-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors. A result whose job has not completed is reported
	// as absent rather than pending: only published artifacts exist.
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrResultNotReady),
		errors.Is(err, store.ErrJobNotFound):
		return http.StatusNotFound

	// Payload errors
	case errors.Is(err, filestore.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, service.ErrUnsupportedDocumentType):
		return http.StatusUnsupportedMediaType

	// Bad request errors
	case errors.Is(err, service.ErrEmptyUpload),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, store.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrResultNotReady):
		return "Result not found"

	case errors.Is(err, filestore.ErrUploadTooLarge):
		return "Uploaded document is too large"

	case errors.Is(err, service.ErrUnsupportedDocumentType):
		return "Unsupported document type; upload a .pdf or .docx file"

	case errors.Is(err, service.ErrEmptyUpload):
		return "Uploaded document is empty"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
