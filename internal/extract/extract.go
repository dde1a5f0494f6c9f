package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Common errors returned by the extract package
var (
	// ErrExtractionFailed is returned when a document cannot be read or parsed
	ErrExtractionFailed = errors.New("failed to extract text from document")

	// ErrEmptyDocument is returned when extraction succeeds but yields no text
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrUnsupportedFormat is returned for file types no extractor handles
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// SupportedExtensions lists the document types the service accepts.
var SupportedExtensions = []string{".pdf", ".docx"}

// IsSupportedExtension reports whether the filename carries an extension
// the extractor can handle. The check is case-insensitive.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// DocumentExtractor extracts plain text from stored uploads, dispatching
// on file extension. It implements the pipeline's extraction collaborator.
type DocumentExtractor struct {
	logger *slog.Logger
}

// NewDocumentExtractor creates a DocumentExtractor.
// If logger is nil, a default logger will be used.
func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentExtractor{
		logger: logger.With("component", "document_extractor"),
	}
}

// Extract reads the document at path and returns its plain text.
// Returns ErrUnsupportedFormat for unknown extensions, ErrEmptyDocument
// when the document parses but holds no text, and ErrExtractionFailed
// (wrapped) for anything unreadable or corrupt.
func (e *DocumentExtractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	var (
		text string
		err  error
	)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		text, err = extractPDF(path)
	case ".docx":
		text, err = extractDOCX(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		e.logger.Error("extraction failed", "path_ext", ext, "error", err)
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		e.logger.Warn("document yielded no text", "path_ext", ext)
		return "", ErrEmptyDocument
	}

	e.logger.Debug("document text extracted", "path_ext", ext, "chars", len(text))
	return text, nil
}
