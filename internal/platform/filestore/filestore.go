// Package filestore manages the on-disk layout of the service: uploaded
// source documents and published deck artifacts live in two separate
// directories. Uploads are transient and removed after processing; outputs
// are published atomically so a reader never sees a half-written deck.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the filestore
var (
	// ErrUploadTooLarge is returned when an upload exceeds the size cap
	ErrUploadTooLarge = errors.New("upload exceeds maximum allowed size")

	// ErrInvalidFilename is returned for names that escape the store dirs
	ErrInvalidFilename = errors.New("invalid file name")

	// ErrOutputNotFound is returned when a published artifact is missing
	ErrOutputNotFound = errors.New("output file not found")
)

// Store owns the upload and output directories.
type Store struct {
	uploadDir      string
	outputDir      string
	maxUploadBytes int64
	logger         *slog.Logger
}

// New creates a Store and ensures both directories exist.
func New(uploadDir, outputDir string, maxUploadBytes int64, logger *slog.Logger) (*Store, error) {
	if uploadDir == "" || outputDir == "" {
		return nil, errors.New("upload and output directories cannot be empty")
	}
	if maxUploadBytes <= 0 {
		return nil, errors.New("max upload bytes must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}

	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return &Store{
		uploadDir:      uploadDir,
		outputDir:      outputDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "filestore"),
	}, nil
}

// SaveUpload streams an uploaded document to the upload directory under a
// unique name and returns the stored path. The original name only
// contributes its sanitized base name and extension. Returns
// ErrUploadTooLarge when the stream exceeds the configured cap.
func (s *Store) SaveUpload(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := sanitizeBaseName(originalName)
	if base == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, originalName)
	}

	name := fmt.Sprintf("%d_%s_%s", time.Now().UTC().Unix(), shortID(), base)
	path := filepath.Join(s.uploadDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	// Read one byte past the cap so oversized streams are detected
	// without buffering them whole.
	written, err := io.Copy(f, io.LimitReader(r, s.maxUploadBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxUploadBytes {
		err = ErrUploadTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrUploadTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write upload file: %w", err)
	}

	s.logger.DebugContext(ctx, "upload stored", "stored_name", name, "bytes", written)
	return path, nil
}

// RemoveUpload deletes a stored upload. Paths outside the upload directory
// are rejected; a missing file is not an error.
func (s *Store) RemoveUpload(ctx context.Context, sourceRef string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if filepath.Dir(sourceRef) != filepath.Clean(s.uploadDir) {
		return fmt.Errorf("%w: %q is not in the upload directory", ErrInvalidFilename, sourceRef)
	}
	if err := os.Remove(sourceRef); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// PublishOutput writes an artifact to the output directory atomically:
// content goes to a temp file in the same directory, is synced, then
// renamed into place. filename must be a bare name without separators.
func (s *Store) PublishOutput(ctx context.Context, filename string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isBareName(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	tmp, err := os.CreateTemp(s.outputDir, filename+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close output: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(s.outputDir, filename)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("publish output: %w", err)
	}

	s.logger.DebugContext(ctx, "output published", "filename", filename, "bytes", len(content))
	return nil
}

// OpenOutput opens a published artifact for reading.
// Returns ErrOutputNotFound when no such artifact exists.
func (s *Store) OpenOutput(ctx context.Context, filename string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !isBareName(filename) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	f, err := os.Open(filepath.Join(s.outputDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrOutputNotFound, filename)
		}
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

// isBareName reports whether name is a plain file name with no path
// components.
func isBareName(name string) bool {
	return name != "" &&
		name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		filepath.Base(name) == name
}

// sanitizeBaseName strips any path components from an uploaded file's
// declared name and replaces characters unsafe for file names.
func sanitizeBaseName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, `/`))
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	cleaned := strings.Trim(sb.String(), "._")
	if cleaned == "" {
		return ""
	}
	return cleaned
}

func shortID() string {
	return uuid.New().String()[:8]
}
