package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/platform/filestore"
	"github.com/deckgen/deckgen-api/internal/store"
)

// OutputOpener reads published deck artifacts.
type OutputOpener interface {
	OpenOutput(ctx context.Context, filename string) (io.ReadCloser, error)
}

// ResultService serves published deck artifacts by name.
type ResultService interface {
	// Open returns the artifact stream and the completed job that produced
	// it. Returns ErrResultNotFound when no completed job owns the name or
	// the artifact is missing from storage.
	Open(ctx context.Context, filename string) (io.ReadCloser, *domain.Job, error)
}

type resultServiceImpl struct {
	jobStore store.JobStore
	outputs  OutputOpener
	logger   *slog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	jobStore store.JobStore,
	outputs OutputOpener,
	logger *slog.Logger,
) (ResultService, error) {
	if jobStore == nil {
		return nil, &DocumentServiceError{
			Operation: "create_service",
			Message:   "jobStore cannot be nil",
		}
	}
	if outputs == nil {
		return nil, &DocumentServiceError{
			Operation: "create_service",
			Message:   "outputs cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &resultServiceImpl{
		jobStore: jobStore,
		outputs:  outputs,
		logger:   logger.With("component", "result_service"),
	}, nil
}

// Open looks up the owning job, then streams the artifact. Serving only
// names owned by a completed job keeps unpublished or foreign files in the
// output directory unreachable.
func (s *resultServiceImpl) Open(
	ctx context.Context,
	filename string,
) (io.ReadCloser, *domain.Job, error) {
	job, err := s.jobStore.GetJobByOutputRef(ctx, filename)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, nil, ErrResultNotFound
		}
		return nil, nil, NewDocumentServiceError("open_result", "failed to look up job", err)
	}

	if job.State != domain.JobStateCompleted {
		// GetJobByOutputRef only matches completed jobs, but keep the
		// invariant locally checkable.
		return nil, nil, ErrResultNotReady
	}

	rc, err := s.outputs.OpenOutput(ctx, filename)
	if err != nil {
		if errors.Is(err, filestore.ErrOutputNotFound) {
			s.logger.Error("completed job's artifact missing from storage",
				"job_id", job.ID,
				"output_ref", filename)
			return nil, nil, ErrResultNotFound
		}
		return nil, nil, NewDocumentServiceError("open_result", "failed to open artifact", err)
	}

	return rc, job, nil
}
