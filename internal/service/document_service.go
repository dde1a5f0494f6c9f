package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/events"
	"github.com/deckgen/deckgen-api/internal/extract"
	"github.com/deckgen/deckgen-api/internal/store"
	"github.com/deckgen/deckgen-api/internal/task"
	"github.com/google/uuid"
)

// UploadStore persists uploaded documents until the pipeline consumes them.
type UploadStore interface {
	// SaveUpload stores the upload under a unique name and returns its ref
	SaveUpload(ctx context.Context, originalName string, r io.Reader) (string, error)

	// RemoveUpload deletes a stored upload
	RemoveUpload(ctx context.Context, sourceRef string) error
}

// DocumentService provides the job lifecycle operations: accepting uploads,
// reporting job state, and recording pipeline transitions.
type DocumentService interface {
	// SubmitDocument stores the upload, creates a pending job, and schedules
	// the generation pipeline. The returned job reflects any synchronous
	// scheduling failure: callers always get a queryable job record back
	// when the upload itself was accepted.
	SubmitDocument(ctx context.Context, originalName string, content io.Reader) (*domain.Job, error)

	// GetJob retrieves a snapshot of a job by its ID
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)

	// MarkJobProcessing transitions a pending job to processing
	MarkJobProcessing(ctx context.Context, jobID uuid.UUID) error

	// MarkJobCompleted transitions a processing job to completed
	MarkJobCompleted(ctx context.Context, jobID uuid.UUID, outputRef string) error

	// MarkJobFailed transitions a job to failed
	MarkJobFailed(ctx context.Context, jobID uuid.UUID, stage domain.Stage, detail string) error
}

// documentServiceImpl implements the DocumentService interface
type documentServiceImpl struct {
	jobStore store.JobStore
	uploads  UploadStore
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewDocumentService creates a new DocumentService.
// It returns an error if any of the required dependencies are nil.
func NewDocumentService(
	jobStore store.JobStore,
	uploads UploadStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) (DocumentService, error) {
	if jobStore == nil {
		return nil, &DocumentServiceError{
			Operation: "create_service",
			Message:   "jobStore cannot be nil",
		}
	}
	if uploads == nil {
		return nil, &DocumentServiceError{
			Operation: "create_service",
			Message:   "uploads cannot be nil",
		}
	}
	if emitter == nil {
		return nil, &DocumentServiceError{
			Operation: "create_service",
			Message:   "emitter cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &documentServiceImpl{
		jobStore: jobStore,
		uploads:  uploads,
		emitter:  emitter,
		logger:   logger.With("component", "document_service"),
	}, nil
}

// SubmitDocument validates and stores the upload, creates the job record,
// and emits the task request that schedules the pipeline.
func (s *documentServiceImpl) SubmitDocument(
	ctx context.Context,
	originalName string,
	content io.Reader,
) (*domain.Job, error) {
	// 1. Reject unsupported document types and empty payloads before any
	// side effects. Emptiness is detected by reading one byte, which is
	// then stitched back in front of the remaining content.
	if !extract.IsSupportedExtension(originalName) {
		s.logger.Warn("rejected unsupported document type", "original_name", originalName)
		return nil, ErrUnsupportedDocumentType
	}
	if content == nil {
		return nil, ErrEmptyUpload
	}
	var first [1]byte
	if _, err := io.ReadFull(content, first[:]); err != nil {
		if errors.Is(err, io.EOF) {
			s.logger.Warn("rejected empty upload", "original_name", originalName)
			return nil, ErrEmptyUpload
		}
		return nil, NewDocumentServiceError("submit_document", "failed to read upload", err)
	}
	content = io.MultiReader(bytes.NewReader(first[:]), content)

	// 2. Persist the upload
	sourceRef, err := s.uploads.SaveUpload(ctx, originalName, content)
	if err != nil {
		s.logger.Error("failed to store upload",
			"error", err,
			"original_name", originalName)
		return nil, NewDocumentServiceError("submit_document", "failed to store upload", err)
	}

	// 3. Create the job record with pending status
	job, err := domain.NewJob(sourceRef, originalName)
	if err != nil {
		s.removeUpload(ctx, sourceRef)
		return nil, NewDocumentServiceError("submit_document", "failed to create job", err)
	}

	if err := s.jobStore.CreateJob(ctx, job); err != nil {
		s.removeUpload(ctx, sourceRef)
		s.logger.Error("failed to save job",
			"error", err,
			"job_id", job.ID)
		return nil, NewDocumentServiceError("submit_document", "failed to save job", err)
	}

	s.logger.Info("job created with pending status",
		"job_id", job.ID,
		"original_name", originalName)

	// 4. Emit the task request event
	payload := struct {
		JobID uuid.UUID `json:"job_id"`
	}{
		JobID: job.ID,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeDeckGeneration, payload)
	if err != nil {
		return s.failScheduling(ctx, job, err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		return s.failScheduling(ctx, job, err)
	}

	s.logger.Info("deck generation scheduled",
		"job_id", job.ID,
		"event_id", event.ID)

	return job, nil
}

// failScheduling records a scheduling failure on the job and returns the
// failed snapshot. The job record stays queryable so the caller can report
// the job ID and clients can observe the failure.
func (s *documentServiceImpl) failScheduling(
	ctx context.Context,
	job *domain.Job,
	cause error,
) (*domain.Job, error) {
	s.logger.Error("failed to schedule deck generation",
		"error", cause,
		"job_id", job.ID)

	if err := s.MarkJobFailed(ctx, job.ID, domain.StageScheduling, "failed to schedule processing"); err != nil {
		s.logger.Error("failed to record scheduling failure",
			"error", err,
			"job_id", job.ID)
	}

	// The pipeline never runs for this job, so the upload has no consumer.
	s.removeUpload(ctx, job.SourceRef)

	failed, err := s.GetJob(ctx, job.ID)
	if err != nil {
		return job, nil
	}
	return failed, nil
}

func (s *documentServiceImpl) removeUpload(ctx context.Context, sourceRef string) {
	if err := s.uploads.RemoveUpload(ctx, sourceRef); err != nil {
		s.logger.Warn("failed to remove stored upload",
			"error", err,
			"source_ref", sourceRef)
	}
}

// GetJob retrieves a job by its ID.
func (s *documentServiceImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobStore.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, NewDocumentServiceError("get_job", "failed to retrieve job", err)
	}
	return job, nil
}

// MarkJobProcessing transitions a pending job to processing.
func (s *documentServiceImpl) MarkJobProcessing(ctx context.Context, jobID uuid.UUID) error {
	return s.transition(ctx, jobID, "mark_job_processing", func(job *domain.Job) error {
		return job.MarkProcessing()
	})
}

// MarkJobCompleted transitions a processing job to completed.
func (s *documentServiceImpl) MarkJobCompleted(
	ctx context.Context,
	jobID uuid.UUID,
	outputRef string,
) error {
	return s.transition(ctx, jobID, "mark_job_completed", func(job *domain.Job) error {
		return job.MarkCompleted(outputRef)
	})
}

// MarkJobFailed transitions a job to failed with the failing stage and cause.
func (s *documentServiceImpl) MarkJobFailed(
	ctx context.Context,
	jobID uuid.UUID,
	stage domain.Stage,
	detail string,
) error {
	return s.transition(ctx, jobID, "mark_job_failed", func(job *domain.Job) error {
		return job.MarkFailed(stage, detail)
	})
}

// transition applies a state change to the stored job record. Each job has
// a single writer while the pipeline runs, so read-modify-write needs no
// cross-record coordination.
func (s *documentServiceImpl) transition(
	ctx context.Context,
	jobID uuid.UUID,
	operation string,
	apply func(*domain.Job) error,
) error {
	job, err := s.jobStore.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return ErrJobNotFound
		}
		return NewDocumentServiceError(operation, "failed to retrieve job", err)
	}

	if err := apply(job); err != nil {
		s.logger.Error("invalid job transition",
			"error", err,
			"operation", operation,
			"job_id", jobID,
			"state", job.State)
		return NewDocumentServiceError(operation, "invalid job transition", err)
	}

	if err := s.jobStore.UpdateJob(ctx, job); err != nil {
		return NewDocumentServiceError(operation, "failed to save job", err)
	}

	s.logger.Info("job transition recorded",
		"operation", operation,
		"job_id", jobID,
		"state", job.State)
	return nil
}
