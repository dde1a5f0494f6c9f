package store

import (
	"context"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/google/uuid"
)

// JobStore defines the interface for job lifecycle persistence.
// The backing implementation only needs to guarantee atomic per-record
// reads and writes: each job record has a single writer (the pipeline
// execution that owns it), so no cross-record coordination is required.
// Version: 1.0
type JobStore interface {
	// CreateJob saves a new job to the store.
	// Returns ErrJobExists if a job with the same ID is already present.
	// Returns validation errors from the domain Job if data is invalid.
	CreateJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a snapshot of a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// UpdateJob saves changes to an existing job. The update is applied only
	// if the job already exists; it never creates a record.
	// Returns ErrJobNotFound if the job does not exist.
	// Returns validation errors if the job data is invalid.
	UpdateJob(ctx context.Context, job *domain.Job) error

	// GetJobByOutputRef retrieves a snapshot of the job whose artifact
	// reference matches outputRef. Only completed jobs carry an output ref.
	// Returns ErrJobNotFound if no job matches.
	GetJobByOutputRef(ctx context.Context, outputRef string) (*domain.Job, error)
}
