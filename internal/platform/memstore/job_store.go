package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/store"
	"github.com/google/uuid"
)

// JobStore implements the store.JobStore interface using a process-local
// map as the storage backend. The store holds copies of job records, never
// the caller's pointers, so a reader can never observe a record mid-write:
// every Get returns a snapshot taken under the lock, and every update
// replaces the whole record in one assignment.
//
// Records are never evicted here; a time-based cleanup pass can be layered
// on later using the CreatedAt/UpdatedAt timestamps each record carries.
type JobStore struct {
	mu     sync.RWMutex
	jobs   map[uuid.UUID]domain.Job
	logger *slog.Logger
}

// NewJobStore creates a new in-memory implementation of the JobStore interface.
// If logger is nil, a default logger will be used.
func NewJobStore(logger *slog.Logger) *JobStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &JobStore{
		jobs:   make(map[uuid.UUID]domain.Job),
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure JobStore implements store.JobStore interface
var _ store.JobStore = (*JobStore)(nil)

// CreateJob implements store.JobStore.CreateJob.
// It validates the job and stores a copy of it.
// Returns store.ErrJobExists if the ID is already tracked.
func (s *JobStore) CreateJob(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		s.logger.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return store.NewStoreError("job", "create", "job failed validation",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return store.ErrJobExists
	}

	s.jobs[job.ID] = *job

	s.logger.Debug("job created",
		slog.String("job_id", job.ID.String()),
		slog.String("state", string(job.State)))
	return nil
}

// GetJob implements store.JobStore.GetJob.
// Returns store.ErrJobNotFound if the job does not exist.
func (s *JobStore) GetJob(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, store.ErrJobNotFound
	}

	// job is already a copy; hand the caller its own snapshot.
	return &job, nil
}

// UpdateJob implements store.JobStore.UpdateJob.
// The update only applies to an existing record; it never creates one.
// Returns store.ErrJobNotFound if the job does not exist.
func (s *JobStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		s.logger.Warn("job validation failed during update",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return store.NewStoreError("job", "update", "job failed validation",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; !exists {
		return store.ErrJobNotFound
	}

	s.jobs[job.ID] = *job

	s.logger.Debug("job updated",
		slog.String("job_id", job.ID.String()),
		slog.String("state", string(job.State)))
	return nil
}

// GetJobByOutputRef implements store.JobStore.GetJobByOutputRef.
// Returns store.ErrJobNotFound if no job carries the given output ref.
func (s *JobStore) GetJobByOutputRef(ctx context.Context, outputRef string) (*domain.Job, error) {
	if outputRef == "" {
		return nil, store.ErrJobNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.jobs {
		if job.OutputRef == outputRef {
			snapshot := job
			return &snapshot, nil
		}
	}

	return nil, store.ErrJobNotFound
}

// Len returns the number of tracked jobs. Intended for diagnostics.
func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
