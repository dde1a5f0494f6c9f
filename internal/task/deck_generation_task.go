package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/redact"
	"github.com/google/uuid"
)

// Status constants for DeckGenerationTask
// These match the TaskStatus values defined in task.go
const (
	statusPending    = "pending"
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Common errors
var (
	ErrNilJobService = errors.New("job service cannot be nil")
	ErrNilExtractor  = errors.New("extractor cannot be nil")
	ErrNilSummarizer = errors.New("summarizer cannot be nil")
	ErrNilRenderer   = errors.New("renderer cannot be nil")
	ErrNilLogger     = errors.New("logger cannot be nil")
	ErrEmptyJobID    = errors.New("job ID cannot be empty")
)

// JobService defines the job lifecycle operations the task needs.
// The task executing a job is that job's single writer; these calls are the
// only place the record is mutated while the pipeline runs.
type JobService interface {
	// GetJob retrieves a snapshot of a job by its ID
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error)

	// MarkJobProcessing transitions a pending job to processing
	MarkJobProcessing(ctx context.Context, jobID uuid.UUID) error

	// MarkJobCompleted transitions a processing job to completed with its artifact ref
	MarkJobCompleted(ctx context.Context, jobID uuid.UUID, outputRef string) error

	// MarkJobFailed transitions a job to failed with the failing stage and cause
	MarkJobFailed(ctx context.Context, jobID uuid.UUID, stage domain.Stage, detail string) error
}

// Extractor defines the interface for the document text extraction collaborator
type Extractor interface {
	// Extract reads the stored upload and returns its plain text
	Extract(ctx context.Context, sourceRef string) (string, error)
}

// Summarizer defines the interface for the summarization collaborator
type Summarizer interface {
	// Summarize condenses the extracted text. Oversized input is the
	// collaborator's problem to truncate per its own input-length contract.
	Summarize(ctx context.Context, text string) (string, error)
}

// Renderer defines the interface for the slide deck rendering collaborator
type Renderer interface {
	// Render produces the deck artifact and returns its output ref.
	// The ref must only be returned once the artifact is fully written.
	Render(ctx context.Context, summary, title string) (string, error)
}

// UploadCleaner removes stored uploads once the pipeline no longer needs them
type UploadCleaner interface {
	RemoveUpload(ctx context.Context, sourceRef string) error
}

// deckGenerationPayload represents the serialized data stored in the task
type deckGenerationPayload struct {
	JobID uuid.UUID `json:"job_id"`
}

// DeckGenerationTask implements the Task interface for running the
// extract -> summarize -> render pipeline of one job
type DeckGenerationTask struct {
	id         uuid.UUID
	jobID      uuid.UUID
	jobs       JobService
	extractor  Extractor
	summarizer Summarizer
	renderer   Renderer
	cleaner    UploadCleaner
	logger     *slog.Logger
	status     string // Using string instead of TaskStatus to keep assignment sites terse
	stage      domain.Stage
}

// NewDeckGenerationTask creates a new deck generation task
func NewDeckGenerationTask(
	jobID uuid.UUID,
	jobs JobService,
	extractor Extractor,
	summarizer Summarizer,
	renderer Renderer,
	cleaner UploadCleaner,
	logger *slog.Logger,
) (*DeckGenerationTask, error) {
	// Validate dependencies
	if jobs == nil {
		return nil, ErrNilJobService
	}
	if extractor == nil {
		return nil, ErrNilExtractor
	}
	if summarizer == nil {
		return nil, ErrNilSummarizer
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	// Validate job ID
	if jobID == uuid.Nil {
		return nil, ErrEmptyJobID
	}

	return &DeckGenerationTask{
		id:         uuid.New(),
		jobID:      jobID,
		jobs:       jobs,
		extractor:  extractor,
		summarizer: summarizer,
		renderer:   renderer,
		cleaner:    cleaner,
		logger:     logger.With("task_type", TaskTypeDeckGeneration, "job_id", jobID),
		status:     statusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *DeckGenerationTask) ID() uuid.UUID {
	return t.id
}

// JobID returns the identifier of the job this task executes
func (t *DeckGenerationTask) JobID() uuid.UUID {
	return t.jobID
}

// CurrentStage returns the pipeline stage the task last entered. The
// runner's error handler uses it to attribute failures that escape
// Execute, such as panics.
func (t *DeckGenerationTask) CurrentStage() domain.Stage {
	return t.stage
}

// Type returns the task type identifier
func (t *DeckGenerationTask) Type() string {
	return TaskTypeDeckGeneration
}

// Payload returns the task data as a byte slice
func (t *DeckGenerationTask) Payload() []byte {
	payload := deckGenerationPayload{
		JobID: t.jobID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
// We convert the string to TaskStatus to fulfill the Task interface
func (t *DeckGenerationTask) Status() TaskStatus {
	return TaskStatus(t.status)
}

// Execute runs the deck generation pipeline for the job: transition to
// processing, then extract, summarize and render in order. The first
// stage failure is terminal — the job is marked failed with that stage's
// tag and no further stages run. Every failure path records an outcome on
// the job record; nothing is rethrown past the runner boundary unrecorded.
func (t *DeckGenerationTask) Execute(ctx context.Context) error {
	t.status = statusProcessing
	t.logger.Info("starting deck generation task")

	// 1. Retrieve the job record
	job, err := t.jobs.GetJob(ctx, t.jobID)
	if err != nil {
		t.status = statusFailed
		t.logger.Error("failed to retrieve job", "error", err)
		return fmt.Errorf("failed to retrieve job: %w", err)
	}

	// 2. Enter processing exactly once, before any stage runs
	if err := t.jobs.MarkJobProcessing(ctx, t.jobID); err != nil {
		t.status = statusFailed
		t.logger.Error("failed to mark job processing", "error", err)
		return fmt.Errorf("failed to mark job processing: %w", err)
	}

	// The stored upload is only needed for extraction; remove it when the
	// pipeline is done regardless of outcome.
	defer t.cleanupUpload(ctx, job.SourceRef)

	// 3. Extraction stage
	t.stage = domain.StageExtract
	t.logger.Info("extracting document text", "source_ref", job.SourceRef)
	text, err := t.extractor.Extract(ctx, job.SourceRef)
	if err != nil {
		return t.failStage(ctx, domain.StageExtract, err)
	}
	t.logger.Info("document text extracted", "chars", len(text))

	// 4. Summarization stage
	t.stage = domain.StageSummarize
	summary, err := t.summarizer.Summarize(ctx, text)
	if err != nil {
		return t.failStage(ctx, domain.StageSummarize, err)
	}
	t.logger.Info("summary generated", "summary_chars", len(summary))

	// 5. Rendering stage
	t.stage = domain.StageRender
	outputRef, err := t.renderer.Render(ctx, summary, job.OriginalName)
	if err != nil {
		return t.failStage(ctx, domain.StageRender, err)
	}
	t.logger.Info("deck rendered", "output_ref", outputRef)

	// 6. Terminal success; the renderer has already durably written the artifact
	if err := t.jobs.MarkJobCompleted(ctx, t.jobID, outputRef); err != nil {
		t.status = statusFailed
		t.logger.Error("failed to mark job completed", "error", err)
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	t.status = statusCompleted
	t.logger.Info("deck generation task completed successfully")
	return nil
}

// failStage records a stage failure on the job record and returns the
// wrapped error for the runner's logs. The stored detail is redacted so
// storage paths and credentials never reach a status response.
func (t *DeckGenerationTask) failStage(ctx context.Context, stage domain.Stage, cause error) error {
	t.status = statusFailed

	detail := redact.Error(cause)
	if err := t.jobs.MarkJobFailed(ctx, t.jobID, stage, detail); err != nil {
		t.logger.Error("failed to record stage failure on job",
			"stage", stage,
			"cause", cause,
			"error", err)
	}

	t.logger.Error("pipeline stage failed", "stage", stage, "error", cause)
	return fmt.Errorf("%s stage failed: %w", stage, cause)
}

// cleanupUpload deletes the stored upload; failures are logged only.
func (t *DeckGenerationTask) cleanupUpload(ctx context.Context, sourceRef string) {
	if t.cleaner == nil {
		return
	}
	if err := t.cleaner.RemoveUpload(ctx, sourceRef); err != nil {
		t.logger.Warn("failed to remove stored upload", "source_ref", sourceRef, "error", err)
	}
}
