package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobState represents the lifecycle state of a document job.
type JobState string

// Possible job state values. Transitions are forward-only:
// pending -> processing -> completed|failed. Terminal states are immutable.
const (
	JobStatePending    JobState = "pending"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// Stage identifies the pipeline stage a failure occurred in.
type Stage string

// Pipeline stages, plus the submission-time scheduling pseudo-stage.
const (
	StageScheduling Stage = "scheduling"
	StageExtract    Stage = "extract"
	StageSummarize  Stage = "summarize"
	StageRender     Stage = "render"
)

// Validation errors wrap ErrValidation; transition errors stand alone.
var (
	ErrEmptyJobID        = fmt.Errorf("%w: job ID cannot be empty", ErrValidation)
	ErrEmptyJobSourceRef = fmt.Errorf("%w: job source ref cannot be empty", ErrValidation)
	ErrEmptyJobName      = fmt.Errorf("%w: job original name cannot be empty", ErrValidation)
	ErrInvalidJobState   = fmt.Errorf("%w: invalid job state", ErrValidation)
	ErrEmptyOutputRef    = fmt.Errorf("%w: output ref cannot be empty", ErrValidation)
	ErrEmptyErrorDetail  = fmt.Errorf("%w: error detail cannot be empty", ErrValidation)
	ErrEmptyFailureStage = fmt.Errorf("%w: failure stage cannot be empty", ErrValidation)

	ErrJobTerminal       = errors.New("job is in a terminal state")
	ErrInvalidTransition = errors.New("invalid job state transition")
)

// Job is the tracked unit of work for one uploaded document, from
// submission to terminal outcome. The record is only ever mutated by the
// pipeline execution that owns it; everything else reads snapshots.
type Job struct {
	ID           uuid.UUID `json:"id"`
	State        JobState  `json:"state"`
	SourceRef    string    `json:"source_ref"`
	OriginalName string    `json:"original_name"`
	OutputRef    string    `json:"output_ref,omitempty"`
	ErrorDetail  string    `json:"error_detail,omitempty"`
	FailedStage  Stage     `json:"failed_stage,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewJob creates a new Job for the given stored upload. It generates a new
// UUID, starts the job at pending, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewJob(sourceRef, originalName string) (*Job, error) {
	job := &Job{
		ID:           uuid.New(),
		State:        JobStatePending,
		SourceRef:    sourceRef,
		OriginalName: originalName,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// Validate checks if the Job has valid data.
// Returns an error if any field fails validation.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if j.SourceRef == "" {
		return ErrEmptyJobSourceRef
	}

	if j.OriginalName == "" {
		return ErrEmptyJobName
	}

	if !isValidJobState(j.State) {
		return ErrInvalidJobState
	}

	// outputRef is set if and only if the job completed; errorDetail and
	// the failed stage are set if and only if the job failed.
	switch j.State {
	case JobStateCompleted:
		if j.OutputRef == "" {
			return ErrEmptyOutputRef
		}
	case JobStateFailed:
		if j.ErrorDetail == "" {
			return ErrEmptyErrorDetail
		}
		if j.FailedStage == "" {
			return ErrEmptyFailureStage
		}
	default:
		if j.OutputRef != "" || j.ErrorDetail != "" {
			return ErrInvalidJobState
		}
	}

	return nil
}

// IsTerminal reports whether the job has reached completed or failed.
func (j *Job) IsTerminal() bool {
	return j.State == JobStateCompleted || j.State == JobStateFailed
}

// MarkProcessing transitions the job from pending to processing.
// Returns an error for any other starting state.
func (j *Job) MarkProcessing() error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	if j.State != JobStatePending {
		return ErrInvalidTransition
	}

	j.State = JobStateProcessing
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkCompleted transitions the job to completed and records the artifact
// reference. The job must be processing; outputRef must be non-empty.
func (j *Job) MarkCompleted(outputRef string) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	if j.State != JobStateProcessing {
		return ErrInvalidTransition
	}
	if outputRef == "" {
		return ErrEmptyOutputRef
	}

	j.State = JobStateCompleted
	j.OutputRef = outputRef
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions the job to failed with the stage the failure
// occurred in and a human-readable cause. Pending jobs may fail directly
// (scheduling failures happen before processing ever starts).
func (j *Job) MarkFailed(stage Stage, detail string) error {
	if j.IsTerminal() {
		return ErrJobTerminal
	}
	if stage == "" {
		return ErrEmptyFailureStage
	}
	if detail == "" {
		return ErrEmptyErrorDetail
	}

	j.State = JobStateFailed
	j.FailedStage = stage
	j.ErrorDetail = detail
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidJobState checks if the given state is a valid JobState.
func isValidJobState(state JobState) bool {
	switch state {
	case JobStatePending, JobStateProcessing, JobStateCompleted, JobStateFailed:
		return true
	default:
		return false
	}
}
