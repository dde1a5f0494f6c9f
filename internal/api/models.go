package api

import (
	"time"

	"github.com/deckgen/deckgen-api/internal/domain"
)

// JobResponse represents the response data for a job status query.
// OutputRef is only present for completed jobs; Error and FailedStage only
// for failed ones.
type JobResponse struct {
	JobID       string    `json:"job_id"`
	State       string    `json:"state"`
	OutputRef   string    `json:"output_ref,omitempty"`
	Error       string    `json:"error,omitempty"`
	FailedStage string    `json:"failed_stage,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubmitResponse represents the response to a document submission.
type SubmitResponse struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
}

// jobToResponse converts a domain.Job to a JobResponse.
func jobToResponse(job *domain.Job) JobResponse {
	return JobResponse{
		JobID:       job.ID.String(),
		State:       string(job.State),
		OutputRef:   job.OutputRef,
		Error:       job.ErrorDetail,
		FailedStage: string(job.FailedStage),
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}
