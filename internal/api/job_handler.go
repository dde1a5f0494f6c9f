package api

import (
	"net/http"

	"github.com/deckgen/deckgen-api/internal/api/shared"
	"github.com/deckgen/deckgen-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// JobHandler handles job status queries.
type JobHandler struct {
	documents service.DocumentService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(documents service.DocumentService) *JobHandler {
	return &JobHandler{documents: documents}
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.documents.GetJob(r.Context(), jobID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(job))
}
