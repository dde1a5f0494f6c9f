package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/deckgen/deckgen-api/internal/api/shared"
	"github.com/deckgen/deckgen-api/internal/platform/logger"
	"github.com/deckgen/deckgen-api/internal/service"
	"github.com/go-chi/chi/v5"
)

// ResultHandler serves published deck artifacts.
type ResultHandler struct {
	results service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(results service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

// GetResult handles GET /api/results/{filename} requests, streaming the
// deck artifact of a completed job.
func (h *ResultHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing result file name")
		return
	}

	rc, job, err := h.results.Open(r.Context(), filename)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already written; all we can do is log.
		logger.FromContextOrDefault(r.Context(), nil).Error("failed to stream result",
			"error", err,
			"job_id", job.ID,
			"output_ref", filename)
	}
}
