package api

import (
	"errors"
	"net/http"

	"github.com/deckgen/deckgen-api/internal/api/shared"
	"github.com/deckgen/deckgen-api/internal/service"
)

// uploadFormField is the multipart form field carrying the document.
const uploadFormField = "file"

// DocumentHandler handles document submission requests.
type DocumentHandler struct {
	documents      service.DocumentService
	maxUploadBytes int64
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documents service.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
	}
}

// SubmitDocument handles POST /api/documents requests. The document arrives
// as the "file" field of a multipart form; a job is created and processing
// happens asynchronously, so success is 202 Accepted with the job's ID.
func (h *DocumentHandler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	// Cap the whole request body; the multipart reader fails once the
	// client exceeds it.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+4096)

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge,
				"Uploaded document is too large")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Request must be multipart form data with a 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Uploaded file must have a name")
		return
	}
	if header.Size == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Uploaded document is empty")
		return
	}

	job, err := h.documents.SubmitDocument(r.Context(), header.Filename, file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		JobID: job.ID.String(),
		State: string(job.State),
	})
}
