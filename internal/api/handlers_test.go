package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocumentService implements service.DocumentService for handler tests.
type fakeDocumentService struct {
	submitJob *domain.Job
	submitErr error
	getJob    *domain.Job
	getErr    error

	submittedName string
}

func (f *fakeDocumentService) SubmitDocument(ctx context.Context, originalName string, content io.Reader) (*domain.Job, error) {
	f.submittedName = originalName
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitJob, nil
}

func (f *fakeDocumentService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.Job, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getJob, nil
}

func (f *fakeDocumentService) MarkJobProcessing(ctx context.Context, jobID uuid.UUID) error {
	return nil
}

func (f *fakeDocumentService) MarkJobCompleted(ctx context.Context, jobID uuid.UUID, outputRef string) error {
	return nil
}

func (f *fakeDocumentService) MarkJobFailed(ctx context.Context, jobID uuid.UUID, stage domain.Stage, detail string) error {
	return nil
}

// fakeResultService implements service.ResultService for handler tests.
type fakeResultService struct {
	content string
	job     *domain.Job
	err     error
}

func (f *fakeResultService) Open(ctx context.Context, filename string) (io.ReadCloser, *domain.Job, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.content)), f.job, nil
}

func testJob(t *testing.T) *domain.Job {
	t.Helper()
	job, err := domain.NewJob("uploads/x_report.pdf", "report.pdf")
	require.NoError(t, err)
	return job
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentHandler_SubmitDocument(t *testing.T) {
	t.Parallel()

	t.Run("accepted submission returns 202 with job id", func(t *testing.T) {
		t.Parallel()

		job := testJob(t)
		svc := &fakeDocumentService{submitJob: job}
		handler := NewDocumentHandler(svc, 1<<20)

		body, contentType := multipartBody(t, "file", "report.pdf", "content")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.SubmitDocument(rr, req)

		require.Equal(t, http.StatusAccepted, rr.Code)
		assert.Equal(t, "report.pdf", svc.submittedName)

		var resp SubmitResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, job.ID.String(), resp.JobID)
		assert.Equal(t, string(domain.JobStatePending), resp.State)
	})

	t.Run("missing file field is a 400", func(t *testing.T) {
		t.Parallel()

		handler := NewDocumentHandler(&fakeDocumentService{}, 1<<20)
		body, contentType := multipartBody(t, "attachment", "report.pdf", "content")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.SubmitDocument(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unsupported type maps to 415", func(t *testing.T) {
		t.Parallel()

		svc := &fakeDocumentService{submitErr: service.ErrUnsupportedDocumentType}
		handler := NewDocumentHandler(svc, 1<<20)

		body, contentType := multipartBody(t, "file", "notes.txt", "content")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.SubmitDocument(rr, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})

	t.Run("oversized upload is a 413", func(t *testing.T) {
		t.Parallel()

		handler := NewDocumentHandler(&fakeDocumentService{submitJob: testJob(t)}, 16)
		body, contentType := multipartBody(t, "file", "big.pdf", strings.Repeat("x", 8192))
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.SubmitDocument(rr, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	t.Run("empty file is a 400", func(t *testing.T) {
		t.Parallel()

		handler := NewDocumentHandler(&fakeDocumentService{submitJob: testJob(t)}, 1<<20)
		body, contentType := multipartBody(t, "file", "report.pdf", "")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		handler.SubmitDocument(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestJobHandler_GetJob(t *testing.T) {
	t.Parallel()

	newRequest := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("pending job omits output and error fields", func(t *testing.T) {
		t.Parallel()

		job := testJob(t)
		handler := NewJobHandler(&fakeDocumentService{getJob: job})
		rr := httptest.NewRecorder()

		handler.GetJob(rr, newRequest(job.ID.String()))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, job.ID.String(), resp["job_id"])
		assert.Equal(t, "pending", resp["state"])
		assert.NotContains(t, resp, "output_ref")
		assert.NotContains(t, resp, "error")
		assert.NotContains(t, resp, "failed_stage")
	})

	t.Run("completed job carries its output ref", func(t *testing.T) {
		t.Parallel()

		job := testJob(t)
		require.NoError(t, job.MarkProcessing())
		require.NoError(t, job.MarkCompleted("report_deck.html"))

		handler := NewJobHandler(&fakeDocumentService{getJob: job})
		rr := httptest.NewRecorder()
		handler.GetJob(rr, newRequest(job.ID.String()))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp JobResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp.State)
		assert.Equal(t, "report_deck.html", resp.OutputRef)
	})

	t.Run("failed job carries error and stage", func(t *testing.T) {
		t.Parallel()

		job := testJob(t)
		require.NoError(t, job.MarkProcessing())
		require.NoError(t, job.MarkFailed(domain.StageExtract, "no extractable text"))

		handler := NewJobHandler(&fakeDocumentService{getJob: job})
		rr := httptest.NewRecorder()
		handler.GetJob(rr, newRequest(job.ID.String()))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp JobResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "failed", resp.State)
		assert.Equal(t, "no extractable text", resp.Error)
		assert.Equal(t, string(domain.StageExtract), resp.FailedStage)
	})

	t.Run("unknown job is a 404", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeDocumentService{getErr: service.ErrJobNotFound})
		rr := httptest.NewRecorder()
		handler.GetJob(rr, newRequest(uuid.NewString()))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id is a 400", func(t *testing.T) {
		t.Parallel()

		handler := NewJobHandler(&fakeDocumentService{})
		rr := httptest.NewRecorder()
		handler.GetJob(rr, newRequest("not-a-uuid"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestResultHandler_GetResult(t *testing.T) {
	t.Parallel()

	newRequest := func(filename string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/results/"+filename, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("filename", filename)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	t.Run("streams the artifact with html content type", func(t *testing.T) {
		t.Parallel()

		job := testJob(t)
		handler := NewResultHandler(&fakeResultService{content: "<html>deck</html>", job: job})
		rr := httptest.NewRecorder()

		handler.GetResult(rr, newRequest("report_deck.html"))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "report_deck.html")
		assert.Equal(t, "<html>deck</html>", rr.Body.String())
	})

	t.Run("unknown artifact is a 404", func(t *testing.T) {
		t.Parallel()

		handler := NewResultHandler(&fakeResultService{err: service.ErrResultNotFound})
		rr := httptest.NewRecorder()
		handler.GetResult(rr, newRequest("nope.html"))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestMapErrorToStatusCode_Unknown(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusInternalServerError, MapErrorToStatusCode(io.ErrUnexpectedEOF))
	// An artifact whose job has not completed is absent, not pending.
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(service.ErrResultNotReady))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(io.ErrUnexpectedEOF))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
