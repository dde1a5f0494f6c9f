package main

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/deckgen/deckgen-api/internal/config"
	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		Storage: config.StorageConfig{
			UploadDir:      filepath.Join(root, "uploads"),
			OutputDir:      filepath.Join(root, "outputs"),
			MaxUploadBytes: 1 << 20,
		},
		Task: config.TaskConfig{WorkerCount: 1, QueueSize: 10},
		Summarizer: config.SummarizerConfig{
			Provider:      "extractive",
			MaxInputChars: 10000,
		},
	}
}

// docxBytes builds a minimal docx container holding one paragraph per line.
func docxBytes(t *testing.T, lines ...string) *bytes.Buffer {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range lines {
		body.WriteString(`<w:p><w:r><w:t>` + line + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	part, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = part.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return &buf
}

func waitForTerminal(t *testing.T, app *application, jobID uuid.UUID) *domain.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := app.documentService.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return nil
}

func TestApplication_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	logger := testLogger()

	app, err := newApplication(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer app.cleanup()

	doc := docxBytes(t,
		"Quarterly revenue grew by twelve percent across all regions.",
		"Operating costs were reduced through vendor consolidation.",
	)

	job, err := app.documentService.SubmitDocument(context.Background(), "q3-summary.docx", doc)
	require.NoError(t, err)
	require.Equal(t, domain.JobStatePending, job.State)

	final := waitForTerminal(t, app, job.ID)
	require.Equal(t, domain.JobStateCompleted, final.State, "detail: %s", final.ErrorDetail)
	require.NotEmpty(t, final.OutputRef)

	// The published deck is readable through the result service.
	rc, owner, err := app.resultService.Open(context.Background(), final.OutputRef)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	assert.Equal(t, job.ID, owner.ID)
	html, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Quarterly revenue grew by twelve percent across all regions.")

	// The consumed upload is gone.
	entries, err := os.ReadDir(cfg.Storage.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplication_ConcurrentSubmissionsStayIsolated(t *testing.T) {
	cfg := testConfig(t)
	cfg.Task.WorkerCount = 2

	app, err := newApplication(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer app.cleanup()

	docA := docxBytes(t, "Alpha division revenue grew steadily across the quarter.")
	docB := docxBytes(t, "Beta division costs fell after the vendor consolidation.")

	jobs := make([]*domain.Job, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		jobs[0], errs[0] = app.documentService.SubmitDocument(context.Background(), "alpha.docx", docA)
	}()
	go func() {
		defer wg.Done()
		jobs[1], errs[1] = app.documentService.SubmitDocument(context.Background(), "beta.docx", docB)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.NotEqual(t, jobs[0].ID, jobs[1].ID, "every submission gets its own job")

	finalA := waitForTerminal(t, app, jobs[0].ID)
	finalB := waitForTerminal(t, app, jobs[1].ID)

	// Each job resolved on its own record: right name, right artifact,
	// neither clobbered by the other pipeline.
	require.Equal(t, domain.JobStateCompleted, finalA.State, "detail: %s", finalA.ErrorDetail)
	require.Equal(t, domain.JobStateCompleted, finalB.State, "detail: %s", finalB.ErrorDetail)
	assert.Equal(t, "alpha.docx", finalA.OriginalName)
	assert.Equal(t, "beta.docx", finalB.OriginalName)
	require.NotEmpty(t, finalA.OutputRef)
	require.NotEmpty(t, finalB.OutputRef)
	assert.NotEqual(t, finalA.OutputRef, finalB.OutputRef)

	rc, owner, err := app.resultService.Open(context.Background(), finalA.OutputRef)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	assert.Equal(t, jobs[0].ID, owner.ID)
	html, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Alpha division revenue grew steadily across the quarter.")
	assert.NotContains(t, string(html), "Beta division costs")
}

func TestApplication_FailedExtractionIsRecorded(t *testing.T) {
	cfg := testConfig(t)

	app, err := newApplication(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer app.cleanup()

	job, err := app.documentService.SubmitDocument(context.Background(), "broken.docx",
		bytes.NewReader([]byte("not a zip archive")))
	require.NoError(t, err)

	final := waitForTerminal(t, app, job.ID)
	assert.Equal(t, domain.JobStateFailed, final.State)
	assert.Equal(t, domain.StageExtract, final.FailedStage)
	assert.NotEmpty(t, final.ErrorDetail)
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := newSummarizer(context.Background(), config.SummarizerConfig{Provider: "markov"}, testLogger())
	assert.Error(t, err)
}
