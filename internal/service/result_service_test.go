package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/platform/filestore"
	"github.com/deckgen/deckgen-api/internal/platform/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOutputOpener serves artifacts from a map.
type fakeOutputOpener struct {
	files map[string]string
}

func (f *fakeOutputOpener) OpenOutput(ctx context.Context, filename string) (io.ReadCloser, error) {
	content, ok := f.files[filename]
	if !ok {
		return nil, filestore.ErrOutputNotFound
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func newCompletedJob(t *testing.T, store *memstore.JobStore, outputRef string) *domain.Job {
	t.Helper()
	ctx := context.Background()

	job, err := domain.NewJob("uploads/x_report.pdf", "report.pdf")
	require.NoError(t, err)
	require.NoError(t, store.CreateJob(ctx, job))
	require.NoError(t, job.MarkProcessing())
	require.NoError(t, job.MarkCompleted(outputRef))
	require.NoError(t, store.UpdateJob(ctx, job))
	return job
}

func TestResultService_Open(t *testing.T) {
	t.Parallel()

	t.Run("streams the artifact of a completed job", func(t *testing.T) {
		t.Parallel()

		jobStore := memstore.NewJobStore(nil)
		want := newCompletedJob(t, jobStore, "report_deck.html")
		opener := &fakeOutputOpener{files: map[string]string{"report_deck.html": "<html>deck</html>"}}

		svc, err := NewResultService(jobStore, opener, nil)
		require.NoError(t, err)

		rc, job, err := svc.Open(context.Background(), "report_deck.html")
		require.NoError(t, err)
		defer func() { _ = rc.Close() }()

		assert.Equal(t, want.ID, job.ID)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "<html>deck</html>", string(data))
	})

	t.Run("unknown name yields ErrResultNotFound", func(t *testing.T) {
		t.Parallel()

		svc, err := NewResultService(memstore.NewJobStore(nil), &fakeOutputOpener{}, nil)
		require.NoError(t, err)

		_, _, err = svc.Open(context.Background(), "nope.html")
		assert.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("missing artifact for a completed job yields ErrResultNotFound", func(t *testing.T) {
		t.Parallel()

		jobStore := memstore.NewJobStore(nil)
		newCompletedJob(t, jobStore, "gone_deck.html")

		svc, err := NewResultService(jobStore, &fakeOutputOpener{files: map[string]string{}}, nil)
		require.NoError(t, err)

		_, _, err = svc.Open(context.Background(), "gone_deck.html")
		assert.ErrorIs(t, err, ErrResultNotFound)
	})
}
