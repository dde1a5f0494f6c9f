package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is a minimal stand-in for the deck service: each submission
// gets a fresh job ID, and per-job status responses are scripted.
type fakeServer struct {
	mu       sync.Mutex
	statuses map[string][]Status // responses served in order, last repeats
	served   map[string]int
	gone     map[string]bool
	hold     map[string]chan struct{} // block status responses until released

	srv *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{
		statuses: make(map[string][]Status),
		served:   make(map[string]int),
		gone:     make(map[string]bool),
		hold:     make(map[string]chan struct{}),
	}

	r := chi.NewRouter()
	r.Post("/api/documents", func(w http.ResponseWriter, req *http.Request) {
		_, header, err := req.FormFile("file")
		require.NoError(t, err)

		jobID := uuid.NewString()
		f.mu.Lock()
		f.statuses[jobID] = append(f.statuses[jobID], Status{JobID: jobID, State: "pending"})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"job_id": jobID,
			"state":  "pending",
			"name":   header.Filename,
		})
	})
	r.Get("/api/jobs/{id}", func(w http.ResponseWriter, req *http.Request) {
		jobID := chi.URLParam(req, "id")

		f.mu.Lock()
		holdCh := f.hold[jobID]
		f.mu.Unlock()
		if holdCh != nil {
			<-holdCh
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.gone[jobID] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		script := f.statuses[jobID]
		if len(script) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		idx := f.served[jobID]
		if idx >= len(script) {
			idx = len(script) - 1
		}
		f.served[jobID]++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(script[idx])
	})

	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) script(jobID string, statuses ...Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[jobID] = statuses
	f.served[jobID] = 0
}

// collector gathers updates safely across goroutines.
type collector struct {
	mu      sync.Mutex
	updates []Status
	done    chan Status
}

func newCollector() *collector {
	return &collector{done: make(chan Status, 16)}
}

func (c *collector) update(s Status) {
	c.mu.Lock()
	c.updates = append(c.updates, s)
	c.mu.Unlock()
	if s.Terminal() {
		c.done <- s
	}
}

func (c *collector) all() []Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Status(nil), c.updates...)
}

func waitTerminal(t *testing.T, c *collector) Status {
	t.Helper()
	select {
	case s := <-c.done:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a terminal update")
		return Status{}
	}
}

func TestPoller_SubmitAndResolve(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	c := newCollector()
	p := New(server.srv.URL, 10*time.Millisecond, c.update, nil)
	defer p.Stop()

	assert.Equal(t, StateIdle, p.State())

	jobID, err := p.Submit(context.Background(), "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)
	require.NotEmpty(t, jobID)
	assert.Equal(t, StatePolling, p.State())

	server.script(jobID,
		Status{JobID: jobID, State: "processing"},
		Status{JobID: jobID, State: "completed", OutputRef: "report_deck.html"},
	)

	final := waitTerminal(t, c)
	assert.Equal(t, "completed", final.State)
	assert.Equal(t, "report_deck.html", final.OutputRef)
	assert.Equal(t, jobID, final.JobID)
	assert.Equal(t, StateResolvedSuccess, p.State())

	p.Stop()
	assert.Equal(t, StateIdle, p.State())
}

func TestPoller_ReportsFailure(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	c := newCollector()
	p := New(server.srv.URL, 10*time.Millisecond, c.update, nil)
	defer p.Stop()

	jobID, err := p.Submit(context.Background(), "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	server.script(jobID,
		Status{JobID: jobID, State: "failed", Error: "no extractable text", FailedStage: "extract"},
	)

	final := waitTerminal(t, c)
	assert.Equal(t, "failed", final.State)
	assert.Equal(t, "extract", final.FailedStage)
	assert.Equal(t, StateResolvedFailure, p.State())
}

func TestPoller_StopsWhenJobGone(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	c := newCollector()
	p := New(server.srv.URL, 10*time.Millisecond, c.update, nil)
	defer p.Stop()

	jobID, err := p.Submit(context.Background(), "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	server.mu.Lock()
	server.gone[jobID] = true
	server.mu.Unlock()

	final := waitTerminal(t, c)
	assert.Equal(t, StateGone, final.State)
	assert.Equal(t, StateResolvedError, p.State())
}

func TestPoller_DiscardsStaleResponses(t *testing.T) {
	t.Parallel()

	server := newFakeServer(t)
	c := newCollector()
	p := New(server.srv.URL, 10*time.Millisecond, c.update, nil)
	defer p.Stop()

	// Hold every status response for the first job so one is guaranteed to
	// be in flight when the second submission supersedes it.
	firstHold := make(chan struct{})
	firstID, err := p.Submit(context.Background(), "first.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	server.mu.Lock()
	server.hold[firstID] = firstHold
	server.statuses[firstID] = []Status{{JobID: firstID, State: "completed", OutputRef: "first_deck.html"}}
	server.mu.Unlock()

	// Give the first loop time to fire a request that is now blocked.
	time.Sleep(50 * time.Millisecond)

	secondID, err := p.Submit(context.Background(), "second.pdf", strings.NewReader("two"))
	require.NoError(t, err)
	server.script(secondID, Status{JobID: secondID, State: "completed", OutputRef: "second_deck.html"})

	// Release the stale response after the second job is active.
	close(firstHold)

	final := waitTerminal(t, c)
	assert.Equal(t, secondID, final.JobID)

	for _, update := range c.all() {
		if update.JobID == firstID {
			assert.Equal(t, "pending", update.State,
				"only the first job's submission ack may surface; its polled states must be discarded")
		}
	}
}

func TestPoller_SubmitRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		fmt.Fprint(w, `{"error":"Unsupported document type"}`)
	}))
	defer srv.Close()

	p := New(srv.URL, 10*time.Millisecond, nil, nil)
	defer p.Stop()

	_, err := p.Submit(context.Background(), "notes.txt", strings.NewReader("content"))
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Equal(t, StateIdle, p.State(), "a rejected submission with no prior job returns to idle")
}
