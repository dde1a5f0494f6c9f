// Package poller implements a client for the document-to-deck service that
// submits a document and polls its job until it resolves. Only one job is
// tracked at a time: submitting a new document supersedes the previous one,
// and status responses that arrive for a superseded job are discarded so a
// slow response can never overwrite a newer submission's state.
package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync"
	"time"
)

// Terminal client-side states beyond the job's own lifecycle.
const (
	// StateGone reports that the service no longer knows the job
	StateGone = "gone"
)

// State is the poller's own lifecycle phase, distinct from the tracked
// job's state. It resolves according to the job's terminal outcome:
// resolved_success for a completed job, resolved_failure for a failed
// one, resolved_error when the service no longer knows the job.
type State string

// Poller lifecycle phases.
const (
	StateIdle            State = "idle"
	StateSubmitting      State = "submitting"
	StatePolling         State = "polling"
	StateResolvedSuccess State = "resolved_success"
	StateResolvedFailure State = "resolved_failure"
	StateResolvedError   State = "resolved_error"
)

// Status is a snapshot of the tracked job as last reported by the service.
type Status struct {
	JobID       string `json:"job_id"`
	State       string `json:"state"`
	OutputRef   string `json:"output_ref,omitempty"`
	Error       string `json:"error,omitempty"`
	FailedStage string `json:"failed_stage,omitempty"`
}

// Terminal reports whether the status ends polling.
func (s Status) Terminal() bool {
	return s.State == "completed" || s.State == "failed" || s.State == StateGone
}

// UpdateFunc receives status updates for the active job. It is called from
// the polling goroutine; implementations must be safe for that.
type UpdateFunc func(Status)

type submitResponse struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
}

// ErrSubmitFailed is returned when the service rejects a submission.
var ErrSubmitFailed = errors.New("document submission failed")

// Poller submits documents and tracks the resulting job.
type Poller struct {
	client   *http.Client
	baseURL  string
	interval time.Duration
	onUpdate UpdateFunc
	logger   *slog.Logger

	mu           sync.Mutex
	state        State
	activeJob    string
	cancelActive context.CancelFunc
	wg           sync.WaitGroup
}

// New creates a Poller. interval is the delay between status requests;
// onUpdate may be nil when the caller only needs submission side effects.
func New(baseURL string, interval time.Duration, onUpdate UpdateFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if onUpdate == nil {
		onUpdate = func(Status) {}
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  baseURL,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger.With("component", "poller"),
		state:    StateIdle,
	}
}

// State returns the poller's current lifecycle phase.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Submit uploads the document and starts polling the new job, superseding
// any job previously tracked. Returns the new job's ID.
func (p *Poller) Submit(ctx context.Context, filename string, content io.Reader) (string, error) {
	p.mu.Lock()
	prev := p.state
	p.state = StateSubmitting
	p.mu.Unlock()

	resp, err := p.upload(ctx, filename, content)
	if err != nil {
		// A failed submission leaves any previously tracked job untouched.
		p.mu.Lock()
		p.state = prev
		p.mu.Unlock()
		return "", err
	}

	p.mu.Lock()
	if p.cancelActive != nil {
		p.cancelActive()
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	p.activeJob = resp.JobID
	p.cancelActive = cancel
	p.state = StatePolling
	p.wg.Add(1)
	p.mu.Unlock()

	p.onUpdate(Status{JobID: resp.JobID, State: resp.State})

	go p.pollLoop(loopCtx, resp.JobID)
	return resp.JobID, nil
}

// Stop cancels the active polling loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancelActive != nil {
		p.cancelActive()
		p.cancelActive = nil
	}
	p.activeJob = ""
	p.state = StateIdle
	p.mu.Unlock()
	p.wg.Wait()
}

// resolve records the terminal phase for jobID unless a newer submission
// has taken over in the meantime.
func (p *Poller) resolve(jobID string, state State) {
	p.mu.Lock()
	if p.activeJob == jobID {
		p.state = state
	}
	p.mu.Unlock()
}

// isActive reports whether jobID is still the job this poller tracks.
// Checked after every response so results for superseded jobs are dropped
// no matter how late they arrive.
func (p *Poller) isActive(jobID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeJob == jobID
}

func (p *Poller) pollLoop(ctx context.Context, jobID string) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.fetchStatus(ctx, jobID)

		// The active job may have changed while the request was in
		// flight; this response belongs to a superseded submission.
		if !p.isActive(jobID) {
			p.logger.Debug("discarding stale status response", "job_id", jobID)
			return
		}

		if err != nil {
			if errors.Is(err, errJobGone) {
				p.resolve(jobID, StateResolvedError)
				p.onUpdate(Status{JobID: jobID, State: StateGone})
				return
			}
			// Transient: keep polling.
			p.logger.Warn("status request failed, will retry",
				"job_id", jobID,
				"error", err)
			continue
		}

		if status.Terminal() {
			if status.State == "completed" {
				p.resolve(jobID, StateResolvedSuccess)
			} else {
				p.resolve(jobID, StateResolvedFailure)
			}
			p.onUpdate(status)
			return
		}
		p.onUpdate(status)
	}
}

var errJobGone = errors.New("job not found")

func (p *Poller) fetchStatus(ctx context.Context, jobID string) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/jobs/%s", p.baseURL, jobID), nil)
	if err != nil {
		return Status{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Status{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Status{}, errJobGone
	case resp.StatusCode != http.StatusOK:
		return Status{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return Status{}, fmt.Errorf("decode status response: %w", err)
	}
	return status, nil
}

func (p *Poller) upload(ctx context.Context, filename string, content io.Reader) (*submitResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/documents", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrSubmitFailed, resp.StatusCode)
	}

	var submitted submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSubmitFailed, err)
	}
	if submitted.JobID == "" {
		return nil, fmt.Errorf("%w: response carried no job id", ErrSubmitFailed)
	}
	return &submitted, nil
}
