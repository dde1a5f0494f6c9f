package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deckgen/deckgen-api/internal/config"
	"github.com/deckgen/deckgen-api/internal/domain"
	"github.com/deckgen/deckgen-api/internal/events"
	"github.com/deckgen/deckgen-api/internal/extract"
	"github.com/deckgen/deckgen-api/internal/platform/filestore"
	"github.com/deckgen/deckgen-api/internal/platform/memstore"
	"github.com/deckgen/deckgen-api/internal/render"
	"github.com/deckgen/deckgen-api/internal/service"
	"github.com/deckgen/deckgen-api/internal/store"
	"github.com/deckgen/deckgen-api/internal/summarize"
	"github.com/deckgen/deckgen-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Storage
	jobStore store.JobStore
	files    *filestore.Store

	// Services
	documentService service.DocumentService
	resultService   service.ResultService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized and the worker pool started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	// Storage: the job store is in-memory (job state does not survive a
	// restart); uploads and published decks live on disk.
	app.jobStore = memstore.NewJobStore(logger)

	var err error
	app.files, err = filestore.New(
		cfg.Storage.UploadDir,
		cfg.Storage.OutputDir,
		cfg.Storage.MaxUploadBytes,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	// Event emitter wires document submission to task creation.
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	app.documentService, err = service.NewDocumentService(
		app.jobStore,
		app.files,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document service: %w", err)
	}

	app.resultService, err = service.NewResultService(app.jobStore, app.files, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create result service: %w", err)
	}

	// Pipeline collaborators
	extractor := extract.NewDocumentExtractor(logger)

	summarizer, err := newSummarizer(ctx, cfg.Summarizer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summarizer: %w", err)
	}
	logger.Info("summarizer initialized", "provider", cfg.Summarizer.Provider)

	renderer, err := render.NewHTMLDeckRenderer(app.files, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	// Task runner and event handler
	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
	app.taskRunner.SetErrorHandler(app.handleTaskFailure)

	taskFactory := task.NewDeckGenerationTaskFactory(
		app.documentService,
		extractor,
		summarizer,
		renderer,
		app.files,
		logger,
	)
	app.eventEmitter.(*events.InMemoryEventEmitter).RegisterHandler(
		task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger),
	)

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newSummarizer selects the summarization provider from configuration.
func newSummarizer(
	ctx context.Context,
	cfg config.SummarizerConfig,
	logger *slog.Logger,
) (task.Summarizer, error) {
	switch cfg.Provider {
	case "gemini":
		return summarize.NewGeminiSummarizer(ctx, logger, cfg)
	case "extractive":
		return summarize.NewExtractiveSummarizer(logger, cfg.MaxInputChars), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}

// handleTaskFailure is the runner's safety net for failures that escape a
// task's own bookkeeping, such as panics. A task failure must never leave
// its job stuck in a non-terminal state.
func (app *application) handleTaskFailure(failed task.Task, taskErr error) {
	deckTask, ok := failed.(*task.DeckGenerationTask)
	if !ok {
		return
	}

	ctx := context.Background()
	job, err := app.documentService.GetJob(ctx, deckTask.JobID())
	if err != nil {
		app.logger.Error("cannot inspect job after task failure",
			"error", err,
			"job_id", deckTask.JobID(),
			"task_error", taskErr)
		return
	}
	if job.IsTerminal() {
		// The task already recorded an outcome; nothing to repair.
		return
	}

	stage := deckTask.CurrentStage()
	if stage == "" {
		// The task never reached its first stage.
		stage = domain.StageScheduling
	}

	if err := app.documentService.MarkJobFailed(ctx, job.ID, stage,
		"processing aborted unexpectedly"); err != nil {
		app.logger.Error("failed to force-fail job after task failure",
			"error", err,
			"job_id", job.ID)
		return
	}

	app.logger.Warn("job force-failed after unrecorded task failure",
		"job_id", job.ID,
		"stage", stage,
		"task_error", taskErr)
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	app.logger.Info("application shutdown completed")
}
