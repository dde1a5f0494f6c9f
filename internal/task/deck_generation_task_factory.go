package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// DeckGenerationTaskFactory creates DeckGenerationTask instances
type DeckGenerationTaskFactory struct {
	jobs       JobService
	extractor  Extractor
	summarizer Summarizer
	renderer   Renderer
	cleaner    UploadCleaner
	logger     *slog.Logger
}

// NewDeckGenerationTaskFactory creates a new factory for DeckGenerationTasks
func NewDeckGenerationTaskFactory(
	jobs JobService,
	extractor Extractor,
	summarizer Summarizer,
	renderer Renderer,
	cleaner UploadCleaner,
	logger *slog.Logger,
) *DeckGenerationTaskFactory {
	return &DeckGenerationTaskFactory{
		jobs:       jobs,
		extractor:  extractor,
		summarizer: summarizer,
		renderer:   renderer,
		cleaner:    cleaner,
		logger:     logger.With("component", "deck_generation_task_factory"),
	}
}

// CreateTask creates a new DeckGenerationTask for the specified job
func (f *DeckGenerationTaskFactory) CreateTask(jobID uuid.UUID) (Task, error) {
	task, err := NewDeckGenerationTask(
		jobID,
		f.jobs,
		f.extractor,
		f.summarizer,
		f.renderer,
		f.cleaner,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
