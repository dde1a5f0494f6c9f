package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deckgen/deckgen-api/internal/events"
	"github.com/google/uuid"
)

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns deck generation request events into tasks and hands them to the
// runner. Dispatch errors propagate back to the emitter so the submission
// path can react (a scheduling failure must not leave a job stuck pending).
type TaskFactoryEventHandler struct {
	taskFactory *DeckGenerationTaskFactory
	taskRunner  *TaskRunner
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory *DeckGenerationTaskFactory,
	taskRunner *TaskRunner,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeDeckGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		JobID string `json:"job_id"`
	}

	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		h.logger.Error("invalid job ID",
			"error", err,
			"job_id", payload.JobID,
			"event_id", event.ID)
		return fmt.Errorf("invalid job ID: %w", err)
	}

	task, err := h.taskFactory.CreateTask(jobID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"job_id", jobID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"job_id", jobID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"job_id", jobID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
