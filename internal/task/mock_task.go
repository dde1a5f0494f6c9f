package task

import (
	"context"

	"github.com/google/uuid"
)

// MockTask is a configurable Task implementation for tests.
type MockTask struct {
	TaskID    uuid.UUID
	TaskType  string
	Data      []byte
	status    TaskStatus
	ExecuteFn func(ctx context.Context) error
}

// NewMockTask creates a MockTask with a fresh ID and the given payload.
func NewMockTask(payload string) *MockTask {
	return &MockTask{
		TaskID:   uuid.New(),
		TaskType: "mock_task",
		Data:     []byte(payload),
		status:   TaskStatusPending,
	}
}

func (t *MockTask) ID() uuid.UUID      { return t.TaskID }
func (t *MockTask) Type() string       { return t.TaskType }
func (t *MockTask) Payload() []byte    { return t.Data }
func (t *MockTask) Status() TaskStatus { return t.status }

func (t *MockTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	if t.ExecuteFn != nil {
		if err := t.ExecuteFn(ctx); err != nil {
			t.status = TaskStatusFailed
			return err
		}
	}
	t.status = TaskStatusCompleted
	return nil
}
