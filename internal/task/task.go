package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a background task.
type TaskStatus string

// Task lifecycle states, as persisted in the tasks journal.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeContentEnrichment represents the task type for enriching
	// submitted content with an LLM-generated summary and sentiment.
	TaskTypeContentEnrichment = "content_enrichment"
)

// Task is a unit of background work the runner can execute and journal.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type names the kind of work the task performs.
	Type() string

	// Payload returns the task's serialized input data.
	Payload() []byte

	// Status returns the task's current lifecycle state.
	Status() TaskStatus

	// Execute performs the work.
	Execute(ctx context.Context) error
}

// TaskFactory reconstructs an executable task from its persisted form.
// Tasks loaded from the database after a restart carry only their type and
// payload; a factory rebinds them to the dependencies they need to run.
type TaskFactory interface {
	// CreateTask builds an executable task for the given persisted record.
	CreateTask(id uuid.UUID, payload []byte) (Task, error)
}

// TaskStore is the durable journal behind the runner. Every submitted task
// is saved before it is queued so unfinished work survives a restart.
type TaskStore interface {
	// SaveTask journals a task.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus records a task's lifecycle transition, with an
	// optional error message for failed tasks.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks returns all tasks still waiting to run.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks returns tasks marked processing. A non-zero
	// olderThan restricts the result to tasks stuck in that state for at
	// least that long.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a TaskStore bound to the given transaction, so a task
	// can be journaled atomically with other writes. The caller owns the
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
