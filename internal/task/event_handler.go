package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/events"
)

// TaskSubmitter accepts tasks for background processing.
type TaskSubmitter interface {
	// Submit persists a task and adds it to the processing queue
	Submit(ctx context.Context, t Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns content enrichment request events into tasks and submits them
// to the task runner.
type TaskFactoryEventHandler struct {
	factory   *ContentEnrichmentTaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// factory to create tasks and submits them to the provided submitter.
func NewTaskFactoryEventHandler(
	factory *ContentEnrichmentTaskFactory,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeContentEnrichment {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload struct {
		ContentID uuid.UUID `json:"content_id"`
	}

	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.ContentID == uuid.Nil {
		h.logger.Error("event payload missing content ID", "event_id", event.ID)
		return fmt.Errorf("event payload missing content ID")
	}

	t, err := h.factory.CreateTaskForContent(payload.ContentID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"content_id", payload.ContentID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"content_id", payload.ContentID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", t.ID(),
		"content_id", payload.ContentID,
		"event_id", event.ID)
	return nil
}
