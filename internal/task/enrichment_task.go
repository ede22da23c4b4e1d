package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/enrichment"
	"github.com/phrazzld/insight-api/internal/store"
)

// Common errors
var (
	ErrNilContentStore      = errors.New("content store cannot be nil")
	ErrNilEnricher          = errors.New("enricher cannot be nil")
	ErrNilEnrichmentWriter  = errors.New("enrichment writer cannot be nil")
	ErrNilLogger            = errors.New("logger cannot be nil")
	ErrEmptyEnrichContentID = errors.New("content ID cannot be empty")
)

// ContentReader provides unscoped content lookup for background work,
// which carries no caller identity.
type ContentReader interface {
	// GetByID retrieves a content record by its unique ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
}

// EnrichmentWriter records enrichment outcomes on content records.
// Both methods are no-ops when the record is no longer pending.
type EnrichmentWriter interface {
	// ApplyEnrichment records a successful enrichment result.
	ApplyEnrichment(
		ctx context.Context,
		contentID uuid.UUID,
		summary string,
		sentiment domain.Sentiment,
	) error

	// MarkEnrichmentFailed records a failed enrichment.
	MarkEnrichmentFailed(ctx context.Context, contentID uuid.UUID) error
}

// contentEnrichmentPayload represents the serialized data stored in the task
type contentEnrichmentPayload struct {
	ContentID uuid.UUID `json:"content_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// ContentEnrichmentTask implements the Task interface for enriching a
// content record with an LLM-generated summary and sentiment.
type ContentEnrichmentTask struct {
	id        uuid.UUID
	contentID uuid.UUID
	reader    ContentReader
	enricher  enrichment.Enricher
	writer    EnrichmentWriter
	logger    *slog.Logger
	status    TaskStatus
}

// NewContentEnrichmentTask creates a new content enrichment task
func NewContentEnrichmentTask(
	contentID uuid.UUID,
	reader ContentReader,
	enricher enrichment.Enricher,
	writer EnrichmentWriter,
	logger *slog.Logger,
) (*ContentEnrichmentTask, error) {
	if reader == nil {
		return nil, ErrNilContentStore
	}
	if enricher == nil {
		return nil, ErrNilEnricher
	}
	if writer == nil {
		return nil, ErrNilEnrichmentWriter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	if contentID == uuid.Nil {
		return nil, ErrEmptyEnrichContentID
	}

	return &ContentEnrichmentTask{
		id:        uuid.New(),
		contentID: contentID,
		reader:    reader,
		enricher:  enricher,
		writer:    writer,
		logger:    logger.With("task_type", TaskTypeContentEnrichment, "content_id", contentID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ContentEnrichmentTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ContentEnrichmentTask) Type() string {
	return TaskTypeContentEnrichment
}

// Payload returns the task data as a byte slice
func (t *ContentEnrichmentTask) Payload() []byte {
	payload := contentEnrichmentPayload{
		ContentID: t.contentID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *ContentEnrichmentTask) Status() TaskStatus {
	return t.status
}

// Execute runs the content enrichment task: load the record, call the
// enricher, and store the outcome. A record that no longer exists or has
// already left pending status makes the task a successful no-op, so
// duplicate deliveries and owner deletions racing in-flight work are
// absorbed here rather than surfaced as failures.
func (t *ContentEnrichmentTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting content enrichment task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	content, err := t.reader.GetByID(ctx, t.contentID)
	if err != nil {
		if errors.Is(err, store.ErrContentNotFound) {
			// The owner deleted the content before enrichment ran.
			t.status = TaskStatusCompleted
			t.logger.Info("content no longer exists, skipping enrichment")
			return nil
		}
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve content", "error", err)
		return fmt.Errorf("failed to retrieve content: %w", err)
	}

	if content.Status != domain.EnrichmentStatusPending {
		t.status = TaskStatusCompleted
		t.logger.Info("content already in terminal state, skipping enrichment",
			"content_status", string(content.Status))
		return nil
	}

	t.logger.Info("enriching content", "user_id", content.UserID, "body_length", len(content.Body))

	result, err := t.enricher.Enrich(ctx, content.Body)
	if err != nil {
		// Record the failure on the content so the owner can observe it and
		// resubmit. The task itself still fails for the journal.
		if markErr := t.writer.MarkEnrichmentFailed(ctx, t.contentID); markErr != nil {
			t.logger.Error("failed to mark content enrichment as failed",
				"error", markErr,
				"enrich_error", err)
		}
		t.status = TaskStatusFailed
		t.logger.Error("failed to enrich content", "error", err)
		return fmt.Errorf("failed to enrich content: %w", err)
	}

	if err := t.writer.ApplyEnrichment(ctx, t.contentID, result.Summary, result.Sentiment); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to store enrichment result", "error", err)
		return fmt.Errorf("failed to store enrichment result: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("content enrichment task completed successfully",
		"sentiment", string(result.Sentiment))
	return nil
}
