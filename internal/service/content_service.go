package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/events"
	"github.com/phrazzld/insight-api/internal/store"
	"github.com/phrazzld/insight-api/internal/task"
)

// ContentService provides operations on user-submitted content, from
// submission through asynchronous enrichment to owner-scoped reads and
// deletion.
type ContentService interface {
	// SubmitContent stores new content in pending status and emits an event
	// requesting its background enrichment. The returned record reflects the
	// stored pending state; enrichment results land asynchronously.
	SubmitContent(ctx context.Context, ownerID uuid.UUID, body string) (*domain.Content, error)

	// GetContent retrieves a single content record scoped to its owner.
	// Returns ErrContentNotFound when the record is missing or owned by
	// someone else.
	GetContent(ctx context.Context, ownerID, contentID uuid.UUID) (*domain.Content, error)

	// ListContents returns all content owned by ownerID, most recent first.
	ListContents(ctx context.Context, ownerID uuid.UUID) ([]*domain.Content, error)

	// DeleteContent removes a content record scoped to its owner.
	// Returns ErrContentNotFound when the record is missing or owned by
	// someone else.
	DeleteContent(ctx context.Context, ownerID, contentID uuid.UUID) error

	// ApplyEnrichment records a successful enrichment result on a pending
	// record. Applying to a record that is no longer pending is a no-op.
	ApplyEnrichment(
		ctx context.Context,
		contentID uuid.UUID,
		summary string,
		sentiment domain.Sentiment,
	) error

	// MarkEnrichmentFailed records a failed enrichment on a pending record,
	// leaving the summary and sentiment unset. Applying to a record that is
	// no longer pending is a no-op.
	MarkEnrichmentFailed(ctx context.Context, contentID uuid.UUID) error
}

// EnrichmentPayload is the task payload emitted when content is submitted.
type EnrichmentPayload struct {
	ContentID uuid.UUID `json:"content_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// ContentServiceImpl implements the ContentService interface
type ContentServiceImpl struct {
	contentStore store.ContentStore
	eventEmitter events.EventEmitter
	db           *sql.DB
	logger       *slog.Logger

	// maxInputLength bounds the accepted body size in bytes; zero disables
	// the check.
	maxInputLength int
}

// Ensure ContentServiceImpl implements ContentService interface
var _ ContentService = (*ContentServiceImpl)(nil)

// NewContentService creates a new ContentService
func NewContentService(
	contentStore store.ContentStore,
	eventEmitter events.EventEmitter,
	db *sql.DB,
	maxInputLength int,
	logger *slog.Logger,
) *ContentServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}

	return &ContentServiceImpl{
		contentStore:   contentStore,
		eventEmitter:   eventEmitter,
		db:             db,
		maxInputLength: maxInputLength,
		logger:         logger.With("component", "content_service"),
	}
}

// SubmitContent creates a new content record with pending status and emits
// an event requesting its enrichment. The record is committed before the
// event is emitted. A failed emit surfaces as an error to the caller and
// leaves the committed record pending: startup recovery re-runs it only if
// the task reached the journal first (a full queue); an emit that fails
// before journaling leaves a record the owner must delete and resubmit.
func (s *ContentServiceImpl) SubmitContent(
	ctx context.Context,
	ownerID uuid.UUID,
	body string,
) (*domain.Content, error) {
	if s.maxInputLength > 0 && len(body) > s.maxInputLength {
		s.logger.Debug("rejected oversized content submission",
			"user_id", ownerID,
			"body_length", len(body),
			"max_length", s.maxInputLength)
		return nil, ErrContentTooLarge
	}

	content, err := domain.NewContent(ownerID, body)
	if err != nil {
		s.logger.Debug("content validation failed during submit",
			"error", err,
			"user_id", ownerID)
		return nil, &ServiceError{
			Operation: "submit_content",
			Message:   "invalid content",
			Err:       err,
		}
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.contentStore.WithTx(tx)
		return txStore.Create(ctx, content)
	})
	if err != nil {
		s.logger.Error("failed to save content to database",
			"error", err,
			"user_id", ownerID,
			"content_id", content.ID)
		return nil, &ServiceError{
			Operation: "submit_content",
			Message:   "failed to save content",
			Err:       err,
		}
	}

	s.logger.Info("content created with pending status",
		"content_id", content.ID,
		"user_id", ownerID)

	event, err := events.NewTaskRequestEvent(task.TaskTypeContentEnrichment, EnrichmentPayload{
		ContentID: content.ID,
		UserID:    ownerID,
	})
	if err != nil {
		s.logger.Error("failed to create enrichment event",
			"error", err,
			"content_id", content.ID)
		return nil, &ServiceError{
			Operation: "submit_content",
			Message:   "failed to create event",
			Err:       err,
		}
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit enrichment event",
			"error", err,
			"content_id", content.ID,
			"event_id", event.ID)
		return nil, &ServiceError{
			Operation: "submit_content",
			Message:   "failed to emit event",
			Err:       err,
		}
	}

	s.logger.Info("enrichment event emitted",
		"content_id", content.ID,
		"user_id", ownerID,
		"event_id", event.ID)

	return content, nil
}

// GetContent retrieves a single content record scoped to its owner.
func (s *ContentServiceImpl) GetContent(
	ctx context.Context,
	ownerID, contentID uuid.UUID,
) (*domain.Content, error) {
	content, err := s.contentStore.GetForOwner(ctx, ownerID, contentID)
	if err != nil {
		if errors.Is(err, store.ErrContentNotFound) {
			return nil, ErrContentNotFound
		}
		s.logger.Error("failed to retrieve content",
			"error", err,
			"content_id", contentID,
			"user_id", ownerID)
		return nil, &ServiceError{
			Operation: "get_content",
			Message:   "failed to retrieve content",
			Err:       err,
		}
	}

	return content, nil
}

// ListContents returns all content owned by ownerID, most recent first.
func (s *ContentServiceImpl) ListContents(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Content, error) {
	contents, err := s.contentStore.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list contents",
			"error", err,
			"user_id", ownerID)
		return nil, &ServiceError{
			Operation: "list_contents",
			Message:   "failed to list contents",
			Err:       err,
		}
	}

	return contents, nil
}

// DeleteContent removes a content record scoped to its owner. Deleting a
// record whose enrichment is still in flight is safe: the enrichment update
// only matches pending rows and quietly matches nothing once the row is gone.
func (s *ContentServiceImpl) DeleteContent(ctx context.Context, ownerID, contentID uuid.UUID) error {
	err := s.contentStore.DeleteForOwner(ctx, ownerID, contentID)
	if err != nil {
		if errors.Is(err, store.ErrContentNotFound) {
			return ErrContentNotFound
		}
		s.logger.Error("failed to delete content",
			"error", err,
			"content_id", contentID,
			"user_id", ownerID)
		return &ServiceError{
			Operation: "delete_content",
			Message:   "failed to delete content",
			Err:       err,
		}
	}

	return nil
}

// ApplyEnrichment records a successful enrichment result on a pending record.
func (s *ContentServiceImpl) ApplyEnrichment(
	ctx context.Context,
	contentID uuid.UUID,
	summary string,
	sentiment domain.Sentiment,
) error {
	err := s.contentStore.UpdateEnrichment(
		ctx,
		contentID,
		&summary,
		&sentiment,
		domain.EnrichmentStatusComplete,
	)
	if err != nil {
		s.logger.Error("failed to apply enrichment result",
			"error", err,
			"content_id", contentID)
		return &ServiceError{
			Operation: "apply_enrichment",
			Message:   "failed to apply enrichment result",
			Err:       err,
		}
	}

	return nil
}

// MarkEnrichmentFailed records a failed enrichment on a pending record.
func (s *ContentServiceImpl) MarkEnrichmentFailed(ctx context.Context, contentID uuid.UUID) error {
	err := s.contentStore.UpdateEnrichment(ctx, contentID, nil, nil, domain.EnrichmentStatusFailed)
	if err != nil {
		s.logger.Error("failed to mark enrichment as failed",
			"error", err,
			"content_id", contentID)
		return &ServiceError{
			Operation: "mark_enrichment_failed",
			Message:   "failed to mark enrichment as failed",
			Err:       err,
		}
	}

	return nil
}
