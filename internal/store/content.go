package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
)

// ContentStore defines the interface for content data persistence.
// All owner-scoped methods treat a record owned by a different user as
// absent: they return ErrContentNotFound, never a "forbidden" error.
type ContentStore interface {
	// Create saves a new content record to the store.
	// It handles domain validation internally.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, content *domain.Content) error

	// GetByID retrieves a content record by its unique ID without owner
	// scoping. It exists for background enrichment tasks, which hold no
	// caller identity. Returns ErrContentNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)

	// GetForOwner retrieves a content record by ID, scoped to its owner.
	// Returns ErrContentNotFound if no record with the ID exists for that owner.
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Content, error)

	// ListByOwner returns all content owned by ownerID, most recent first.
	// Returns an empty slice when the owner has no content.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Content, error)

	// DeleteForOwner removes a content record, scoped to its owner.
	// Returns ErrContentNotFound if no record with the ID exists for that owner.
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error

	// UpdateEnrichment applies a terminal enrichment result to a pending
	// record. Only records still in pending status transition; an update
	// that matches no pending row (already terminal, or deleted by the
	// owner while enrichment was in flight) is a silent no-op, which makes
	// the operation idempotent and safe under duplicate delivery.
	// Summary and sentiment must both be set (complete) or both nil (failed).
	UpdateEnrichment(ctx context.Context, id uuid.UUID, summary *string, sentiment *domain.Sentiment, status domain.EnrichmentStatus) error

	// WithTx returns a new ContentStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) ContentStore
}
