package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/platform/logger"
	"github.com/phrazzld/insight-api/internal/store"
)

// PostgresContentStore implements the store.ContentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresContentStore creates a new PostgreSQL implementation of the ContentStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure PostgresContentStore implements store.ContentStore interface
var _ store.ContentStore = (*PostgresContentStore)(nil)

// Create implements store.ContentStore.Create
// It saves a new content record to the database, handling domain validation.
// Returns validation errors from the domain Content if data is invalid.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *PostgresContentStore) Create(ctx context.Context, content *domain.Content) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := content.Validate(); err != nil {
		log.Warn("content validation failed during create",
			slog.String("error", err.Error()),
			slog.String("content_id", content.ID.String()))
		return err
	}

	query := `
		INSERT INTO contents (id, user_id, body, status, summary, sentiment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		content.ID,
		content.UserID,
		content.Body,
		content.Status,
		content.Summary,
		sentimentArg(content.Sentiment),
		content.CreatedAt,
		content.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during content creation",
				slog.String("error", err.Error()),
				slog.String("content_id", content.ID.String()),
				slog.String("user_id", content.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, content.UserID)
		}

		log.Error("failed to create content",
			slog.String("error", err.Error()),
			slog.String("content_id", content.ID.String()),
			slog.String("user_id", content.UserID.String()))
		return MapError(err)
	}

	log.Info("content created successfully",
		slog.String("content_id", content.ID.String()),
		slog.String("user_id", content.UserID.String()),
		slog.String("status", string(content.Status)))
	return nil
}

// GetByID implements store.ContentStore.GetByID
// It retrieves a content record by its unique ID without owner scoping;
// background enrichment tasks carry no caller identity.
// Returns store.ErrContentNotFound if the record does not exist.
func (s *PostgresContentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, body, status, summary, sentiment, created_at, updated_at
		FROM contents
		WHERE id = $1
	`

	content, err := s.scanContent(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("content not found", slog.String("content_id", id.String()))
			return nil, store.ErrContentNotFound
		}
		log.Error("failed to get content by ID",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()))
		return nil, MapError(err)
	}

	return content, nil
}

// GetForOwner implements store.ContentStore.GetForOwner
// The owner scope lives in the WHERE clause, so a record owned by a
// different user is indistinguishable from one that does not exist.
// Returns store.ErrContentNotFound in both cases.
func (s *PostgresContentStore) GetForOwner(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Content, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, body, status, summary, sentiment, created_at, updated_at
		FROM contents
		WHERE id = $1 AND user_id = $2
	`

	content, err := s.scanContent(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("content not found for owner",
				slog.String("content_id", id.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrContentNotFound
		}
		log.Error("failed to get content for owner",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()),
			slog.String("user_id", ownerID.String()))
		return nil, MapError(err)
	}

	return content, nil
}

// ListByOwner implements store.ContentStore.ListByOwner
// It returns all content owned by ownerID, most recent first.
// Returns an empty slice when the owner has no content.
func (s *PostgresContentStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Content, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, body, status, summary, sentiment, created_at, updated_at
		FROM contents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query contents by owner",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	contents := []*domain.Content{}
	for rows.Next() {
		content, err := s.scanContent(rows)
		if err != nil {
			log.Error("failed to scan content row",
				slog.String("error", err.Error()),
				slog.String("user_id", ownerID.String()))
			return nil, err
		}
		contents = append(contents, content)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning content rows",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}

	log.Debug("listed contents for owner",
		slog.String("user_id", ownerID.String()),
		slog.Int("count", len(contents)))
	return contents, nil
}

// DeleteForOwner implements store.ContentStore.DeleteForOwner
// Returns store.ErrContentNotFound if no record with the ID exists for that
// owner, whether the record is missing entirely or owned by someone else.
func (s *PostgresContentStore) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM contents
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		log.Error("failed to delete content",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()),
			slog.String("user_id", ownerID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("content not found for delete",
			slog.String("content_id", id.String()),
			slog.String("user_id", ownerID.String()))
		return store.ErrContentNotFound
	}

	log.Info("content deleted successfully",
		slog.String("content_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// UpdateEnrichment implements store.ContentStore.UpdateEnrichment
// Only rows still in pending status transition. A zero-row update means the
// record was already terminal or deleted while enrichment was in flight;
// both are treated as a successful no-op so duplicate or stale deliveries
// cannot overwrite a terminal result.
func (s *PostgresContentStore) UpdateEnrichment(
	ctx context.Context,
	id uuid.UUID,
	summary *string,
	sentiment *domain.Sentiment,
	status domain.EnrichmentStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !isTerminalStatus(status) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidEnrichmentStatus, status)
	}
	if (summary == nil) != (sentiment == nil) {
		return domain.ErrPartialEnrichment
	}
	if status == domain.EnrichmentStatusComplete && summary == nil {
		return domain.ErrPartialEnrichment
	}
	if status == domain.EnrichmentStatusFailed && summary != nil {
		return domain.ErrPartialEnrichment
	}
	if sentiment != nil && !domain.IsValidSentiment(*sentiment) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSentiment, *sentiment)
	}

	query := `
		UPDATE contents
		SET status = $1, summary = $2, sentiment = $3, updated_at = $4
		WHERE id = $5 AND status = 'pending'
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		status,
		summary,
		sentimentArg(sentiment),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to update content enrichment",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("content_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		// Already terminal, or deleted mid-flight. Either way the stored
		// state wins and this update is dropped.
		log.Debug("enrichment update matched no pending row",
			slog.String("content_id", id.String()),
			slog.String("status", string(status)))
		return nil
	}

	log.Info("content enrichment updated",
		slog.String("content_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.ContentStore.WithTx
// It returns a new ContentStore that executes against the given transaction.
func (s *PostgresContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &PostgresContentStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanContent.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanContent scans a content row in SELECT column order.
func (s *PostgresContentStore) scanContent(row rowScanner) (*domain.Content, error) {
	var content domain.Content
	var status string
	var summary sql.NullString
	var sentiment sql.NullString

	err := row.Scan(
		&content.ID,
		&content.UserID,
		&content.Body,
		&status,
		&summary,
		&sentiment,
		&content.CreatedAt,
		&content.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	content.Status = domain.EnrichmentStatus(status)
	if summary.Valid {
		content.Summary = &summary.String
	}
	if sentiment.Valid {
		sv := domain.Sentiment(sentiment.String)
		content.Sentiment = &sv
	}

	return &content, nil
}

// sentimentArg converts an optional sentiment to a driver-friendly value.
func sentimentArg(sentiment *domain.Sentiment) interface{} {
	if sentiment == nil {
		return nil
	}
	return string(*sentiment)
}

// isTerminalStatus reports whether status is one of the two terminal
// enrichment states.
func isTerminalStatus(status domain.EnrichmentStatus) bool {
	return status == domain.EnrichmentStatusComplete || status == domain.EnrichmentStatusFailed
}
