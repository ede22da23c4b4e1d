package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/enrichment"
)

// ContentEnrichmentTaskFactory creates ContentEnrichmentTask instances,
// both for fresh submissions and for tasks recovered from the journal
// after a restart.
type ContentEnrichmentTaskFactory struct {
	reader   ContentReader
	enricher enrichment.Enricher
	writer   EnrichmentWriter
	logger   *slog.Logger
}

// Ensure the factory can rebuild recovered tasks for the runner
var _ TaskFactory = (*ContentEnrichmentTaskFactory)(nil)

// NewContentEnrichmentTaskFactory creates a new factory for ContentEnrichmentTasks
func NewContentEnrichmentTaskFactory(
	reader ContentReader,
	enricher enrichment.Enricher,
	writer EnrichmentWriter,
	logger *slog.Logger,
) *ContentEnrichmentTaskFactory {
	return &ContentEnrichmentTaskFactory{
		reader:   reader,
		enricher: enricher,
		writer:   writer,
		logger:   logger.With("component", "content_enrichment_task_factory"),
	}
}

// CreateTaskForContent creates a new ContentEnrichmentTask for the specified content
func (f *ContentEnrichmentTaskFactory) CreateTaskForContent(contentID uuid.UUID) (Task, error) {
	return NewContentEnrichmentTask(
		contentID,
		f.reader,
		f.enricher,
		f.writer,
		f.logger,
	)
}

// CreateTask implements TaskFactory. It rebuilds an executable task from a
// persisted journal record, preserving the original task ID so status
// updates land on the existing row.
func (f *ContentEnrichmentTaskFactory) CreateTask(id uuid.UUID, payload []byte) (Task, error) {
	var p contentEnrichmentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrichment task payload: %w", err)
	}

	t, err := NewContentEnrichmentTask(
		p.ContentID,
		f.reader,
		f.enricher,
		f.writer,
		f.logger,
	)
	if err != nil {
		return nil, err
	}

	t.id = id
	return t, nil
}
