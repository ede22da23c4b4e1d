package enrichment

import (
	"context"

	"github.com/phrazzld/insight-api/internal/domain"
)

// Result holds the outcome of a successful enrichment: a short summary of
// the text and a sentiment label from the closed domain set. Both fields
// are always populated; a failed enrichment returns an error instead.
type Result struct {
	Summary   string
	Sentiment domain.Sentiment
}

// Enricher defines the interface for deriving a summary and sentiment from
// text. This interface serves as a boundary between the application core and
// external AI/LLM services, following the hexagonal architecture pattern.
type Enricher interface {
	// Enrich analyzes the provided text and returns its summary and
	// sentiment. The context can be used for cancellation and deadlines.
	//
	// Returns an error if the analysis fails (see errors.go for specific
	// types); in that case the Result is nil.
	Enrich(ctx context.Context, text string) (*Result, error)
}
