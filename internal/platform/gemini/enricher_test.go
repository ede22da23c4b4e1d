package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/phrazzld/insight-api/internal/config"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/enrichment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnricher(t *testing.T) *GeminiEnricher {
	t.Helper()
	return &GeminiEnricher{
		logger: slog.Default(),
		config: config.LLMConfig{
			ModelName:  "gemini-2.0-flash",
			MaxRetries: 2,
		},
		model: "gemini-2.0-flash",
		rng:   rand.New(rand.NewSource(1)),
	}
}

func TestNewGeminiEnricherValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nil logger", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiEnricher(ctx, nil, config.LLMConfig{
			GeminiAPIKey: "test-key",
			ModelName:    "gemini-2.0-flash",
		})
		assert.Error(t, err)
	})

	t.Run("missing API key", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiEnricher(ctx, slog.Default(), config.LLMConfig{
			ModelName: "gemini-2.0-flash",
		})
		assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		t.Parallel()
		_, err := NewGeminiEnricher(ctx, slog.Default(), config.LLMConfig{
			GeminiAPIKey: "test-key",
		})
		assert.ErrorIs(t, err, enrichment.ErrInvalidConfig)
	})
}

func TestParseResponseText(t *testing.T) {
	t.Parallel()

	t.Run("valid JSON", func(t *testing.T) {
		t.Parallel()
		parsed, err := parseResponseText(
			`{"summary": "A short note about the weather.", "sentiment": "neutral"}`,
		)
		require.NoError(t, err)
		assert.Equal(t, "A short note about the weather.", parsed.Summary)
		assert.Equal(t, "neutral", parsed.Sentiment)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		_, err := parseResponseText("")
		assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		_, err := parseResponseText(`{"summary": "truncated`)
		assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
	})
}

func TestParseResponse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := newTestEnricher(t)

	t.Run("valid response", func(t *testing.T) {
		t.Parallel()
		result, err := g.parseResponse(ctx, &responseSchema{
			Summary:   "The author is happy about the product launch.",
			Sentiment: "positive",
		})
		require.NoError(t, err)
		assert.Equal(t, "The author is happy about the product launch.", result.Summary)
		assert.Equal(t, domain.SentimentPositive, result.Sentiment)
	})

	t.Run("sentiment label is normalized", func(t *testing.T) {
		t.Parallel()
		result, err := g.parseResponse(ctx, &responseSchema{
			Summary:   "A neutral observation.",
			Sentiment: "Neutral",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.SentimentNeutral, result.Sentiment)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		_, err := g.parseResponse(ctx, nil)
		assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
	})

	t.Run("missing summary", func(t *testing.T) {
		t.Parallel()
		_, err := g.parseResponse(ctx, &responseSchema{Sentiment: "negative"})
		assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
	})

	t.Run("sentiment outside closed set", func(t *testing.T) {
		t.Parallel()
		_, err := g.parseResponse(ctx, &responseSchema{
			Summary:   "Some text.",
			Sentiment: "ecstatic",
		})
		assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
	})
}

func TestEnrichRejectsEmptyText(t *testing.T) {
	t.Parallel()

	g := newTestEnricher(t)
	_, err := g.Enrich(context.Background(), "")
	assert.ErrorIs(t, err, enrichment.ErrEmptyText)
}

// stubCall replaces the enricher's model invocation with a scripted sequence
// of outcomes, one per attempt, and counts how often it was invoked.
type stubCall struct {
	calls     int
	responses []func() (*responseSchema, bool, error)
}

func (s *stubCall) fn(ctx context.Context, text string) (*responseSchema, bool, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i]()
}

func transientFailure() (*responseSchema, bool, error) {
	return nil, true, fmt.Errorf("gemini API call failed: %w", errors.New("503 service unavailable"))
}

func TestCallGeminiWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("transient error recovers on a later attempt", func(t *testing.T) {
		t.Parallel()
		g := newTestEnricher(t)
		g.config.RetryDelaySeconds = 1
		stub := &stubCall{responses: []func() (*responseSchema, bool, error){
			transientFailure,
			func() (*responseSchema, bool, error) {
				return &responseSchema{Summary: "A short note.", Sentiment: "neutral"}, false, nil
			},
		}}
		g.call = stub.fn

		result, err := g.Enrich(context.Background(), "some text")
		require.NoError(t, err)
		assert.Equal(t, "A short note.", result.Summary)
		assert.Equal(t, domain.SentimentNeutral, result.Sentiment)
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("transient error exhausts bounded attempts", func(t *testing.T) {
		t.Parallel()
		g := newTestEnricher(t)
		g.config.MaxRetries = 1
		g.config.RetryDelaySeconds = 1
		stub := &stubCall{responses: []func() (*responseSchema, bool, error){transientFailure}}
		g.call = stub.fn

		_, err := g.Enrich(context.Background(), "some text")
		assert.ErrorIs(t, err, enrichment.ErrTransientFailure)
		assert.Equal(t, 2, stub.calls, "expected MaxRetries+1 attempts")
	})

	t.Run("blocked content is not retried", func(t *testing.T) {
		t.Parallel()
		g := newTestEnricher(t)
		stub := &stubCall{responses: []func() (*responseSchema, bool, error){
			func() (*responseSchema, bool, error) {
				return nil, false, fmt.Errorf("%w: content blocked by safety filters",
					enrichment.ErrContentBlocked)
			},
		}}
		g.call = stub.fn

		_, err := g.Enrich(context.Background(), "some text")
		assert.ErrorIs(t, err, enrichment.ErrContentBlocked)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("malformed response is not retried", func(t *testing.T) {
		t.Parallel()
		g := newTestEnricher(t)
		stub := &stubCall{responses: []func() (*responseSchema, bool, error){
			func() (*responseSchema, bool, error) {
				return nil, false, fmt.Errorf("%w: no content generated",
					enrichment.ErrInvalidResponse)
			},
		}}
		g.call = stub.fn

		_, err := g.Enrich(context.Background(), "some text")
		assert.ErrorIs(t, err, enrichment.ErrInvalidResponse)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("cancellation during backoff aborts without further attempts", func(t *testing.T) {
		t.Parallel()
		g := newTestEnricher(t)
		g.config.RetryDelaySeconds = 1

		ctx, cancel := context.WithCancel(context.Background())
		stub := &stubCall{responses: []func() (*responseSchema, bool, error){
			func() (*responseSchema, bool, error) {
				// Cancel while the retry loop is about to back off.
				cancel()
				return transientFailure()
			},
		}}
		g.call = stub.fn

		_, err := g.Enrich(ctx, "some text")
		assert.ErrorIs(t, err, enrichment.ErrTransientFailure)
		assert.ErrorContains(t, err, context.Canceled.Error())
		assert.Equal(t, 1, stub.calls)
	})
}
