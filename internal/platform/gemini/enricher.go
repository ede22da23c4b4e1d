package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/phrazzld/insight-api/internal/config"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/enrichment"
	"google.golang.org/genai"
)

// systemInstruction steers the model toward short, neutral analysis. The
// response shape itself is enforced by the structured output schema.
const systemInstruction = "You are a content analysis service. " +
	"Given a piece of user-submitted text, produce a concise summary of at " +
	"most three sentences, and classify the overall sentiment of the text " +
	"as exactly one of: positive, neutral, negative."

// responseSchema mirrors the JSON object the model is constrained to return.
type responseSchema struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

// GeminiEnricher implements the enrichment.Enricher interface using
// Google's Gemini API to derive a summary and sentiment from content text.
type GeminiEnricher struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string

	// rng provides jitter for retry backoff
	rng *rand.Rand

	// call performs one model invocation. It defaults to callOnce and is
	// replaced in tests to exercise the retry policy without the network.
	call func(ctx context.Context, text string) (*responseSchema, bool, error)
}

// NewGeminiEnricher creates a new GeminiEnricher with the provided dependencies.
// It validates the configuration and initializes the underlying API client.
func NewGeminiEnricher(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiEnricher, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", enrichment.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", enrichment.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			enrichment.ErrInvalidConfig, err)
	}

	g := &GeminiEnricher{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.ModelName,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.call = g.callOnce
	return g, nil
}

// Ensure GeminiEnricher implements enrichment.Enricher interface
var _ enrichment.Enricher = (*GeminiEnricher)(nil)

// Enrich implements enrichment.Enricher.Enrich
// It calls the Gemini API with retries for transient failures and validates
// the structured response against the closed sentiment set.
func (g *GeminiEnricher) Enrich(ctx context.Context, text string) (*enrichment.Result, error) {
	if text == "" {
		return nil, enrichment.ErrEmptyText
	}

	response, err := g.callGeminiWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	return g.parseResponse(ctx, response)
}

// generateContentConfig builds the per-call request configuration. The
// response schema constrains the model to a JSON object with exactly the
// summary and sentiment fields.
func (g *GeminiEnricher) generateContentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {
					Type:        genai.TypeString,
					Description: "A concise summary of the text, at most three sentences.",
				},
				"sentiment": {
					Type:        genai.TypeString,
					Description: "The overall sentiment of the text.",
					Enum:        []string{"positive", "neutral", "negative"},
				},
			},
			Required: []string{"summary", "sentiment"},
		},
	}
}

// callGeminiWithRetry makes a call to the Gemini API with exponential backoff
// retry logic. It attempts the call up to config.MaxRetries+1 times, backing
// off with jitter between attempts for transient errors. Permanent errors
// (content blocked by safety filters, malformed responses) are returned
// immediately without retrying.
func (g *GeminiEnricher) callGeminiWithRetry(
	ctx context.Context,
	text string,
) (*responseSchema, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	attempt := 0

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 2)
		maxRetries = 2
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt <= maxRetries {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		response, transient, err := g.call(ctx, text)

		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return response, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if !transient {
			g.logger.WarnContext(ctx, "permanent error occurred, not retrying")
			return nil, err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				enrichment.ErrTransientFailure, maxRetries, err)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + g.rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return nil, fmt.Errorf("%w: %v", enrichment.ErrTransientFailure, ctx.Err())
		}

		attempt++
	}

	return nil, fmt.Errorf("%w: failed after %d attempts",
		enrichment.ErrTransientFailure, attempt)
}

// callOnce performs a single Gemini API call bounded by the configured
// request timeout. The transient return value reports whether a failure
// is worth retrying.
func (g *GeminiEnricher) callOnce(
	ctx context.Context,
	text string,
) (*responseSchema, bool, error) {
	callCtx := ctx
	if g.config.RequestTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(
			ctx,
			time.Duration(g.config.RequestTimeoutSeconds)*time.Second,
		)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(
		callCtx,
		g.model,
		genai.Text(text),
		g.generateContentConfig(),
	)
	if err != nil {
		// Network errors, rate limits and server-side failures all land
		// here; treat them as transient.
		return nil, true, fmt.Errorf("gemini API call failed: %w", err)
	}

	if resp == nil {
		return nil, false, fmt.Errorf("%w: nil response", enrichment.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 {
		return nil, false, fmt.Errorf("%w: no content generated", enrichment.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf(
			"%w: content blocked by safety filters",
			enrichment.ErrContentBlocked,
		)
	}

	if candidate.Content == nil {
		return nil, false, fmt.Errorf("%w: empty content in response", enrichment.ErrInvalidResponse)
	}

	var raw string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			raw += part.Text
		}
	}

	parsed, err := parseResponseText(raw)
	if err != nil {
		return nil, false, err
	}

	return parsed, false, nil
}

// parseResponseText decodes the raw model output into a responseSchema.
func parseResponseText(raw string) (*responseSchema, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty response text", enrichment.ErrInvalidResponse)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v",
			enrichment.ErrInvalidResponse, err)
	}

	return &parsed, nil
}

// parseResponse validates a decoded API response and converts it to an
// enrichment.Result. The sentiment label must belong to the closed domain
// set; anything else is rejected even though the schema should prevent it.
func (g *GeminiEnricher) parseResponse(
	ctx context.Context,
	response *responseSchema,
) (*enrichment.Result, error) {
	if response == nil {
		return nil, fmt.Errorf("%w: response is nil", enrichment.ErrInvalidResponse)
	}

	if response.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary", enrichment.ErrInvalidResponse)
	}

	sentiment, err := domain.ParseSentiment(response.Sentiment)
	if err != nil {
		return nil, fmt.Errorf("%w: unexpected sentiment label %q",
			enrichment.ErrInvalidResponse, response.Sentiment)
	}

	g.logger.DebugContext(ctx, "parsed Gemini API response",
		"summary_length", len(response.Summary),
		"sentiment", string(sentiment))

	return &enrichment.Result{
		Summary:   response.Summary,
		Sentiment: sentiment,
	}, nil
}
