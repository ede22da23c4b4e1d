package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnrichmentStatus represents the enrichment state of a content record.
type EnrichmentStatus string

// Possible enrichment status values. Transitions are monotonic: a record
// moves out of pending exactly once and never leaves a terminal state.
const (
	EnrichmentStatusPending  EnrichmentStatus = "pending"
	EnrichmentStatusComplete EnrichmentStatus = "complete"
	EnrichmentStatusFailed   EnrichmentStatus = "failed"
)

// Sentiment is a label from the closed set produced by the enrichment step.
type Sentiment string

// The closed set of sentiment labels. Anything else coming back from the
// LLM is rejected before it reaches storage.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Common validation errors for Content
var (
	ErrEmptyContentID     = errors.New("content ID cannot be empty")
	ErrEmptyContentUserID = errors.New("content user ID cannot be empty")
	ErrEmptyContentBody   = errors.New("content body cannot be empty")
	ErrPartialEnrichment  = errors.New("summary and sentiment must be set together")
)

// Content represents a text record submitted by a user for enrichment.
// Summary and Sentiment stay nil until a background enrichment task
// resolves; they are always set together or not at all.
type Content struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Body      string           `json:"body"`
	Status    EnrichmentStatus `json:"status"`
	Summary   *string          `json:"summary"`
	Sentiment *Sentiment       `json:"sentiment"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewContent creates a new Content owned by the given user, in pending
// status with no enrichment fields. Returns an error if validation fails.
func NewContent(userID uuid.UUID, body string) (*Content, error) {
	content := &Content{
		ID:        uuid.New(),
		UserID:    userID,
		Body:      body,
		Status:    EnrichmentStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}

	return content, nil
}

// Validate checks if the Content has valid data, including the invariant
// that summary and sentiment are both nil or both set.
func (c *Content) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyContentID
	}

	if c.UserID == uuid.Nil {
		return ErrEmptyContentUserID
	}

	if strings.TrimSpace(c.Body) == "" {
		return ErrEmptyContentBody
	}

	if !isValidEnrichmentStatus(c.Status) {
		return ErrInvalidEnrichmentStatus
	}

	if (c.Summary == nil) != (c.Sentiment == nil) {
		return ErrPartialEnrichment
	}

	if c.Sentiment != nil && !IsValidSentiment(*c.Sentiment) {
		return ErrInvalidSentiment
	}

	return nil
}

// CompleteEnrichment transitions a pending record to complete, setting both
// enrichment fields and bumping UpdatedAt. Returns ErrNotPending if the
// record is already in a terminal state.
func (c *Content) CompleteEnrichment(summary string, sentiment Sentiment) error {
	if c.Status != EnrichmentStatusPending {
		return ErrNotPending
	}
	if summary == "" {
		return ErrPartialEnrichment
	}
	if !IsValidSentiment(sentiment) {
		return ErrInvalidSentiment
	}

	c.Summary = &summary
	c.Sentiment = &sentiment
	c.Status = EnrichmentStatusComplete
	c.touch()
	return nil
}

// FailEnrichment transitions a pending record to failed. The enrichment
// fields stay nil so the owner can observe the failure and resubmit.
// Returns ErrNotPending if the record is already in a terminal state.
func (c *Content) FailEnrichment() error {
	if c.Status != EnrichmentStatusPending {
		return ErrNotPending
	}

	c.Status = EnrichmentStatusFailed
	c.touch()
	return nil
}

// touch advances UpdatedAt, keeping it strictly increasing even when two
// transitions land within clock resolution.
func (c *Content) touch() {
	now := time.Now().UTC()
	if !now.After(c.UpdatedAt) {
		now = c.UpdatedAt.Add(time.Microsecond)
	}
	c.UpdatedAt = now
}

// ParseSentiment maps a raw label to the closed sentiment set,
// case-insensitively. Returns ErrInvalidSentiment for anything else.
func ParseSentiment(label string) (Sentiment, error) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(label))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	case SentimentNegative:
		return SentimentNegative, nil
	default:
		return "", ErrInvalidSentiment
	}
}

// IsValidSentiment checks if the given label is in the closed sentiment set.
func IsValidSentiment(s Sentiment) bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

// isValidEnrichmentStatus checks if the given status is a valid EnrichmentStatus.
func isValidEnrichmentStatus(status EnrichmentStatus) bool {
	switch status {
	case EnrichmentStatusPending, EnrichmentStatusComplete, EnrichmentStatusFailed:
		return true
	default:
		return false
	}
}
