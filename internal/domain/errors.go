package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidSentiment is returned when a sentiment label is outside
	// the closed set of supported values.
	ErrInvalidSentiment = errors.New("invalid sentiment label")

	// ErrInvalidEnrichmentStatus is returned when an enrichment status is not valid.
	ErrInvalidEnrichmentStatus = errors.New("invalid enrichment status")

	// ErrNotPending is returned when an enrichment transition is attempted
	// on a record that is already in a terminal state.
	ErrNotPending = errors.New("content is not pending enrichment")
)
