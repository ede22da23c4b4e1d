package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// SignupRequest defines the payload for the user signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest holds the credentials from the form-encoded login endpoint.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// SubmitContentRequest represents the request body for submitting content.
type SubmitContentRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// ContentResponse represents the response data for a content record.
// Summary and Sentiment are null until enrichment completes.
type ContentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Summary   *string   `json:"summary"`
	Sentiment *string   `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContentListResponse wraps a list of content records.
type ContentListResponse struct {
	Contents []ContentResponse `json:"contents"`
}
