package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates the access/refresh token pair used by the
// API. Access tokens authenticate requests; refresh tokens are only accepted
// by the refresh endpoint to mint a new pair.
type JWTService interface {
	// GenerateToken returns a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken parses and verifies an access token, returning its
	// claims. Fails for expired tokens, bad signatures, and refresh tokens
	// presented as access tokens.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken returns a signed refresh token for the user.
	// Refresh tokens carry a longer lifetime than access tokens.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken parses and verifies a refresh token, returning
	// its claims. Access tokens are rejected here with ErrWrongTokenType.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the token payload: the standard registered claims plus the user
// ID and a token-type discriminator.
type Claims struct {
	// UserID identifies the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType is "access" or "refresh"; it keeps the two token kinds
	// from being used interchangeably.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
