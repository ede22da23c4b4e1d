package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/service/auth"
)

// mockUserService implements service.UserService with overridable functions.
type mockUserService struct {
	registerFn     func(ctx context.Context, email, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getUserFn      func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *mockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return m.registerFn(ctx, email, password)
}

func (m *mockUserService) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	return m.authenticateFn(ctx, email, password)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.getUserFn(ctx, userID)
}

// mockContentService implements service.ContentService with overridable functions.
type mockContentService struct {
	submitFn func(ctx context.Context, ownerID uuid.UUID, body string) (*domain.Content, error)
	getFn    func(ctx context.Context, ownerID, contentID uuid.UUID) (*domain.Content, error)
	listFn   func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Content, error)
	deleteFn func(ctx context.Context, ownerID, contentID uuid.UUID) error
}

func (m *mockContentService) SubmitContent(
	ctx context.Context,
	ownerID uuid.UUID,
	body string,
) (*domain.Content, error) {
	return m.submitFn(ctx, ownerID, body)
}

func (m *mockContentService) GetContent(
	ctx context.Context,
	ownerID, contentID uuid.UUID,
) (*domain.Content, error) {
	return m.getFn(ctx, ownerID, contentID)
}

func (m *mockContentService) ListContents(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Content, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockContentService) DeleteContent(ctx context.Context, ownerID, contentID uuid.UUID) error {
	return m.deleteFn(ctx, ownerID, contentID)
}

func (m *mockContentService) ApplyEnrichment(
	ctx context.Context,
	contentID uuid.UUID,
	summary string,
	sentiment domain.Sentiment,
) error {
	return nil
}

func (m *mockContentService) MarkEnrichmentFailed(ctx context.Context, contentID uuid.UUID) error {
	return nil
}

// mockJWTService implements auth.JWTService with canned token behavior.
type mockJWTService struct {
	accessToken       string
	refreshToken      string
	generateErr       error
	validateFn        func(ctx context.Context, token string) (*auth.Claims, error)
	validateRefreshFn func(ctx context.Context, token string) (*auth.Claims, error)
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.accessToken, nil
}

func (m *mockJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.refreshToken, nil
}

func (m *mockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return m.validateFn(ctx, token)
}

func (m *mockJWTService) ValidateRefreshToken(
	ctx context.Context,
	token string,
) (*auth.Claims, error) {
	return m.validateRefreshFn(ctx, token)
}

func testUser(email string) *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: "$2a$10$notarealhash",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}
