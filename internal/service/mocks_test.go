package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/events"
	"github.com/phrazzld/insight-api/internal/store"
)

// mockContentStore is a configurable in-test implementation of store.ContentStore.
type mockContentStore struct {
	createFn           func(ctx context.Context, content *domain.Content) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.Content, error)
	getForOwnerFn      func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Content, error)
	listByOwnerFn      func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Content, error)
	deleteForOwnerFn   func(ctx context.Context, ownerID, id uuid.UUID) error
	updateEnrichmentFn func(ctx context.Context, id uuid.UUID, summary *string, sentiment *domain.Sentiment, status domain.EnrichmentStatus) error

	created []*domain.Content
}

func (m *mockContentStore) Create(ctx context.Context, content *domain.Content) error {
	m.created = append(m.created, content)
	if m.createFn != nil {
		return m.createFn(ctx, content)
	}
	return nil
}

func (m *mockContentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrContentNotFound
}

func (m *mockContentStore) GetForOwner(
	ctx context.Context,
	ownerID, id uuid.UUID,
) (*domain.Content, error) {
	if m.getForOwnerFn != nil {
		return m.getForOwnerFn(ctx, ownerID, id)
	}
	return nil, store.ErrContentNotFound
}

func (m *mockContentStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*domain.Content, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return []*domain.Content{}, nil
}

func (m *mockContentStore) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	if m.deleteForOwnerFn != nil {
		return m.deleteForOwnerFn(ctx, ownerID, id)
	}
	return nil
}

func (m *mockContentStore) UpdateEnrichment(
	ctx context.Context,
	id uuid.UUID,
	summary *string,
	sentiment *domain.Sentiment,
	status domain.EnrichmentStatus,
) error {
	if m.updateEnrichmentFn != nil {
		return m.updateEnrichmentFn(ctx, id, summary, sentiment, status)
	}
	return nil
}

func (m *mockContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return m
}

// mockUserStore is a configurable in-test implementation of store.UserStore.
type mockUserStore struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// mockEventEmitter records emitted events.
type mockEventEmitter struct {
	emitFn func(ctx context.Context, event *events.TaskRequestEvent) error
	events []*events.TaskRequestEvent
}

func (m *mockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.events = append(m.events, event)
	if m.emitFn != nil {
		return m.emitFn(ctx, event)
	}
	return nil
}

// mockPasswordVerifier accepts a single configured password.
type mockPasswordVerifier struct {
	acceptPassword string
	err            error
}

func (m *mockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.err != nil {
		return m.err
	}
	if password != m.acceptPassword {
		return errMismatchedPassword
	}
	return nil
}

var errMismatchedPassword = errors.New("password mismatch")

func testUser(email string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: "$2a$10$fakefakefakefakefakefake",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
