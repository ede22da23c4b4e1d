package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/events"
	"github.com/phrazzld/insight-api/internal/store"
	"github.com/phrazzld/insight-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentService(
	t *testing.T,
	contentStore *mockContentStore,
	emitter *mockEventEmitter,
	maxInputLength int,
) (*ContentServiceImpl, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewContentService(contentStore, emitter, db, maxInputLength, nil), mock
}

func TestSubmitContent(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("creates pending content and emits event", func(t *testing.T) {
		t.Parallel()

		contentStore := &mockContentStore{}
		emitter := &mockEventEmitter{}
		svc, mock := newContentService(t, contentStore, emitter, 0)

		mock.ExpectBegin()
		mock.ExpectCommit()

		content, err := svc.SubmitContent(context.Background(), ownerID, "a note worth keeping")
		require.NoError(t, err)

		assert.Equal(t, ownerID, content.UserID)
		assert.Equal(t, domain.EnrichmentStatusPending, content.Status)
		assert.Nil(t, content.Summary)
		assert.Nil(t, content.Sentiment)

		require.Len(t, contentStore.created, 1)
		require.Len(t, emitter.events, 1)
		assert.Equal(t, task.TaskTypeContentEnrichment, emitter.events[0].Type)

		var payload EnrichmentPayload
		require.NoError(t, emitter.events[0].UnmarshalPayload(&payload))
		assert.Equal(t, content.ID, payload.ContentID)
		assert.Equal(t, ownerID, payload.UserID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()

		contentStore := &mockContentStore{}
		emitter := &mockEventEmitter{}
		svc, _ := newContentService(t, contentStore, emitter, 0)

		_, err := svc.SubmitContent(context.Background(), ownerID, "   ")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmptyContentBody)
		assert.Empty(t, emitter.events)
	})

	t.Run("rejects oversized body before touching storage", func(t *testing.T) {
		t.Parallel()

		contentStore := &mockContentStore{}
		emitter := &mockEventEmitter{}
		svc, _ := newContentService(t, contentStore, emitter, 10)

		_, err := svc.SubmitContent(context.Background(), ownerID, strings.Repeat("x", 11))
		assert.ErrorIs(t, err, ErrContentTooLarge)
		assert.Empty(t, contentStore.created)
		assert.Empty(t, emitter.events)
	})

	t.Run("store failure rolls back and returns wrapped error", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("insert failed")
		contentStore := &mockContentStore{
			createFn: func(ctx context.Context, content *domain.Content) error {
				return storeErr
			},
		}
		emitter := &mockEventEmitter{}
		svc, mock := newContentService(t, contentStore, emitter, 0)

		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := svc.SubmitContent(context.Background(), ownerID, "some text")
		require.Error(t, err)
		assert.ErrorIs(t, err, storeErr)
		assert.Empty(t, emitter.events)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("emit failure surfaces after commit", func(t *testing.T) {
		t.Parallel()

		emitErr := errors.New("emitter down")
		contentStore := &mockContentStore{}
		emitter := &mockEventEmitter{
			emitFn: func(ctx context.Context, event *events.TaskRequestEvent) error {
				return emitErr
			},
		}
		svc, mock := newContentService(t, contentStore, emitter, 0)

		mock.ExpectBegin()
		mock.ExpectCommit()

		_, err := svc.SubmitContent(context.Background(), ownerID, "some text")
		require.Error(t, err)
		assert.ErrorIs(t, err, emitErr)

		// The record is committed even when the emit fails. No journal row
		// exists at this point, so the caller sees the error and the owner
		// must delete and resubmit.
		assert.Len(t, contentStore.created, 1)
	})
}

func TestGetContent(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("returns owned content", func(t *testing.T) {
		t.Parallel()

		want, err := domain.NewContent(ownerID, "hello")
		require.NoError(t, err)

		contentStore := &mockContentStore{
			getForOwnerFn: func(ctx context.Context, oid, id uuid.UUID) (*domain.Content, error) {
				assert.Equal(t, ownerID, oid)
				return want, nil
			},
		}
		svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

		got, err := svc.GetContent(context.Background(), ownerID, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("maps store not found to service sentinel", func(t *testing.T) {
		t.Parallel()

		contentStore := &mockContentStore{
			getForOwnerFn: func(ctx context.Context, oid, id uuid.UUID) (*domain.Content, error) {
				return nil, store.ErrContentNotFound
			},
		}
		svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

		_, err := svc.GetContent(context.Background(), ownerID, uuid.New())
		assert.ErrorIs(t, err, ErrContentNotFound)
	})
}

func TestListContents(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	first, err := domain.NewContent(ownerID, "first")
	require.NoError(t, err)
	second, err := domain.NewContent(ownerID, "second")
	require.NoError(t, err)

	contentStore := &mockContentStore{
		listByOwnerFn: func(ctx context.Context, oid uuid.UUID) ([]*domain.Content, error) {
			return []*domain.Content{second, first}, nil
		},
	}
	svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

	got, err := svc.ListContents(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
}

func TestDeleteContent(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("deletes owned content", func(t *testing.T) {
		t.Parallel()

		var deleted uuid.UUID
		contentStore := &mockContentStore{
			deleteForOwnerFn: func(ctx context.Context, oid, id uuid.UUID) error {
				deleted = id
				return nil
			},
		}
		svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

		contentID := uuid.New()
		require.NoError(t, svc.DeleteContent(context.Background(), ownerID, contentID))
		assert.Equal(t, contentID, deleted)
	})

	t.Run("maps store not found to service sentinel", func(t *testing.T) {
		t.Parallel()

		contentStore := &mockContentStore{
			deleteForOwnerFn: func(ctx context.Context, oid, id uuid.UUID) error {
				return store.ErrContentNotFound
			},
		}
		svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

		err := svc.DeleteContent(context.Background(), ownerID, uuid.New())
		assert.ErrorIs(t, err, ErrContentNotFound)
	})
}

func TestApplyEnrichment(t *testing.T) {
	t.Parallel()

	contentID := uuid.New()

	var gotSummary *string
	var gotSentiment *domain.Sentiment
	var gotStatus domain.EnrichmentStatus

	contentStore := &mockContentStore{
		updateEnrichmentFn: func(
			ctx context.Context,
			id uuid.UUID,
			summary *string,
			sentiment *domain.Sentiment,
			status domain.EnrichmentStatus,
		) error {
			gotSummary = summary
			gotSentiment = sentiment
			gotStatus = status
			return nil
		},
	}
	svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

	err := svc.ApplyEnrichment(
		context.Background(),
		contentID,
		"a fine summary",
		domain.SentimentPositive,
	)
	require.NoError(t, err)

	require.NotNil(t, gotSummary)
	assert.Equal(t, "a fine summary", *gotSummary)
	require.NotNil(t, gotSentiment)
	assert.Equal(t, domain.SentimentPositive, *gotSentiment)
	assert.Equal(t, domain.EnrichmentStatusComplete, gotStatus)
}

func TestMarkEnrichmentFailed(t *testing.T) {
	t.Parallel()

	var gotSummary *string
	var gotStatus domain.EnrichmentStatus

	contentStore := &mockContentStore{
		updateEnrichmentFn: func(
			ctx context.Context,
			id uuid.UUID,
			summary *string,
			sentiment *domain.Sentiment,
			status domain.EnrichmentStatus,
		) error {
			gotSummary = summary
			gotStatus = status
			return nil
		},
	}
	svc, _ := newContentService(t, contentStore, &mockEventEmitter{}, 0)

	require.NoError(t, svc.MarkEnrichmentFailed(context.Background(), uuid.New()))
	assert.Nil(t, gotSummary)
	assert.Equal(t, domain.EnrichmentStatusFailed, gotStatus)
}
