package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/insight-api/internal/api/shared"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contentRouter mounts the handler on a chi router so URL parameters
// resolve the same way they do in production.
func contentRouter(handler *ContentHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/contents", handler.SubmitContent)
	r.Get("/api/contents", handler.ListContents)
	r.Get("/api/contents/{id}", handler.GetContent)
	r.Delete("/api/contents/{id}", handler.DeleteContent)
	return r
}

func authenticatedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func pendingContentFor(t *testing.T, userID uuid.UUID, body string) *domain.Content {
	t.Helper()
	content, err := domain.NewContent(userID, body)
	require.NoError(t, err)
	return content
}

func TestSubmitContentEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("accepted submission returns 202 with pending record", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		contents := &mockContentService{
			submitFn: func(ctx context.Context, ownerID uuid.UUID, body string) (*domain.Content, error) {
				assert.Equal(t, userID, ownerID)
				return pendingContentFor(t, ownerID, body), nil
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		payload, err := json.Marshal(SubmitContentRequest{Body: "the new phone is amazing"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/contents", payload, userID))

		require.Equal(t, http.StatusAccepted, w.Code)

		var resp ContentResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, string(domain.EnrichmentStatusPending), resp.Status)
		assert.Nil(t, resp.Summary)
		assert.Nil(t, resp.Sentiment)
		assert.Equal(t, userID.String(), resp.UserID)
	})

	t.Run("missing user in context returns 401", func(t *testing.T) {
		t.Parallel()

		router := contentRouter(NewContentHandler(&mockContentService{}, slog.Default()))

		payload, err := json.Marshal(SubmitContentRequest{Body: "text"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/contents", bytes.NewReader(payload)))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty body returns 400", func(t *testing.T) {
		t.Parallel()

		router := contentRouter(NewContentHandler(&mockContentService{}, slog.Default()))

		payload, err := json.Marshal(SubmitContentRequest{Body: ""})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/contents", payload, uuid.New()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("oversized body returns 400", func(t *testing.T) {
		t.Parallel()

		contents := &mockContentService{
			submitFn: func(ctx context.Context, ownerID uuid.UUID, body string) (*domain.Content, error) {
				return nil, service.ErrContentTooLarge
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		payload, err := json.Marshal(SubmitContentRequest{Body: "way too long"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/contents", payload, uuid.New()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service failure returns 500 with sanitized message", func(t *testing.T) {
		t.Parallel()

		contents := &mockContentService{
			submitFn: func(ctx context.Context, ownerID uuid.UUID, body string) (*domain.Content, error) {
				return nil, errors.New("pq: connection refused host=10.0.0.5 password=hunter2")
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		payload, err := json.Marshal(SubmitContentRequest{Body: "text"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(http.MethodPost, "/api/contents", payload, uuid.New()))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "hunter2")
		assert.Contains(t, w.Body.String(), "Failed to submit content")
	})
}

func TestListContentsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns only the caller's records", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		first := pendingContentFor(t, userID, "first")
		second := pendingContentFor(t, userID, "second")

		contents := &mockContentService{
			listFn: func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Content, error) {
				assert.Equal(t, userID, ownerID)
				return []*domain.Content{second, first}, nil
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(http.MethodGet, "/api/contents", nil, userID))

		require.Equal(t, http.StatusOK, w.Code)

		var resp ContentListResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp.Contents, 2)
		assert.Equal(t, second.ID.String(), resp.Contents[0].ID)
		assert.Equal(t, first.ID.String(), resp.Contents[1].ID)
	})

	t.Run("empty list serializes as an empty array", func(t *testing.T) {
		t.Parallel()

		contents := &mockContentService{
			listFn: func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Content, error) {
				return []*domain.Content{}, nil
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(http.MethodGet, "/api/contents", nil, uuid.New()))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"contents":[]`)
	})
}

func TestGetContentEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("owned record is returned", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		content := pendingContentFor(t, userID, "mine")
		require.NoError(t, content.CompleteEnrichment("a summary", domain.SentimentPositive))

		contents := &mockContentService{
			getFn: func(ctx context.Context, ownerID, contentID uuid.UUID) (*domain.Content, error) {
				assert.Equal(t, content.ID, contentID)
				return content, nil
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(
			http.MethodGet, "/api/contents/"+content.ID.String(), nil, userID))

		require.Equal(t, http.StatusOK, w.Code)

		var resp ContentResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Summary)
		require.NotNil(t, resp.Sentiment)
		assert.Equal(t, "a summary", *resp.Summary)
		assert.Equal(t, "positive", *resp.Sentiment)
	})

	t.Run("another user's record reports 404", func(t *testing.T) {
		t.Parallel()

		contents := &mockContentService{
			getFn: func(ctx context.Context, ownerID, contentID uuid.UUID) (*domain.Content, error) {
				return nil, service.ErrContentNotFound
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(
			http.MethodGet, "/api/contents/"+uuid.NewString(), nil, uuid.New()))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Content not found")
	})

	t.Run("malformed content ID returns 400", func(t *testing.T) {
		t.Parallel()

		router := contentRouter(NewContentHandler(&mockContentService{}, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(
			http.MethodGet, "/api/contents/not-a-uuid", nil, uuid.New()))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteContentEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("owned record is deleted with 204", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		contentID := uuid.New()
		var deleted bool

		contents := &mockContentService{
			deleteFn: func(ctx context.Context, ownerID, id uuid.UUID) error {
				assert.Equal(t, userID, ownerID)
				assert.Equal(t, contentID, id)
				deleted = true
				return nil
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(
			http.MethodDelete, "/api/contents/"+contentID.String(), nil, userID))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, deleted)
	})

	t.Run("cross-owner delete reports 404, not 403", func(t *testing.T) {
		t.Parallel()

		contents := &mockContentService{
			deleteFn: func(ctx context.Context, ownerID, id uuid.UUID) error {
				return service.ErrContentNotFound
			},
		}
		router := contentRouter(NewContentHandler(contents, slog.Default()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, authenticatedRequest(
			http.MethodDelete, "/api/contents/"+uuid.NewString(), nil, uuid.New()))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
