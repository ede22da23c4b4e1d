// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/insight-api/internal/api/shared"
	"github.com/phrazzld/insight-api/internal/domain"
	"github.com/phrazzld/insight-api/internal/platform/logger"
	"github.com/phrazzld/insight-api/internal/service"
)

// ContentHandler handles content-related HTTP requests.
type ContentHandler struct {
	contentService service.ContentService
	logger         *slog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService service.ContentService, log *slog.Logger) *ContentHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ContentHandler")
	}

	return &ContentHandler{
		contentService: contentService,
		logger:         log.With(slog.String("component", "content_handler")),
	}
}

// SubmitContent handles POST /api/contents requests. The record is
// returned immediately in pending status; enrichment happens in the
// background and is observed by polling.
func (h *ContentHandler) SubmitContent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitContentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	content, err := h.contentService.SubmitContent(r.Context(), userID, req.Body)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit content"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("content submitted",
		slog.String("user_id", userID.String()),
		slog.String("content_id", content.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, contentToResponse(content))
}

// ListContents handles GET /api/contents requests. Records are scoped to
// the authenticated caller and returned most recent first.
func (h *ContentHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	contents, err := h.contentService.ListContents(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w,
			r,
			http.StatusInternalServerError,
			"Failed to list contents",
			err,
		)
		return
	}

	resp := ContentListResponse{Contents: make([]ContentResponse, 0, len(contents))}
	for _, content := range contents {
		resp.Contents = append(resp.Contents, contentToResponse(content))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetContent handles GET /api/contents/{id} requests. A record owned by
// another user reports not found, exactly like a missing one.
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	contentID, ok := contentIDFromPath(w, r)
	if !ok {
		return
	}

	content, err := h.contentService.GetContent(r.Context(), userID, contentID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get content"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, contentToResponse(content))
}

// DeleteContent handles DELETE /api/contents/{id} requests. Deletion is
// immediate; any in-flight enrichment for the record becomes a no-op.
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	contentID, ok := contentIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.contentService.DeleteContent(r.Context(), userID, contentID); err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to delete content"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("content deleted",
		slog.String("user_id", userID.String()),
		slog.String("content_id", contentID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// contentIDFromPath extracts and parses the {id} URL parameter, writing
// a 400 response on failure.
func contentIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Content ID is required")
		return uuid.Nil, false
	}

	contentID, err := uuid.Parse(pathID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid content ID format")
		return uuid.Nil, false
	}

	return contentID, true
}

// contentToResponse converts a domain.Content to a ContentResponse.
func contentToResponse(content *domain.Content) ContentResponse {
	resp := ContentResponse{
		ID:        content.ID.String(),
		UserID:    content.UserID.String(),
		Body:      content.Body,
		Status:    string(content.Status),
		Summary:   content.Summary,
		CreatedAt: content.CreatedAt,
		UpdatedAt: content.UpdatedAt,
	}
	if content.Sentiment != nil {
		sentiment := string(*content.Sentiment)
		resp.Sentiment = &sentiment
	}
	return resp
}
