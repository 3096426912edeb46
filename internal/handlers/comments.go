package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

// CommentHandler implements video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	NowFunc  func() time.Time
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		fail(ctx, w, badRequest("video id is required"))
		return
	}

	params := r.URL.Query()
	page, err := query.ParsePage(params.Get("page"), params.Get("limit"))
	if err != nil {
		fail(ctx, w, err)
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID, page)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "comments fetched successfully", comments)
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		fail(ctx, w, badRequest("video id is required"))
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, "comment added successfully", comment)
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	comment, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	updated, err := h.Comments.Update(ctx, comment.ID, content)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "comment updated successfully", updated)
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	comment, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	if _, err := h.Comments.Delete(ctx, comment.ID); err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "comment deleted successfully", struct{}{})
}

func (h CommentHandler) requireOwner(w http.ResponseWriter, r *http.Request, userID string) (models.Comment, bool) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if commentID == "" {
		fail(ctx, w, badRequest("comment id is required"))
		return models.Comment{}, false
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		fail(ctx, w, err)
		return models.Comment{}, false
	}

	if comment.OwnerID != userID {
		fail(ctx, w, forbidden("you do not own this comment"))
		return models.Comment{}, false
	}

	return comment, true
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// decodeContent reads the {"content": ...} payload shared by comment and
// tweet endpoints. Responds on failure.
func decodeContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(r.Context(), w, badRequest("invalid request body"))
		return "", false
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		fail(r.Context(), w, badRequest("content is required"))
		return "", false
	}

	return content, true
}

type contentRequest struct {
	Content string `json:"content"`
}
