package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/models"
)

// LikeHandler implements like toggling across videos, comments, and tweets.
// Dashboard like counters are TTL-cached, so toggles do not invalidate them.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request, userID string) {
	h.toggle(w, r, userID, models.LikeTargetVideo, r.PathValue("videoId"))
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request, userID string) {
	h.toggle(w, r, userID, models.LikeTargetComment, r.PathValue("commentId"))
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request, userID string) {
	h.toggle(w, r, userID, models.LikeTargetTweet, r.PathValue("tweetId"))
}

// ListVideos handles GET /api/v1/likes/videos. Users with no liked videos get
// an empty list, not an error.
func (h LikeHandler) ListVideos(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	videos, err := h.Likes.ListLikedVideos(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "liked videos fetched successfully", videos)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, userID string, target models.LikeTarget, targetID string) {
	ctx := r.Context()

	if targetID == "" {
		fail(ctx, w, badRequest(string(target)+" id is required"))
		return
	}

	like, liked, err := h.Likes.Toggle(ctx, target, targetID, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	// Echo the created like, or the like that was just removed.
	message := string(target) + " unliked successfully"
	if liked {
		message = string(target) + " liked successfully"
	}

	respond(ctx, w, http.StatusOK, message, like)
}
