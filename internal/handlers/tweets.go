package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// TweetHandler implements channel tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, "tweet created successfully", tweet)
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if userID == "" {
		fail(ctx, w, badRequest("user id is required"))
		return
	}

	tweets, err := h.Tweets.ListForUser(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "tweets fetched successfully", tweets)
}

// Update handles PATCH /api/v1/tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	tweet, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	content, ok := decodeContent(w, r)
	if !ok {
		return
	}

	updated, err := h.Tweets.Update(ctx, tweet.ID, content)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "tweet updated successfully", updated)
}

// Delete handles DELETE /api/v1/tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	tweet, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	if _, err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "tweet deleted successfully", struct{}{})
}

func (h TweetHandler) requireOwner(w http.ResponseWriter, r *http.Request, userID string) (models.Tweet, bool) {
	ctx := r.Context()

	tweetID := r.PathValue("tweetId")
	if tweetID == "" {
		fail(ctx, w, badRequest("tweet id is required"))
		return models.Tweet{}, false
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		fail(ctx, w, err)
		return models.Tweet{}, false
	}

	if tweet.OwnerID != userID {
		fail(ctx, w, forbidden("you do not own this tweet"))
		return models.Tweet{}, false
	}

	return tweet, true
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
