package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Stats         StatsInvalidator
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	channelID := r.PathValue("channelId")
	if channelID == "" {
		fail(ctx, w, badRequest("channel id is required"))
		return
	}

	if channelID == userID {
		fail(ctx, w, badRequest("you cannot subscribe to your own channel"))
		return
	}

	subscription, subscribed, err := h.Subscriptions.Toggle(ctx, userID, channelID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	if h.Stats != nil {
		h.Stats.Invalidate(channelID)
	}

	message := "unsubscribed successfully"
	if subscribed {
		message = "subscribed successfully"
	}

	logging.FromContext(ctx).Info("subscription toggled", "channelId", channelID, "subscriberId", userID, "subscribed", subscribed)
	respond(ctx, w, http.StatusOK, message, subscription)
}

// ListSubscribers handles GET /api/v1/subscriptions/c/{channelId}.
func (h SubscriptionHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := r.PathValue("channelId")
	if channelID == "" {
		fail(ctx, w, badRequest("channel id is required"))
		return
	}

	subscribers, err := h.Subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "subscribers fetched successfully", subscribers)
}

// ListChannels handles GET /api/v1/subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID := r.PathValue("subscriberId")
	if subscriberID == "" {
		fail(ctx, w, badRequest("subscriber id is required"))
		return
	}

	channels, err := h.Subscriptions.ListChannels(ctx, subscriberID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "subscribed channels fetched successfully", channels)
}
