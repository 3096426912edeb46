package handlers

import (
	"net/http"
)

// DashboardHandler serves the channel-owner dashboard: aggregate counters and
// the owner's full video list, published or not.
type DashboardHandler struct {
	Stats  StatsProvider
	Videos VideoStore
}

// GetStats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	if h.Stats == nil {
		fail(ctx, w, internalError("dashboard services unavailable"))
		return
	}

	stats, err := h.Stats.ChannelStats(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "channel stats fetched successfully", stats)
}

// GetVideos handles GET /api/v1/dashboard/videos.
func (h DashboardHandler) GetVideos(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	videos, err := h.Videos.ListByOwner(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "channel videos fetched successfully", videos)
}
