package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(ctx, w, badRequest("invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fail(ctx, w, badRequest("playlist name is required"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			fail(ctx, w, conflict("a playlist with this name already exists"))
			return
		}
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusCreated, "playlist created successfully", playlist)
}

// ListForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if userID == "" {
		fail(ctx, w, badRequest("user id is required"))
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, userID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "playlists fetched successfully", playlists)
}

// Get handles GET /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if playlistID == "" {
		fail(ctx, w, badRequest("playlist id is required"))
		return
	}

	view, err := h.Playlists.GetView(ctx, playlistID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "playlist fetched successfully", view)
}

// Update handles PATCH /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	playlist, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(ctx, w, badRequest("invalid request body"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fail(ctx, w, badRequest("playlist name is required"))
		return
	}

	updated, err := h.Playlists.Update(ctx, playlist.ID, req.Name, strings.TrimSpace(req.Description))
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			fail(ctx, w, conflict("a playlist with this name already exists"))
			return
		}
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "playlist updated successfully", updated)
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	playlist, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	if _, err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "playlist deleted successfully", struct{}{})
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	playlist, videoID, ok := h.requireOwnerAndVideo(w, r, userID)
	if !ok {
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			fail(ctx, w, badRequest("video is already in the playlist"))
			return
		}
		if errors.Is(err, repositories.ErrNotFound) {
			fail(ctx, w, notFound("video not found"))
			return
		}
		fail(ctx, w, err)
		return
	}

	view, err := h.Playlists.GetView(ctx, playlist.ID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "video added to playlist successfully", view)
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	playlist, videoID, ok := h.requireOwnerAndVideo(w, r, userID)
	if !ok {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		// The playlist itself was verified above, so a missing row means the
		// video is not in it.
		if errors.Is(err, repositories.ErrNotFound) {
			fail(ctx, w, badRequest("video is not in the playlist"))
			return
		}
		fail(ctx, w, err)
		return
	}

	view, err := h.Playlists.GetView(ctx, playlist.ID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "video removed from playlist successfully", view)
}

func (h PlaylistHandler) requireOwner(w http.ResponseWriter, r *http.Request, userID string) (models.Playlist, bool) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if playlistID == "" {
		fail(ctx, w, badRequest("playlist id is required"))
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		fail(ctx, w, err)
		return models.Playlist{}, false
	}

	if playlist.OwnerID != userID {
		fail(ctx, w, forbidden("you do not own this playlist"))
		return models.Playlist{}, false
	}

	return playlist, true
}

func (h PlaylistHandler) requireOwnerAndVideo(w http.ResponseWriter, r *http.Request, userID string) (models.Playlist, string, bool) {
	videoID := r.PathValue("videoId")
	if videoID == "" {
		fail(r.Context(), w, badRequest("video id is required"))
		return models.Playlist{}, "", false
	}

	playlist, ok := h.requireOwner(w, r, userID)
	if !ok {
		return models.Playlist{}, "", false
	}

	return playlist, videoID, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
