package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/repositories"
)

// VideoHandler implements video publishing, listing, and management endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Media   MediaStore
	Prober  DurationProber
	Cleaner MediaCleaner
	Stats   StatsInvalidator

	MaxUploadBytes int64
	UploadTimeout  time.Duration
	NowFunc        func() time.Time
}

// List handles GET /api/v1/videos. Supports query, sortBy, sortType, page,
// limit, and userId parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := r.URL.Query()

	page, err := query.ParsePage(params.Get("page"), params.Get("limit"))
	if err != nil {
		fail(ctx, w, err)
		return
	}

	sort, err := query.ParseSort(params.Get("sortBy"), params.Get("sortType"),
		repositories.VideoSortFields, repositories.DefaultVideoSort)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	videos, err := h.Videos.List(ctx, repositories.ListVideosParams{
		Search:  strings.TrimSpace(params.Get("query")),
		OwnerID: strings.TrimSpace(params.Get("userId")),
		Sort:    sort,
		Page:    page,
	})
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "videos fetched successfully", videos)
}

// Publish handles POST /api/v1/videos. The payload is multipart with a video
// file, a thumbnail image, and title/description fields. Duration is derived
// from the uploaded file before it is stored.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Media == nil || h.Prober == nil {
		logger.Error("video publish dependencies unavailable", "hasMedia", h.Media != nil, "hasProber", h.Prober != nil)
		fail(ctx, w, internalError("media services unavailable"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		fail(ctx, w, badRequest("invalid multipart payload"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		fail(ctx, w, badRequest("title and description are required"))
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		fail(ctx, w, badRequest("video file is required"))
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		fail(ctx, w, badRequest("thumbnail image is required"))
		return
	}
	defer thumbFile.Close()

	duration, fileURL, err := h.probeAndStore(r, videoFile, videoHeader)
	if err != nil {
		logger.Error("video upload failed", "error", err, "userId", userID)
		fail(ctx, w, err)
		return
	}

	thumbnailURL, err := h.upload(r, "thumbnails", thumbFile, thumbHeader)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err, "userId", userID)
		h.cleanup(r, fileURL)
		fail(ctx, w, err)
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		FileURL:     fileURL,
		Thumbnail:   thumbnailURL,
		Title:       title,
		Description: description,
		Duration:    duration,
		Published:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.cleanup(r, fileURL, thumbnailURL)
		fail(ctx, w, err)
		return
	}

	h.invalidateStats(userID)
	respond(ctx, w, http.StatusCreated, "video published successfully", video)
}

// Get handles GET /api/v1/videos/{videoId}. Fetching a published video also
// counts the view.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		fail(ctx, w, badRequest("video id is required"))
		return
	}

	view, err := h.Videos.GetPublished(ctx, videoID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	respond(ctx, w, http.StatusOK, "video fetched successfully", view)
}

// Update handles PATCH /api/v1/videos/{videoId}. Accepts multipart (with an
// optional replacement thumbnail) or plain JSON.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	video, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	var (
		title       string
		description string
		thumbnail   *string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			fail(ctx, w, badRequest("invalid multipart payload"))
			return
		}

		title = strings.TrimSpace(r.FormValue("title"))
		description = strings.TrimSpace(r.FormValue("description"))

		if file, header, err := r.FormFile("thumbnail"); err == nil {
			defer file.Close()
			location, err := h.upload(r, "thumbnails", file, header)
			if err != nil {
				fail(ctx, w, err)
				return
			}
			thumbnail = &location
		}
	} else {
		var req updateVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(ctx, w, badRequest("invalid request body"))
			return
		}
		title = strings.TrimSpace(req.Title)
		description = strings.TrimSpace(req.Description)
	}

	if title == "" || description == "" {
		if thumbnail != nil {
			h.cleanup(r, *thumbnail)
		}
		fail(ctx, w, badRequest("title and description are required"))
		return
	}

	updated, previousThumbnail, err := h.Videos.Update(ctx, video.ID, title, description, thumbnail)
	if err != nil {
		if thumbnail != nil {
			h.cleanup(r, *thumbnail)
		}
		fail(ctx, w, err)
		return
	}

	if thumbnail != nil {
		h.cleanup(r, previousThumbnail)
	}
	respond(ctx, w, http.StatusOK, "video updated successfully", updated)
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	video, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	deleted, err := h.Videos.Delete(ctx, video.ID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	h.cleanup(r, deleted.FileURL, deleted.Thumbnail)
	h.invalidateStats(userID)
	respond(ctx, w, http.StatusOK, "video deleted successfully", struct{}{})
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()

	video, ok := h.requireOwner(w, r, userID)
	if !ok {
		return
	}

	updated, err := h.Videos.TogglePublish(ctx, video.ID)
	if err != nil {
		fail(ctx, w, err)
		return
	}

	h.invalidateStats(userID)
	respond(ctx, w, http.StatusOK, "publish status toggled successfully", updated)
}

// requireOwner fetches the addressed video and rejects callers who do not own
// it. Responds on failure and reports whether the handler may continue.
func (h VideoHandler) requireOwner(w http.ResponseWriter, r *http.Request, userID string) (models.Video, bool) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		fail(ctx, w, badRequest("video id is required"))
		return models.Video{}, false
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		fail(ctx, w, err)
		return models.Video{}, false
	}

	if video.OwnerID != userID {
		fail(ctx, w, forbidden("you do not own this video"))
		return models.Video{}, false
	}

	return video, true
}

// probeAndStore spools the upload to disk so its duration can be read before
// the file is pushed to the object store.
func (h VideoHandler) probeAndStore(r *http.Request, file multipart.File, header *multipart.FileHeader) (float64, string, error) {
	tmp, err := os.CreateTemp("", "vidtube-upload-*")
	if err != nil {
		return 0, "", internalError("failed to stage uploaded file")
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, file); err != nil {
		return 0, "", internalError("failed to stage uploaded file")
	}

	duration, err := h.Prober.Probe(r.Context(), tmp.Name())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, "", gatewayTimeout("video probing timed out")
		}
		if errors.Is(err, media.ErrProberUnavailable) {
			return 0, "", internalError("media services unavailable")
		}
		return 0, "", badRequest("could not determine video duration")
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return 0, "", internalError("failed to stage uploaded file")
	}

	location, err := h.upload(r, "videos", tmp, header)
	if err != nil {
		return 0, "", err
	}

	return duration, location, nil
}

func (h VideoHandler) upload(r *http.Request, prefix string, file io.Reader, header *multipart.FileHeader) (string, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.uploadTimeout())
	defer cancel()

	key := prefix + "/" + uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	location, err := h.Media.Save(ctx, key, file)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", gatewayTimeout("media upload timed out")
		}
		return "", internalError("failed to store uploaded file")
	}
	return location, nil
}

func (h VideoHandler) cleanup(r *http.Request, locations ...string) {
	if h.Cleaner == nil {
		return
	}
	if err := h.Cleaner.Enqueue(r.Context(), locations...); err != nil {
		logging.FromContext(r.Context()).Warn("failed to enqueue media cleanup", "error", err)
	}
}

func (h VideoHandler) invalidateStats(channelID string) {
	if h.Stats != nil {
		h.Stats.Invalidate(channelID)
	}
}

func (h VideoHandler) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return 256 << 20
}

func (h VideoHandler) uploadTimeout() time.Duration {
	if h.UploadTimeout > 0 {
		return h.UploadTimeout
	}
	return 60 * time.Second
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
