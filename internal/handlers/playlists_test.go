package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type fakePlaylistStore struct {
	playlists map[string]models.Playlist
	videos    map[string][]string
	createErr error
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists: make(map[string]models.Playlist),
		videos:    make(map[string][]string),
	}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.playlists {
		if existing.OwnerID == playlist.OwnerID && strings.EqualFold(existing.Name, playlist.Name) {
			return repositories.ErrConflict
		}
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) GetView(_ context.Context, id string) (models.PlaylistView, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.PlaylistView{}, repositories.ErrNotFound
	}
	videos := []models.PlaylistVideo{}
	for _, videoID := range s.videos[id] {
		videos = append(videos, models.PlaylistVideo{ID: videoID})
	}
	return models.PlaylistView{Playlist: playlist, Videos: videos}, nil
}

func (s *fakePlaylistStore) ListForUser(_ context.Context, userID string) ([]models.PlaylistView, error) {
	views := []models.PlaylistView{}
	for _, playlist := range s.playlists {
		if playlist.OwnerID == userID {
			views = append(views, models.PlaylistView{Playlist: playlist, Videos: []models.PlaylistVideo{}})
		}
	}
	return views, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, id, name, description string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return playlist, nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	for _, existing := range s.videos[playlistID] {
		if existing == videoID {
			return repositories.ErrConflict
		}
	}
	s.videos[playlistID] = append(s.videos[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	for i, existing := range s.videos[playlistID] {
		if existing == videoID {
			s.videos[playlistID] = append(s.videos[playlistID][:i], s.videos[playlistID][i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func TestCreatePlaylistRequiresName(t *testing.T) {
	handler := PlaylistHandler{Playlists: newFakePlaylistStore()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", strings.NewReader(`{"name":"  "}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req, "u1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreatePlaylistDuplicateNameConflicts(t *testing.T) {
	store := newFakePlaylistStore()
	store.playlists["p1"] = models.Playlist{ID: "p1", OwnerID: "u1", Name: "Watch Later"}

	handler := PlaylistHandler{Playlists: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", strings.NewReader(`{"name":"Watch Later"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req, "u1")

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestUpdatePlaylistRejectsNonOwner(t *testing.T) {
	store := newFakePlaylistStore()
	store.playlists["p1"] = models.Playlist{ID: "p1", OwnerID: "u1", Name: "Watch Later"}

	handler := PlaylistHandler{Playlists: store}

	body := strings.NewReader(`{"name":"Hijacked"}`)
	req := pathRequest(http.MethodPatch, "/api/v1/playlists/p1", map[string]string{"playlistId": "p1"}, body)
	rec := httptest.NewRecorder()

	handler.Update(rec, req, "intruder")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAddVideoTwiceIsRejected(t *testing.T) {
	store := newFakePlaylistStore()
	store.playlists["p1"] = models.Playlist{ID: "p1", OwnerID: "u1", Name: "Watch Later"}

	handler := PlaylistHandler{Playlists: store}

	add := func() *httptest.ResponseRecorder {
		req := pathRequest(http.MethodPatch, "/api/v1/playlists/add/v1/p1",
			map[string]string{"videoId": "v1", "playlistId": "p1"}, nil)
		rec := httptest.NewRecorder()
		handler.AddVideo(rec, req, "u1")
		return rec
	}

	if rec := add(); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on first add, got %d", rec.Code)
	}
	if rec := add(); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate add, got %d", rec.Code)
	}
}

func TestPlaylistMembershipChangesReturnUpdatedPlaylist(t *testing.T) {
	store := newFakePlaylistStore()
	store.playlists["p1"] = models.Playlist{ID: "p1", OwnerID: "u1", Name: "Watch Later"}
	store.videos["p1"] = []string{"v1"}

	handler := PlaylistHandler{Playlists: store}

	videoCount := func(rec *httptest.ResponseRecorder) int {
		payload := decodeEnvelope(t, rec)
		data, ok := payload["data"].(map[string]any)
		if !ok {
			t.Fatalf("expected playlist in data, got %v", payload["data"])
		}
		videos, ok := data["videos"].([]any)
		if !ok {
			t.Fatalf("expected video list, got %v", data["videos"])
		}
		return len(videos)
	}

	addReq := pathRequest(http.MethodPatch, "/api/v1/playlists/add/v2/p1",
		map[string]string{"videoId": "v2", "playlistId": "p1"}, nil)
	addRec := httptest.NewRecorder()
	handler.AddVideo(addRec, addReq, "u1")
	if addRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", addRec.Code)
	}
	if got := videoCount(addRec); got != 2 {
		t.Fatalf("expected 2 videos after add, got %d", got)
	}

	removeReq := pathRequest(http.MethodPatch, "/api/v1/playlists/remove/v1/p1",
		map[string]string{"videoId": "v1", "playlistId": "p1"}, nil)
	removeRec := httptest.NewRecorder()
	handler.RemoveVideo(removeRec, removeReq, "u1")
	if removeRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", removeRec.Code)
	}
	if got := videoCount(removeRec); got != 1 {
		t.Fatalf("expected 1 video after remove, got %d", got)
	}
}

func TestRemoveVideoNotInPlaylist(t *testing.T) {
	store := newFakePlaylistStore()
	store.playlists["p1"] = models.Playlist{ID: "p1", OwnerID: "u1", Name: "Watch Later"}

	handler := PlaylistHandler{Playlists: store}

	req := pathRequest(http.MethodPatch, "/api/v1/playlists/remove/v1/p1",
		map[string]string{"videoId": "v1", "playlistId": "p1"}, nil)
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, req, "u1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetPlaylistMissingIs404(t *testing.T) {
	handler := PlaylistHandler{Playlists: newFakePlaylistStore()}

	req := pathRequest(http.MethodGet, "/api/v1/playlists/nope", map[string]string{"playlistId": "nope"}, nil)
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
