package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

type fakeSubscriptionStore struct {
	subs map[string]models.Subscription
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]models.Subscription)}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (models.Subscription, bool, error) {
	key := subscriberID + "/" + channelID
	if sub, ok := s.subs[key]; ok {
		delete(s.subs, key)
		return sub, false, nil
	}
	sub := models.Subscription{ID: uuid.NewString(), Subscriber: subscriberID, Channel: channelID}
	s.subs[key] = sub
	return sub, true, nil
}

func (s *fakeSubscriptionStore) ListSubscribers(_ context.Context, _ string) ([]models.SubscriberEntry, error) {
	return []models.SubscriberEntry{}, nil
}

func (s *fakeSubscriptionStore) ListChannels(_ context.Context, _ string) ([]models.ChannelEntry, error) {
	return []models.ChannelEntry{}, nil
}

type recordingInvalidator struct {
	channels []string
}

func (r *recordingInvalidator) Invalidate(channelID string) {
	r.channels = append(r.channels, channelID)
}

func TestToggleSubscriptionRejectsSelfSubscribe(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore()}

	req := pathRequest(http.MethodPost, "/api/v1/subscriptions/c/u1", map[string]string{"channelId": "u1"}, nil)
	rec := httptest.NewRecorder()

	handler.Toggle(rec, req, "u1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestToggleSubscriptionAlternatesAndInvalidatesStats(t *testing.T) {
	store := newFakeSubscriptionStore()
	stats := &recordingInvalidator{}
	handler := SubscriptionHandler{Subscriptions: store, Stats: stats}

	toggle := func() map[string]any {
		req := pathRequest(http.MethodPost, "/api/v1/subscriptions/c/channel-1", map[string]string{"channelId": "channel-1"}, nil)
		rec := httptest.NewRecorder()
		handler.Toggle(rec, req, "u1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		return decodeEnvelope(t, rec)
	}

	created := toggle()
	if len(store.subs) != 1 {
		t.Fatalf("expected subscription created, got %v", store.subs)
	}
	data, ok := created["data"].(map[string]any)
	if !ok || data["subscriber"] != "u1" || data["channel"] != "channel-1" {
		t.Fatalf("expected created subscription to be echoed, got %v", created["data"])
	}

	removed := toggle()
	if len(store.subs) != 0 {
		t.Fatalf("expected subscription removed, got %v", store.subs)
	}
	if data, ok := removed["data"].(map[string]any); !ok || data["id"] == "" {
		t.Fatalf("expected removed subscription to be echoed, got %v", removed["data"])
	}

	if len(stats.channels) != 2 || stats.channels[0] != "channel-1" {
		t.Fatalf("expected stats invalidations for channel-1, got %v", stats.channels)
	}
}

func TestListSubscribersEmptyIsOK(t *testing.T) {
	handler := SubscriptionHandler{Subscriptions: newFakeSubscriptionStore()}

	req := pathRequest(http.MethodGet, "/api/v1/subscriptions/c/channel-1", map[string]string{"channelId": "channel-1"}, nil)
	rec := httptest.NewRecorder()

	handler.ListSubscribers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
