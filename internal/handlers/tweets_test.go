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

type fakeTweetStore struct {
	tweets map[string]models.Tweet
}

func newFakeTweetStore() *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) ListForUser(_ context.Context, userID string) ([]models.TweetView, error) {
	views := []models.TweetView{}
	for _, tweet := range s.tweets {
		if tweet.OwnerID == userID {
			views = append(views, models.TweetView{Tweet: tweet})
		}
	}
	return views, nil
}

func (s *fakeTweetStore) Update(_ context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return tweet, nil
}

func TestCreateTweetRequiresContent(t *testing.T) {
	handler := TweetHandler{Tweets: newFakeTweetStore()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", strings.NewReader(`{"content":""}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req, "u1")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTweetAssignsOwner(t *testing.T) {
	store := newFakeTweetStore()
	handler := TweetHandler{Tweets: store}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", strings.NewReader(`{"content":"hello world"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req, "u1")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(store.tweets) != 1 {
		t.Fatalf("expected one stored tweet, got %d", len(store.tweets))
	}
	for _, tweet := range store.tweets {
		if tweet.OwnerID != "u1" {
			t.Fatalf("expected owner u1, got %s", tweet.OwnerID)
		}
	}
}

func TestDeleteTweetRejectsNonOwner(t *testing.T) {
	store := newFakeTweetStore()
	store.tweets["t1"] = models.Tweet{ID: "t1", OwnerID: "u1", Content: "hello"}

	handler := TweetHandler{Tweets: store}

	req := pathRequest(http.MethodDelete, "/api/v1/tweets/t1", map[string]string{"tweetId": "t1"}, nil)
	rec := httptest.NewRecorder()

	handler.Delete(rec, req, "intruder")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if _, ok := store.tweets["t1"]; !ok {
		t.Fatal("tweet was deleted by a non-owner")
	}
}
