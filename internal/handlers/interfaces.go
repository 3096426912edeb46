package handlers

import (
	"context"
	"io"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/repositories"
)

// Handler dependencies are declared as local interfaces so tests can install
// in-memory fakes without touching the database or object store.

// UserStore persists and queries user accounts.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) (models.User, string, error)
	UpdateCover(ctx context.Context, id, coverURL string) (models.User, string, error)
}

// SessionManager issues, refreshes, and revokes token pairs.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	VerifyAccess(token string) (string, error)
	Revoke(ctx context.Context, userID string)
}

// VideoStore persists and queries videos.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	GetPublished(ctx context.Context, id string) (models.VideoView, error)
	List(ctx context.Context, params repositories.ListVideosParams) ([]models.VideoView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.VideoView, error)
	Update(ctx context.Context, id, title, description string, thumbnail *string) (models.Video, string, error)
	TogglePublish(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) (models.Video, error)
}

// CommentStore persists and queries video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page query.Page) ([]models.CommentView, error)
	Update(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) (models.Comment, error)
}

// TweetStore persists and queries tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, userID string) ([]models.TweetView, error)
	Update(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) (models.Tweet, error)
}

// LikeStore toggles and lists likes.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, targetID, userID string) (models.Like, bool, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
}

// SubscriptionStore toggles and lists channel subscriptions.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (models.Subscription, bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.ChannelEntry, error)
}

// PlaylistStore persists and queries playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	GetView(ctx context.Context, id string) (models.PlaylistView, error)
	ListForUser(ctx context.Context, userID string) ([]models.PlaylistView, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) (models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsProvider returns dashboard counters for a channel.
type StatsProvider interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}

// StatsInvalidator drops cached counters for a channel after a write.
type StatsInvalidator interface {
	Invalidate(channelID string)
}

// MediaStore uploads media objects and returns their public locations.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// DurationProber derives the duration in seconds of a media file on disk.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// MediaCleaner schedules deletion of media objects that are no longer referenced.
type MediaCleaner interface {
	Enqueue(ctx context.Context, locations ...string) error
}
