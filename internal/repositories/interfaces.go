package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateAccount(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) (models.User, string, error)
	UpdateCover(ctx context.Context, id, coverURL string) (models.User, string, error)
}

// ListVideosParams describes one composed video listing.
type ListVideosParams struct {
	Search  string
	OwnerID string
	Sort    query.Sort
	Page    query.Page
}

// VideoRepository exposes data access for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	GetPublished(ctx context.Context, id string) (models.VideoView, error)
	List(ctx context.Context, params ListVideosParams) ([]models.VideoView, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.VideoView, error)
	Update(ctx context.Context, id, title, description string, thumbnail *string) (models.Video, string, error)
	TogglePublish(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) (models.Video, error)
}

// CommentRepository exposes data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, page query.Page) ([]models.CommentView, error)
	Update(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) (models.Comment, error)
}

// TweetRepository exposes data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForUser(ctx context.Context, userID string) ([]models.TweetView, error)
	Update(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) (models.Tweet, error)
}

// LikeRepository toggles and lists likes across all target kinds.
type LikeRepository interface {
	Toggle(ctx context.Context, target models.LikeTarget, targetID, userID string) (models.Like, bool, error)
	ListLikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
}

// SubscriptionRepository toggles and lists channel subscriptions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (models.Subscription, bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error)
	ListChannels(ctx context.Context, subscriberID string) ([]models.ChannelEntry, error)
}

// PlaylistRepository exposes data access for playlists and their video lists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	GetView(ctx context.Context, id string) (models.PlaylistView, error)
	ListForUser(ctx context.Context, userID string) ([]models.PlaylistView, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) (models.Playlist, error)
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// StatsRepository aggregates dashboard counters for a channel.
type StatsRepository interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}
