package models

import "time"

// Read models returned by list endpoints. Each embeds related entities joined
// at read time; nested user fields are restricted to the public profile
// projection so credentials can never leak into a composed response.

// OwnerProfile is the public projection of a user attached to owned entities.
type OwnerProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// VideoView is a video row with its owner profile collapsed onto it.
type VideoView struct {
	Video
	Owner OwnerProfile `json:"ownerProfile"`
}

// CommentView is a comment with its author's public profile.
type CommentView struct {
	Comment
	Owner OwnerProfile `json:"ownerProfile"`
}

// TweetView is a tweet with its author's public profile.
type TweetView struct {
	Tweet
	Owner OwnerProfile `json:"ownerProfile"`
}

// LikedVideo pairs a like with the composed video it points at.
type LikedVideo struct {
	LikeID  string    `json:"id"`
	LikedBy string    `json:"likedBy"`
	Video   VideoView `json:"video"`
}

// SubscriberEntry is one row of a channel's subscriber list.
type SubscriberEntry struct {
	Subscriber OwnerProfile `json:"subscriber"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// ChannelEntry is one row of a user's subscribed-to list.
type ChannelEntry struct {
	Channel   OwnerProfile `json:"channel"`
	CreatedAt time.Time    `json:"createdAt"`
}

// PlaylistVideo is the trimmed video summary embedded in playlist reads.
type PlaylistVideo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Thumbnail   string       `json:"thumbnail"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerProfile `json:"owner"`
}

// PlaylistView is a playlist with creator profile and embedded video summaries.
type PlaylistView struct {
	Playlist
	CreatedBy OwnerProfile    `json:"createdBy"`
	Videos    []PlaylistVideo `json:"videos"`
}

// ChannelStats aggregates a channel's dashboard counters. Channels with no
// activity report zeros rather than an error.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// PublicProfile strips a user down to the projection shared with other users.
func (u User) PublicProfile() OwnerProfile {
	return OwnerProfile{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}
