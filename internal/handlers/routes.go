package handlers

import (
	"net/http"
	"time"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Stats         StatsProvider
	StatsCache    StatsInvalidator
	Media         MediaStore
	Prober        DurationProber
	Cleaner       MediaCleaner
	AuthLimiter   RateLimiter

	Cookies        CookieConfig
	MaxUploadBytes int64
	UploadTimeout  time.Duration
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{
		Users:          deps.Users,
		Sessions:       deps.Sessions,
		Media:          deps.Media,
		Cleaner:        deps.Cleaner,
		Limiter:        deps.AuthLimiter,
		Cookies:        deps.Cookies,
		MaxUploadBytes: deps.MaxUploadBytes,
		UploadTimeout:  deps.UploadTimeout,
	}
	videos := VideoHandler{
		Videos:         deps.Videos,
		Media:          deps.Media,
		Prober:         deps.Prober,
		Cleaner:        deps.Cleaner,
		Stats:          deps.StatsCache,
		MaxUploadBytes: deps.MaxUploadBytes,
		UploadTimeout:  deps.UploadTimeout,
	}
	comments := CommentHandler{Comments: deps.Comments}
	tweets := TweetHandler{Tweets: deps.Tweets}
	likes := LikeHandler{Likes: deps.Likes}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Stats: deps.StatsCache}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	dashboard := DashboardHandler{Stats: deps.Stats, Videos: deps.Videos}

	authed := func(next authenticatedHandler) http.HandlerFunc {
		return requireAuth(deps.Sessions, next)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", users.RefreshToken)
	mux.HandleFunc("POST /api/v1/users/logout", authed(users.Logout))
	mux.HandleFunc("POST /api/v1/users/change-password", authed(users.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/current-user", authed(users.Current))
	mux.HandleFunc("PATCH /api/v1/users/update-account", authed(users.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/avatar", authed(users.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/cover-image", authed(users.UpdateCover))

	mux.HandleFunc("GET /api/v1/videos", videos.List)
	mux.HandleFunc("POST /api/v1/videos", authed(videos.Publish))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", videos.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", authed(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", authed(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/toggle/publish/{videoId}", authed(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/comments/{videoId}", comments.List)
	mux.HandleFunc("POST /api/v1/comments/{videoId}", authed(comments.Add))
	mux.HandleFunc("PATCH /api/v1/comments/c/{commentId}", authed(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/c/{commentId}", authed(comments.Delete))

	mux.HandleFunc("POST /api/v1/tweets", authed(tweets.Create))
	mux.HandleFunc("GET /api/v1/tweets/user/{userId}", tweets.ListForUser)
	mux.HandleFunc("PATCH /api/v1/tweets/{tweetId}", authed(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweets/{tweetId}", authed(tweets.Delete))

	mux.HandleFunc("POST /api/v1/likes/toggle/v/{videoId}", authed(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/toggle/c/{commentId}", authed(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/toggle/t/{tweetId}", authed(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", authed(likes.ListVideos))

	mux.HandleFunc("POST /api/v1/subscriptions/c/{channelId}", authed(subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions/c/{channelId}", subscriptions.ListSubscribers)
	mux.HandleFunc("GET /api/v1/subscriptions/u/{subscriberId}", subscriptions.ListChannels)

	mux.HandleFunc("POST /api/v1/playlists", authed(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/user/{userId}", playlists.ListForUser)
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", playlists.Get)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", authed(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", authed(playlists.Delete))
	mux.HandleFunc("PATCH /api/v1/playlists/add/{videoId}/{playlistId}", authed(playlists.AddVideo))
	mux.HandleFunc("PATCH /api/v1/playlists/remove/{videoId}/{playlistId}", authed(playlists.RemoveVideo))

	mux.HandleFunc("GET /api/v1/dashboard/stats", authed(dashboard.GetStats))
	mux.HandleFunc("GET /api/v1/dashboard/videos", authed(dashboard.GetVideos))
}
