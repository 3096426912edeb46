package app

import (
	"context"
	"log/slog"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/dashboard"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers and must be called
// on shutdown.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	store, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	cleaner := media.NewCleaner(store, media.CleanerConfig{
		QueueSize: cfg.CleanupQueueSize,
		Workers:   cfg.CleanupWorkers,
	}, logger)

	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.AccessTTL)
	sessions := auth.NewManager(tokens, cfg.RefreshTTL, repositories.NewPostgresSessionStore(pool))

	videos := repositories.NewPostgresVideoRepository(pool)
	stats := dashboard.NewCachingStatsProvider(repositories.NewPostgresStatsRepository(pool), cfg.StatsCacheTTL)

	deps := handlers.Dependencies{
		Users:         repositories.NewPostgresUserRepository(pool),
		Sessions:      sessions,
		Videos:        videos,
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool, cfg.GlobalPlaylistNames),
		Stats:         stats,
		StatsCache:    stats,
		Media:         store,
		Prober:        media.NewFFProbeProber(cfg.FFProbePath, cfg.FFProbeTimeout),
		Cleaner:       cleaner,
		AuthLimiter: middleware.NewIPRateLimiter(
			cfg.AuthRateLimit.Requests,
			cfg.AuthRateLimit.Window,
			cfg.AuthRateLimit.Burst,
			cfg.AuthRateLimit.TTL,
		),

		Cookies: handlers.CookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		},
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadTimeout:  cfg.UploadTimeout,
	}

	cleanup := func(ctx context.Context) error {
		return cleaner.Shutdown(ctx)
	}

	return deps, cleanup, nil
}
