package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/models"
)

type cacheEntry struct {
	stats   models.ChannelStats
	expires time.Time
}

// CachingStatsProvider wraps another StatsProvider with a TTL-based in-memory
// cache. Dashboard counters tolerate slight staleness, which keeps repeated
// dashboard loads from re-running the aggregate queries.
type CachingStatsProvider struct {
	base StatsProvider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingStatsProvider returns a StatsProvider that caches results for the provided TTL.
func NewCachingStatsProvider(base StatsProvider, ttl time.Duration) *CachingStatsProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingStatsProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// ChannelStats returns cached counters when fresh, otherwise it delegates to
// the underlying provider and stores the result.
func (c *CachingStatsProvider) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	if c == nil || c.base == nil {
		return models.ChannelStats{}, ErrProviderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[channelID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := c.base.ChannelStats(ctx, channelID)
	if err != nil {
		return models.ChannelStats{}, err
	}

	c.mu.Lock()
	c.items[channelID] = cacheEntry{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return stats, nil
}

// Invalidate drops the cached entry for a channel. Useful after writes that
// must be visible immediately.
func (c *CachingStatsProvider) Invalidate(channelID string) {
	c.mu.Lock()
	delete(c.items, channelID)
	c.mu.Unlock()
}

var _ StatsProvider = (*CachingStatsProvider)(nil)
