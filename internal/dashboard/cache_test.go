package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/models"
)

type countingProvider struct {
	calls int
	stats models.ChannelStats
	err   error
}

func (p *countingProvider) ChannelStats(_ context.Context, _ string) (models.ChannelStats, error) {
	p.calls++
	if p.err != nil {
		return models.ChannelStats{}, p.err
	}
	return p.stats, nil
}

func TestCachingStatsProviderCachesWithinTTL(t *testing.T) {
	base := &countingProvider{stats: models.ChannelStats{TotalVideos: 3, TotalViews: 42}}
	cached := NewCachingStatsProvider(base, time.Minute)

	for i := 0; i < 3; i++ {
		stats, err := cached.ChannelStats(context.Background(), "channel-1")
		if err != nil {
			t.Fatalf("channel stats: %v", err)
		}
		if stats.TotalViews != 42 {
			t.Fatalf("unexpected stats %+v", stats)
		}
	}

	if base.calls != 1 {
		t.Fatalf("expected a single underlying call, got %d", base.calls)
	}
}

func TestCachingStatsProviderKeysByChannel(t *testing.T) {
	base := &countingProvider{}
	cached := NewCachingStatsProvider(base, time.Minute)

	if _, err := cached.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if _, err := cached.ChannelStats(context.Background(), "channel-2"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	if base.calls != 2 {
		t.Fatalf("expected one call per channel, got %d", base.calls)
	}
}

func TestCachingStatsProviderInvalidate(t *testing.T) {
	base := &countingProvider{}
	cached := NewCachingStatsProvider(base, time.Minute)

	if _, err := cached.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	cached.Invalidate("channel-1")

	if _, err := cached.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	if base.calls != 2 {
		t.Fatalf("expected invalidation to force a refresh, got %d calls", base.calls)
	}
}

func TestCachingStatsProviderDoesNotCacheErrors(t *testing.T) {
	base := &countingProvider{err: errors.New("db down")}
	cached := NewCachingStatsProvider(base, time.Minute)

	if _, err := cached.ChannelStats(context.Background(), "channel-1"); err == nil {
		t.Fatal("expected error to propagate")
	}

	base.err = nil
	if _, err := cached.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("expected recovery after error, got %v", err)
	}
}
