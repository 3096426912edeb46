// Package dashboard composes channel-owner statistics.
package dashboard

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/models"
)

// ErrProviderUnavailable indicates the stats provider is not configured.
var ErrProviderUnavailable = errors.New("channel stats provider unavailable")

// StatsProvider returns aggregate counters for the provided channel.
type StatsProvider interface {
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
}
