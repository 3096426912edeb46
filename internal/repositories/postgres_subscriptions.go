package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle unsubscribes when a subscription exists, otherwise subscribes. The
// (subscriber, channel) unique constraint keeps concurrent toggles from
// creating duplicates.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (models.Subscription, bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sub := models.Subscription{Subscriber: subscriberID, Channel: channelID}

	for attempt := 0; attempt < 2; attempt++ {
		err = conn.QueryRow(ctx, `
            DELETE FROM subscriptions
            WHERE subscriber_id = $1 AND channel_id = $2
            RETURNING id, created_at
        `, subscriberID, channelID).Scan(&sub.ID, &sub.CreatedAt)
		if err == nil {
			return sub, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, false, fmt.Errorf("delete subscription: %w", err)
		}

		err = conn.QueryRow(ctx, `
            INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT DO NOTHING
            RETURNING id, created_at
        `, uuid.NewString(), subscriberID, channelID, time.Now().UTC()).Scan(&sub.ID, &sub.CreatedAt)
		if err == nil {
			return sub, true, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if mapped := mapPgError(err); mapped != nil {
			return models.Subscription{}, false, mapped
		}
		return models.Subscription{}, false, fmt.Errorf("insert subscription: %w", err)
	}

	return models.Subscription{}, false, ErrConflict
}

// ListSubscribers returns a channel's subscribers with their public profiles.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.fullname, u.avatar_url, s.created_at
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	entries := []models.SubscriberEntry{}
	for rows.Next() {
		var entry models.SubscriberEntry
		if err := rows.Scan(&entry.Subscriber.ID, &entry.Subscriber.Username,
			&entry.Subscriber.FullName, &entry.Subscriber.Avatar, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return entries, nil
}

// ListChannels returns the channels a user subscribes to, with profiles.
func (r *PostgresSubscriptionRepository) ListChannels(ctx context.Context, subscriberID string) ([]models.ChannelEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.fullname, u.avatar_url, s.created_at
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	entries := []models.ChannelEntry{}
	for rows.Next() {
		var entry models.ChannelEntry
		if err := rows.Scan(&entry.Channel.ID, &entry.Channel.Username,
			&entry.Channel.FullName, &entry.Channel.Avatar, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscribed channel: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribed channels: %w", err)
	}

	return entries, nil
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
