package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

func likeColumn(target models.LikeTarget) (string, error) {
	switch target {
	case models.LikeTargetVideo:
		return "video_id", nil
	case models.LikeTargetComment:
		return "comment_id", nil
	case models.LikeTargetTweet:
		return "tweet_id", nil
	default:
		return "", fmt.Errorf("unknown like target %q", target)
	}
}

// Toggle removes the (user, target) like when present, otherwise creates it.
// The partial unique index on each target column makes the pair atomic: when a
// concurrent request wins the insert, the lost insert falls through to the
// delete branch instead of producing a duplicate row.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, target models.LikeTarget, targetID, userID string) (models.Like, bool, error) {
	column, err := likeColumn(target)
	if err != nil {
		return models.Like{}, false, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Like{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	deleteSQL := fmt.Sprintf(`
        DELETE FROM likes
        WHERE liked_by = $1 AND %s = $2
        RETURNING id, created_at
    `, column)
	insertSQL := fmt.Sprintf(`
        INSERT INTO likes (id, %s, liked_by, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT DO NOTHING
        RETURNING id, created_at
    `, column)

	like := models.Like{Target: target, TargetID: targetID, LikedBy: userID}

	// Two rounds: delete, insert, then once more in case a concurrent toggle
	// raced both branches.
	for attempt := 0; attempt < 2; attempt++ {
		err = conn.QueryRow(ctx, deleteSQL, userID, targetID).Scan(&like.ID, &like.CreatedAt)
		if err == nil {
			return like, false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return models.Like{}, false, fmt.Errorf("delete like: %w", err)
		}

		err = conn.QueryRow(ctx, insertSQL, uuid.NewString(), targetID, userID, time.Now().UTC()).Scan(&like.ID, &like.CreatedAt)
		if err == nil {
			return like, true, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if mapped := mapPgError(err); mapped != nil {
			return models.Like{}, false, mapped
		}
		return models.Like{}, false, fmt.Errorf("insert like: %w", err)
	}

	return models.Like{}, false, ErrConflict
}

// ListLikedVideos composes the user's liked videos with the nested video and
// owner projections.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	ctx, span := logging.StartSpan(ctx, "likes.liked_videos")
	defer span.End()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT l.id, l.liked_by,
               v.id, v.owner_id, v.file_url, v.thumbnail_url, v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.fullname, u.avatar_url
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.video_id IS NOT NULL
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	liked := []models.LikedVideo{}
	for rows.Next() {
		var entry models.LikedVideo
		v := &entry.Video
		if err := rows.Scan(&entry.LikeID, &entry.LikedBy,
			&v.ID, &v.OwnerID, &v.FileURL, &v.Thumbnail, &v.Title, &v.Description,
			&v.Duration, &v.Views, &v.Published, &v.CreatedAt, &v.UpdatedAt,
			&v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		liked = append(liked, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return liked, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
