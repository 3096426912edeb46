package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

const videoColumns = `v.id, v.owner_id, v.file_url, v.thumbnail_url, v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at`

// videoViewSelect joins the owner's public profile onto each video row. Only
// the profile allow-list is selected, so credential columns cannot leak into a
// composed response.
const videoViewSelect = `
        SELECT ` + videoColumns + `,
               u.id, u.username, u.fullname, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id`

// VideoSortFields maps caller-facing sort names onto SQL columns.
var VideoSortFields = map[string]string{
	"createdAt": "v.created_at",
	"title":     "v.title",
	"duration":  "v.duration",
	"views":     "v.views",
}

// DefaultVideoSort orders listings by creation time when the caller is silent.
const DefaultVideoSort = "v.created_at"

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, file_url, thumbnail_url, title, description, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.FileURL, video.Thumbnail, video.Title, video.Description,
		video.Duration, video.Views, video.Published, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a bare video row, including unpublished ones. Used for
// ownership checks before mutation.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// GetPublished returns a published video with its owner profile, bumping the
// view counter atomically as part of the same statement.
func (r *PostgresVideoRepository) GetPublished(ctx context.Context, id string) (models.VideoView, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoView{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        WITH bumped AS (
            UPDATE videos
            SET views = views + 1
            WHERE id = $1 AND is_published
            RETURNING id, owner_id, file_url, thumbnail_url, title, description, duration, views, is_published, created_at, updated_at
        )
        SELECT v.id, v.owner_id, v.file_url, v.thumbnail_url, v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.fullname, u.avatar_url
        FROM bumped v
        JOIN users u ON u.id = v.owner_id
    `, id)

	view, err := scanVideoView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoView{}, ErrNotFound
		}
		return models.VideoView{}, fmt.Errorf("select published video: %w", err)
	}

	return view, nil
}

// List composes the paginated, searchable video listing with owner profiles.
// An empty result is a valid empty slice, not an error.
func (r *PostgresVideoRepository) List(ctx context.Context, params ListVideosParams) ([]models.VideoView, error) {
	ctx, span := logging.StartSpan(ctx, "videos.list")
	defer span.End()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(videoViewSelect)
	sb.WriteString("\n        WHERE v.is_published")

	if params.Search != "" {
		args = append(args, query.LikePattern(params.Search))
		n := len(args)
		fmt.Fprintf(&sb, " AND (v.title ILIKE $%d OR v.description ILIKE $%d)", n, n)
	}
	if params.OwnerID != "" {
		args = append(args, params.OwnerID)
		fmt.Fprintf(&sb, " AND v.owner_id = $%d", len(args))
	}

	sb.WriteString("\n        " + params.Sort.Clause())

	args = append(args, params.Page.Limit, params.Page.Offset())
	fmt.Fprintf(&sb, "\n        LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	return collectVideoViews(rows)
}

// ListByOwner returns all of a channel's videos, newest first, including
// unpublished ones. Used by the owner's dashboard.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.VideoView, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, videoViewSelect+`
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	return collectVideoViews(rows)
}

// Update changes the title, description, and optionally the thumbnail. The
// previous thumbnail URL is returned when it was replaced so the object can be
// cleaned up.
func (r *PostgresVideoRepository) Update(ctx context.Context, id, title, description string, thumbnail *string) (models.Video, string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, "", fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        WITH prev AS (
            SELECT thumbnail_url AS prev_thumbnail FROM videos WHERE id = $1
        )
        UPDATE videos v
        SET title = $2, description = $3, thumbnail_url = COALESCE($4, v.thumbnail_url), updated_at = $5
        FROM prev
        WHERE v.id = $1
        RETURNING v.id, v.owner_id, v.file_url, v.thumbnail_url, v.title, v.description, v.duration, v.views, v.is_published, v.created_at, v.updated_at, prev.prev_thumbnail
    `, id, title, description, thumbnail, time.Now().UTC())

	var video models.Video
	var prevThumbnail string
	if err := row.Scan(&video.ID, &video.OwnerID, &video.FileURL, &video.Thumbnail, &video.Title,
		&video.Description, &video.Duration, &video.Views, &video.Published,
		&video.CreatedAt, &video.UpdatedAt, &prevThumbnail); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, "", ErrNotFound
		}
		return models.Video{}, "", fmt.Errorf("update video: %w", err)
	}

	if thumbnail == nil {
		prevThumbnail = ""
	}
	return video, prevThumbnail, nil
}

// TogglePublish flips the published flag.
func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE videos v
        SET is_published = NOT is_published, updated_at = $2
        WHERE id = $1
        RETURNING `+videoColumns+`
    `, id, time.Now().UTC())

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("toggle video publish: %w", err)
	}

	return video, nil
}

// Delete removes the video and returns the deleted record so its media objects
// can be cleaned up. Likes, comments, and playlist entries cascade.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        DELETE FROM videos v
        WHERE id = $1
        RETURNING `+videoColumns+`
    `, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("delete video: %w", err)
	}

	return video, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.FileURL, &video.Thumbnail, &video.Title,
		&video.Description, &video.Duration, &video.Views, &video.Published,
		&video.CreatedAt, &video.UpdatedAt)
	return video, err
}

func scanVideoView(row pgx.Row) (models.VideoView, error) {
	var view models.VideoView
	err := row.Scan(&view.ID, &view.OwnerID, &view.FileURL, &view.Thumbnail, &view.Title,
		&view.Description, &view.Duration, &view.Views, &view.Published,
		&view.CreatedAt, &view.UpdatedAt,
		&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.Avatar)
	return view, err
}

func collectVideoViews(rows pgx.Rows) ([]models.VideoView, error) {
	views := []models.VideoView{}
	for rows.Next() {
		view, err := scanVideoView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video view: %w", err)
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video views: %w", err)
	}

	return views, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
