package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

const playlistColumns = `p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at`

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists and their ordered video lists.
type PostgresPlaylistRepository struct {
	pool db.Pool

	// globalNames restores the legacy behavior of playlist names being unique
	// across all owners. The per-owner unique index always applies.
	globalNames bool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool, globalNames bool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool, globalNames: globalNames}
}

// Create persists a new playlist. Name collisions surface as ErrConflict.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if r.globalNames {
		var exists bool
		err := conn.QueryRow(ctx, `
            SELECT EXISTS (SELECT 1 FROM playlists WHERE lower(name) = lower($1))
        `, playlist.Name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check playlist name: %w", err)
		}
		if exists {
			return ErrConflict
		}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches a bare playlist row. Used for ownership checks.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, id)

	playlist, err := scanPlaylist(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return playlist, nil
}

// GetView composes one playlist with its creator profile and video summaries.
func (r *PostgresPlaylistRepository) GetView(ctx context.Context, id string) (models.PlaylistView, error) {
	views, err := r.listViews(ctx, `WHERE p.id = $1`, id)
	if err != nil {
		return models.PlaylistView{}, err
	}
	if len(views) == 0 {
		return models.PlaylistView{}, ErrNotFound
	}
	return views[0], nil
}

// ListForUser composes all of a user's playlists with embedded videos. An
// empty result is a valid empty slice.
func (r *PostgresPlaylistRepository) ListForUser(ctx context.Context, userID string) ([]models.PlaylistView, error) {
	return r.listViews(ctx, `WHERE p.owner_id = $1`, userID)
}

func (r *PostgresPlaylistRepository) listViews(ctx context.Context, where string, arg any) ([]models.PlaylistView, error) {
	ctx, span := logging.StartSpan(ctx, "playlists.list")
	defer span.End()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistColumns+`,
               u.id, u.username, u.fullname, u.avatar_url
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        `+where+`
        ORDER BY p.created_at DESC
    `, arg)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	views := []models.PlaylistView{}
	ids := []string{}
	for rows.Next() {
		var view models.PlaylistView
		if err := rows.Scan(&view.ID, &view.OwnerID, &view.Name, &view.Description,
			&view.CreatedAt, &view.UpdatedAt,
			&view.CreatedBy.ID, &view.CreatedBy.Username, &view.CreatedBy.FullName, &view.CreatedBy.Avatar); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist view: %w", err)
		}
		view.Videos = []models.PlaylistVideo{}
		views = append(views, view)
		ids = append(ids, view.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist views: %w", err)
	}

	if len(ids) == 0 {
		return views, nil
	}

	videosByPlaylist, err := r.loadVideos(ctx, conn, ids)
	if err != nil {
		return nil, err
	}

	for i := range views {
		if videos, ok := videosByPlaylist[views[i].ID]; ok {
			views[i].Videos = videos
		}
	}

	return views, nil
}

func (r *PostgresPlaylistRepository) loadVideos(ctx context.Context, conn *pgxpool.Conn, playlistIDs []string) (map[string][]models.PlaylistVideo, error) {
	rows, err := conn.Query(ctx, `
        SELECT pv.playlist_id,
               v.id, v.title, v.thumbnail_url, v.description, v.created_at,
               u.id, u.username, u.fullname, u.avatar_url
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE pv.playlist_id = ANY($1)
        ORDER BY pv.playlist_id, pv.position ASC
    `, playlistIDs)
	if err != nil {
		return nil, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	byPlaylist := make(map[string][]models.PlaylistVideo)
	for rows.Next() {
		var playlistID string
		var video models.PlaylistVideo
		if err := rows.Scan(&playlistID,
			&video.ID, &video.Title, &video.Thumbnail, &video.Description, &video.CreatedAt,
			&video.Owner.ID, &video.Owner.Username, &video.Owner.FullName, &video.Owner.Avatar); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		byPlaylist[playlistID] = append(byPlaylist[playlistID], video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return byPlaylist, nil
}

// Update renames and re-describes the playlist.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE playlists p
        SET name = $2, description = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+playlistColumns+`
    `, id, name, description, time.Now().UTC())

	playlist, err := scanPlaylist(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		if mapped := mapPgError(err); mapped != nil {
			return models.Playlist{}, mapped
		}
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}

	return playlist, nil
}

// Delete removes the playlist and returns the deleted record. Entries in
// playlist_videos cascade.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        DELETE FROM playlists p
        WHERE id = $1
        RETURNING `+playlistColumns+`
    `, id)

	playlist, err := scanPlaylist(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("delete playlist: %w", err)
	}

	return playlist, nil
}

// AddVideo appends a video to the playlist. A video already present surfaces
// as ErrConflict via the primary key, a missing video as ErrNotFound via the
// foreign key.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, position, added_at)
        VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_videos WHERE playlist_id = $1), $3)
    `, playlistID, videoID, time.Now().UTC())
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert playlist video: %w", err)
	}

	return nil
}

// RemoveVideo removes a video from the playlist; ErrNotFound when absent.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return fmt.Errorf("delete playlist video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var playlist models.Playlist
	err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name, &playlist.Description,
		&playlist.CreatedAt, &playlist.UpdatedAt)
	return playlist, err
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
