package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidchill/backend/internal/db"
	"github.com/vidchill/backend/internal/models"
)

// PostgresFollowRepository provides PostgreSQL-backed persistence for follows.
type PostgresFollowRepository struct {
	pool db.Pool
}

// NewPostgresFollowRepository constructs a follow repository backed by PostgreSQL.
func NewPostgresFollowRepository(pool db.Pool) *PostgresFollowRepository {
	return &PostgresFollowRepository{pool: pool}
}

// Toggle follows the channel when no pair exists, and unfollows it otherwise.
// It returns whether the viewer follows the channel after the call.
func (r *PostgresFollowRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, ErrSelfFollow
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin follow transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        DELETE FROM follows
        WHERE follower_id = $1 AND following_id = $2
    `, followerID, followingID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}

	following := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
            INSERT INTO follows (follower_id, following_id, created_at)
            VALUES ($1, $2, now())
        `, followerID, followingID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return false, ErrNotFound
			}
			return false, fmt.Errorf("insert follow: %w", err)
		}
		following = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit follow transaction: %w", err)
	}

	return following, nil
}

// Delete removes a follow pair.
func (r *PostgresFollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM follows
        WHERE follower_id = $1 AND following_id = $2
    `, followerID, followingID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Exists reports whether the follower follows the channel.
func (r *PostgresFollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT true FROM follows
        WHERE follower_id = $1 AND following_id = $2
    `, followerID, followingID)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select follow: %w", err)
	}

	return true, nil
}

// CountFollowers returns the number of users following a channel.
func (r *PostgresFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM follows WHERE following_id = $1
    `, userID)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}

	return count, nil
}

// ListFollowing returns the channels the user follows.
func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, followerID string) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.email, u.password_hash, u.name, u.handle, u.image,
               u.background_image, u.description, u.created_at, u.updated_at
        FROM follows f
        JOIN users u ON u.id = f.following_id
        WHERE f.follower_id = $1
        ORDER BY f.created_at DESC
    `, followerID)
	if err != nil {
		return nil, fmt.Errorf("query followings: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows, "scan following")
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate followings: %w", err)
	}

	return users, nil
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, user_id, message, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, comment.ID, comment.VideoID, comment.UserID, comment.Message, comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// ListForVideo returns a video's comments with author details, newest first.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID string) ([]models.CommentView, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.video_id, c.user_id, c.message, c.created_at,
               u.name, u.handle, u.image
        FROM comments c
        JOIN users u ON u.id = c.user_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
    `, videoID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.CommentView
	for rows.Next() {
		var c models.CommentView
		if err := rows.Scan(&c.ID, &c.VideoID, &c.UserID, &c.Message, &c.CreatedAt,
			&c.AuthorName, &c.AuthorHandle, &c.AuthorImage); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, user_id, title, description, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, playlist.ID, playlist.UserID, playlist.Title, playlist.Description, playlist.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches a playlist without its membership rows.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, user_id, title, description, created_at
        FROM playlists
        WHERE id = $1
    `, id)

	var p models.Playlist
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return p, nil
}

// ListForUser returns the user's playlists including current video membership.
func (r *PostgresPlaylistRepository) ListForUser(ctx context.Context, userID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, user_id, title, description, created_at
        FROM playlists
        WHERE user_id = $1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	var playlists []models.Playlist
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	for i := range playlists {
		memberRows, err := conn.Query(ctx, `
            SELECT video_id FROM playlist_videos
            WHERE playlist_id = $1
            ORDER BY added_at
        `, playlists[i].ID)
		if err != nil {
			return nil, fmt.Errorf("query playlist videos: %w", err)
		}

		for memberRows.Next() {
			var videoID string
			if err := memberRows.Scan(&videoID); err != nil {
				memberRows.Close()
				return nil, fmt.Errorf("scan playlist video: %w", err)
			}
			playlists[i].VideoIDs = append(playlists[i].VideoIDs, videoID)
		}
		memberRows.Close()

		if err := memberRows.Err(); err != nil {
			return nil, fmt.Errorf("iterate playlist videos: %w", err)
		}
	}

	return playlists, nil
}

// ToggleVideo adds the video to the playlist when absent and removes it when
// present. It returns whether the video is in the playlist after the call.
func (r *PostgresPlaylistRepository) ToggleVideo(ctx context.Context, playlistID, videoID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("begin playlist transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID)
	if err != nil {
		return false, fmt.Errorf("delete playlist video: %w", err)
	}

	added := false
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `
            INSERT INTO playlist_videos (playlist_id, video_id, added_at)
            VALUES ($1, $2, now())
        `, playlistID, videoID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return false, ErrNotFound
			}
			return false, fmt.Errorf("insert playlist video: %w", err)
		}
		added = true
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit playlist transaction: %w", err)
	}

	return added, nil
}

// PostgresAnnouncementRepository provides PostgreSQL-backed persistence for announcements.
type PostgresAnnouncementRepository struct {
	pool db.Pool
}

// NewPostgresAnnouncementRepository constructs an announcement repository backed by PostgreSQL.
func NewPostgresAnnouncementRepository(pool db.Pool) *PostgresAnnouncementRepository {
	return &PostgresAnnouncementRepository{pool: pool}
}

// Create persists a new announcement.
func (r *PostgresAnnouncementRepository) Create(ctx context.Context, announcement models.Announcement) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO announcements (id, user_id, message, likes, dislikes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, announcement.ID, announcement.UserID, announcement.Message,
		announcement.Likes, announcement.Dislikes, announcement.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert announcement: %w", err)
	}

	return nil
}

// ListForUser returns a channel's announcements, newest first.
func (r *PostgresAnnouncementRepository) ListForUser(ctx context.Context, userID string) ([]models.Announcement, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, user_id, message, likes, dislikes, created_at
        FROM announcements
        WHERE user_id = $1
        ORDER BY created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query announcements: %w", err)
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.UserID, &a.Message, &a.Likes, &a.Dislikes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcements: %w", err)
	}

	return announcements, nil
}

var _ FollowRepository = (*PostgresFollowRepository)(nil)
var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
var _ AnnouncementRepository = (*PostgresAnnouncementRepository)(nil)
