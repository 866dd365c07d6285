package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vidchill/backend/internal/db"
	"github.com/vidchill/backend/internal/logging"
	"github.com/vidchill/backend/internal/models"
)

type engagementTables struct {
	table      string
	idColumn   string
	counters   string
	counterKey string
}

var engagementTargets = map[string]engagementTables{
	models.TargetVideo: {
		table:      "video_engagements",
		idColumn:   "video_id",
		counters:   "videos",
		counterKey: "id",
	},
	models.TargetAnnouncement: {
		table:      "announcement_engagements",
		idColumn:   "announcement_id",
		counters:   "announcements",
		counterKey: "id",
	},
}

// PostgresEngagementRepository persists like/dislike reactions. All state
// transitions run inside a single transaction with the existing reaction row
// locked, so concurrent toggles from the same viewer cannot double-count.
type PostgresEngagementRepository struct {
	pool db.Pool
}

// NewPostgresEngagementRepository constructs an engagement repository backed by PostgreSQL.
func NewPostgresEngagementRepository(pool db.Pool) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{pool: pool}
}

// Apply executes one step of the reaction state machine:
//
//	none    + like    -> set like, likes+1
//	like    + like    -> clear, likes-1
//	like    + dislike -> move, likes-1 dislikes+1
//	none    + dislike -> set dislike, dislikes+1
//	dislike + dislike -> clear, dislikes-1
//	dislike + like    -> move, dislikes-1 likes+1
func (r *PostgresEngagementRepository) Apply(ctx context.Context, targetKind, targetID, userID, direction string) error {
	tables, ok := engagementTargets[targetKind]
	if !ok {
		return fmt.Errorf("unknown engagement target %q", targetKind)
	}
	if direction != models.EngagementLike && direction != models.EngagementDislike {
		return fmt.Errorf("unknown engagement direction %q", direction)
	}

	ctx, span := logging.StartSpan(ctx, "engagement.apply")
	defer span.End()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin engagement transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the target row first so the counter update and the reaction row
	// stay consistent under concurrent toggles.
	var exists bool
	row := tx.QueryRow(ctx, fmt.Sprintf(`SELECT true FROM %s WHERE %s = $1 FOR UPDATE`,
		tables.counters, tables.counterKey), targetID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock engagement target: %w", err)
	}

	var current string
	row = tx.QueryRow(ctx, fmt.Sprintf(`
        SELECT engagement_type FROM %s
        WHERE %s = $1 AND user_id = $2
        FOR UPDATE
    `, tables.table, tables.idColumn), targetID, userID)
	err = row.Scan(&current)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		current = ""
	case err != nil:
		return fmt.Errorf("select current engagement: %w", err)
	}

	switch {
	case current == "":
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
            INSERT INTO %s (%s, user_id, engagement_type, created_at)
            VALUES ($1, $2, $3, now())
        `, tables.table, tables.idColumn), targetID, userID, direction); err != nil {
			return fmt.Errorf("insert engagement: %w", err)
		}
		if err := adjustCounters(ctx, tx, tables, targetID, delta(direction, +1)); err != nil {
			return err
		}
	case current == direction:
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
            DELETE FROM %s WHERE %s = $1 AND user_id = $2
        `, tables.table, tables.idColumn), targetID, userID); err != nil {
			return fmt.Errorf("clear engagement: %w", err)
		}
		if err := adjustCounters(ctx, tx, tables, targetID, delta(direction, -1)); err != nil {
			return err
		}
	default:
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
            UPDATE %s SET engagement_type = $3 WHERE %s = $1 AND user_id = $2
        `, tables.table, tables.idColumn), targetID, userID, direction); err != nil {
			return fmt.Errorf("move engagement: %w", err)
		}
		moved := delta(direction, +1)
		cleared := delta(current, -1)
		if err := adjustCounters(ctx, tx, tables, targetID, counterDelta{
			likes:    moved.likes + cleared.likes,
			dislikes: moved.dislikes + cleared.dislikes,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit engagement transaction: %w", err)
	}

	return nil
}

// State returns the viewer's current reaction, or ErrNotFound if none exists.
func (r *PostgresEngagementRepository) State(ctx context.Context, targetKind, targetID, userID string) (models.Engagement, error) {
	tables, ok := engagementTargets[targetKind]
	if !ok {
		return models.Engagement{}, fmt.Errorf("unknown engagement target %q", targetKind)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Engagement{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, fmt.Sprintf(`
        SELECT %s, user_id, engagement_type, created_at
        FROM %s
        WHERE %s = $1 AND user_id = $2
    `, tables.idColumn, tables.table, tables.idColumn), targetID, userID)

	var e models.Engagement
	if err := row.Scan(&e.TargetID, &e.UserID, &e.Type, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Engagement{}, ErrNotFound
		}
		return models.Engagement{}, fmt.Errorf("select engagement: %w", err)
	}

	return e, nil
}

type counterDelta struct {
	likes    int
	dislikes int
}

func delta(direction string, sign int) counterDelta {
	if direction == models.EngagementLike {
		return counterDelta{likes: sign}
	}
	return counterDelta{dislikes: sign}
}

func adjustCounters(ctx context.Context, tx pgx.Tx, tables engagementTables, targetID string, d counterDelta) error {
	tag, err := tx.Exec(ctx, fmt.Sprintf(`
        UPDATE %s
        SET likes = likes + $2, dislikes = dislikes + $3
        WHERE %s = $1
    `, tables.counters, tables.counterKey), targetID, d.likes, d.dislikes)
	if err != nil {
		return fmt.Errorf("adjust engagement counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ EngagementRepository = (*PostgresEngagementRepository)(nil)
