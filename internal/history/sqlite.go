package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ErrDoorRequired is returned when an entry or query has no door path.
var ErrDoorRequired = errors.New("history: door path is required")

// SQLiteRepository implements Repository on the door_events table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Record inserts a transition. A zero OccurredAt is stamped with the
// current time.
func (r *SQLiteRepository) Record(ctx context.Context, e Entry) error {
	if e.Door == "" {
		return ErrDoorRequired
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = r.now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO door_events
		 (door_path, session_id, door_type, from_state, to_state, motion, position, progress, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Door,
		e.SessionID,
		e.DoorType.String(),
		string(e.From),
		string(e.To),
		string(e.Motion),
		string(e.Position),
		e.Progress,
		e.OccurredAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting door event: %w", err)
	}
	return nil
}

// List returns recent transitions for a door, newest first
// (default 50, max 500).
func (r *SQLiteRepository) List(ctx context.Context, doorPath string, limit int) ([]Entry, error) {
	if doorPath == "" {
		return nil, ErrDoorRequired
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, door_path, session_id, door_type, from_state, to_state, motion, position, progress, occurred_at
		 FROM door_events
		 WHERE door_path = ?
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT ?`,
		doorPath,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying door events: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e                                    Entry
			doorType, from, to, motion, position string
			occurredAt                           int64
		)
		if err := rows.Scan(&e.ID, &e.Door, &e.SessionID, &doorType, &from, &to, &motion, &position, &e.Progress, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning door event: %w", err)
		}

		e.DoorType, err = door.ParseType(doorType)
		if err != nil {
			return nil, fmt.Errorf("door event %d: %w", e.ID, err)
		}
		e.From = animation.State(from)
		e.To = animation.State(to)
		e.Motion = animation.State(motion)
		e.Position = animation.Position(position)
		e.OccurredAt = time.UnixMilli(occurredAt).UTC()

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating door events: %w", err)
	}
	return entries, nil
}

// Prune deletes transitions recorded before now-olderThan.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := r.now().Add(-olderThan).UTC().UnixMilli()
	result, err := r.db.ExecContext(ctx, "DELETE FROM door_events WHERE occurred_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting door events: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
