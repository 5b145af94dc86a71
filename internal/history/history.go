package history

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
)

// Entry is one recorded door transition.
type Entry struct {
	ID         int64              `json:"id"`
	Door       string             `json:"door"`
	SessionID  string             `json:"session_id"`
	DoorType   door.Type          `json:"door_type"`
	From       animation.State    `json:"from"`
	To         animation.State    `json:"to"`
	Motion     animation.State    `json:"motion,omitempty"`
	Position   animation.Position `json:"position"`
	Progress   float64            `json:"progress"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// FromEvent converts a controller event into an Entry.
func FromEvent(ev animation.Event) Entry {
	return Entry{
		Door:       ev.Session.Door,
		SessionID:  ev.Session.ID,
		DoorType:   ev.Session.DoorType,
		From:       ev.From,
		To:         ev.Session.State,
		Motion:     ev.Session.Motion,
		Position:   ev.Session.Position,
		Progress:   ev.Session.Progress,
		OccurredAt: ev.At,
	}
}

// Repository stores and retrieves door transitions.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// Record appends one transition.
	Record(ctx context.Context, e Entry) error

	// List returns the newest transitions of a door, newest first.
	// A non-positive limit means the default; limits are clamped.
	List(ctx context.Context, doorPath string, limit int) ([]Entry, error)

	// Prune deletes transitions older than olderThan and returns the count.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}
