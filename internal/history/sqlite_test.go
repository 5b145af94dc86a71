package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-interaction/migrations"
)

const hallDoor = "/World/Hall/Hall_Door"

// setupTestRepo opens a migrated database in a temp directory.
func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "history.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func entryAt(doorPath string, to animation.State, at time.Time) Entry {
	return Entry{
		Door:       doorPath,
		SessionID:  "session-1",
		DoorType:   door.DualSliding,
		From:       animation.Idle,
		To:         to,
		Motion:     animation.Opening,
		Position:   animation.Closed,
		Progress:   0.25,
		OccurredAt: at,
	}
}

func TestRecordAndList(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 123_000_000, time.UTC)

	if err := repo.Record(ctx, entryAt(hallDoor, animation.Opening, at)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	entries, err := repo.List(ctx, hallDoor, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}

	got := entries[0]
	if got.ID == 0 {
		t.Error("ID not assigned")
	}
	if !got.OccurredAt.Equal(at) {
		t.Errorf("OccurredAt = %v, want %v", got.OccurredAt, at)
	}
	got.ID, got.OccurredAt = 0, at
	want := entryAt(hallDoor, animation.Opening, at)
	if got != want {
		t.Errorf("entry = %+v\nwant    %+v", got, want)
	}
}

func TestList_NewestFirstAndLimit(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	states := []animation.State{animation.Opening, animation.Paused, animation.Opening, animation.Completed}
	for i, s := range states {
		if err := repo.Record(ctx, entryAt(hallDoor, s, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Record(ctx, entryAt("/World/Other_Door", animation.Opening, base)); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.List(ctx, hallDoor, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].To != animation.Completed || entries[1].To != animation.Opening {
		t.Errorf("List(limit 2) = %+v", entries)
	}

	all, _ := repo.List(ctx, hallDoor, 0)
	if len(all) != 4 {
		t.Errorf("List(default) = %d entries, want 4", len(all))
	}

	none, err := repo.List(ctx, "/World/Nowhere", 10)
	if err != nil || len(none) != 0 {
		t.Errorf("List(unknown door) = %v, %v", none, err)
	}
}

func TestRecord_StampsMissingTime(t *testing.T) {
	repo := setupTestRepo(t)
	fixed := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	e := entryAt(hallDoor, animation.Opening, time.Time{})
	if err := repo.Record(context.Background(), e); err != nil {
		t.Fatal(err)
	}
	entries, _ := repo.List(context.Background(), hallDoor, 1)
	if len(entries) != 1 || !entries[0].OccurredAt.Equal(fixed) {
		t.Errorf("OccurredAt = %v, want %v", entries, fixed)
	}
}

func TestDoorRequired(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	if err := repo.Record(ctx, Entry{}); !errors.Is(err, ErrDoorRequired) {
		t.Errorf("Record() error = %v, want ErrDoorRequired", err)
	}
	if _, err := repo.List(ctx, "", 10); !errors.Is(err, ErrDoorRequired) {
		t.Errorf("List() error = %v, want ErrDoorRequired", err)
	}
}

func TestPrune(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	old := entryAt(hallDoor, animation.Opening, now.Add(-48*time.Hour))
	recent := entryAt(hallDoor, animation.Completed, now.Add(-time.Hour))
	for _, e := range []Entry{old, recent} {
		if err := repo.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Prune() deleted %d, want 1", n)
	}

	entries, _ := repo.List(ctx, hallDoor, 10)
	if len(entries) != 1 || entries[0].To != animation.Completed {
		t.Errorf("remaining = %+v", entries)
	}

	if _, err := repo.Prune(ctx, 0); err == nil {
		t.Error("Prune(0) should fail")
	}
}

func TestFromEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ev := animation.Event{
		Session: animation.Session{
			ID:       "abc",
			Door:     hallDoor,
			DoorType: door.SinglePivot,
			State:    animation.Completed,
			Motion:   animation.Closing,
			Position: animation.Closed,
			Progress: 1,
		},
		From: animation.Closing,
		At:   at,
	}

	got := FromEvent(ev)
	want := Entry{
		Door: hallDoor, SessionID: "abc", DoorType: door.SinglePivot,
		From: animation.Closing, To: animation.Completed, Motion: animation.Closing,
		Position: animation.Closed, Progress: 1, OccurredAt: at,
	}
	if got != want {
		t.Errorf("FromEvent() = %+v, want %+v", got, want)
	}
}
