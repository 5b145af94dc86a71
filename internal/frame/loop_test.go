package frame

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// ─── Mock Dependencies ──────────────────────────────────────────────

type recordingUpdater struct {
	mu      sync.Mutex
	elapsed []time.Duration
}

func (r *recordingUpdater) Update(elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elapsed = append(r.elapsed, elapsed)
}

func (r *recordingUpdater) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.elapsed)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestLoop_CallsUpdateWithElapsed(t *testing.T) {
	u := &recordingUpdater{}
	l := New(u, time.Millisecond)

	// A fake clock advancing 16ms per read.
	var mu sync.Mutex
	clock := time.Unix(0, 0)
	l.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(16 * time.Millisecond)
		return clock
	}

	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, func() bool { return u.count() >= 3 })
	l.Stop()

	u.mu.Lock()
	defer u.mu.Unlock()
	for i, e := range u.elapsed {
		if e != 16*time.Millisecond {
			t.Errorf("elapsed[%d] = %v, want 16ms", i, e)
		}
	}
	if l.Frames() != uint64(len(u.elapsed)) {
		t.Errorf("Frames() = %d, want %d", l.Frames(), len(u.elapsed))
	}
}

func TestLoop_StopHaltsUpdates(t *testing.T) {
	u := &recordingUpdater{}
	l := New(u, time.Millisecond)

	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return u.count() >= 1 })
	l.Stop()

	n := u.count()
	time.Sleep(20 * time.Millisecond)
	if u.count() != n {
		t.Errorf("updates after Stop: %d -> %d", n, u.count())
	}

	// Stop is idempotent and the loop can be restarted.
	l.Stop()
	if err := l.Start(context.Background()); err != nil {
		t.Errorf("restart error = %v", err)
	}
	l.Stop()
}

func TestLoop_StartTwice(t *testing.T) {
	l := New(&recordingUpdater{}, time.Millisecond)
	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	if err := l.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestLoop_ContextCancel(t *testing.T) {
	u := &recordingUpdater{}
	l := New(u, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	if err := l.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return u.count() >= 1 })
	cancel()
	l.wg.Wait()

	n := u.count()
	time.Sleep(20 * time.Millisecond)
	if u.count() != n {
		t.Error("loop kept running after context cancel")
	}
	if err := l.Start(context.Background()); err != nil {
		t.Errorf("Start() after cancel error = %v", err)
	}
	l.Stop()
}

func TestFromRate(t *testing.T) {
	tests := map[int]time.Duration{
		60:  time.Second / 60,
		30:  time.Second / 30,
		0:   time.Second / 60,
		-5:  time.Second / 60,
		240: time.Second / 240,
	}
	for rate, want := range tests {
		if got := FromRate(rate); got != want {
			t.Errorf("FromRate(%d) = %v, want %v", rate, got, want)
		}
	}
	if New(nil, 0).Interval() != time.Second/60 {
		t.Error("New() with zero interval did not default to 60 fps")
	}
}
