package frame

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrAlreadyRunning is returned by Start on a running loop.
var ErrAlreadyRunning = errors.New("frame: loop already running")

// Updater is advanced once per frame.
type Updater interface {
	Update(elapsed time.Duration)
}

// Loop calls an Updater at a fixed frame interval.
type Loop struct {
	target   Updater
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup

	frames atomic.Uint64
}

// New creates a loop ticking every interval. A non-positive interval
// means 60 frames per second.
func New(target Updater, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{target: target, interval: interval, now: time.Now}
}

// FromRate returns the frame interval for rate frames per second.
func FromRate(rate int) time.Duration {
	if rate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(rate)
}

// Interval returns the frame interval.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Frames returns how many frames have run.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Start runs the loop in a goroutine until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrAlreadyRunning
	}
	l.running = true
	l.done = make(chan struct{})

	l.wg.Add(1)
	go l.run(ctx, l.done)
	return nil
}

// Stop halts the loop and waits for the current frame to finish.
// Stopping a stopped loop is a no-op.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.done)
	l.mu.Unlock()

	l.wg.Wait()
}

func (l *Loop) run(ctx context.Context, done <-chan struct{}) {
	defer l.wg.Done()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.running = false
			l.mu.Unlock()
			return
		case <-done:
			return
		case <-ticker.C:
			t := l.now()
			l.target.Update(t.Sub(last))
			last = t
			l.frames.Add(1)
		}
	}
}
