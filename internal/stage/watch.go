package stage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a Stage when its file changes on disk.
//
// The parent directory is watched rather than the file so editors that save
// by rename keep triggering reloads. Bursts of events inside the debounce
// window cause a single reload. A file that fails to parse leaves the current
// scene untouched.
type Watcher struct {
	path     string
	stage    *Stage
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   Logger

	mu       sync.Mutex
	onReload []func()
	once     sync.Once
}

// NewWatcher starts watching path for changes to be loaded into s.
func NewWatcher(path string, s *Stage, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving stage path: %w", err)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		stage:    s,
		debounce: debounce,
		fsw:      fsw,
		logger:   noopLogger{},
	}, nil
}

// SetLogger sets the logger for the watcher.
func (w *Watcher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	w.logger = logger
}

// OnReload registers fn to run after each successful reload.
func (w *Watcher) OnReload(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("stage watcher error", "error", err)

		case <-timerC:
			timerC = nil
			w.Reload()
		}
	}
}

// Reload loads the file now and swaps it into the stage.
func (w *Watcher) Reload() bool {
	next, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("stage reload failed, keeping current scene", "path", w.path, "error", err)
		return false
	}
	w.stage.Replace(next)
	w.logger.Info("stage reloaded", "path", w.path)

	w.mu.Lock()
	callbacks := append([]func(){}, w.onReload...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
	return true
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fsw.Close()
	})
	return err
}
