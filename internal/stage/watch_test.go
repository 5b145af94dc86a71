package stage

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.yaml")
	if err := os.WriteFile(path, []byte("prims:\n  - name: World\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, s, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close() //nolint:errcheck // Test cleanup

	var reloads atomic.Int32
	w.OnReload(func() { reloads.Add(1) })

	if err := os.WriteFile(path, []byte("prims:\n  - name: Set\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if !w.Reload() {
		t.Fatal("Reload() = false for a valid file")
	}
	if !s.Exists("/Set") || s.Exists("/World") {
		t.Error("stage content not swapped by Reload")
	}
	if reloads.Load() != 1 {
		t.Errorf("reload callbacks = %d, want 1", reloads.Load())
	}

	// A broken file keeps the current scene.
	if err := os.WriteFile(path, []byte("prims: [oops"), 0600); err != nil {
		t.Fatal(err)
	}
	if w.Reload() {
		t.Error("Reload() = true for an invalid file")
	}
	if !s.Exists("/Set") {
		t.Error("invalid file replaced the scene")
	}
}

func TestWatcher_RunPicksUpWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.yaml")
	if err := os.WriteFile(path, []byte("prims:\n  - name: World\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, s, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close() //nolint:errcheck // Test cleanup

	reloaded := make(chan struct{}, 1)
	w.OnReload(func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck // Ends with ctx

	if err := os.WriteFile(path, []byte("prims:\n  - name: Root\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	if !s.Exists("/Root") {
		t.Error("stage not reloaded from disk")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage.yaml")
	if err := os.WriteFile(path, []byte(""), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, New(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
