package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/influxdb"
)

// fakeInflux serves the two endpoints the client uses: /ping and /api/v2/write.
type fakeInflux struct {
	mu          sync.Mutex
	lines       []string
	writeStatus int
	unhealthy   bool
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping", "/health":
		if f.unhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		status := f.writeStatus
		if status == 0 {
			status = http.StatusNoContent
			f.lines = append(f.lines, strings.Split(strings.TrimSpace(string(body)), "\n")...)
		}
		f.mu.Unlock()
		if status != http.StatusNoContent {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"code":"internal error","message":"boom"}`))
			return
		}
		w.WriteHeader(status)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "graylogic-dev-token",
		Org:           "graylogic",
		Bucket:        "doors",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func connect(t *testing.T, fake *fakeInflux) *influxdb.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := connect(t, &fakeInflux{})

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := influxdb.Connect(ctx, testConfig("http://127.0.0.1:1"))
	if !errors.Is(err, influxdb.ErrConnect) {
		t.Errorf("Connect() error = %v, want ErrConnect", err)
	}
}

func TestConnect_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{unhealthy: true})
	defer srv.Close()

	_, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if !errors.Is(err, influxdb.ErrConnect) {
		t.Errorf("Connect() error = %v, want ErrConnect", err)
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{})
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = -1
	cfg.FlushInterval = 0

	client, err := influxdb.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() with defaulted batch settings error = %v", err)
	}
	client.Close()
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWriteDoorTransition(t *testing.T) {
	fake := &fakeInflux{}
	client := connect(t, fake)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	client.WriteDoorTransition(influxdb.DoorTransition{
		Door:     "/World/Hall/Hall_Door",
		DoorType: "dual_sliding",
		Room:     "/World/Hall",
		From:     "opening",
		To:       "completed",
		Position: "open",
		Progress: 1,
		At:       at,
	})
	client.Flush()

	lines := fake.written()
	if len(lines) != 1 {
		t.Fatalf("written lines = %v, want 1", lines)
	}
	line := lines[0]
	for _, want := range []string{
		"door_transitions,door=/World/Hall/Hall_Door,door_type=dual_sliding,room=/World/Hall,state=completed ",
		`from="opening"`,
		"open=true",
		"progress=1",
		`position="open"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, " 1772355600000000000") {
		t.Errorf("line %q does not carry the event timestamp", line)
	}
}

func TestWriteDoorCycle(t *testing.T) {
	fake := &fakeInflux{}
	client := connect(t, fake)

	client.WriteDoorCycle("/World/Hall/Hall_Door", "single_pivot", "closing", 1500*time.Millisecond)
	client.Flush()

	lines := fake.written()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "door_cycles,door=/World/Hall/Hall_Door,door_type=single_pivot,motion=closing duration_ms=1500i") {
		t.Errorf("lines = %v", lines)
	}
}

func TestWriteRuntime(t *testing.T) {
	fake := &fakeInflux{}
	client := connect(t, fake)

	client.WriteRuntime("site-001", 2, 600)
	client.Flush()

	lines := fake.written()
	if len(lines) != 1 || !strings.Contains(lines[0], "active_sessions=2i") || !strings.Contains(lines[0], "frames=600u") {
		t.Errorf("lines = %v", lines)
	}
}

func TestWriteErrorsReachCallback(t *testing.T) {
	fake := &fakeInflux{writeStatus: http.StatusBadRequest}
	client := connect(t, fake)

	errs := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case errs <- err:
		default:
		}
	})

	client.WriteDoorCycle("/World/Hall/Hall_Door", "single_pivot", "opening", time.Second)
	client.Flush()

	select {
	case err := <-errs:
		if err == nil {
			t.Error("nil error delivered")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("write error not delivered")
	}
}

func TestClose(t *testing.T) {
	fake := &fakeInflux{}
	client := connect(t, fake)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v", err)
	}

	// Writes after Close are dropped silently.
	client.WriteDoorCycle("/World/Hall/Hall_Door", "single_pivot", "opening", time.Second)
	client.Flush()
	if len(fake.written()) != 0 {
		t.Error("point written after Close")
	}
}

func TestClose_Nil(t *testing.T) {
	client := &influxdb.Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}
}
