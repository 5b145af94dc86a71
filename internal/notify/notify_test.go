package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/history"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-interaction/internal/lights"
)

const (
	testDoor = "/World/Hall/Hall_Door"
	testSlug = "world.hall.hall_door"
	testRoom = "/World/Hall"
)

// ─── Mock Dependencies ──────────────────────────────────────────────

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type mockMQTT struct {
	mu         sync.Mutex
	published  []published
	handlers   map[string]mqtt.Handler
	publishErr error
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{handlers: make(map[string]mqtt.Handler)}
}

func (m *mockMQTT) PublishJSON(topic string, v any, retained bool) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, published{topic: topic, payload: data, retained: retained})
	return nil
}

func (m *mockMQTT) Route(topic string, _ byte, handler mqtt.Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) Unroute(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, topic)
	return nil
}

func (m *mockMQTT) messages() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.published...)
}

type mockLights struct{}

func (mockLights) ForRoom(roomPath string) lights.Association {
	return lights.Association{
		Room: roomPath,
		Groups: []lights.Group{{
			Path:   "/World/lights/Hall/Ceiling",
			Name:   "Ceiling",
			Lights: []string{"/World/lights/Hall/Ceiling/Spot"},
		}},
	}
}

type mockRepo struct {
	mu      sync.Mutex
	entries []history.Entry
	err     error
}

func (r *mockRepo) Record(_ context.Context, e history.Entry) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *mockRepo) List(context.Context, string, int) ([]history.Entry, error) {
	return nil, nil
}

func (r *mockRepo) Prune(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type cycle struct {
	door, doorType, motion string
	duration               time.Duration
}

type mockMetrics struct {
	transitions []influxdb.DoorTransition
	cycles      []cycle
}

func (m *mockMetrics) WriteDoorTransition(t influxdb.DoorTransition) {
	m.transitions = append(m.transitions, t)
}

func (m *mockMetrics) WriteDoorCycle(door, doorType, motion string, d time.Duration) {
	m.cycles = append(m.cycles, cycle{door, doorType, motion, d})
}

type mockHub struct {
	channel string
	payload any
}

func (h *mockHub) Broadcast(channel string, payload any) {
	h.channel, h.payload = channel, payload
}

type mockExecutor struct {
	key string
	req control.Request
	err error
}

func (e *mockExecutor) Execute(key string, req control.Request) (animation.Session, error) {
	e.key, e.req = key, req
	if e.err != nil {
		return animation.Session{}, e.err
	}
	return animation.Session{ID: "s1", Door: testDoor, State: animation.Opening}, nil
}

func testEvent(from, to animation.State, pos animation.Position) animation.Event {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return animation.Event{
		Session: animation.Session{
			ID:        "s1",
			Door:      testDoor,
			DoorType:  door.SingleSliding,
			State:     to,
			Motion:    animation.Opening,
			Position:  pos,
			Progress:  1,
			StartedAt: start,
		},
		From: from,
		Group: door.Group{
			Path: testDoor,
			Name: "Hall_Door",
			Room: door.Room{Path: testRoom, Name: "Hall", DisplayName: "Hall"},
			Type: door.SingleSliding,
		},
		At: start.Add(1500 * time.Millisecond),
	}
}

// ─── Dispatcher ─────────────────────────────────────────────────────

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher(8)

	var mu sync.Mutex
	var got []animation.State
	d.Add("record", SinkFunc(func(_ context.Context, ev animation.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.Session.State)
		return nil
	}))

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := d.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}

	for _, s := range []animation.State{animation.Opening, animation.Paused, animation.Opening, animation.Completed} {
		d.Observe(animation.Event{Session: animation.Session{State: s}})
	}
	d.Stop()
	d.Stop()

	want := []animation.State{animation.Opening, animation.Paused, animation.Opening, animation.Completed}
	if len(got) != len(want) {
		t.Fatalf("delivered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if delivered, dropped, failed := d.Stats(); delivered != 4 || dropped != 0 || failed != 0 {
		t.Errorf("Stats() = %d, %d, %d; want 4, 0, 0", delivered, dropped, failed)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(2)

	// Not started: the queue fills and stays full.
	for range 5 {
		d.Observe(animation.Event{})
	}
	if d.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", d.Pending())
	}
	if _, dropped, _ := d.Stats(); dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
}

func TestDispatcher_SinkFailureDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher(4)
	calls := 0
	d.Add("broken", SinkFunc(func(context.Context, animation.Event) error {
		return errors.New("disk full")
	}))
	d.Add("ok", SinkFunc(func(context.Context, animation.Event) error {
		calls++
		return nil
	}))

	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	d.Observe(animation.Event{})
	d.Stop()

	if calls != 1 {
		t.Errorf("second sink called %d times, want 1", calls)
	}
	if delivered, _, failed := d.Stats(); delivered != 1 || failed != 1 {
		t.Errorf("Stats() delivered=%d failed=%d, want 1 and 1", delivered, failed)
	}
}

func TestDispatcher_ContextCancelDrains(t *testing.T) {
	d := NewDispatcher(4)
	done := make(chan struct{}, 4)
	d.Add("count", SinkFunc(func(context.Context, animation.Event) error {
		done <- struct{}{}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	d.Observe(animation.Event{})
	d.Observe(animation.Event{})
	if err := d.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()
	d.Stop()

	if len(done) != 2 {
		t.Errorf("delivered %d events, want 2", len(done))
	}
}

// ─── Sinks ──────────────────────────────────────────────────────────

func TestStatePublisher_Handle(t *testing.T) {
	m := newMockMQTT()
	p := NewStatePublisher(m, mockLights{})

	if err := p.Handle(context.Background(), testEvent(animation.Opening, animation.Completed, animation.Open)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	msgs := m.messages()
	if len(msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(msgs))
	}
	if msgs[0].topic != "graylogic/state/door/"+testSlug || !msgs[0].retained {
		t.Errorf("state message = %s retained=%v", msgs[0].topic, msgs[0].retained)
	}
	if msgs[1].topic != "graylogic/event/door/completed" || msgs[1].retained {
		t.Errorf("event message = %s retained=%v", msgs[1].topic, msgs[1].retained)
	}

	var st DoorState
	if err := json.Unmarshal(msgs[0].payload, &st); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if st.Slug != testSlug || !st.Open || st.State != animation.Completed || st.From != animation.Opening {
		t.Errorf("payload = %+v", st)
	}
	if st.Room.Path != testRoom || len(st.Lights) != 1 || st.Lights[0].Name != "Ceiling" {
		t.Errorf("room/lights = %+v / %+v", st.Room, st.Lights)
	}
}

func TestStatePublisher_NoLights(t *testing.T) {
	p := NewStatePublisher(nil, nil)
	st := p.Build(testEvent(animation.Idle, animation.Opening, animation.Closed))
	if st.Lights == nil || len(st.Lights) != 0 {
		t.Errorf("Lights = %#v, want empty slice", st.Lights)
	}
	if st.Open {
		t.Error("Open = true for a closed door")
	}
}

func TestStatePublisher_PublishError(t *testing.T) {
	m := newMockMQTT()
	m.publishErr = errors.New("not connected")
	p := NewStatePublisher(m, nil)

	if err := p.Handle(context.Background(), testEvent(animation.Idle, animation.Opening, animation.Closed)); err == nil {
		t.Error("Handle() error = nil, want publish failure")
	}
}

func TestHistorySink(t *testing.T) {
	repo := &mockRepo{}
	s := NewHistorySink(repo)

	ev := testEvent(animation.Opening, animation.Completed, animation.Open)
	if err := s.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("recorded %d entries, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Door != testDoor || e.From != animation.Opening || e.To != animation.Completed || !e.OccurredAt.Equal(ev.At) {
		t.Errorf("entry = %+v", e)
	}

	repo.err = errors.New("locked")
	if err := s.Handle(context.Background(), ev); err == nil {
		t.Error("Handle() error = nil, want repository failure")
	}
}

func TestMetricsSink(t *testing.T) {
	w := &mockMetrics{}
	s := NewMetricsSink(w)

	_ = s.Handle(context.Background(), testEvent(animation.Idle, animation.Opening, animation.Closed))
	_ = s.Handle(context.Background(), testEvent(animation.Opening, animation.Completed, animation.Open))

	if len(w.transitions) != 2 {
		t.Fatalf("transitions = %d, want 2", len(w.transitions))
	}
	tr := w.transitions[1]
	if tr.Door != testDoor || tr.DoorType != "single_sliding" || tr.Room != "Hall" || tr.From != "opening" || tr.To != "completed" {
		t.Errorf("transition = %+v", tr)
	}

	if len(w.cycles) != 1 {
		t.Fatalf("cycles = %d, want 1 (completed only)", len(w.cycles))
	}
	if c := w.cycles[0]; c.motion != "opening" || c.duration != 1500*time.Millisecond {
		t.Errorf("cycle = %+v", c)
	}
}

func TestBroadcastSink(t *testing.T) {
	hub := &mockHub{}
	s := NewBroadcastSink(hub, mockLights{})

	if err := s.Handle(context.Background(), testEvent(animation.Idle, animation.Opening, animation.Closed)); err != nil {
		t.Fatal(err)
	}
	if hub.channel != ChannelDoorState {
		t.Errorf("channel = %q, want %q", hub.channel, ChannelDoorState)
	}
	st, ok := hub.payload.(DoorState)
	if !ok || st.Door != testDoor || len(st.Lights) != 1 {
		t.Errorf("payload = %#v", hub.payload)
	}
}

// ─── Command listener ───────────────────────────────────────────────

func TestCommandListener(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		execErr     error
		wantSuccess bool
		wantCommand control.Action
		wantExec    bool
	}{
		{"json command", `{"command":"open","params":{"speed":2}}`, nil, true, control.ActionOpen, true},
		{"bare word", "close", nil, true, control.ActionClose, true},
		{"rejected by controller", "open", animation.ErrBusy, false, control.ActionOpen, true},
		{"malformed", `{"command":`, nil, false, "", false},
		{"unknown action", "slam", nil, false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockMQTT()
			exec := &mockExecutor{err: tt.execErr}
			l := NewCommandListener(m, exec, 1)
			l.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

			if err := l.Start(); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			handler, ok := m.handlers["graylogic/command/door/+"]
			if !ok {
				t.Fatalf("no subscription, got %v", m.handlers)
			}

			if err := handler("graylogic/command/door/"+testSlug, []byte(tt.payload)); err != nil {
				t.Fatalf("handler error = %v", err)
			}

			if tt.wantExec != (exec.key == testSlug) {
				t.Errorf("executor key = %q, wantExec %v", exec.key, tt.wantExec)
			}

			msgs := m.messages()
			if len(msgs) != 1 || msgs[0].topic != "graylogic/ack/door/"+testSlug {
				t.Fatalf("published = %+v, want one ack", msgs)
			}
			var ack Ack
			if err := json.Unmarshal(msgs[0].payload, &ack); err != nil {
				t.Fatal(err)
			}
			if ack.Success != tt.wantSuccess || ack.Command != tt.wantCommand {
				t.Errorf("ack = %+v", ack)
			}
			if !tt.wantSuccess && ack.Error == "" {
				t.Error("failed ack has no error")
			}
			if tt.wantSuccess && (ack.Session == nil || ack.Session.ID != "s1") {
				t.Errorf("ack session = %+v", ack.Session)
			}

			if err := l.Stop(); err != nil || len(m.handlers) != 0 {
				t.Errorf("Stop() error = %v, handlers = %d", err, len(m.handlers))
			}
		})
	}
}

func TestCommandListener_ParamsPassedThrough(t *testing.T) {
	m := newMockMQTT()
	exec := &mockExecutor{}
	l := NewCommandListener(m, exec, 1)
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}

	payload := `{"command":"open","params":{"direction":"pull","axis":"z"}}`
	if err := m.handlers["graylogic/command/door/+"]("graylogic/command/door/"+testSlug, []byte(payload)); err != nil {
		t.Fatal(err)
	}
	if p := exec.req.Params; p.Direction == nil || *p.Direction != "pull" || p.Axis == nil || *p.Axis != "z" {
		t.Errorf("params = %+v", p)
	}
}

func TestCommandListener_NoSlug(t *testing.T) {
	m := newMockMQTT()
	exec := &mockExecutor{}
	l := NewCommandListener(m, exec, 1)

	if err := l.handle("graylogic/command/door/", []byte("open")); err != nil {
		t.Fatalf("handle() error = %v", err)
	}
	if exec.key != "" || len(m.messages()) != 0 {
		t.Error("command without slug was executed or acknowledged")
	}
}

func TestCommandListener_AckPublishFailure(t *testing.T) {
	m := newMockMQTT()
	m.publishErr = errors.New("not connected")
	l := NewCommandListener(m, &mockExecutor{}, 1)

	if err := l.handle("graylogic/command/door/"+testSlug, []byte("open")); err == nil {
		t.Error("handle() error = nil, want publish failure")
	}
}
