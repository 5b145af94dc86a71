package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/history"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/influxdb"
)

// ChannelDoorState is the WebSocket channel carrying door transitions.
const ChannelDoorState = "door.state_changed"

// HistorySink records every transition in a history repository.
type HistorySink struct {
	repo history.Repository
}

// NewHistorySink creates a history sink.
func NewHistorySink(repo history.Repository) *HistorySink {
	return &HistorySink{repo: repo}
}

// Handle implements Sink.
func (h *HistorySink) Handle(ctx context.Context, ev animation.Event) error {
	if err := h.repo.Record(ctx, history.FromEvent(ev)); err != nil {
		return fmt.Errorf("recording door event: %w", err)
	}
	return nil
}

// MetricsWriter is the subset of influxdb.Client the metrics sink uses.
type MetricsWriter interface {
	WriteDoorTransition(t influxdb.DoorTransition)
	WriteDoorCycle(door, doorType, motion string, duration time.Duration)
}

// MetricsSink writes transitions to the time-series database. A completed
// motion also yields a cycle point timed from the session start.
type MetricsSink struct {
	w MetricsWriter
}

// NewMetricsSink creates a metrics sink.
func NewMetricsSink(w MetricsWriter) *MetricsSink {
	return &MetricsSink{w: w}
}

// Handle implements Sink. Writes are batched by the client and never fail here.
func (m *MetricsSink) Handle(_ context.Context, ev animation.Event) error {
	s := ev.Session
	m.w.WriteDoorTransition(influxdb.DoorTransition{
		Door:     s.Door,
		DoorType: s.DoorType.String(),
		Room:     ev.Group.Room.Name,
		From:     string(ev.From),
		To:       string(s.State),
		Position: string(s.Position),
		Progress: s.Progress,
		At:       ev.At,
	})

	if s.State == animation.Completed && !s.StartedAt.IsZero() {
		duration := max(ev.At.Sub(s.StartedAt), 0)
		m.w.WriteDoorCycle(s.Door, s.DoorType.String(), string(s.Motion), duration)
	}
	return nil
}

// Broadcaster delivers payloads to WebSocket subscribers of a channel.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// BroadcastSink relays door state to WebSocket clients on ChannelDoorState.
type BroadcastSink struct {
	b     Broadcaster
	state *StatePublisher
}

// NewBroadcastSink creates a broadcast sink. lr may be nil.
func NewBroadcastSink(b Broadcaster, lr LightResolver) *BroadcastSink {
	return &BroadcastSink{b: b, state: NewStatePublisher(nil, lr)}
}

// Handle implements Sink.
func (s *BroadcastSink) Handle(_ context.Context, ev animation.Event) error {
	s.b.Broadcast(ChannelDoorState, s.state.Build(ev))
	return nil
}
