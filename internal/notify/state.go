package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
	"github.com/nerrad567/gray-logic-interaction/internal/lights"
)

// Publisher sends JSON payloads to MQTT topics.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// LightResolver returns the lighting associated with a room.
type LightResolver interface {
	ForRoom(roomPath string) lights.Association
}

// DoorState is the retained payload on graylogic/state/door/{slug}.
type DoorState struct {
	Door      string             `json:"door"`
	Slug      string             `json:"slug"`
	Name      string             `json:"name"`
	Room      door.Room          `json:"room"`
	Lights    []lights.Group     `json:"lights"`
	Session   animation.Session  `json:"session"`
	From      animation.State    `json:"from"`
	Timestamp time.Time          `json:"timestamp"`
	Open      bool               `json:"open"`
	Position  animation.Position `json:"position"`
	State     animation.State    `json:"state"`
}

// StatePublisher publishes every transition as retained door state and as
// a transition event on graylogic/event/door/{state}.
type StatePublisher struct {
	pub    Publisher
	lights LightResolver
	topics mqtt.Topics
}

// NewStatePublisher creates a state publisher. lr may be nil, in which
// case payloads carry no light groups.
func NewStatePublisher(pub Publisher, lr LightResolver) *StatePublisher {
	return &StatePublisher{pub: pub, lights: lr}
}

// Build assembles the state payload for ev.
func (p *StatePublisher) Build(ev animation.Event) DoorState {
	s := ev.Session
	st := DoorState{
		Door:      s.Door,
		Slug:      inventory.Slug(s.Door),
		Name:      ev.Group.Name,
		Room:      ev.Group.Room,
		Lights:    []lights.Group{},
		Session:   s,
		From:      ev.From,
		Timestamp: ev.At.UTC(),
		Open:      s.Position == animation.Open,
		Position:  s.Position,
		State:     s.State,
	}
	if p.lights != nil && ev.Group.Room.Path != "" {
		st.Lights = p.lights.ForRoom(ev.Group.Room.Path).Groups
	}
	return st
}

// Handle implements Sink.
func (p *StatePublisher) Handle(_ context.Context, ev animation.Event) error {
	st := p.Build(ev)

	if err := p.pub.PublishJSON(p.topics.DoorState(st.Slug), st, true); err != nil {
		return fmt.Errorf("publishing door state: %w", err)
	}
	if err := p.pub.PublishJSON(p.topics.DoorEvent(string(st.State)), st, false); err != nil {
		return fmt.Errorf("publishing door event: %w", err)
	}
	return nil
}

// DoorSlug lets WebSocket subscribers filter state by door.
func (s DoorState) DoorSlug() string { return s.Slug }
