package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
)

// State is a door session's lifecycle state.
type State string

const (
	Idle      State = "idle"
	Opening   State = "opening"
	Closing   State = "closing"
	Paused    State = "paused"
	Completed State = "completed"
)

// Locked reports whether the state rejects new Open/Close requests.
func (s State) Locked() bool {
	return s == Opening || s == Closing || s == Paused
}

// Position is where the panels rest once an animation completes.
type Position string

const (
	Closed Position = "closed"
	Open   Position = "open"
)

// Params are the caller's choices for one animation.
//
// Zero SlideDistance means the door width; zero PivotAngle means the
// controller default. Speed is used as given: zero never completes.
type Params struct {
	SlideDistance float64        `json:"slide_distance"`
	PivotAngle    float64        `json:"pivot_angle"`
	Direction     door.Direction `json:"direction"`
	DualMode      door.DualMode  `json:"dual_mode"`
	Speed         float64        `json:"speed"`
}

// Validate checks Params for values the controller cannot animate.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"slide_distance", p.SlideDistance},
		{"pivot_angle", p.PivotAngle},
		{"speed", p.Speed},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidParams, f.name)
		}
	}
	if p.Speed < 0 {
		return fmt.Errorf("%w: speed must not be negative", ErrInvalidParams)
	}
	if p.SlideDistance < 0 {
		return fmt.Errorf("%w: slide_distance must not be negative", ErrInvalidParams)
	}
	if _, err := door.ParseDirection(string(p.Direction)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if _, err := door.ParseDualMode(string(p.DualMode)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Session is a snapshot of one door's animation state.
type Session struct {
	ID        string    `json:"id"`
	Door      string    `json:"door"`
	DoorType  door.Type `json:"door_type"`
	State     State     `json:"state"`
	Motion    State     `json:"motion,omitempty"`
	Position  Position  `json:"position"`
	Progress  float64   `json:"progress"`
	Speed     float64   `json:"speed"`
	Params    Params    `json:"params"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event reports a state transition.
type Event struct {
	Session Session    `json:"session"`
	From    State      `json:"from"`
	Group   door.Group `json:"-"`
	At      time.Time  `json:"at"`
}

// Observer receives state transitions. Observe runs on the goroutine that
// caused the transition (an API handler or the frame loop) and should not
// block for long.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// Logger is the logging interface used by the animation package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
