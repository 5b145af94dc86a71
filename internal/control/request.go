package control

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
)

// Action is a door command verb.
type Action string

const (
	ActionOpen   Action = "open"
	ActionClose  Action = "close"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionReset  Action = "reset"
	// ActionStop halts a moving door in place; it is Pause by another name.
	ActionStop Action = "stop"
)

// ParseAction accepts the Action constants, case-insensitively.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionOpen, ActionClose, ActionPause, ActionResume, ActionReset, ActionStop:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Overrides are optional per-command animation parameters. Nil fields keep
// the controller default.
type Overrides struct {
	SlideDistance *float64 `json:"slide_distance,omitempty"`
	PivotAngle    *float64 `json:"pivot_angle,omitempty"`
	Direction     *string  `json:"direction,omitempty"`
	DualMode      *string  `json:"dual_mode,omitempty"`
	Speed         *float64 `json:"speed,omitempty"`

	// Axis pins the slide axis ("x", "y", "z") or clears the pin ("auto").
	Axis *string `json:"axis,omitempty"`
}

// Apply layers o over base.
func (o Overrides) Apply(base animation.Params) (animation.Params, error) {
	p := base
	if o.SlideDistance != nil {
		p.SlideDistance = *o.SlideDistance
	}
	if o.PivotAngle != nil {
		p.PivotAngle = *o.PivotAngle
	}
	if o.Speed != nil {
		p.Speed = *o.Speed
	}
	if o.Direction != nil {
		d, err := door.ParseDirection(*o.Direction)
		if err != nil {
			return p, fmt.Errorf("%w: %v", animation.ErrInvalidParams, err)
		}
		p.Direction = d
	}
	if o.DualMode != nil {
		m, err := door.ParseDualMode(*o.DualMode)
		if err != nil {
			return p, fmt.Errorf("%w: %v", animation.ErrInvalidParams, err)
		}
		p.DualMode = m
	}
	return p, p.Validate()
}

// Fields returns the overrides that are set, keyed by their JSON names.
func (o Overrides) Fields() map[string]any {
	out := map[string]any{}
	if o.SlideDistance != nil {
		out["slide_distance"] = *o.SlideDistance
	}
	if o.PivotAngle != nil {
		out["pivot_angle"] = *o.PivotAngle
	}
	if o.Speed != nil {
		out["speed"] = *o.Speed
	}
	if o.Direction != nil {
		out["direction"] = *o.Direction
	}
	if o.DualMode != nil {
		out["dual_mode"] = *o.DualMode
	}
	if o.Axis != nil {
		out["axis"] = *o.Axis
	}
	return out
}

// Request is one door command.
//
// JSON form, as sent on graylogic/command/door/{slug}:
//
//	{"command": "open", "params": {"speed": 2, "direction": "pull"}}
type Request struct {
	Action Action    `json:"command"`
	Params Overrides `json:"params"`
}

// DecodeRequest parses a JSON command. A bare action string such as
// "open" or `"open"` is accepted too.
func DecodeRequest(payload []byte) (Request, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return Request{}, fmt.Errorf("%w: empty payload", ErrInvalidRequest)
	}

	var req Request
	switch {
	case strings.HasPrefix(trimmed, "{"):
		var raw struct {
			Command string    `json:"command"`
			Params  Overrides `json:"params"`
		}
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		req.Params = raw.Params
		trimmed = raw.Command
	case strings.HasPrefix(trimmed, `"`):
		if err := json.Unmarshal([]byte(trimmed), &trimmed); err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	action, err := ParseAction(trimmed)
	if err != nil {
		return Request{}, err
	}
	req.Action = action
	return req, nil
}
