package door

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Type is the closed set of door kinds.
type Type int

const (
	Unknown Type = iota
	SingleSliding
	SinglePivot
	DualSliding
	DualPivot
)

var typeNames = [...]string{
	Unknown:       "unknown",
	SingleSliding: "single_sliding",
	SinglePivot:   "single_pivot",
	DualSliding:   "dual_sliding",
	DualPivot:     "dual_pivot",
}

func (t Type) String() string {
	if t < Unknown || t > DualPivot {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType accepts the String form of a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Sliding reports whether panels translate.
func (t Type) Sliding() bool { return t == SingleSliding || t == DualSliding }

// Pivot reports whether panels rotate.
func (t Type) Pivot() bool { return t == SinglePivot || t == DualPivot }

// Dual reports whether the door has two panels.
func (t Type) Dual() bool { return t == DualSliding || t == DualPivot }

// Axis is a local coordinate axis.
type Axis int

const (
	// AxisAuto asks the classifier to choose.
	AxisAuto Axis = iota
	AxisX
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "auto"
	}
}

// ParseAxis accepts "X", "Y", "Z" (any case) and "auto" or "".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AUTO":
		return AxisAuto, nil
	case "X":
		return AxisX, nil
	case "Y":
		return AxisY, nil
	case "Z":
		return AxisZ, nil
	}
	return AxisAuto, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
}

func (a Axis) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Axis) UnmarshalText(b []byte) error {
	v, err := ParseAxis(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Unit returns the unit vector along the axis (zero for AxisAuto).
func (a Axis) Unit() mgl64.Vec3 {
	switch a {
	case AxisX:
		return mgl64.Vec3{1, 0, 0}
	case AxisY:
		return mgl64.Vec3{0, 1, 0}
	case AxisZ:
		return mgl64.Vec3{0, 0, 1}
	}
	return mgl64.Vec3{}
}

// AxisSource records how a group's axis was chosen.
type AxisSource string

const (
	AxisFromPivot    AxisSource = "pivot"
	AxisFromOverride AxisSource = "override"
	AxisFromJoint    AxisSource = "joint"
	AxisFromBounds   AxisSource = "bounds"
	AxisFromRotation AxisSource = "rotation"
)

// Direction selects which way a door swings or slides.
type Direction string

const (
	Push Direction = "push"
	Pull Direction = "pull"
)

// ParseDirection accepts "push" or "pull"; "" means Push.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Push:
		return Push, nil
	case Pull:
		return Pull, nil
	}
	return Push, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Sign is +1 for Push and -1 for Pull.
func (d Direction) Sign() float64 {
	if d == Pull {
		return -1
	}
	return 1
}

// DualMode selects which panels of a dual sliding door move.
type DualMode string

const (
	LeftFixed  DualMode = "left_fixed"
	RightFixed DualMode = "right_fixed"
	BothSides  DualMode = "both_sides"
)

// ParseDualMode accepts the DualMode constants; "" means BothSides.
func ParseDualMode(s string) (DualMode, error) {
	switch DualMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", BothSides:
		return BothSides, nil
	case LeftFixed:
		return LeftFixed, nil
	case RightFixed:
		return RightFixed, nil
	}
	return BothSides, fmt.Errorf("%w: %q", ErrInvalidDualMode, s)
}

// Role is a panel's position within its door.
type Role string

const (
	RoleSingle Role = "single"
	RoleLeft   Role = "left"
	RoleRight  Role = "right"
)

// Panel is one moving leaf of a door.
type Panel struct {
	Role  Role    `json:"role"`
	Path  string  `json:"path"`
	Width float64 `json:"width"`
}

// Room is a scene prim that contains door groups.
type Room struct {
	Path string `json:"path"`
	Name string `json:"name"`

	// SceneName is the nearest ancestor named like a scene, set, level or stage.
	SceneName string `json:"scene_name,omitempty"`

	// ReferenceSource is the referenced asset (basename, no extension) the
	// room was brought in from, if any.
	ReferenceSource string `json:"reference_source,omitempty"`

	DisplayName string `json:"display_name"`
}

// Referenced reports whether the room comes from a referenced asset.
func (r Room) Referenced() bool { return r.ReferenceSource != "" }

// Group is a door group and, once classified, its panels and geometry.
type Group struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Room Room   `json:"room"`

	Type       Type       `json:"type"`
	Assembly   string     `json:"assembly,omitempty"`
	Panels     []Panel    `json:"panels,omitempty"`
	Axis       Axis       `json:"axis"`
	AxisSource AxisSource `json:"axis_source,omitempty"`
	Width      float64    `json:"width"`

	// Reason explains an Unknown classification, or a dual door that
	// is missing a leaf.
	Reason string `json:"reason,omitempty"`
}

// Classified reports whether the group can be animated.
func (g Group) Classified() bool {
	return g.Type != Unknown && len(g.Panels) > 0
}

// Panel returns the panel with the given role.
func (g Group) Panel(role Role) (Panel, bool) {
	for _, p := range g.Panels {
		if p.Role == role {
			return p, true
		}
	}
	return Panel{}, false
}
