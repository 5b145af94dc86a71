package animation

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Easing maps linear progress onto the blend factor written to the scene.
type Easing string

const (
	Linear    Easing = "linear"
	EaseInOut Easing = "ease-in-out"
	EaseOut   Easing = "ease-out"
)

// ParseEasing accepts the Easing constants; "" means Linear.
func ParseEasing(s string) (Easing, error) {
	switch e := Easing(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return Linear, nil
	case Linear, EaseInOut, EaseOut:
		return e, nil
	}
	return Linear, fmt.Errorf("%w: unknown easing %q", ErrInvalidParams, s)
}

// Apply returns the blend factor for progress t, clamped to [0,1].
// Every curve maps 0 to 0 and 1 to 1.
func (e Easing) Apply(t float64) float64 {
	t = mgl64.Clamp(t, 0, 1)
	switch e {
	case EaseInOut:
		return t * t * (3 - 2*t)
	case EaseOut:
		return 1 - (1-t)*(1-t)
	default:
		return t
	}
}
