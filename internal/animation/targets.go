package animation

import (
	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// openTargets computes each panel's open pose from its closed pose.
//
// Sliding doors translate along the group axis; Push moves panels towards
// +axis. Dual sliding panels part in opposite directions: the left panel
// moves towards -axis. Pivot doors add the swing angle to the rotation about
// the group axis; the left leaf of a dual pivot door swings mirrored.
func openTargets(g door.Group, initial map[string]stage.Transform, p Params, defaultAngle float64) map[string]stage.Transform {
	axis := g.Axis
	if axis == door.AxisAuto {
		axis = door.AxisX
	}
	sign := p.Direction.Sign()

	slide := p.SlideDistance
	if slide == 0 {
		slide = g.Width
	}
	angle := p.PivotAngle
	if angle == 0 {
		angle = defaultAngle
	}
	mode := p.DualMode
	if mode == "" {
		mode = door.BothSides
	}

	targets := make(map[string]stage.Transform, len(g.Panels))
	for _, panel := range g.Panels {
		from := initial[panel.Path]
		to := from

		switch g.Type {
		case door.SingleSliding:
			to.Translate = from.Translate.Add(axis.Unit().Mul(slide * sign))

		case door.DualSliding:
			to.Translate = from.Translate.Add(axis.Unit().Mul(dualSlide(panel.Role, mode, slide) * sign))

		case door.SinglePivot:
			to.Rotate = from.Rotate.Add(axis.Unit().Mul(angle * sign))

		case door.DualPivot:
			mirror := 1.0
			if panel.Role == door.RoleLeft {
				mirror = -1
			}
			to.Rotate = from.Rotate.Add(axis.Unit().Mul(angle * sign * mirror))

		case door.Unknown:
		}

		targets[panel.Path] = to
	}
	return targets
}

// dualSlide returns the signed travel of one leaf of a dual sliding door
// before the direction sign is applied.
func dualSlide(role door.Role, mode door.DualMode, slide float64) float64 {
	switch mode {
	case door.LeftFixed:
		if role == door.RoleRight {
			return slide
		}
	case door.RightFixed:
		if role == door.RoleLeft {
			return -slide
		}
	default:
		switch role {
		case door.RoleLeft:
			return -slide / 2
		case door.RoleRight:
			return slide / 2
		}
	}
	return 0
}
