package stage

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a prim's local transform.
// Rotate holds XYZ Euler angles in degrees.
type Transform struct {
	Translate mgl64.Vec3 `json:"translate"`
	Rotate    mgl64.Vec3 `json:"rotate"`
	Scale     mgl64.Vec3 `json:"scale"`
}

// Identity returns the transform with no translation, no rotation and unit scale.
func Identity() Transform {
	return Transform{Scale: mgl64.Vec3{1, 1, 1}}
}

// Orientation converts the Euler rotation to a quaternion.
func (t Transform) Orientation() mgl64.Quat {
	return mgl64.AnglesToQuat(
		mgl64.DegToRad(t.Rotate.X()),
		mgl64.DegToRad(t.Rotate.Y()),
		mgl64.DegToRad(t.Rotate.Z()),
		mgl64.XYZ,
	)
}

// Lerp blends translation and rotation componentwise towards to by f in [0,1].
// Scale is taken from t; animations never scale panels.
func (t Transform) Lerp(to Transform, f float64) Transform {
	return Transform{
		Translate: t.Translate.Add(to.Translate.Sub(t.Translate).Mul(f)),
		Rotate:    t.Rotate.Add(to.Rotate.Sub(t.Rotate).Mul(f)),
		Scale:     t.Scale,
	}
}

// ApproxEqual compares translation and rotation within eps.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return t.Translate.ApproxEqualThreshold(o.Translate, eps) &&
		t.Rotate.ApproxEqualThreshold(o.Rotate, eps)
}

// Bounds is an axis-aligned box in a prim's local space.
type Bounds struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// Size returns the per-axis extent, never negative.
func (b Bounds) Size() mgl64.Vec3 {
	s := b.Max.Sub(b.Min)
	for i := range s {
		if s[i] < 0 {
			s[i] = -s[i]
		}
	}
	return s
}

// Empty reports whether the box has no horizontal extent.
func (b Bounds) Empty() bool {
	s := b.Size()
	return s.X() == 0 && s.Z() == 0
}
