package door

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// assemblySearchDepth bounds how far below a door group the panel assembly
// may sit.
const assemblySearchDepth = 3

// Geometry holds the width fallbacks used when panels lack an extent.
type Geometry struct {
	DefaultPanelWidth float64
	MinWidth          float64
}

// DefaultGeometry returns widths in centimetre scene units.
func DefaultGeometry() Geometry {
	return Geometry{DefaultPanelWidth: 100, MinWidth: 50}
}

// Classifier annotates door groups with type, panels, width and axis.
//
// Classification is a pure function of the scene content and naming rules:
// the same scene always yields the same result.
type Classifier struct {
	scene    stage.Scene
	naming   Naming
	geometry Geometry
}

// NewClassifier creates a classifier over scene.
func NewClassifier(scene stage.Scene, naming Naming, geometry Geometry) *Classifier {
	return &Classifier{scene: scene, naming: naming, geometry: geometry}
}

// Classify returns g annotated with its classification.
// override forces the slide axis of sliding doors; pass AxisAuto to detect it.
// A group that cannot be classified comes back with Type Unknown and a Reason.
// A dual door missing one leaf stays classified but carries a Reason too.
func (c *Classifier) Classify(g Group, override Axis) Group {
	g.Type, g.Assembly, g.Panels, g.Width = Unknown, "", nil, 0
	g.Axis, g.AxisSource, g.Reason = AxisAuto, "", ""

	assembly, doorType := c.findAssembly(g.Path)
	if doorType == Unknown {
		g.Reason = "no door-type keyword below door group"
		return g
	}

	panels := c.assignPanels(assembly, doorType)
	if len(panels) == 0 {
		g.Reason = "door-type keyword found but no panel prims"
		return g
	}

	g.Type = doorType
	g.Assembly = assembly
	g.Panels = panels
	g.Width = c.width(g.Panels)
	g.Axis, g.AxisSource = c.axis(g, override)
	if doorType.Dual() && len(panels) < 2 {
		g.Reason = "dual door has a single panel; only " + string(panels[0].Role) + " animates"
	}
	return g
}

// findAssembly checks direct children first, then descendants breadth-first.
func (c *Classifier) findAssembly(doorPath string) (string, Type) {
	level, err := c.scene.ListChildren(doorPath)
	if err != nil {
		return "", Unknown
	}

	for depth := 1; depth <= assemblySearchDepth && len(level) > 0; depth++ {
		var next []string
		for _, child := range level {
			if t := c.naming.TypeOf(stage.Name(child)); t != Unknown {
				return child, t
			}
			grandchildren, err := c.scene.ListChildren(child)
			if err == nil {
				next = append(next, grandchildren...)
			}
		}
		level = next
	}
	return "", Unknown
}

func (c *Classifier) assignPanels(assembly string, doorType Type) []Panel {
	children := c.panelCandidates(assembly)

	if !doorType.Dual() {
		if len(children) == 0 {
			// The assembly itself may be the panel geometry.
			if p, err := c.scene.Prim(assembly); err == nil && p.Extent != nil {
				return []Panel{{Role: RoleSingle, Path: assembly}}
			}
			return nil
		}
		chosen := children[0]
		for _, child := range children {
			name := stage.Name(child)
			if stage.ContainsFold(name, c.naming.PanelKeyword) && !c.naming.isLeft(name) && !c.naming.isRight(name) {
				chosen = child
				break
			}
		}
		return []Panel{{Role: RoleSingle, Path: chosen}}
	}

	var left, right string
	for _, child := range children {
		name := stage.Name(child)
		switch {
		case left == "" && c.naming.isLeft(name):
			left = child
		case right == "" && c.naming.isRight(name):
			right = child
		}
	}
	// Unnamed leaves fill the missing roles in authored order.
	for _, child := range children {
		if child == left || child == right {
			continue
		}
		if left == "" {
			left = child
		} else if right == "" {
			right = child
		}
	}

	var panels []Panel
	if left != "" {
		panels = append(panels, Panel{Role: RoleLeft, Path: left})
	}
	if right != "" {
		panels = append(panels, Panel{Role: RoleRight, Path: right})
	}
	return panels
}

// panelCandidates lists the assembly's children, skipping physics prims
// (joints, colliders) that sit beside the panel geometry.
func (c *Classifier) panelCandidates(assembly string) []string {
	children, err := c.scene.ListChildren(assembly)
	if err != nil {
		return nil
	}
	out := children[:0]
	for _, child := range children {
		t, err := c.scene.PrimType(child)
		if err != nil || strings.HasPrefix(t, "Physics") {
			continue
		}
		out = append(out, child)
	}
	return out
}

// width sums per-panel widths (larger of the X and Z extents) and stores
// each panel's share.
func (c *Classifier) width(panels []Panel) float64 {
	total := 0.0
	for i := range panels {
		w := c.geometry.DefaultPanelWidth
		if p, err := c.scene.Prim(panels[i].Path); err == nil && p.Extent != nil && !p.Extent.Empty() {
			size := scaled(p.Extent.Size(), p.Transform.Scale)
			w = math.Max(size.X(), size.Z())
		}
		panels[i].Width = w
		total += w
	}
	return math.Max(total, c.geometry.MinWidth)
}

func (c *Classifier) axis(g Group, override Axis) (Axis, AxisSource) {
	if g.Type.Pivot() {
		return AxisY, AxisFromPivot
	}
	if override != AxisAuto {
		return override, AxisFromOverride
	}
	if a, ok := c.jointAxis(g.Path); ok {
		return a, AxisFromJoint
	}

	first, err := c.scene.Prim(g.Panels[0].Path)
	if err != nil {
		return AxisX, AxisFromRotation
	}
	orient := first.Transform.Orientation()

	if first.Extent != nil && !first.Extent.Empty() {
		size := scaled(first.Extent.Size(), first.Transform.Scale)
		ex := orient.Rotate(mgl64.Vec3{size.X(), 0, 0})
		ez := orient.Rotate(mgl64.Vec3{0, 0, size.Z()})
		alongX := math.Abs(ex.X()) + math.Abs(ez.X())
		alongZ := math.Abs(ex.Z()) + math.Abs(ez.Z())
		if alongZ > alongX {
			return AxisZ, AxisFromBounds
		}
		return AxisX, AxisFromBounds
	}

	local := orient.Rotate(mgl64.Vec3{1, 0, 0})
	if math.Abs(local.Z()) > math.Abs(local.X()) {
		return AxisZ, AxisFromRotation
	}
	return AxisX, AxisFromRotation
}

// jointAxis looks for a prismatic joint below the door group naming X or Z.
func (c *Classifier) jointAxis(doorPath string) (Axis, bool) {
	level := []string{doorPath}
	for depth := 0; depth <= assemblySearchDepth && len(level) > 0; depth++ {
		var next []string
		for _, path := range level {
			p, err := c.scene.Prim(path)
			if err != nil {
				continue
			}
			if p.Type == stage.TypePrismaticJoint {
				if a, err := ParseAxis(p.Attributes[stage.AttrJointAxis]); err == nil && (a == AxisX || a == AxisZ) {
					return a, true
				}
			}
			next = append(next, p.Children...)
		}
		level = next
	}
	return AxisAuto, false
}

func scaled(size, scale mgl64.Vec3) mgl64.Vec3 {
	if scale == (mgl64.Vec3{}) {
		return size
	}
	return mgl64.Vec3{
		size.X() * math.Abs(scale.X()),
		size.Y() * math.Abs(scale.Y()),
		size.Z() * math.Abs(scale.Z()),
	}
}
