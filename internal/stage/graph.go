package stage

import "github.com/go-gl/mathgl/mgl64"

// Graph is the minimal scene graph contract the core depends on.
//
// Paths are absolute prim paths. Methods return ErrPrimNotFound (wrapped)
// for paths that do not address a prim.
type Graph interface {
	// ListChildren returns the child prim paths in authored order.
	ListChildren(path string) ([]string, error)

	// PrimType returns the prim's type name, e.g. "Xform" or "SphereLight".
	PrimType(path string) (string, error)

	// Transform returns the prim's local transform.
	Transform(path string) (Transform, error)

	// SetTransform replaces the prim's local translation and rotation.
	SetTransform(path string, translate, rotate mgl64.Vec3) error
}

// PrimReader exposes the full prim record for classification metadata.
type PrimReader interface {
	Prim(path string) (Prim, error)
}

// Scene is a Graph that also exposes prim records.
type Scene interface {
	Graph
	PrimReader
}

// Prim is a read-only snapshot of one prim.
type Prim struct {
	Path       string            `json:"path"`
	Name       string            `json:"name"`
	Type       string            `json:"type"`
	Children   []string          `json:"children,omitempty"`
	Transform  Transform         `json:"transform"`
	Extent     *Bounds           `json:"extent,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	References []string          `json:"references,omitempty"`
}

// Well-known prim type names.
const (
	TypeXform          = "Xform"
	TypeScope          = "Scope"
	TypeMesh           = "Mesh"
	TypePrismaticJoint = "PhysicsPrismaticJoint"
)

// AttrJointAxis is the attribute naming a prismatic joint's slide axis.
const AttrJointAxis = "physics:axis"

// deepCopy returns a Prim that shares no mutable state with p.
func (p Prim) deepCopy() Prim {
	cp := p
	if p.Children != nil {
		cp.Children = append([]string(nil), p.Children...)
	}
	if p.Extent != nil {
		e := *p.Extent
		cp.Extent = &e
	}
	if p.Attributes != nil {
		cp.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			cp.Attributes[k] = v
		}
	}
	if p.References != nil {
		cp.References = append([]string(nil), p.References...)
	}
	return cp
}
