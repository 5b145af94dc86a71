package stage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// document is the on-disk stage layout.
type document struct {
	Prims []primDoc `yaml:"prims"`
}

type primDoc struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type,omitempty"`
	Translate  []float64         `yaml:"translate,omitempty,flow"`
	Rotate     []float64         `yaml:"rotate,omitempty,flow"`
	Scale      []float64         `yaml:"scale,omitempty,flow"`
	Extent     [][]float64       `yaml:"extent,omitempty,flow"`
	Attributes map[string]string `yaml:"attributes,omitempty"`
	References []string          `yaml:"references,omitempty,flow"`
	Children   []primDoc         `yaml:"children,omitempty"`
}

// LoadFile reads a stage from a YAML file.
func LoadFile(path string) (*Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stage file: %w", err)
	}
	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

// Decode builds a stage from a YAML prim tree.
func Decode(r io.Reader) (*Stage, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	s := New()
	for _, pd := range doc.Prims {
		if err := s.define(RootPath, pd); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Stage) define(parent string, pd primDoc) error {
	name := strings.TrimSpace(pd.Name)
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: bad prim name %q under %s", ErrInvalidDocument, pd.Name, parent)
	}
	path := Join(parent, name)
	if err := s.Define(path, pd.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	xf := Identity()
	var err error
	if xf.Translate, err = vec3(pd.Translate, xf.Translate); err != nil {
		return fmt.Errorf("%w: %s translate: %v", ErrInvalidDocument, path, err)
	}
	if xf.Rotate, err = vec3(pd.Rotate, xf.Rotate); err != nil {
		return fmt.Errorf("%w: %s rotate: %v", ErrInvalidDocument, path, err)
	}
	if xf.Scale, err = vec3(pd.Scale, xf.Scale); err != nil {
		return fmt.Errorf("%w: %s scale: %v", ErrInvalidDocument, path, err)
	}

	var extent *Bounds
	if len(pd.Extent) > 0 {
		if len(pd.Extent) != 2 {
			return fmt.Errorf("%w: %s extent needs [min, max]", ErrInvalidDocument, path)
		}
		lo, err := vec3(pd.Extent[0], mgl64.Vec3{})
		if err != nil {
			return fmt.Errorf("%w: %s extent: %v", ErrInvalidDocument, path, err)
		}
		hi, err := vec3(pd.Extent[1], mgl64.Vec3{})
		if err != nil {
			return fmt.Errorf("%w: %s extent: %v", ErrInvalidDocument, path, err)
		}
		extent = &Bounds{Min: lo, Max: hi}
	}

	if err := s.Update(path, func(p *Prim) {
		p.Transform = xf
		p.Extent = extent
		p.Attributes = pd.Attributes
		p.References = pd.References
	}); err != nil {
		return err
	}

	for _, child := range pd.Children {
		if err := s.define(path, child); err != nil {
			return err
		}
	}
	return nil
}

func vec3(v []float64, fallback mgl64.Vec3) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return fallback, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	default:
		return mgl64.Vec3{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
}

// Encode writes the stage, including current transforms, as YAML.
func (s *Stage) Encode(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.prims[RootPath]
	doc := document{Prims: make([]primDoc, 0, len(root.Children))}
	for _, child := range root.Children {
		doc.Prims = append(doc.Prims, s.encodePrim(child))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding stage: %w", err)
	}
	return enc.Close()
}

func (s *Stage) encodePrim(path string) primDoc {
	p := s.prims[path]
	pd := primDoc{
		Name:       p.Name,
		Type:       p.Type,
		Attributes: p.Attributes,
		References: p.References,
	}
	if p.Transform.Translate != (mgl64.Vec3{}) {
		pd.Translate = floats(p.Transform.Translate)
	}
	if p.Transform.Rotate != (mgl64.Vec3{}) {
		pd.Rotate = floats(p.Transform.Rotate)
	}
	if p.Transform.Scale != (mgl64.Vec3{1, 1, 1}) {
		pd.Scale = floats(p.Transform.Scale)
	}
	if p.Extent != nil {
		pd.Extent = [][]float64{floats(p.Extent.Min), floats(p.Extent.Max)}
	}
	for _, child := range p.Children {
		pd.Children = append(pd.Children, s.encodePrim(child))
	}
	return pd
}

func floats(v mgl64.Vec3) []float64 {
	return []float64{v[0], v[1], v[2]}
}
