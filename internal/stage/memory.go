package stage

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Logger is the logging interface used by the stage package.
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

// Stage is an in-memory scene graph.
//
// Writes bump a revision counter so consumers (the door inventory) can tell
// whether a cached scan is stale after a reload.
type Stage struct {
	mu       sync.RWMutex
	prims    map[string]*Prim
	revision uint64
	logger   Logger
}

// New returns an empty stage containing only the pseudo-root.
func New() *Stage {
	s := &Stage{logger: noopLogger{}}
	s.reset()
	return s
}

func (s *Stage) reset() {
	s.prims = map[string]*Prim{
		RootPath: {Path: RootPath, Type: "", Transform: Identity()},
	}
}

// SetLogger sets the logger for the stage.
func (s *Stage) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Define adds a prim of the given type under an existing parent.
// The new prim starts with the identity transform.
func (s *Stage) Define(path, primType string) error {
	if path == RootPath || !ValidPath(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.prims[path]; exists {
		return fmt.Errorf("%w: %s", ErrPrimExists, path)
	}
	parent, ok := s.prims[Parent(path)]
	if !ok {
		return fmt.Errorf("%w: parent of %s", ErrPrimNotFound, path)
	}

	parent.Children = append(parent.Children, path)
	s.prims[path] = &Prim{
		Path:      path,
		Name:      Name(path),
		Type:      primType,
		Transform: Identity(),
	}
	s.revision++
	return nil
}

// Update applies fn to the stored prim under the write lock.
// Path, Name and Children are restored after fn returns.
func (s *Stage) Update(path string, fn func(p *Prim)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prims[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	children := p.Children
	fn(p)
	p.Path, p.Name, p.Children = path, Name(path), children
	s.revision++
	return nil
}

// ListChildren implements Graph.
func (s *Stage) ListChildren(path string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prims[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	return append([]string(nil), p.Children...), nil
}

// PrimType implements Graph.
func (s *Stage) PrimType(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prims[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	return p.Type, nil
}

// Transform implements Graph.
func (s *Stage) Transform(path string) (Transform, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prims[path]
	if !ok {
		return Transform{}, fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	return p.Transform, nil
}

// SetTransform implements Graph. Scale is left untouched.
func (s *Stage) SetTransform(path string, translate, rotate mgl64.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prims[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	p.Transform.Translate = translate
	p.Transform.Rotate = rotate
	s.revision++
	return nil
}

// Prim implements PrimReader. The returned value is a deep copy.
func (s *Stage) Prim(path string) (Prim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prims[path]
	if !ok {
		return Prim{}, fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	return p.deepCopy(), nil
}

// Exists reports whether path addresses a prim.
func (s *Stage) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.prims[path]
	return ok
}

// Len returns the number of prims, excluding the pseudo-root.
func (s *Stage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prims) - 1
}

// Revision returns a counter that changes on every write.
func (s *Stage) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Replace swaps in the content of other, keeping this Stage's identity so
// holders of the pointer see the new scene. other must not be used afterwards.
func (s *Stage) Replace(other *Stage) {
	other.mu.Lock()
	prims := other.prims
	other.prims = nil
	other.mu.Unlock()

	s.mu.Lock()
	s.prims = prims
	s.revision++
	count := len(prims) - 1
	logger := s.logger
	s.mu.Unlock()

	logger.Info("stage replaced", "prims", count)
}

// Walk visits path and its descendants depth-first in authored order.
// Returning false from fn skips the prim's children. fn runs under the read
// lock and must not call back into the Stage.
func (s *Stage) Walk(path string, fn func(p Prim, depth int) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.prims[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrimNotFound, path)
	}
	s.walk(root, 0, fn)
	return nil
}

func (s *Stage) walk(p *Prim, depth int, fn func(Prim, int) bool) {
	if !fn(p.deepCopy(), depth) {
		return
	}
	for _, child := range p.Children {
		if c, ok := s.prims[child]; ok {
			s.walk(c, depth+1, fn)
		}
	}
}

var _ Scene = (*Stage)(nil)
