package control

import (
	"fmt"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
)

// Inventory resolves doors by path or slug.
type Inventory interface {
	Find(key string) (door.Group, error)
	WithAxis(path string, axis door.Axis) (door.Group, error)
	SetAxis(path string, axis door.Axis) (door.Group, error)
}

// Animator is the subset of animation.Controller the service drives.
type Animator interface {
	Open(g door.Group, p animation.Params) (animation.Session, error)
	Close(g door.Group, p animation.Params) (animation.Session, error)
	Pause(doorPath string) (animation.Session, error)
	Resume(doorPath string) (animation.Session, error)
	Reset(doorPath string) error
	Session(doorPath string) (animation.Session, bool)
	DefaultParams() animation.Params
}

// Logger is the logging contract used by the service.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// Service executes door commands. Safe for concurrent use.
type Service struct {
	inv    Inventory
	anim   Animator
	logger Logger
}

// NewService creates a command service.
func NewService(inv Inventory, anim Animator) *Service {
	return &Service{inv: inv, anim: anim, logger: noopLogger{}}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Execute runs req against the door identified by key (prim path or slug).
//
// It returns the session snapshot after the command. Errors wrap the
// inventory, animation or control sentinels unchanged so callers can map
// them with errors.Is.
func (s *Service) Execute(key string, req Request) (animation.Session, error) {
	g, err := s.inv.Find(key)
	if err != nil {
		return animation.Session{}, err
	}

	var snap animation.Session
	switch req.Action {
	case ActionOpen, ActionClose:
		snap, err = s.move(g, req)
		if err != nil {
			return animation.Session{}, err
		}
	case ActionPause, ActionStop, ActionResume, ActionReset:
		if req.Params.Axis != nil {
			return animation.Session{}, fmt.Errorf("%w: axis only applies to open and close", animation.ErrInvalidParams)
		}
		if snap, err = s.hold(g, req.Action); err != nil {
			return animation.Session{}, err
		}
	default:
		return animation.Session{}, fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
	}

	s.logger.Info("door command executed", "door", g.Path, "action", string(req.Action), "state", string(snap.State))
	return snap, nil
}

// move starts an open or close. An axis override is classified up front
// and pinned only once the controller has accepted the command.
func (s *Service) move(g door.Group, req Request) (animation.Session, error) {
	p, err := req.Params.Apply(s.anim.DefaultParams())
	if err != nil {
		return animation.Session{}, err
	}

	axis := door.AxisAuto
	if req.Params.Axis != nil {
		if axis, err = door.ParseAxis(*req.Params.Axis); err != nil {
			return animation.Session{}, fmt.Errorf("%w: %v", animation.ErrInvalidParams, err)
		}
		if g, err = s.inv.WithAxis(g.Path, axis); err != nil {
			return animation.Session{}, err
		}
	}

	var snap animation.Session
	if req.Action == ActionOpen {
		snap, err = s.anim.Open(g, p)
	} else {
		snap, err = s.anim.Close(g, p)
	}
	if err != nil {
		return animation.Session{}, err
	}

	if req.Params.Axis != nil {
		if _, err := s.inv.SetAxis(g.Path, axis); err != nil {
			s.logger.Warn("door axis pin failed", "door", g.Path, "axis", axis.String(), "error", err)
		}
	}
	return snap, nil
}

func (s *Service) hold(g door.Group, action Action) (animation.Session, error) {
	switch action {
	case ActionResume:
		return s.anim.Resume(g.Path)
	case ActionReset:
		if err := s.anim.Reset(g.Path); err != nil {
			s.logger.Warn("door reset incomplete", "door", g.Path, "error", err)
			return animation.Session{}, err
		}
		return s.Status(g), nil
	default:
		return s.anim.Pause(g.Path)
	}
}

// Status returns the door's session, or an idle closed snapshot when the
// door has none.
func (s *Service) Status(g door.Group) animation.Session {
	if snap, ok := s.anim.Session(g.Path); ok {
		return snap
	}
	return animation.Session{
		Door:     g.Path,
		DoorType: g.Type,
		State:    animation.Idle,
		Position: animation.Closed,
	}
}
