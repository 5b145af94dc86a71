package animation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// Config tunes a Controller.
type Config struct {
	// BaseRate is progress per second at speed 1. Default 1.
	BaseRate float64

	// MaxTickDelta caps the elapsed time one Update applies. Zero disables the cap.
	MaxTickDelta time.Duration

	Easing Easing

	// DefaultPivotAngle is the swing in degrees when Params.PivotAngle is 0. Default 90.
	DefaultPivotAngle float64

	// Defaults seed DefaultParams.
	Defaults Params
}

// DefaultConfig returns a one-second linear animation with a 90° swing.
func DefaultConfig() Config {
	return Config{
		BaseRate:          1,
		MaxTickDelta:      250 * time.Millisecond,
		Easing:            Linear,
		DefaultPivotAngle: 90,
		Defaults: Params{
			Direction: door.Push,
			DualMode:  door.BothSides,
			Speed:     1,
		},
	}
}

// session is the registry record for one door.
type session struct {
	id       string
	group    door.Group
	state    State
	motion   State
	position Position
	progress float64
	params   Params

	// initial is the captured closed pose, kept until Reset.
	initial map[string]stage.Transform
	// target is the open pose computed by the last Open.
	target map[string]stage.Transform

	startedAt time.Time
	updatedAt time.Time
}

func (s *session) snapshot() Session {
	return Session{
		ID:        s.id,
		Door:      s.group.Path,
		DoorType:  s.group.Type,
		State:     s.state,
		Motion:    s.motion,
		Position:  s.position,
		Progress:  s.progress,
		Speed:     s.params.Speed,
		Params:    s.params,
		StartedAt: s.startedAt,
		UpdatedAt: s.updatedAt,
	}
}

// Controller runs door animations against a scene graph.
type Controller struct {
	graph  stage.Graph
	cfg    Config
	now    func() time.Time
	logger Logger

	mu       sync.Mutex
	sessions map[string]*session

	obsMu     sync.RWMutex
	observers []Observer
}

// NewController creates a controller writing transforms to graph.
func NewController(graph stage.Graph, cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.BaseRate <= 0 {
		cfg.BaseRate = def.BaseRate
	}
	if cfg.Easing == "" {
		cfg.Easing = def.Easing
	}
	if cfg.DefaultPivotAngle == 0 {
		cfg.DefaultPivotAngle = def.DefaultPivotAngle
	}
	if cfg.Defaults.Direction == "" {
		cfg.Defaults.Direction = def.Defaults.Direction
	}
	if cfg.Defaults.DualMode == "" {
		cfg.Defaults.DualMode = def.Defaults.DualMode
	}

	return &Controller{
		graph:    graph,
		cfg:      cfg,
		now:      time.Now,
		logger:   noopLogger{},
		sessions: make(map[string]*session),
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// SetClock replaces the time source used for session timestamps.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// AddObserver registers o for state transitions.
func (c *Controller) AddObserver(o Observer) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, o)
}

// DefaultParams returns the configured defaults for Open and Close.
func (c *Controller) DefaultParams() Params {
	return c.cfg.Defaults
}

// Open starts opening g.
//
// Allowed from Idle and Completed(closed); on a door paused while opening
// it resumes. Returns ErrUnclassified for Unknown doors, ErrBusy while the
// door is animating or paused mid-close, and ErrInvalidTransition when the
// door is already open.
func (c *Controller) Open(g door.Group, p Params) (Session, error) {
	if !g.Classified() {
		return Session{}, fmt.Errorf("%w: %s (%s)", ErrUnclassified, g.Path, g.Reason)
	}
	if err := p.Validate(); err != nil {
		return Session{}, err
	}

	c.mu.Lock()
	s := c.sessions[g.Path]
	if s != nil {
		switch s.state {
		case Opening, Closing:
			c.mu.Unlock()
			return Session{}, fmt.Errorf("%w: %s is %s", ErrBusy, g.Path, s.state)
		case Paused:
			if s.motion != Opening {
				c.mu.Unlock()
				return Session{}, fmt.Errorf("%w: %s is paused while closing", ErrBusy, g.Path)
			}
			ev := c.transition(s, Opening)
			snap := s.snapshot()
			c.mu.Unlock()
			c.notify(ev)
			return snap, nil
		case Completed:
			if s.position == Open {
				c.mu.Unlock()
				return Session{}, fmt.Errorf("%w: %s is already open", ErrInvalidTransition, g.Path)
			}
		case Idle:
		}
	} else {
		s = &session{state: Idle, position: Closed, initial: make(map[string]stage.Transform)}
	}

	if err := c.capture(s, g); err != nil {
		c.mu.Unlock()
		return Session{}, err
	}

	now := c.now()
	s.id = uuid.NewString()
	s.group = g
	s.params = p
	s.progress = 0
	s.motion = Opening
	s.startedAt = now
	s.target = openTargets(g, s.initial, p, c.cfg.DefaultPivotAngle)
	c.sessions[g.Path] = s
	ev := c.transition(s, Opening)
	snap := s.snapshot()
	c.mu.Unlock()

	c.logger.Debug("door opening", "door", g.Path, "type", g.Type.String(), "session", snap.ID)
	c.notify(ev)
	return snap, nil
}

// Close starts closing g back to its captured closed pose.
//
// Allowed from Completed(open); on a door paused while closing it resumes.
// Only p.Speed is used: the open targets recorded by Open are reversed.
func (c *Controller) Close(g door.Group, p Params) (Session, error) {
	if err := p.Validate(); err != nil {
		return Session{}, err
	}

	c.mu.Lock()
	s := c.sessions[g.Path]
	if s == nil {
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s is already closed", ErrInvalidTransition, g.Path)
	}

	switch s.state {
	case Opening, Closing:
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s is %s", ErrBusy, g.Path, s.state)
	case Paused:
		if s.motion != Closing {
			c.mu.Unlock()
			return Session{}, fmt.Errorf("%w: %s is paused while opening", ErrBusy, g.Path)
		}
		ev := c.transition(s, Closing)
		snap := s.snapshot()
		c.mu.Unlock()
		c.notify(ev)
		return snap, nil
	case Idle:
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: %s is already closed", ErrInvalidTransition, g.Path)
	case Completed:
		if s.position != Open {
			c.mu.Unlock()
			return Session{}, fmt.Errorf("%w: %s is already closed", ErrInvalidTransition, g.Path)
		}
	}

	now := c.now()
	s.id = uuid.NewString()
	s.params.Speed = p.Speed
	s.progress = 0
	s.motion = Closing
	s.startedAt = now
	ev := c.transition(s, Closing)
	snap := s.snapshot()
	c.mu.Unlock()

	c.logger.Debug("door closing", "door", g.Path, "session", snap.ID)
	c.notify(ev)
	return snap, nil
}

// Pause freezes an Opening or Closing door. The door stays locked.
func (c *Controller) Pause(doorPath string) (Session, error) {
	c.mu.Lock()
	s := c.sessions[doorPath]
	if s == nil || (s.state != Opening && s.state != Closing) {
		state := Idle
		if s != nil {
			state = s.state
		}
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: cannot pause %s while %s", ErrInvalidTransition, doorPath, state)
	}
	ev := c.transition(s, Paused)
	snap := s.snapshot()
	c.mu.Unlock()

	c.notify(ev)
	return snap, nil
}

// Resume continues a Paused door in its previous direction.
func (c *Controller) Resume(doorPath string) (Session, error) {
	c.mu.Lock()
	s := c.sessions[doorPath]
	if s == nil || s.state != Paused {
		state := Idle
		if s != nil {
			state = s.state
		}
		c.mu.Unlock()
		return Session{}, fmt.Errorf("%w: cannot resume %s while %s", ErrInvalidTransition, doorPath, state)
	}
	ev := c.transition(s, s.motion)
	snap := s.snapshot()
	c.mu.Unlock()

	c.notify(ev)
	return snap, nil
}

// Reset restores a door's captured closed pose and discards its session.
// It is allowed in every state and resetting an idle door is a no-op.
func (c *Controller) Reset(doorPath string) error {
	c.mu.Lock()
	s := c.sessions[doorPath]
	if s == nil {
		c.mu.Unlock()
		return nil
	}
	delete(c.sessions, doorPath)

	var errs []error
	for _, panel := range s.group.Panels {
		xf, ok := s.initial[panel.Path]
		if !ok {
			continue
		}
		if err := c.graph.SetTransform(panel.Path, xf.Translate, xf.Rotate); err != nil {
			errs = append(errs, fmt.Errorf("restoring %s: %w", panel.Path, err))
		}
	}

	from := s.state
	s.state, s.motion, s.position, s.progress = Idle, "", Closed, 0
	s.updatedAt = c.now()
	ev := Event{Session: s.snapshot(), From: from, Group: s.group, At: s.updatedAt}
	c.mu.Unlock()

	c.logger.Debug("door reset", "door", doorPath, "from", string(from))
	c.notify([]Event{ev})
	return errors.Join(errs...)
}

// ResetAll resets every door with a session.
func (c *Controller) ResetAll() error {
	var errs []error
	for _, snap := range c.Sessions() {
		if err := c.Reset(snap.Door); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update advances every Opening and Closing door by elapsed.
//
// Elapsed is clamped to [0, MaxTickDelta]. Doors reaching progress 1 are
// snapped exactly onto their end pose and become Completed. Scene write
// failures are logged; the session still advances.
func (c *Controller) Update(elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	if c.cfg.MaxTickDelta > 0 && elapsed > c.cfg.MaxTickDelta {
		elapsed = c.cfg.MaxTickDelta
	}

	c.mu.Lock()
	var events []Event
	for _, path := range c.activePaths() {
		s := c.sessions[path]
		s.progress += elapsed.Seconds() * s.params.Speed * c.cfg.BaseRate
		done := s.progress >= 1
		if done {
			s.progress = 1
		}
		c.apply(s, done)
		s.updatedAt = c.now()

		if done {
			if s.motion == Opening {
				s.position = Open
			} else {
				s.position = Closed
			}
			events = append(events, c.transition(s, Completed)...)
		}
	}
	c.mu.Unlock()

	c.notify(events)
}

// Session returns the snapshot for doorPath, if a session exists.
func (c *Controller) Session(doorPath string) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[doorPath]
	if !ok {
		return Session{}, false
	}
	return s.snapshot(), true
}

// State returns the door's state, Idle when it has no session.
func (c *Controller) State(doorPath string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[doorPath]; ok {
		return s.state
	}
	return Idle
}

// Sessions returns all session snapshots ordered by door path.
func (c *Controller) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Door < out[j].Door })
	return out
}

// Active returns how many doors are Opening or Closing.
func (c *Controller) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.activePaths())
}

// activePaths lists moving doors in path order. Caller holds c.mu.
func (c *Controller) activePaths() []string {
	var paths []string
	for path, s := range c.sessions {
		if s.state == Opening || s.state == Closing {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// capture records the closed pose of panels not seen before. Caller holds c.mu.
func (c *Controller) capture(s *session, g door.Group) error {
	for _, panel := range g.Panels {
		if _, ok := s.initial[panel.Path]; ok {
			continue
		}
		xf, err := c.graph.Transform(panel.Path)
		if err != nil {
			return fmt.Errorf("capturing closed pose of %s: %w", panel.Path, err)
		}
		s.initial[panel.Path] = xf
	}
	return nil
}

// apply writes the interpolated pose of every panel. Caller holds c.mu.
func (c *Controller) apply(s *session, done bool) {
	f := c.cfg.Easing.Apply(s.progress)
	for _, panel := range s.group.Panels {
		from, to := s.initial[panel.Path], s.target[panel.Path]
		if s.motion == Closing {
			from, to = to, from
		}

		xf := to
		if !done {
			xf = from.Lerp(to, f)
		}
		if err := c.graph.SetTransform(panel.Path, xf.Translate, xf.Rotate); err != nil {
			c.logger.Warn("writing panel transform failed", "door", s.group.Path, "panel", panel.Path, "error", err)
		}
	}
}

// transition moves s to next and returns the event to publish. Caller holds c.mu.
func (c *Controller) transition(s *session, next State) []Event {
	from := s.state
	s.state = next
	s.updatedAt = c.now()
	return []Event{{Session: s.snapshot(), From: from, Group: s.group, At: s.updatedAt}}
}

func (c *Controller) notify(events []Event) {
	if len(events) == 0 {
		return
	}
	c.obsMu.RLock()
	observers := append([]Observer(nil), c.observers...)
	c.obsMu.RUnlock()

	for _, ev := range events {
		for _, o := range observers {
			o.Observe(ev)
		}
	}
}
