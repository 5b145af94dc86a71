// Package core assembles the scene, door and animation components from
// configuration. The daemon and doorctl both build on it.
package core

import (
	"fmt"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-interaction/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
	"github.com/nerrad567/gray-logic-interaction/internal/lights"
	"github.com/nerrad567/gray-logic-interaction/internal/scanner"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// Core holds the in-process door interaction components.
type Core struct {
	cfg *config.Config
	log *logging.Logger

	Stage      *stage.Stage
	Scanner    *scanner.Scanner
	Classifier *door.Classifier
	Inventory  *inventory.Registry
	Controller *animation.Controller
	Commands   *control.Service
	Lights     *lights.Index
}

// Load reads cfg.Stage.File and builds a Core over it.
func Load(cfg *config.Config, log *logging.Logger) (*Core, error) {
	st, err := stage.LoadFile(cfg.Stage.File)
	if err != nil {
		return nil, fmt.Errorf("loading stage: %w", err)
	}
	return New(cfg, st, log)
}

// New builds a Core over an already loaded stage and runs the first scan.
func New(cfg *config.Config, st *stage.Stage, log *logging.Logger) (*Core, error) {
	animCfg, err := AnimationConfig(cfg)
	if err != nil {
		return nil, err
	}

	naming := Naming(cfg.Naming)
	sc := scanner.New(st, naming, ScannerOptions(cfg.Scan)...)
	cl := door.NewClassifier(st, naming, Geometry(cfg.Animation))
	inv := inventory.New(sc, cl, cfg.Stage.Root)
	ctrl := animation.NewController(st, animCfg)
	cmds := control.NewService(inv, ctrl)
	ix := lights.NewIndex(st, cfg.Lights.Root)

	st.SetLogger(log.Component("stage"))
	inv.SetLogger(log.Component("inventory"))
	ctrl.SetLogger(log.Component("animation"))
	cmds.SetLogger(log.Component("control"))
	ix.SetLogger(log.Component("lights"))

	c := &Core{
		cfg:        cfg,
		log:        log,
		Stage:      st,
		Scanner:    sc,
		Classifier: cl,
		Inventory:  inv,
		Controller: ctrl,
		Commands:   cmds,
		Lights:     ix,
	}
	c.Refresh()
	return c, nil
}

// Refresh rescans doors and, when no light root is configured,
// rediscovers it.
//
// Returns:
//   - int: Number of doors found
func (c *Core) Refresh() int {
	n := c.Inventory.Refresh()
	if c.cfg.Lights.Root == "" {
		root := lights.FindRoot(c.Stage, stage.RootPath, c.cfg.Scan.MaxDepth)
		if root != c.Lights.Root() {
			c.log.Info("light root discovered", "root", root)
		}
		c.Lights.SetRoot(root)
	}
	return n
}

// Naming converts the naming section to door conventions.
func Naming(n config.NamingConfig) door.Naming {
	return door.Naming{
		DoorKeyword:   n.DoorKeyword,
		SingleSliding: n.SingleSliding,
		SinglePivot:   n.SinglePivot,
		DualSliding:   n.DualSliding,
		DualPivot:     n.DualPivot,
		LeftKeyword:   n.LeftKeyword,
		RightKeyword:  n.RightKeyword,
		PanelKeyword:  n.PanelKeyword,
	}
}

// Geometry converts the width settings of the animation section.
func Geometry(a config.AnimationConfig) door.Geometry {
	g := door.DefaultGeometry()
	if a.DefaultPanelWidth > 0 {
		g.DefaultPanelWidth = a.DefaultPanelWidth
	}
	if a.MinWidth > 0 {
		g.MinWidth = a.MinWidth
	}
	return g
}

// ScannerOptions converts the scan section.
func ScannerOptions(s config.ScanConfig) []scanner.Option {
	opts := []scanner.Option{scanner.WithMaxDepth(s.MaxDepth)}
	if len(s.Roots) > 0 {
		opts = append(opts, scanner.WithRoots(s.Roots...))
	}
	if len(s.Excluded) > 0 {
		opts = append(opts, scanner.WithExcluded(s.Excluded...))
	}
	return opts
}

// AnimationConfig converts the animation section to controller settings.
func AnimationConfig(cfg *config.Config) (animation.Config, error) {
	a := cfg.Animation

	easing, err := animation.ParseEasing(a.Easing)
	if err != nil {
		return animation.Config{}, fmt.Errorf("animation.easing: %w", err)
	}
	dir, err := door.ParseDirection(a.DefaultDirection)
	if err != nil {
		return animation.Config{}, fmt.Errorf("animation.default_direction: %w", err)
	}
	mode, err := door.ParseDualMode(a.DefaultDualMode)
	if err != nil {
		return animation.Config{}, fmt.Errorf("animation.default_dual_mode: %w", err)
	}

	out := animation.DefaultConfig()
	out.BaseRate = a.BaseRate
	out.MaxTickDelta = cfg.GetMaxTickDelta()
	out.Easing = easing
	if a.DefaultPivotAngle > 0 {
		out.DefaultPivotAngle = a.DefaultPivotAngle
	}
	out.Defaults = animation.Params{
		Direction: dir,
		DualMode:  mode,
		Speed:     a.DefaultSpeed,
	}
	if err := out.Defaults.Validate(); err != nil {
		return animation.Config{}, err
	}
	return out, nil
}
