package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

// errIncomplete is returned when the frame budget runs out mid-motion.
var errIncomplete = errors.New("animation did not complete within the frame budget")

type simulateFlags struct {
	fps       int
	seconds   float64
	cycle     bool
	trace     bool
	overrides control.Overrides

	speed, pivotAngle, slideDistance float64
	direction, dualMode, axis        string
}

// simulateResult is the JSON form of a simulation.
type simulateResult struct {
	Door     string                     `json:"door"`
	Frames   int                        `json:"frames"`
	Elapsed  string                     `json:"elapsed"`
	Session  animation.Session          `json:"session"`
	Panels   map[string]stage.Transform `json:"panels"`
	Complete bool                       `json:"complete"`
}

func newSimulateCmd(opts *options) *cobra.Command {
	f := &simulateFlags{}

	cmd := &cobra.Command{
		Use:   "simulate <door>",
		Short: "Open a door frame by frame and print the resulting panel poses",
		Long: `Runs the animation controller at a fixed frame rate until the door
finishes opening (and, with --cycle, closes again) or the simulated time
budget runs out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindOverrides(cmd, f)
			return runSimulate(cmd, opts, f, args[0])
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.fps, "fps", 60, "simulated frames per second")
	fl.Float64Var(&f.seconds, "seconds", 10, "simulated time budget per motion")
	fl.BoolVar(&f.cycle, "cycle", false, "close the door again after it opens")
	fl.BoolVar(&f.trace, "trace", false, "print progress every frame")
	fl.Float64Var(&f.speed, "speed", 1, "speed multiplier")
	fl.Float64Var(&f.pivotAngle, "pivot-angle", 0, "swing angle in degrees")
	fl.Float64Var(&f.slideDistance, "slide-distance", 0, "slide distance (0 uses the door width)")
	fl.StringVar(&f.direction, "direction", "", "push or pull")
	fl.StringVar(&f.dualMode, "dual-mode", "", "left_fixed, right_fixed or both_sides")
	fl.StringVar(&f.axis, "axis", "", "slide axis override (x, y, z or auto)")
	return cmd
}

// bindOverrides sets only the overrides whose flags were given.
func bindOverrides(cmd *cobra.Command, f *simulateFlags) {
	fl := cmd.Flags()
	if fl.Changed("speed") {
		f.overrides.Speed = &f.speed
	}
	if fl.Changed("pivot-angle") {
		f.overrides.PivotAngle = &f.pivotAngle
	}
	if fl.Changed("slide-distance") {
		f.overrides.SlideDistance = &f.slideDistance
	}
	if fl.Changed("direction") {
		f.overrides.Direction = &f.direction
	}
	if fl.Changed("dual-mode") {
		f.overrides.DualMode = &f.dualMode
	}
	if fl.Changed("axis") {
		f.overrides.Axis = &f.axis
	}
}

func runSimulate(cmd *cobra.Command, opts *options, f *simulateFlags, key string) error {
	if f.fps < 1 {
		return fmt.Errorf("--fps must be at least 1")
	}
	c, _, err := opts.loadCore(cmd)
	if err != nil {
		return err
	}

	dt := time.Second / time.Duration(f.fps)
	budget := max(1, int(f.seconds*float64(f.fps)))

	actions := []control.Action{control.ActionOpen}
	if f.cycle {
		actions = append(actions, control.ActionClose)
	}

	result := simulateResult{Complete: true}
	for _, action := range actions {
		snap, err := c.Commands.Execute(key, control.Request{Action: action, Params: f.overrides})
		if err != nil {
			return err
		}
		result.Door = snap.Door
		if !opts.asJSON {
			cmd.Printf("%s %s (%s, speed %g)\n", action, snap.Door, snap.DoorType, snap.Speed)
		}

		done := false
		for range budget {
			c.Controller.Update(dt)
			result.Frames++
			snap, _ = c.Controller.Session(snap.Door)
			if f.trace && !opts.asJSON {
				cmd.Printf("  frame %4d  %-8s %.3f\n", result.Frames, snap.State, snap.Progress)
			}
			if !snap.State.Locked() {
				done = true
				break
			}
		}
		result.Session = snap
		if !done {
			result.Complete = false
			break
		}
	}
	result.Elapsed = (time.Duration(result.Frames) * dt).String()

	g, err := c.Inventory.Find(key)
	if err != nil {
		return err
	}
	result.Panels = make(map[string]stage.Transform, len(g.Panels))
	for _, p := range g.Panels {
		xf, err := c.Stage.Transform(p.Path)
		if err != nil {
			return err
		}
		result.Panels[p.Path] = xf
	}

	if opts.asJSON {
		if err := printJSON(cmd, result); err != nil {
			return err
		}
	} else {
		cmd.Printf("%s after %d frames (%s): %s\n", result.Session.Position, result.Frames, result.Elapsed, result.Session.State)
		for _, p := range g.Panels {
			xf := result.Panels[p.Path]
			cmd.Printf("  %-6s translate=%v rotate=%v\n", p.Role, xf.Translate, xf.Rotate)
		}
	}

	if !result.Complete {
		return errIncomplete
	}
	return nil
}
