package main

import (
	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
)

func newClassifyCmd(opts *options) *cobra.Command {
	var axis string

	cmd := &cobra.Command{
		Use:   "classify <door>",
		Short: "Explain how a door was classified",
		Long: `Shows the door type, assembly, panel roles, slide axis and width the
service derives for one door. The door is given by prim path or slug.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.loadCore(cmd)
			if err != nil {
				return err
			}
			g, err := c.Inventory.Find(args[0])
			if err != nil {
				return err
			}
			if axis != "" {
				a, err := door.ParseAxis(axis)
				if err != nil {
					return err
				}
				if g, err = c.Inventory.SetAxis(g.Path, a); err != nil {
					return err
				}
			}

			if opts.asJSON {
				return printJSON(cmd, g)
			}
			cmd.Printf("Door:     %s\n", g.Path)
			cmd.Printf("Slug:     %s\n", inventory.Slug(g.Path))
			cmd.Printf("Room:     %s\n", g.Room.DisplayName)
			cmd.Printf("Type:     %s\n", g.Type)
			if !g.Classified() {
				cmd.Printf("Reason:   %s\n", g.Reason)
				return nil
			}
			cmd.Printf("Assembly: %s\n", g.Assembly)
			cmd.Printf("Axis:     %s (%s)\n", g.Axis, g.AxisSource)
			cmd.Printf("Width:    %g\n", g.Width)
			cmd.Println("Panels:")
			for _, p := range g.Panels {
				cmd.Printf("  %-6s %s (width %g)\n", p.Role, p.Path, p.Width)
			}
			if g.Reason != "" {
				cmd.Printf("Note:     %s\n", g.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&axis, "axis", "", "slide axis override (x, y, z or auto)")
	return cmd
}
