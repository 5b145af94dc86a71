package main

import (
	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-interaction/internal/lights"
)

func newLightsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lights [room]",
		Short: "Show the light groups associated with rooms",
		Long: `Without arguments every room under the light root is listed. With a
room (prim path or slug of a room containing doors) only its lighting is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.loadCore(cmd)
			if err != nil {
				return err
			}

			var assocs []lights.Association
			if len(args) == 1 {
				rd, err := c.Inventory.Room(args[0])
				if err != nil {
					return err
				}
				assocs = append(assocs, c.Lights.ForRoom(rd.Room.Path))
			} else {
				for _, room := range c.Lights.Rooms() {
					assocs = append(assocs, c.Lights.ForRoom(room))
				}
			}

			if opts.asJSON {
				return printJSON(cmd, map[string]any{
					"root":  c.Lights.Root(),
					"rooms": assocs,
				})
			}
			cmd.Printf("Light root: %s\n", c.Lights.Root())
			for _, a := range assocs {
				cmd.Printf("%s\n", a.Room)
				if len(a.Groups) == 0 {
					cmd.Println("  (no light groups)")
				}
				for _, g := range a.Groups {
					cmd.Printf("  %s (%d lights)\n", g.Path, len(g.Lights))
				}
			}
			return nil
		},
	}
}
