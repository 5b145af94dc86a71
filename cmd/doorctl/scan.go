package main

import (
	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
)

type scanRoom struct {
	Slug  string       `json:"slug"`
	Room  door.Room    `json:"room"`
	Doors []door.Group `json:"doors"`
}

func newScanCmd(opts *options) *cobra.Command {
	var unknownOnly bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List rooms and the doors found in them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := opts.loadCore(cmd)
			if err != nil {
				return err
			}

			var rooms []scanRoom
			for _, rd := range c.Inventory.Rooms() {
				out := scanRoom{Slug: inventory.Slug(rd.Room.Path), Room: rd.Room}
				for _, g := range rd.Doors {
					if unknownOnly && g.Classified() {
						continue
					}
					out.Doors = append(out.Doors, g)
				}
				if len(out.Doors) > 0 {
					rooms = append(rooms, out)
				}
			}

			if opts.asJSON {
				return printJSON(cmd, rooms)
			}
			if len(rooms) == 0 {
				cmd.Println("No doors found.")
				return nil
			}
			for _, r := range rooms {
				cmd.Printf("%s (%s)\n", r.Room.DisplayName, r.Slug)
				for _, g := range r.Doors {
					if !g.Classified() {
						cmd.Printf("  %-28s %-14s %s\n", g.Name, g.Type, g.Reason)
						continue
					}
					cmd.Printf("  %-28s %-14s axis=%s width=%g\n", g.Name, g.Type, g.Axis, g.Width)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&unknownOnly, "unknown", false, "only list doors that could not be classified")
	return cmd
}
