package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Garsondee/formation-sense/internal/formation"
	"github.com/Garsondee/formation-sense/internal/sim"
)

func (c *CLI) layoutCommand() *cobra.Command {
	var (
		kind   string
		rng    float64
		member string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the formation one bot computes on the first tick",
		Long: `Layout resolves the scenario once and prints every unit of the chosen bot's
formation as an offset from the leader, slot by slot.`,
		Example: `  formation layout
  formation layout -f raid --member mend`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.applyLayoutFlags(cmd, kind, rng); err != nil {
				return err
			}
			w := sim.FromConfig(c.Config, c.Logger)
			w.Step()

			id := formation.MemberID(member)
			if id == "" {
				bots := w.Bots()
				if len(bots) == 0 {
					return fmt.Errorf("scenario has no bots")
				}
				id = bots[0].ID
			}
			m := w.Member(id)
			if m == nil {
				return fmt.Errorf("unknown member %q", member)
			}
			pts, ok := w.Layout(id)
			if !ok {
				return fmt.Errorf("%s has no layout: %s", id, m.Reason)
			}
			a := w.AnchorMember()
			return writeLayout(c.out, id, w.Kind, a.X, a.Y, pts)
		},
	}

	addLayoutFlags(cmd, &kind, &rng)
	cmd.Flags().StringVarP(&member, "member", "m", "", "bot whose view to print (default: first bot)")

	return cmd
}

// writeLayout prints pts relative to the leader at (ax, ay).
func writeLayout(w io.Writer, self formation.MemberID, kind formation.Kind, ax, ay float64, pts []sim.SlotPoint) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styleTitle.Render(kind.String()+" formation"), styleDim.Render("as seen by "+string(self)))
	var last formation.Role = -1
	for _, p := range pts {
		if p.Role != last {
			fmt.Fprintf(&b, "%s\n", styleHeader.Render(p.Role.String()))
			last = p.Role
		}
		mark := ""
		switch {
		case p.Master && p.IsSelf:
			mark = "leader, self"
		case p.Master:
			mark = "leader"
		case p.IsSelf:
			mark = "self"
		}
		fmt.Fprintf(&b, "  %+8.2f %+8.2f  %s\n", p.X-ax, p.Y-ay, styleNumber.Render(mark))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
