package cli

import (
	"github.com/spf13/cobra"

	"github.com/Garsondee/formation-sense/internal/sim"
	"github.com/Garsondee/formation-sense/internal/view"
)

func (c *CLI) viewCommand() *cobra.Command {
	var (
		kind  string
		rng   float64
		every int
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window showing the party walking in formation",
		Example: `  formation view
  formation view -f raid --step-every 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.applyLayoutFlags(cmd, kind, rng); err != nil {
				return err
			}
			w := sim.FromConfig(c.Config, c.Logger)
			return view.Run(view.New(w, every), appName+" - "+c.Config.Formation)
		},
	}

	addLayoutFlags(cmd, &kind, &rng)
	cmd.Flags().IntVar(&every, "step-every", 3, "frames between simulation ticks")

	return cmd
}
