package cli

import (
	"github.com/spf13/cobra"

	"github.com/Garsondee/formation-sense/internal/server"
	"github.com/Garsondee/formation-sense/internal/sim"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream the simulated party over HTTP and websockets",
		Example: `  formation serve
  formation serve --addr :9090 -c party.toml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			w := sim.FromConfig(c.Config, c.Logger.Named("sim"))
			room := server.NewRoom(w, c.Config.Server.TickRate, c.Logger.Named("room"))
			return server.New(room, c.Logger).ListenAndServe(cmd.Context(), c.Config.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}
