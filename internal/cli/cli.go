// Package cli implements the formation command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Garsondee/formation-sense/internal/config"
	"github.com/Garsondee/formation-sense/internal/logging"
)

const appName = "formation"

// CLI holds state shared by all commands. Logger and Config are set in the
// root command's PersistentPreRunE.
type CLI struct {
	Logger *zap.Logger
	Config config.Config

	out      io.Writer
	errOut   io.Writer
	cfgPath  string
	verbose  bool
	logFile  string
	closeLog func()
}

// New creates a CLI writing command output to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &CLI{Logger: zap.NewNop(), Config: config.Default(), out: out, errOut: errOut}
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Formation lays out a party around its leader",
		Long:              `Formation computes where each bot of a group should stand relative to a followed leader, using arrow or raid layouts, and simulates a party walking in formation.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.closeLog != nil {
				c.closeLog()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgPath, "config", "c", "", "scenario TOML file (default: built-in party)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write JSON logs to this file, rotated")

	root.AddCommand(c.reportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())

	return root
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.cfgPath != "" {
		cfg, err := config.Load(c.cfgPath)
		if err != nil {
			return err
		}
		c.Config = cfg
	}

	opts := logging.Options{
		Debug:      c.verbose || c.Config.Log.Debug,
		File:       c.Config.Log.File,
		MaxSizeMB:  c.Config.Log.MaxSizeMB,
		MaxBackups: c.Config.Log.MaxBackups,
		MaxAgeDays: c.Config.Log.MaxAgeDays,
		Console:    c.errOut,
	}
	if c.logFile != "" {
		opts.File = c.logFile
	}
	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	c.Logger = logger.Named(cmd.Name())
	c.closeLog = closeFn
	return nil
}

// applyLayoutFlags overrides the scenario's formation and range when the
// flags were given.
func (c *CLI) applyLayoutFlags(cmd *cobra.Command, kind string, rng float64) error {
	if cmd.Flags().Changed("formation") {
		c.Config.Formation = kind
	}
	if cmd.Flags().Changed("range") {
		c.Config.Range = rng
	}
	return c.Config.Validate()
}

func addLayoutFlags(cmd *cobra.Command, kind *string, rng *float64) {
	cmd.Flags().StringVarP(kind, "formation", "f", "arrow", "layout: arrow or raid")
	cmd.Flags().Float64VarP(rng, "range", "r", 5, "follow range")
}
