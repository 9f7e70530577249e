package cli

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Garsondee/formation-sense/internal/formation"
	"github.com/Garsondee/formation-sense/internal/sim"
)

// runReport is the outcome of one headless run.
type runReport struct {
	Formation string
	Range     float64
	Ticks     int
	Members   []sim.MemberReport
	Spread    float64
	// TurnBacks counts how often the leader turned away from a hole.
	TurnBacks int
	// Changes counts roster and layout changes during the run.
	Changes int
	// Events are the unresolved, roster and anchor events, oldest first.
	Events []sim.Event
}

func (c *CLI) reportCommand() *cobra.Command {
	var (
		kind   string
		rng    float64
		ticks  int
		events int
		copyIt bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the scenario headless and summarise every bot",
		Long: `Report steps the scenario for a number of ticks without a window and prints,
per bot, how often its follow point resolved, why it failed otherwise, and how
far it trailed its point on average.`,
		Example: `  formation report
  formation report -f raid -r 8 --ticks 1200
  formation report -c party.toml --events 20 --copy`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.applyLayoutFlags(cmd, kind, rng); err != nil {
				return err
			}
			if cmd.Flags().Changed("ticks") {
				if ticks <= 0 {
					return fmt.Errorf("--ticks must be > 0")
				}
				c.Config.Ticks = ticks
			}

			rep := c.runHeadless(events)
			if err := writeReport(c.out, rep, true); err != nil {
				return err
			}
			if copyIt {
				var plain bytes.Buffer
				if err := writeReport(&plain, rep, false); err != nil {
					return err
				}
				if err := clipboard.WriteAll(plain.String()); err != nil {
					return fmt.Errorf("copy report: %w", err)
				}
				c.Logger.Info("report copied to clipboard")
			}
			return nil
		},
	}

	addLayoutFlags(cmd, &kind, &rng)
	cmd.Flags().IntVarP(&ticks, "ticks", "t", 600, "ticks to simulate")
	cmd.Flags().IntVar(&events, "events", 0, "also print the last N notable events")
	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy the plain-text report to the clipboard")

	return cmd
}

// runHeadless builds a world from the current config and steps it to the
// end. keepEvents bounds how many notable events the report carries.
func (c *CLI) runHeadless(keepEvents int) runReport {
	w := sim.FromConfig(c.Config, c.Logger)
	c.Logger.Info("running scenario",
		zap.String("formation", c.Config.Formation),
		zap.Float64("range", c.Config.Range),
		zap.Int("ticks", c.Config.Ticks),
		zap.Int("members", len(c.Config.Members)))
	w.Run(c.Config.Ticks)

	rep := runReport{
		Formation: w.Kind.String(),
		Range:     w.Range,
		Ticks:     w.Tick,
		Members:   w.Report(),
		Spread:    w.Spread(),
		TurnBacks: w.Log.Count(sim.CategoryAnchor, "turn_back"),
		Changes:   w.Log.Count(sim.CategoryRoster, ""),
	}
	if keepEvents > 0 {
		rep.Events = w.Log.Notable(keepEvents)
	}
	return rep
}

// writeReport prints rep as a table. Cells are padded before styling so
// colour codes do not break alignment.
func writeReport(w io.Writer, rep runReport, styled bool) error {
	paint := func(s string, st lipgloss.Style) string {
		if !styled {
			return s
		}
		return st.Render(s)
	}

	var b strings.Builder
	fmt.Fprintln(&b, paint("=== Formation Report ===", styleTitle))
	fmt.Fprintf(&b, "formation=%s range=%s ticks=%s spread=%s turn_backs=%s changes=%s\n",
		rep.Formation,
		paint(fmt.Sprintf("%.1f", rep.Range), styleNumber),
		paint(fmt.Sprintf("%d", rep.Ticks), styleNumber),
		paint(fmt.Sprintf("%.2f", rep.Spread), styleNumber),
		paint(fmt.Sprintf("%d", rep.TurnBacks), styleNumber),
		paint(fmt.Sprintf("%d", rep.Changes), styleNumber))
	b.WriteString("\n")

	fmt.Fprintln(&b, paint(fmt.Sprintf("%-10s %-7s %9s %9s  %s", "member", "role", "resolved", "mean_dist", "unresolved"), styleHeader))
	for _, m := range rep.Members {
		rate := m.ResolveRate()
		fmt.Fprintf(&b, "%-10s %-7s %s %9.2f  %s\n",
			m.ID, m.Role,
			paint(fmt.Sprintf("%8.1f%%", rate*100), rateStyle(rate)),
			m.MeanDistance,
			paint(unresolvedSummary(m.Unresolved), styleDim))
	}

	if len(rep.Events) > 0 {
		fmt.Fprintln(&b, paint("events:", styleSection))
		for _, e := range rep.Events {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// unresolvedSummary lists failure counts in a stable reason order.
func unresolvedSummary(counts map[string]int) string {
	var parts []string
	for _, r := range formation.Reasons {
		if n := counts[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
