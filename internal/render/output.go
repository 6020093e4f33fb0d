// Package render provides output formatting for terminal consumption.
package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/rutacat/rutacat/internal/level"
	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/schedule"
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Level formats a generated level for inspection.
func (r *Renderer) Level(g *regions.Graph, lvl level.Level) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Level\n"))
		sb.WriteString(strings.Repeat("─", 40) + "\n")
		fmt.Fprintf(&sb, "  Route:    %s %s %s\n",
			color.GreenString(name(g, lvl.StartID)), "→", color.GreenString(name(g, lvl.TargetID)))
		fmt.Fprintf(&sb, "  Shortest: %d comarques (%d internal stops)\n",
			len(lvl.ShortestPath), max(0, len(lvl.ShortestPath)-2))
		if lvl.RuleID != "" {
			fmt.Fprintf(&sb, "  Rule:     %s\n", color.YellowString(lvl.RuleID))
		}
		if len(lvl.AvoidIDs) > 0 {
			fmt.Fprintf(&sb, "  Avoid:    %s\n", names(g, lvl.AvoidIDs))
		}
		if len(lvl.MustPassIDs) > 0 {
			fmt.Fprintf(&sb, "  Via:      %s\n", names(g, lvl.MustPassIDs))
		}
		if lvl.ID != "" {
			fmt.Fprintf(&sb, "  ID:       %s\n", color.HiBlackString(lvl.ID))
		}
	} else {
		fmt.Fprintf(&sb, "start=%s target=%s len=%d rule=%s\n",
			lvl.StartID, lvl.TargetID, len(lvl.ShortestPath), orDash(lvl.RuleID))
	}

	return sb.String()
}

// Result formats the outcome of a single slot run.
func (r *Renderer) Result(cadence schedule.Cadence, mode string, res schedule.Result) string {
	if !r.pretty {
		return fmt.Sprintf("%s %s %s created=%v reason=%s\n", cadence, res.Key, mode, res.Created, res.Reason)
	}

	status := color.GreenString("✓")
	if !res.Created {
		status = color.HiBlackString("·")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s [%s] %s", status, cadence, res.Key, mode, res.Reason)
	if res.LevelID != "" {
		fmt.Fprintf(&sb, " %s", color.HiBlackString(res.LevelID))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Backfill formats a ranged backfill outcome.
func (r *Renderer) Backfill(cadence schedule.Cadence, mode string, out schedule.BackfillResult) string {
	var sb strings.Builder

	for _, res := range out.Results {
		sb.WriteString(r.Result(cadence, mode, res))
	}

	if r.pretty {
		sb.WriteString(strings.Repeat("─", 40) + "\n")
		fmt.Fprintf(&sb, "%s %d created, %d total\n",
			color.CyanString("Backfill:"), out.Created, out.Total)
	} else {
		fmt.Fprintf(&sb, "backfill created=%d total=%d\n", out.Created, out.Total)
	}

	return sb.String()
}

// Status formats database status for the status command.
func (r *Renderer) Status(dbPath string, connected bool, counts map[string]int, latest map[string]string) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.CyanString("Rutacat Status\n"))
		sb.WriteString(strings.Repeat("─", 40) + "\n")

		if connected {
			fmt.Fprintf(&sb, "  Store:  %s (%s)\n", color.GreenString("ok"), dbPath)
		} else {
			fmt.Fprintf(&sb, "  Store:  %s (%s)\n", color.RedString("unreachable"), dbPath)
		}

		for _, cadence := range []string{"daily", "weekly"} {
			label := strings.ToUpper(cadence[:1]) + cadence[1:] + ":"
			fmt.Fprintf(&sb, "  %-8s %d levels", label, counts[cadence])
			if latest[cadence] != "" {
				fmt.Fprintf(&sb, ", latest %s", color.YellowString(latest[cadence]))
			}
			sb.WriteString("\n")
		}
	} else {
		fmt.Fprintf(&sb, "connected=%v db=%s daily=%d weekly=%d\n",
			connected, dbPath, counts["daily"], counts["weekly"])
	}

	return sb.String()
}

func name(g *regions.Graph, id string) string {
	if n, ok := g.NameByID(id); ok {
		return n
	}
	return id
}

func names(g *regions.Graph, ids []string) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = name(g, id)
	}
	return strings.Join(out, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
