package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/focusflow/internal/analytics"
	"github.com/sadopc/focusflow/internal/app"
)

type StatsCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	days       int
	jsonOutput bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, rt *Runtime) *StatsCmd {
	return &StatsCmd{flags: flags, rt: rt}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Print focus analytics",
		UsageText: "focusflow stats [--days N] [--json]",
		Description: `Aggregates completed pomodoros over a window of days ending today:
totals, daily and longest streaks, the peak start hour, and a per-day table.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "days",
				Aliases:     []string{"d"},
				Usage:       "window size in days (defaults to analytics.lookback_days)",
				Destination: &cmd.days,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

// statsOutput is the JSON output format for focusflow stats --json.
type statsOutput struct {
	Days              int         `json:"days"`
	TotalPomodoros    int         `json:"total_pomodoros"`
	TotalFocusSeconds int64       `json:"total_focus_seconds"`
	CompletedTasks    int         `json:"completed_tasks"`
	CurrentStreak     int         `json:"current_streak"`
	LongestStreak     int         `json:"longest_streak"`
	PeakHour          *int        `json:"peak_hour"`
	Daily             []dayOutput `json:"daily"`
}

type dayOutput struct {
	Date         string `json:"date"`
	Pomodoros    int    `json:"pomodoros"`
	FocusSeconds int64  `json:"focus_seconds"`
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	days := cmd.days
	if days == 0 && cmd.flags.Config != nil {
		days = cmd.flags.Config.Analytics.LookbackDays
	}
	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	today := cmd.rt.App.Today()
	snap, err := app.LoadAnalytics(cmd.rt.Store, today, days)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		res := statsOutput{
			Days:              days,
			TotalPomodoros:    snap.TotalIntervals,
			TotalFocusSeconds: snap.TotalFocusSeconds,
			CompletedTasks:    snap.CompletedTasks,
			CurrentStreak:     snap.CurrentStreak,
			LongestStreak:     snap.LongestStreak,
			Daily:             dailyOutput(snap.Daily),
		}
		if h := snap.PeakHour(); h >= 0 {
			res.PeakHour = &h
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	peak := "-"
	if h := snap.PeakHour(); h >= 0 {
		peak = fmt.Sprintf("%02d:00", h)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window\tlast %d days\n", days)
	_, _ = fmt.Fprintf(w, "Pomodoros\t%d\n", snap.TotalIntervals)
	_, _ = fmt.Fprintf(w, "Focus time\t%s\n", formatFocus(snap.TotalFocusSeconds))
	_, _ = fmt.Fprintf(w, "Tasks completed\t%d\n", snap.CompletedTasks)
	_, _ = fmt.Fprintf(w, "Current streak\t%d days\n", snap.CurrentStreak)
	_, _ = fmt.Fprintf(w, "Longest streak\t%d days\n", snap.LongestStreak)
	_, _ = fmt.Fprintf(w, "Peak hour\t%s\n", peak)
	_ = w.Flush()

	if len(snap.Daily) == 0 {
		return nil
	}

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tPOMODOROS\tFOCUS")
	for _, d := range snap.Daily {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", d.Date, d.Intervals, formatFocus(d.FocusSeconds))
	}
	return w.Flush()
}

func dailyOutput(days []analytics.DayStat) []dayOutput {
	out := make([]dayOutput, len(days))
	for i, d := range days {
		out[i] = dayOutput{Date: d.Date, Pomodoros: d.Intervals, FocusSeconds: d.FocusSeconds}
	}
	return out
}

func formatFocus(secs int64) string {
	d := time.Duration(secs) * time.Second
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
