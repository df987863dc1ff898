package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/store"
)

const dateLayout = "2006-01-02"

type ExportCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	format    string
	out       string
	since     string
	until     string
	completed bool
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, rt *Runtime) *ExportCmd {
	return &ExportCmd{flags: flags, rt: rt}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export session history to CSV or JSON",
		UsageText: "focusflow export [--format csv|json] [--out FILE] [--since DATE] [--until DATE]",
		Description: `Writes recorded sessions with their task titles. Without --format the
format follows the --out extension. Without --out a timestamped file is
written to the current directory. Dates are YYYY-MM-DD in local time and
both ends are inclusive.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "csv or json",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output file",
				Destination: &cmd.out,
			},
			&cli.StringFlag{
				Name:        "since",
				Usage:       "first day to include (YYYY-MM-DD)",
				Destination: &cmd.since,
			},
			&cli.StringFlag{
				Name:        "until",
				Usage:       "last day to include (YYYY-MM-DD)",
				Destination: &cmd.until,
			},
			&cli.BoolFlag{
				Name:        "completed",
				Usage:       "only sessions that ran to the end",
				Destination: &cmd.completed,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	format, err := cmd.resolveFormat()
	if err != nil {
		return err
	}

	filter, err := cmd.filter(time.Local)
	if err != nil {
		return err
	}

	sessions, tasks, err := app.LoadHistory(cmd.rt.Store, filter)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	path := cmd.out
	if path == "" {
		path = export.Filename(format, time.Now())
	}
	if err := export.ToFile(format, sessions, tasks, path); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cmd.rt.Logger.Info().Str("path", path).Int("sessions", len(sessions)).Msg("exported sessions")
	_, _ = fmt.Fprintf(c.Root().Writer, "Exported %d sessions to %s\n", len(sessions), path)
	return nil
}

func (cmd *ExportCmd) resolveFormat() (export.Format, error) {
	if cmd.format != "" {
		return export.ParseFormat(cmd.format)
	}
	return export.FormatFromPath(cmd.out), nil
}

func (cmd *ExportCmd) filter(loc *time.Location) (store.SessionFilter, error) {
	f := store.SessionFilter{CompletedOnly: cmd.completed}
	if cmd.since != "" {
		from, err := time.ParseInLocation(dateLayout, cmd.since, loc)
		if err != nil {
			return f, fmt.Errorf("invalid --since %q: want YYYY-MM-DD", cmd.since)
		}
		f.From = &from
	}
	if cmd.until != "" {
		day, err := time.ParseInLocation(dateLayout, cmd.until, loc)
		if err != nil {
			return f, fmt.Errorf("invalid --until %q: want YYYY-MM-DD", cmd.until)
		}
		to := day.AddDate(0, 0, 1)
		f.To = &to
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return f, fmt.Errorf("--since must not be after --until")
	}
	return f, nil
}
