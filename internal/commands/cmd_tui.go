package commands

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/sadopc/focusflow/internal/tui"
)

var errNoTerminal = errors.New("focusflow needs an interactive terminal; see 'focusflow --help' for scriptable commands")

type TuiCmd struct {
	flags *Flags
	rt    *Runtime

	// flags
	exportDir string
}

// NewTuiCmd creates the default interactive command
func NewTuiCmd(flags *Flags, rt *Runtime) *TuiCmd {
	return &TuiCmd{flags: flags, rt: rt}
}

// Flags returns the TUI flags registered on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "export-dir",
			Usage:       "directory for exports started from the TUI (defaults to the home directory)",
			Sources:     cli.EnvVars("FOCUSFLOW_EXPORT_DIR"),
			Destination: &cmd.exportDir,
		},
	}
}

func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	opts := tui.Options{ExportDir: cmd.exportDir}
	if cmd.flags.Config != nil {
		opts.ChartDays = cmd.flags.Config.Analytics.ChartDays
	}

	cmd.rt.Logger.Info().Msg("starting tui")
	return tui.Run(ctx, cmd.rt.App, cmd.rt.Focus, opts)
}
