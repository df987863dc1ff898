package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sadopc/focusflow/internal/commands"
	"github.com/sadopc/focusflow/internal/logutils"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

// buildVersion falls back to the module version and VCS revision that
// go install records.
func buildVersion() string {
	v := version
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return v + "+" + s.Value[:7]
		}
	}
	return v
}

func main() {
	// Cancelling ctx ends the TUI; the After hook still records the running interval.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "focusflow:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flags := &commands.Flags{}
	rt := &commands.Runtime{}
	closeLog := func() {}

	tuiCmd := commands.NewTuiCmd(flags, rt)

	root := &cli.Command{
		Name:    "focusflow",
		Usage:   "pomodoro timer with tasks, focus mode and analytics",
		Version: buildVersion(),
		Description: `Without a command focusflow opens the interactive timer. Work intervals
can block distracting sites, keep the machine awake and lock the TUI to
the timer view. Subcommands read and edit the same database.`,
		Flags: append(flags.Global(), tuiCmd.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "focusflow.log")
			}
			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			closeLog = closer

			log.Debug().Str("version", version).Msg("focusflow starting")
			return ctx, rt.Open(flags, logger)
		},
		After: func(ctx context.Context, c *cli.Command) error {
			defer closeLog()
			if err := rt.Close(); err != nil {
				log.Error().Err(err).Msg("shutdown")
				return err
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown command %q, see 'focusflow --help'", c.Args().First())
			}
			return tuiCmd.Run(ctx, c)
		},
	}

	root = commands.NewStatsCmd(flags, rt).Register(root)
	root = commands.NewTasksCmd(flags, rt).Register(root)
	root = commands.NewExportCmd(flags, rt).Register(root)
	root = commands.NewUnblockCmd(flags, rt).Register(root)

	return root.Run(ctx, args)
}
