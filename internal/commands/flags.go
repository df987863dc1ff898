// Package commands holds the focusflow CLI subcommands.
package commands

import (
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/store"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	DBPath     string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// Global returns the root flags shared by every command.
func (f *Flags) Global() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "debug, info, warn or error",
			Sources:     cli.EnvVars("FOCUSFLOW_LOG_LEVEL"),
			Value:       "info",
			Destination: &f.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "log file (default <data-dir>/focusflow.log)",
			Sources:     cli.EnvVars("FOCUSFLOW_LOG_FILE"),
			Destination: &f.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML config file",
			Sources:     cli.EnvVars("FOCUSFLOW_CONFIG"),
			Value:       config.DefaultConfigPath(),
			Destination: &f.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "directory for the database and log",
			Sources:     cli.EnvVars("FOCUSFLOW_DATA_DIR"),
			Value:       config.DefaultDataDir(),
			Destination: &f.DataDir,
		},
		&cli.StringFlag{
			Name:        "db",
			Usage:       "database file, overrides db_path from the config",
			Sources:     cli.EnvVars("FOCUSFLOW_DB"),
			Destination: &f.DBPath,
		},
	}
}

// Runtime is what the Before hook opens. Commands are constructed with a
// pointer to it before it is populated.
type Runtime struct {
	Store  *store.Store
	Focus  *focus.System
	App    *app.Coordinator
	Logger zerolog.Logger
}
