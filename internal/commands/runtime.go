package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/config"
	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

// Open loads the configuration named by f, opens the database and starts the
// coordinator. f.Config is set on success.
func (rt *Runtime) Open(f *Flags, logger zerolog.Logger) error {
	cfg, err := config.Load(f.ConfigPath, f.DataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}

	db, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sys := focus.NewSystem(focus.Options{
		HostsPath:  cfg.Focus.HostsFile,
		RedirectIP: cfg.Focus.RedirectIP,
		Logger:     logger,
	})

	coord, err := app.New(db, app.Options{
		Focus: sys,
		FocusMode: timer.FocusMode{
			BlockSites:     cfg.Focus.BlockSites,
			PreventSleep:   cfg.Focus.PreventSleep,
			FullscreenLock: cfg.Focus.FullscreenLock,
		},
		Logger:       logger,
		LookbackDays: cfg.Analytics.LookbackDays,
	})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("start coordinator: %w", err)
	}

	// Read per call so settings edits apply to the next interval.
	sys.SetSites(func() []string { return coord.Settings().BlockedSites })
	sys.SetSound(func() bool { return coord.Settings().EnableSounds })

	f.Config = cfg
	*rt = Runtime{
		Store:  db,
		Focus:  sys,
		App:    coord,
		Logger: logger.With().Str("component", "cli").Logger(),
	}
	rt.Logger.Debug().Str("db", cfg.DBPath).Msg("runtime opened")
	return nil
}

// Close records any running interval, releases focus mode and closes the
// database. It is safe on a Runtime that was never opened.
func (rt *Runtime) Close() error {
	if rt.App != nil {
		rt.App.Shutdown()
	}
	if rt.Store == nil {
		return nil
	}
	if err := rt.Store.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
