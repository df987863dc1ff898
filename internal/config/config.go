// Package config loads the focusflow application configuration.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/focusflow/internal/analytics"
	"github.com/sadopc/focusflow/internal/store"
)

// Config holds the application configuration. Pomodoro preferences such as
// durations live in the database and are edited from the TUI, not here.
type Config struct {
	DBPath    string          `yaml:"db_path"`
	Focus     FocusConfig     `yaml:"focus"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	DataDir   string          `yaml:"-"` // set by caller, not from config file
}

// FocusConfig selects which side effects focus mode uses.
type FocusConfig struct {
	BlockSites     bool   `yaml:"block_sites"`
	PreventSleep   bool   `yaml:"prevent_sleep"`
	FullscreenLock bool   `yaml:"fullscreen_lock"`
	HostsFile      string `yaml:"hosts_file"`
	RedirectIP     string `yaml:"redirect_ip"`
}

type AnalyticsConfig struct {
	LookbackDays int `yaml:"lookback_days"` // window for the analytics snapshot
	ChartDays    int `yaml:"chart_days"`    // days shown in the daily chart
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Focus: FocusConfig{
			BlockSites:   true,
			PreventSleep: true,
			HostsFile:    DefaultHostsFile(runtime.GOOS),
			RedirectIP:   "127.0.0.1",
		},
		Analytics: AnalyticsConfig{
			LookbackDays: analytics.DefaultWindowDays,
			ChartDays:    14,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.DBPath == "" {
		if c.DataDir != "" {
			c.DBPath = filepath.Join(c.DataDir, "focusflow.db")
		} else if p, err := store.DefaultDBPath(); err == nil {
			c.DBPath = p
		}
	}
	if c.Focus.HostsFile == "" {
		c.Focus.HostsFile = defaults.Focus.HostsFile
	}
	if c.Focus.RedirectIP == "" {
		c.Focus.RedirectIP = defaults.Focus.RedirectIP
	}
	if c.Analytics.LookbackDays == 0 {
		c.Analytics.LookbackDays = defaults.Analytics.LookbackDays
	}
	if c.Analytics.ChartDays == 0 {
		c.Analytics.ChartDays = defaults.Analytics.ChartDays
	}
}

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("db_path", c.DBPath, required),
		criterio.Run("focus.redirect_ip", c.Focus.RedirectIP, isIP),
		c.validateFocus(),
		c.validateAnalytics(),
	)
}

func (c *Config) validateFocus() error {
	if c.Focus.BlockSites && c.Focus.HostsFile == "" {
		return criterio.NewFieldErrors("focus.hosts_file", fmt.Errorf("required when block_sites is enabled"))
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	var errs criterio.FieldErrorsBuilder
	if c.Analytics.LookbackDays < 1 {
		errs = errs.Append("analytics.lookback_days", fmt.Errorf("must be at least 1, got %d", c.Analytics.LookbackDays))
	}
	if c.Analytics.ChartDays < 1 || c.Analytics.ChartDays > 60 {
		errs = errs.Append("analytics.chart_days", fmt.Errorf("must be between 1 and 60, got %d", c.Analytics.ChartDays))
	}
	return errs.ToError()
}

// LogFile returns the default log file inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "focusflow.log")
}

func required(v string) error {
	if v == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

func isIP(v string) error {
	if net.ParseIP(v) == nil {
		return fmt.Errorf("invalid IP address %q", v)
	}
	return nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "focusflow", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "focusflow")
}

// DefaultHostsFile returns the system hosts file for goos.
func DefaultHostsFile(goos string) string {
	if goos == "windows" {
		root := os.Getenv("SystemRoot")
		if root == "" {
			root = `C:\Windows`
		}
		return filepath.Join(root, "System32", "drivers", "etc", "hosts")
	}
	return "/etc/hosts"
}
