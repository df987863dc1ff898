package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "focusflow.db"), cfg.DBPath)
	assert.True(t, cfg.Focus.BlockSites)
	assert.True(t, cfg.Focus.PreventSleep)
	assert.False(t, cfg.Focus.FullscreenLock)
	assert.Equal(t, "127.0.0.1", cfg.Focus.RedirectIP)
	assert.NotEmpty(t, cfg.Focus.HostsFile)
	assert.Equal(t, 30, cfg.Analytics.LookbackDays)
	assert.Equal(t, 14, cfg.Analytics.ChartDays)
	assert.Equal(t, filepath.Join(dataDir, "focusflow.log"), cfg.LogFile())
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", "/tmp/ff")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ff/focusflow.db", cfg.DBPath)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/focusflow/data.db
focus:
  block_sites: false
  prevent_sleep: false
  fullscreen_lock: true
  hosts_file: /tmp/hosts
  redirect_ip: 0.0.0.0
analytics:
  lookback_days: 90
`)
	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/focusflow/data.db", cfg.DBPath)
	assert.False(t, cfg.Focus.BlockSites)
	assert.False(t, cfg.Focus.PreventSleep)
	assert.True(t, cfg.Focus.FullscreenLock)
	assert.Equal(t, "/tmp/hosts", cfg.Focus.HostsFile)
	assert.Equal(t, "0.0.0.0", cfg.Focus.RedirectIP)
	assert.Equal(t, 90, cfg.Analytics.LookbackDays)
	assert.Equal(t, 14, cfg.Analytics.ChartDays, "unset values keep their default")
}

func TestLoad_PartialFocusKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "focus:\n  fullscreen_lock: true\n")
	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.Focus.BlockSites)
	assert.True(t, cfg.Focus.FullscreenLock)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "focus: [unclosed")
	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
focus:
  redirect_ip: not-an-ip
analytics:
  lookback_days: -1
  chart_days: 400
`)
	_, err := Load(path, t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestValidate(t *testing.T) {
	t.Run("defaults with data dir are valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DataDir = t.TempDir()
		cfg.applyDefaults()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("hosts file required when blocking", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.DBPath = "x.db"
		cfg.Focus.HostsFile = ""

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.Validate(), &fieldErrs)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "focus.hosts_file", fieldErrs[0].Field)

		cfg.Focus.BlockSites = false
		assert.NoError(t, cfg.Validate())
	})

	t.Run("db path required", func(t *testing.T) {
		cfg := DefaultConfig()

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, cfg.Validate(), &fieldErrs)
		assert.Equal(t, "db_path", fieldErrs[0].Field)
	})
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, filepath.Join("/cfg", "focusflow", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "focusflow"), DefaultDataDir())
	assert.Equal(t, "/etc/hosts", DefaultHostsFile("linux"))
	assert.Equal(t, "/etc/hosts", DefaultHostsFile("darwin"))

	t.Setenv("SystemRoot", "")
	assert.Contains(t, DefaultHostsFile("windows"), "hosts")
}
