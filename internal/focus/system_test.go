package focus_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/focus/focustest"
)

func newSystem(t *testing.T, goos string) (*focus.System, *focustest.Commander, *bytes.Buffer, string) {
	t.Helper()
	cmd := &focustest.Commander{}
	bell := &bytes.Buffer{}
	path := writeHosts(t, baseHosts)
	sys := focus.NewSystem(focus.Options{
		GOOS:      goos,
		HostsPath: path,
		Commander: cmd,
		Bell:      bell,
		Logger:    zerolog.Nop(),
	})
	return sys, cmd, bell, path
}

func TestResult(t *testing.T) {
	assert.True(t, focus.OK().Success)
	assert.Empty(t, focus.OK().Error())

	r := focus.Fail(errors.New("denied"))
	assert.False(t, r.Success)
	assert.Equal(t, "denied", r.Error())

	assert.Equal(t, focus.OK(), focus.From(nil))
	assert.Equal(t, "failed", focus.Result{}.Error())
}

func TestSystem_BlockSitesUsesCurrentList(t *testing.T) {
	sys, _, _, path := newSystem(t, "linux")
	sites := []string{"reddit.com"}
	sys.SetSites(func() []string { return sites })

	require.True(t, sys.BlockSites().Success)
	assert.Contains(t, readHosts(t, path), "127.0.0.1 reddit.com\n")
	assert.True(t, sys.State().SitesBlocked)

	sites = []string{"twitch.tv"}
	require.True(t, sys.BlockSites().Success)
	content := readHosts(t, path)
	assert.NotContains(t, content, "reddit.com")
	assert.Contains(t, content, "twitch.tv")

	require.True(t, sys.UnblockSites().Success)
	assert.Equal(t, baseHosts, readHosts(t, path))
	assert.False(t, sys.State().SitesBlocked)
}

func TestSystem_UnsupportedPlatform(t *testing.T) {
	sys, cmd, _, _ := newSystem(t, "plan9")

	r := sys.BlockSites()
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, focus.ErrUnsupported)

	r = sys.PreventSleep()
	assert.ErrorIs(t, r.Err, focus.ErrUnsupported)

	assert.True(t, sys.ShowNotification("t", "b").Success, "notifications no-op where unsupported")
	assert.Empty(t, cmd.Recorded())
}

func TestSystem_PreventSleepIsGuarded(t *testing.T) {
	sys, cmd, _, _ := newSystem(t, "linux")

	require.True(t, sys.PreventSleep().Success)
	require.True(t, sys.PreventSleep().Success)
	assert.True(t, sys.State().SleepPrevented)

	recorded := cmd.Recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, "systemd-inhibit", recorded[0].Name)
	assert.True(t, recorded[0].Start)

	require.True(t, sys.AllowSleep().Success)
	require.True(t, sys.AllowSleep().Success)
	assert.Equal(t, 1, cmd.StopCount())
	assert.False(t, sys.State().SleepPrevented)
}

func TestSystem_PreventSleepDarwin(t *testing.T) {
	sys, cmd, _, _ := newSystem(t, "darwin")
	require.True(t, sys.PreventSleep().Success)
	assert.Equal(t, "caffeinate", cmd.Recorded()[0].Name)
}

func TestSystem_PreventSleepMissingProgram(t *testing.T) {
	sys, cmd, _, _ := newSystem(t, "linux")
	cmd.Missing = map[string]bool{"systemd-inhibit": true}

	r := sys.PreventSleep()
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, focus.ErrUnsupported)
	assert.False(t, sys.State().SleepPrevented)
}

func TestSystem_Notification(t *testing.T) {
	t.Run("linux with sound", func(t *testing.T) {
		sys, cmd, bell, _ := newSystem(t, "linux")
		sys.SetSound(func() bool { return true })

		require.True(t, sys.ShowNotification("Pomodoro complete", "Take a break").Success)
		assert.Equal(t, "\a", bell.String())
		recorded := cmd.Recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, "notify-send", recorded[0].Name)
		assert.Equal(t, []string{"--app-name=focusflow", "Pomodoro complete", "Take a break"}, recorded[0].Args)
	})

	t.Run("sound off", func(t *testing.T) {
		sys, _, bell, _ := newSystem(t, "linux")
		sys.SetSound(func() bool { return false })
		sys.ShowNotification("a", "b")
		assert.Empty(t, bell.String())
	})

	t.Run("missing notify-send is silent", func(t *testing.T) {
		sys, cmd, _, _ := newSystem(t, "linux")
		cmd.Missing = map[string]bool{"notify-send": true}
		assert.True(t, sys.ShowNotification("a", "b").Success)
		assert.Empty(t, cmd.Recorded())
	})

	t.Run("darwin escapes quotes", func(t *testing.T) {
		sys, cmd, _, _ := newSystem(t, "darwin")
		sys.ShowNotification(`Say "hi"`, "body")
		recorded := cmd.Recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, "osascript", recorded[0].Name)
		assert.Equal(t, `display notification "body" with title "Say \"hi\""`, recorded[0].Args[1])
	})

	t.Run("command failure is reported", func(t *testing.T) {
		sys, cmd, _, _ := newSystem(t, "linux")
		cmd.Errors = map[string]error{"notify-send": errors.New("no dbus")}
		r := sys.ShowNotification("a", "b")
		assert.False(t, r.Success)
		assert.EqualError(t, r.Err, "no dbus")
	})
}

func TestSystem_SetBellRedirects(t *testing.T) {
	sys, _, bell, _ := newSystem(t, "linux")
	sys.SetSound(func() bool { return true })

	routed := &bytes.Buffer{}
	prev := sys.SetBell(routed)
	assert.Same(t, bell, prev)

	sys.ShowNotification("a", "b")
	assert.Equal(t, "\a", routed.String())
	assert.Empty(t, bell.String())

	sys.SetBell(prev)
	sys.ShowNotification("a", "b")
	assert.Equal(t, "\a", bell.String())
	assert.Equal(t, "\a", routed.String())
}

func TestSystem_FullscreenLock(t *testing.T) {
	sys, _, _, _ := newSystem(t, "linux")

	var changes []bool
	sys.Screen().OnChange(func(locked bool) { changes = append(changes, locked) })

	assert.True(t, sys.EnableFullscreenLock().Success)
	assert.True(t, sys.EnableFullscreenLock().Success)
	assert.True(t, sys.State().Fullscreen)
	assert.True(t, sys.DisableFullscreenLock().Success)
	assert.True(t, sys.DisableFullscreenLock().Success)

	assert.Equal(t, []bool{true, false}, changes, "repeat calls must not re-fire")
}

func TestNop(t *testing.T) {
	var caps focus.Capabilities = focus.Nop{}
	assert.True(t, caps.BlockSites().Success)
	assert.True(t, caps.ShowNotification("a", "b").Success)
}
