package app

import (
	"errors"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/focus/focustest"
	"github.com/sadopc/focusflow/internal/settings"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	c     *Coordinator
	store *store.Store
	caps  *focustest.Recorder
	clock *clock
}

func newFixture(t *testing.T, mode timer.FocusMode, seed func(*store.Store)) *fixture {
	t.Helper()
	st, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	if seed != nil {
		seed(st)
	}

	f := &fixture{
		store: st,
		caps:  &focustest.Recorder{},
		clock: &clock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	f.c, err = New(st, Options{
		Focus:     f.caps,
		FocusMode: mode,
		Logger:    zerolog.Nop(),
		Runner:    timer.Inline{},
		Now:       f.clock.Now,
		Location:  time.UTC,
	})
	require.NoError(t, err)
	return f
}

// tick advances the clock and the timer n seconds.
func (f *fixture) tick(n int) {
	for range n {
		f.clock.t = f.clock.t.Add(time.Second)
		f.c.Tick()
	}
}

func intPtr(v int) *int { return &v }

func TestNew_LoadsDefaults(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)

	v := f.c.View()
	assert.Equal(t, settings.Defaults(), v.Settings)
	assert.Empty(t, v.Tasks)
	assert.Empty(t, v.Done)
	assert.Equal(t, timer.Idle, v.Timer.Phase())
	assert.Equal(t, 25*60, v.Timer.Remaining)
	assert.Zero(t, v.Analytics.TotalIntervals)
}

func TestNew_RepairsInvalidSettings(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, func(st *store.Store) {
		require.NoError(t, st.SetSetting(settings.KeyWorkDuration, "abc"))
		require.NoError(t, st.SetSetting(settings.KeyShortBreak, "10"))
	})

	s := f.c.Settings()
	assert.Equal(t, 25, s.WorkMinutes)
	assert.Equal(t, 10, s.ShortBreakMinutes)

	stored, err := f.store.GetSetting(settings.KeyWorkDuration)
	require.NoError(t, err)
	assert.Equal(t, "25", stored)
}

func TestNew_RepairsInvalidBlockedSites(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, func(st *store.Store) {
		require.NoError(t, st.SetSetting(settings.KeyBlockedSites, `["reddit.com","youtube.com\n6.6.6.6 bank.example.com"]`))
	})

	assert.Equal(t, []string{"reddit.com"}, f.c.Settings().BlockedSites)

	stored, err := f.store.GetSetting(settings.KeyBlockedSites)
	require.NoError(t, err)
	assert.Equal(t, `["reddit.com"]`, stored)
}

func TestStart_TaskChecks(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)

	missing := int64(99)
	err := f.c.Start(&missing)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, timer.Idle, f.c.State().Phase())

	task, err := f.c.AddTask("Done already", 1)
	require.NoError(t, err)
	require.NoError(t, f.c.SetTaskCompleted(task.ID, true))

	err = f.c.Start(&task.ID)
	require.ErrorIs(t, err, ErrTaskCompleted)
	assert.Equal(t, timer.Idle, f.c.State().Phase())

	require.NoError(t, f.c.Start(nil))
	assert.Equal(t, timer.Running, f.c.State().Phase())
	assert.ErrorIs(t, f.c.Start(nil), timer.ErrActive)
}

func TestCompletedWorkIntervalUpdatesView(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)
	require.NoError(t, f.c.UpdateSettings(settings.Update{WorkMinutes: intPtr(1)}))

	task, err := f.c.AddTask("Write report", 3)
	require.NoError(t, err)

	require.NoError(t, f.c.Start(&task.ID))
	v := f.c.View()
	require.NotNil(t, v.ActiveTask)
	assert.Equal(t, "Write report", v.ActiveTask.Title)

	f.tick(60)

	v = f.c.View()
	assert.Equal(t, store.SessionShortBreak, v.Timer.Kind)
	assert.Equal(t, 1, v.Timer.Streak)
	assert.Nil(t, v.ActiveTask)
	require.Len(t, v.Tasks, 1)
	assert.Equal(t, 1, v.Tasks[0].CompletedPomodoros)
	assert.Equal(t, 1, v.Analytics.TotalIntervals)
	assert.Equal(t, int64(60), v.Analytics.TotalFocusSeconds)
	assert.Equal(t, 1, v.Analytics.CurrentStreak)
	assert.Equal(t, 1, v.Analytics.Hourly[9])
}

func TestStopRecordsIncompleteSession(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)

	require.NoError(t, f.c.Start(nil))
	f.tick(600)
	assert.True(t, f.c.Stop())
	assert.False(t, f.c.Stop())

	sessions, _, err := f.c.History(store.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].Completed)
	assert.Equal(t, int64(600), sessions[0].Duration)

	assert.Zero(t, f.c.Analytics().TotalIntervals)
}

func TestMoveTask(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)

	a, err := f.c.AddTask("A", 1)
	require.NoError(t, err)
	_, err = f.c.AddTask("B", 1)
	require.NoError(t, err)
	c, err := f.c.AddTask("C", 1)
	require.NoError(t, err)

	titles := func() []string {
		var out []string
		for _, task := range f.c.Tasks() {
			out = append(out, task.Title)
		}
		return out
	}

	require.NoError(t, f.c.MoveTask(c.ID, -5))
	assert.Equal(t, []string{"C", "A", "B"}, titles())

	require.NoError(t, f.c.MoveTask(a.ID, 1))
	assert.Equal(t, []string{"C", "B", "A"}, titles())

	require.NoError(t, f.c.MoveTask(a.ID, 1))
	assert.Equal(t, []string{"C", "B", "A"}, titles())

	assert.ErrorIs(t, f.c.MoveTask(404, 1), store.ErrNotFound)
}

func TestSetTaskCompleted(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)

	a, err := f.c.AddTask("A", 1)
	require.NoError(t, err)
	_, err = f.c.AddTask("B", 1)
	require.NoError(t, err)

	require.NoError(t, f.c.SetTaskCompleted(a.ID, true))
	v := f.c.View()
	require.Len(t, v.Tasks, 1)
	require.Len(t, v.Done, 1)
	assert.Equal(t, "A", v.Done[0].Title)
	assert.Equal(t, 1, v.Analytics.CompletedTasks)

	require.NoError(t, f.c.SetTaskCompleted(a.ID, false))
	v = f.c.View()
	require.Len(t, v.Tasks, 2)
	assert.Equal(t, "B", v.Tasks[0].Title)
	assert.Equal(t, "A", v.Tasks[1].Title)
	assert.Empty(t, v.Done)
	assert.Zero(t, v.Analytics.CompletedTasks)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, nil)

	a, err := f.c.AddTask("A", 2)
	require.NoError(t, err)
	require.NoError(t, f.c.DeleteTask(a.ID))
	assert.Empty(t, f.c.Tasks())
	assert.ErrorIs(t, f.c.DeleteTask(a.ID), store.ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	t.Run("persists and refreshes idle timer", func(t *testing.T) {
		f := newFixture(t, timer.FocusMode{}, nil)

		sites := []string{"https://www.News.example.com/today"}
		err := f.c.UpdateSettings(settings.Update{WorkMinutes: intPtr(50), BlockedSites: &sites})
		require.NoError(t, err)

		assert.Equal(t, 50, f.c.Settings().WorkMinutes)
		assert.Equal(t, []string{"news.example.com"}, f.c.Settings().BlockedSites)
		assert.Equal(t, 50*60, f.c.State().Total)

		stored, err := f.store.GetSetting(settings.KeyWorkDuration)
		require.NoError(t, err)
		assert.Equal(t, "50", stored)
	})

	t.Run("invalid update changes nothing", func(t *testing.T) {
		f := newFixture(t, timer.FocusMode{}, nil)

		err := f.c.UpdateSettings(settings.Update{WorkMinutes: intPtr(0), LongBreakMinutes: intPtr(-3)})
		require.Error(t, err)

		var fieldErrs criterio.FieldErrors
		require.True(t, errors.As(err, &fieldErrs))
		assert.Len(t, fieldErrs, 2)

		assert.Equal(t, settings.Defaults(), f.c.Settings())
		stored, err := f.store.GetSetting(settings.KeyWorkDuration)
		require.NoError(t, err)
		assert.Equal(t, "25", stored)
	})

	t.Run("running interval keeps its length", func(t *testing.T) {
		f := newFixture(t, timer.FocusMode{}, nil)
		require.NoError(t, f.c.Start(nil))

		require.NoError(t, f.c.UpdateSettings(settings.Update{WorkMinutes: intPtr(10)}))
		assert.Equal(t, 25*60, f.c.State().Total)
	})
}

func TestFocusOutcomesInView(t *testing.T) {
	f := newFixture(t, timer.FocusMode{BlockSites: true, PreventSleep: true}, nil)
	f.caps.Fail(focus.CapBlockSites, errors.New("permission denied"))

	require.NoError(t, f.c.Start(nil))

	v := f.c.View()
	require.Contains(t, v.Focus, focus.CapBlockSites)
	assert.False(t, v.Focus[focus.CapBlockSites].Success)
	assert.Equal(t, "permission denied", v.Focus[focus.CapBlockSites].Error())
	assert.True(t, v.Focus[focus.CapPreventSleep].Success)
	assert.Equal(t, timer.Running, v.Timer.Phase())
}

func TestShutdown(t *testing.T) {
	f := newFixture(t, timer.FocusMode{BlockSites: true}, nil)

	require.NoError(t, f.c.Start(nil))
	f.tick(30)
	f.c.Shutdown()

	assert.Equal(t, timer.Idle, f.c.State().Phase())
	assert.Equal(t, 1, f.caps.Count(focus.CapUnblockSites))
	assert.Equal(t, 1, f.caps.Count(focus.CapAllowSleep))

	sessions, _, err := f.c.History(store.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(30), sessions[0].Duration)
}

func TestAnalyticsFor(t *testing.T) {
	f := newFixture(t, timer.FocusMode{}, func(st *store.Store) {
		old := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
		end := old.Add(25 * time.Minute)
		_, err := st.InsertSession(store.Session{
			StartTime: old, EndTime: &end, Duration: 1500,
			Type: store.SessionWork, Completed: true,
		})
		require.NoError(t, err)
	})

	assert.Zero(t, f.c.Analytics().TotalIntervals)

	snap, err := f.c.AnalyticsFor(60)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalIntervals)
	assert.Equal(t, 1, snap.LongestStreak)
	assert.Zero(t, snap.CurrentStreak)
}
