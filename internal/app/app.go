// Package app coordinates the timer, the record store and the analytics
// aggregator, and exposes one consistent view to the presentation layer.
package app

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/analytics"
	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/settings"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

// ErrTaskCompleted is returned when starting a work interval on a finished task.
var ErrTaskCompleted = errors.New("task is already completed")

type Options struct {
	Focus        focus.Capabilities
	FocusMode    timer.FocusMode
	Logger       zerolog.Logger
	Runner       timer.Runner
	Now          func() time.Time
	Location     *time.Location
	LookbackDays int
}

// View is everything the presentation layer renders.
type View struct {
	Timer      timer.TimerState
	ActiveTask *store.Task
	Settings   settings.Settings
	Tasks      []store.Task
	Done       []store.Task
	Analytics  analytics.Snapshot
	Focus      map[string]focus.Result
	Revision   uint64
}

// Coordinator owns the timer and the cached collections. Every mutation goes
// to the store first and then reloads the affected collection.
type Coordinator struct {
	store    *store.Store
	machine  *timer.Machine
	runner   timer.Runner
	log      zerolog.Logger
	now      func() time.Time
	loc      *time.Location
	lookback int

	mu       sync.RWMutex
	settings settings.Settings
	tasks    []store.Task
	done     []store.Task
	snapshot analytics.Snapshot
	focus    map[string]focus.Result
	revision uint64
}

func New(st *store.Store, opts Options) (*Coordinator, error) {
	if opts.Runner == nil {
		opts.Runner = timer.NewSerial()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LookbackDays < 1 {
		opts.LookbackDays = analytics.DefaultWindowDays
	}

	c := &Coordinator{
		store:    st,
		runner:   opts.Runner,
		log:      opts.Logger.With().Str("component", "app").Logger(),
		now:      opts.Now,
		loc:      opts.Location,
		lookback: opts.LookbackDays,
		focus:    make(map[string]focus.Result),
	}

	s, err := c.loadSettings()
	if err != nil {
		return nil, err
	}
	c.settings = s

	c.machine = timer.New(timer.Config{
		Store:         st,
		Focus:         opts.Focus,
		FocusMode:     opts.FocusMode,
		Settings:      s,
		Logger:        opts.Logger,
		Runner:        opts.Runner,
		Now:           opts.Now,
		OnIntervalEnd: c.onIntervalEnd,
		OnFocus:       c.onFocus,
	})

	if err := c.reloadTasks(); err != nil {
		return nil, err
	}
	if err := c.RefreshAnalytics(); err != nil {
		return nil, err
	}
	return c, nil
}

// loadSettings decodes the stored settings. Invalid rows are rewritten with
// their default so the next start reads clean values.
func (c *Coordinator) loadSettings() (settings.Settings, error) {
	values, err := c.store.GetAllSettings()
	if err != nil {
		return settings.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	s, err := settings.Decode(values)
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		encoded := s.Encode()
		for _, fe := range fieldErrs {
			c.log.Warn().Str("key", fe.Field).Err(fe.Err).Msg("invalid setting, using default")
			if v, ok := encoded[fe.Field]; ok {
				if err := c.store.SetSetting(fe.Field, v); err != nil {
					c.log.Error().Err(err).Str("key", fe.Field).Msg("failed to repair setting")
				}
			}
		}
	} else if err != nil {
		return settings.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// View returns a snapshot safe to read without further locking.
func (c *Coordinator) View() View {
	state := c.machine.State()

	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Timer:     state,
		Settings:  c.settings,
		Tasks:     slices.Clone(c.tasks),
		Done:      slices.Clone(c.done),
		Analytics: c.snapshot,
		Focus:     maps.Clone(c.focus),
		Revision:  c.revision,
	}
	if state.TaskID != nil {
		v.ActiveTask = findTask(c.tasks, *state.TaskID)
		if v.ActiveTask == nil {
			v.ActiveTask = findTask(c.done, *state.TaskID)
		}
	}
	return v
}

func (c *Coordinator) State() timer.TimerState {
	return c.machine.State()
}

// ============================================================
// Timer
// ============================================================

// Start begins a work interval. A non-nil taskID must name an incomplete task.
func (c *Coordinator) Start(taskID *int64) error {
	if taskID != nil {
		t, err := c.store.GetTask(*taskID)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		if t.Completed {
			return fmt.Errorf("start %q: %w", t.Title, ErrTaskCompleted)
		}
	}
	return c.machine.Start(taskID)
}

func (c *Coordinator) Pause() bool       { return c.machine.Pause() }
func (c *Coordinator) Resume() bool      { return c.machine.Resume() }
func (c *Coordinator) TogglePause() bool { return c.machine.Toggle() }
func (c *Coordinator) Stop() bool        { return c.machine.Stop() }
func (c *Coordinator) Reset()            { c.machine.Reset() }
func (c *Coordinator) Tick()             { c.machine.Tick() }

// Shutdown stops an active interval, releases focus mode and waits for every
// queued job. The store is left open for the caller to close.
func (c *Coordinator) Shutdown() {
	if !c.machine.Stop() {
		c.machine.Reset()
	}
	if w, ok := c.runner.(interface{ Wait() }); ok {
		w.Wait()
	}
}

func (c *Coordinator) onIntervalEnd(iv timer.Interval) {
	if err := c.reloadTasks(); err != nil {
		c.log.Error().Err(err).Msg("failed to reload tasks")
	}
	if err := c.RefreshAnalytics(); err != nil {
		c.log.Error().Err(err).Msg("failed to refresh analytics")
	}
}

func (c *Coordinator) onFocus(name string, r focus.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus[name] = r
	c.revision++
}

// ============================================================
// Tasks
// ============================================================

func (c *Coordinator) Tasks() []store.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tasks)
}

func (c *Coordinator) AddTask(title string, estimated int) (*store.Task, error) {
	t, err := c.store.CreateTask(title, estimated)
	if err != nil {
		return nil, err
	}
	return t, c.reloadTasks()
}

func (c *Coordinator) UpdateTask(id int64, u store.TaskUpdate) error {
	if err := c.store.UpdateTask(id, u); err != nil {
		return err
	}
	if err := c.reloadTasks(); err != nil {
		return err
	}
	if u.Completed != nil {
		return c.RefreshAnalytics()
	}
	return nil
}

// SetTaskCompleted marks a task done or reopens it. A reopened task moves to the
// end of the active list.
func (c *Coordinator) SetTaskCompleted(id int64, done bool) error {
	u := store.TaskUpdate{Completed: &done}
	if err := c.store.UpdateTask(id, u); err != nil {
		return err
	}
	if !done {
		ids := taskIDs(c.Tasks())
		ids = append(slices.DeleteFunc(ids, func(v int64) bool { return v == id }), id)
		if err := c.store.ReorderTasks(ids); err != nil {
			return err
		}
	}
	if err := c.reloadTasks(); err != nil {
		return err
	}
	return c.RefreshAnalytics()
}

func (c *Coordinator) DeleteTask(id int64) error {
	if err := c.store.DeleteTask(id); err != nil {
		return err
	}
	if err := c.reloadTasks(); err != nil {
		return err
	}
	return c.RefreshAnalytics()
}

func (c *Coordinator) ReorderTasks(ids []int64) error {
	if err := c.store.ReorderTasks(ids); err != nil {
		return err
	}
	return c.reloadTasks()
}

// MoveTask shifts an active task by delta positions, clamped to the list.
func (c *Coordinator) MoveTask(id int64, delta int) error {
	ids := taskIDs(c.Tasks())
	from := slices.Index(ids, id)
	if from < 0 {
		return fmt.Errorf("move task %d: %w", id, store.ErrNotFound)
	}
	to := min(max(from+delta, 0), len(ids)-1)
	if to == from {
		return nil
	}
	ids = slices.Delete(ids, from, from+1)
	ids = slices.Insert(ids, to, id)
	return c.ReorderTasks(ids)
}

func (c *Coordinator) reloadTasks() error {
	tasks, err := c.store.ListTasks(false)
	if err != nil {
		return fmt.Errorf("reload tasks: %w", err)
	}
	done, err := c.store.ListCompletedTasks()
	if err != nil {
		return fmt.Errorf("reload tasks: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = tasks
	c.done = done
	c.revision++
	return nil
}

// ============================================================
// Settings
// ============================================================

func (c *Coordinator) Settings() settings.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// UpdateSettings validates the result of applying u, persists each changed key
// and hands the reloaded settings to the timer. Invalid updates change nothing
// and return criterio.FieldErrors.
func (c *Coordinator) UpdateSettings(u settings.Update) error {
	next := u.Apply(c.Settings())
	if err := next.Validate(); err != nil {
		return err
	}

	for key, value := range u.Encode() {
		if err := c.store.SetSetting(key, value); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	s, err := c.loadSettings()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.settings = s
	c.revision++
	c.mu.Unlock()

	c.machine.SetSettings(s)
	c.log.Info().Int("work", s.WorkMinutes).Int("every", s.IntervalsUntilLongBreak).Msg("settings updated")
	return nil
}

// ============================================================
// Analytics
// ============================================================

func (c *Coordinator) Analytics() analytics.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// RefreshAnalytics recomputes the snapshot for the default window.
func (c *Coordinator) RefreshAnalytics() error {
	snap, err := c.AnalyticsFor(c.lookback)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snap
	c.revision++
	return nil
}

// AnalyticsFor computes a snapshot over the last days calendar days.
func (c *Coordinator) AnalyticsFor(days int) (analytics.Snapshot, error) {
	return LoadAnalytics(c.store, c.now().In(c.loc), days)
}

// Today returns the current time in the coordinator's location.
func (c *Coordinator) Today() time.Time {
	return c.now().In(c.loc)
}

// LoadAnalytics reads completed sessions for the window ending today and
// aggregates them.
func LoadAnalytics(st *store.Store, today time.Time, days int) (analytics.Snapshot, error) {
	from, to := analytics.Window(today, days)
	sessions, err := st.ListSessions(store.SessionFilter{From: &from, To: &to, CompletedOnly: true})
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load analytics: %w", err)
	}
	completed, err := st.CountCompletedTasks()
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("load analytics: %w", err)
	}
	return analytics.Compute(sessions, completed, today), nil
}

// ============================================================
// Export
// ============================================================

// History returns sessions matching f along with every known task keyed by id.
func (c *Coordinator) History(f store.SessionFilter) ([]store.Session, map[int64]*store.Task, error) {
	return LoadHistory(c.store, f)
}

func LoadHistory(st *store.Store, f store.SessionFilter) ([]store.Session, map[int64]*store.Task, error) {
	sessions, err := st.ListSessions(f)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := st.ListTasks(true)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]*store.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	return sessions, byID, nil
}

func findTask(tasks []store.Task, id int64) *store.Task {
	for i := range tasks {
		if tasks[i].ID == id {
			t := tasks[i]
			return &t
		}
	}
	return nil
}

func taskIDs(tasks []store.Task) []int64 {
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
