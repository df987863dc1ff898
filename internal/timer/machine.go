// Package timer owns the pomodoro countdown: the idle, running and paused
// states, the work/break phase transitions, and the side effects issued at
// each phase boundary.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/settings"
	"github.com/sadopc/focusflow/internal/store"
)

// ErrActive is returned by Start when an interval is already running or paused.
var ErrActive = errors.New("timer already active")

// Recorder is the part of the store the timer writes to.
type Recorder interface {
	InsertSession(s store.Session) (int64, error)
	IncrementTaskProgress(id int64) error
}

// FocusMode selects which side effects are engaged for a work interval.
type FocusMode struct {
	BlockSites     bool
	PreventSleep   bool
	FullscreenLock bool
}

// Interval describes a finished interval after its session was written.
type Interval struct {
	Session store.Session
	// Next is the timer state right after the transition.
	Next TimerState
	// Err is the session write error, if any.
	Err error
}

type Config struct {
	Store     Recorder
	Focus     focus.Capabilities
	FocusMode FocusMode
	Settings  settings.Settings
	Logger    zerolog.Logger
	// Runner executes persistence and capability jobs. Defaults to a Serial runner.
	Runner Runner
	Now    func() time.Time

	// OnIntervalEnd is called from the runner after an interval's session write.
	OnIntervalEnd func(Interval)
	// OnFocus is called from the runner with every capability outcome.
	OnFocus func(capability string, r focus.Result)
}

// Machine is the single pomodoro countdown. State changes happen only through
// its methods; side effects are handed to the Runner so a slow or failing
// capability never delays a tick.
type Machine struct {
	mu       sync.Mutex
	state    TimerState
	settings settings.Settings

	store     Recorder
	focus     focus.Capabilities
	focusMode FocusMode
	runner    Runner
	now       func() time.Time
	log       zerolog.Logger

	onIntervalEnd func(Interval)
	onFocus       func(string, focus.Result)
}

func New(cfg Config) *Machine {
	if cfg.Focus == nil {
		cfg.Focus = focus.Nop{}
	}
	if cfg.Runner == nil {
		cfg.Runner = NewSerial()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	m := &Machine{
		settings:      cfg.Settings.Normalize(),
		store:         cfg.Store,
		focus:         cfg.Focus,
		focusMode:     cfg.FocusMode,
		runner:        cfg.Runner,
		now:           cfg.Now,
		log:           cfg.Logger.With().Str("component", "timer").Logger(),
		onIntervalEnd: cfg.OnIntervalEnd,
		onFocus:       cfg.OnFocus,
	}
	m.state = m.idleState(0)
	return m
}

func (m *Machine) State() TimerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Settings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SetSettings replaces the settings used for the next interval. An idle timer
// shows the new work duration right away.
func (m *Machine) SetSettings(s settings.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.Normalize()
	if !m.state.Running {
		m.state = m.idleState(m.state.Streak)
	}
}

func (m *Machine) SetFocusMode(f FocusMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.focusMode = f
}

// Start begins a work interval for taskID, which may be nil. The streak carries
// over from earlier intervals.
func (m *Machine) Start(taskID *int64) error {
	m.mu.Lock()
	if m.state.Running {
		m.mu.Unlock()
		return ErrActive
	}
	m.startWorkPhase(taskID)
	jobs := m.engageFocus()
	m.mu.Unlock()

	m.dispatch(jobs)
	return nil
}

// Pause freezes a running interval. It reports whether the state changed.
func (m *Machine) Pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Running || m.state.Paused {
		return false
	}
	m.state.Paused = true
	return true
}

// Resume continues a paused interval. It reports whether the state changed.
func (m *Machine) Resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Running || !m.state.Paused {
		return false
	}
	m.state.Paused = false
	return true
}

// Toggle pauses a running interval or resumes a paused one.
func (m *Machine) Toggle() bool {
	if m.Pause() {
		return true
	}
	return m.Resume()
}

// Stop ends the active interval early. The interval is recorded as incomplete
// and focus mode is released. The streak is kept; only Reset clears it.
// Stopping an idle timer does nothing and returns false.
func (m *Machine) Stop() bool {
	m.mu.Lock()
	if !m.state.Running {
		m.mu.Unlock()
		return false
	}
	sess, ok := m.closeInterval(false)
	m.state = m.idleState(m.state.Streak)
	next := m.state

	var jobs []func()
	if ok {
		jobs = append(jobs, m.persistJob(sess, next, false))
	}
	jobs = append(jobs, m.disengageFocus()...)
	m.mu.Unlock()

	m.log.Info().Str("kind", string(sess.Type)).Int64("duration", sess.Duration).Msg("interval stopped")
	m.dispatch(jobs)
	return true
}

// Reset stops any active interval and clears the streak.
func (m *Machine) Reset() {
	m.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.idleState(0)
}

// Tick advances a running countdown by one second. The tick that reaches zero
// also performs the phase transition. Ticks while idle or paused do nothing.
func (m *Machine) Tick() {
	m.mu.Lock()
	if !m.state.Running || m.state.Paused {
		m.mu.Unlock()
		return
	}
	if m.state.Remaining > 0 {
		m.state.Remaining--
	}
	if m.state.Remaining > 0 {
		m.mu.Unlock()
		return
	}
	jobs := m.advancePhase()
	m.mu.Unlock()

	m.dispatch(jobs)
}

// advancePhase handles natural expiry. Callers hold m.mu.
func (m *Machine) advancePhase() []func() {
	kind := m.state.Kind
	sess, ok := m.closeInterval(true)

	var jobs []func()
	if kind == store.SessionWork {
		m.state.Streak++
		next := m.settings.BreakAfter(m.state.Streak)
		m.startBreakPhase(next)

		if ok {
			jobs = append(jobs, m.persistJob(sess, m.state, true))
		}
		mins := m.settings.Seconds(next) / 60
		jobs = append(jobs, m.notifyJob("Pomodoro complete!",
			fmt.Sprintf("Time for a %d-minute %s.", mins, breakNoun(next))))
		jobs = append(jobs, m.disengageFocus()...)

		m.log.Info().Int("streak", m.state.Streak).Str("next", string(next)).Msg("work interval complete")
		return jobs
	}

	m.state = m.idleState(m.state.Streak)
	if ok {
		jobs = append(jobs, m.persistJob(sess, m.state, false))
	}
	jobs = append(jobs, m.notifyJob("Break over", "Ready for the next pomodoro?"))
	jobs = append(jobs, m.disengageFocus()...)

	m.log.Info().Str("kind", string(kind)).Msg("break complete")
	return jobs
}

func (m *Machine) startWorkPhase(taskID *int64) {
	now := m.now()
	secs := m.settings.Seconds(store.SessionWork)
	m.state = TimerState{
		Running:   true,
		Remaining: secs,
		Total:     secs,
		Kind:      store.SessionWork,
		Streak:    m.state.Streak,
		TaskID:    cloneID(taskID),
		StartedAt: &now,
	}
}

func (m *Machine) startBreakPhase(kind store.SessionType) {
	now := m.now()
	secs := m.settings.Seconds(kind)
	m.state = TimerState{
		Running:   true,
		Remaining: secs,
		Total:     secs,
		Kind:      kind,
		Streak:    m.state.Streak,
		StartedAt: &now,
	}
}

func (m *Machine) idleState(streak int) TimerState {
	secs := m.settings.Seconds(store.SessionWork)
	return TimerState{
		Remaining: secs,
		Total:     secs,
		Kind:      store.SessionWork,
		Streak:    streak,
	}
}

// closeInterval builds the session for the current interval. Duration is the
// wall-clock time since the start, not the nominal interval length.
func (m *Machine) closeInterval(completed bool) (store.Session, bool) {
	if m.state.StartedAt == nil {
		return store.Session{Type: m.state.Kind}, false
	}
	start := *m.state.StartedAt
	// Round(0) drops the monotonic reading so time spent suspended still counts.
	elapsed := m.now().Round(0).Sub(start.Round(0))
	secs := int64(elapsed / time.Second)
	if secs < 0 {
		secs = 0
	}
	end := start.Add(time.Duration(secs) * time.Second)

	var taskID *int64
	if m.state.Kind == store.SessionWork {
		taskID = cloneID(m.state.TaskID)
	}
	return store.Session{
		TaskID:    taskID,
		StartTime: start,
		EndTime:   &end,
		Duration:  secs,
		Type:      m.state.Kind,
		Completed: completed,
	}, true
}

func (m *Machine) persistJob(sess store.Session, next TimerState, credit bool) func() {
	onEnd := m.onIntervalEnd
	return func() {
		log := m.log.With().Str("kind", string(sess.Type)).Bool("completed", sess.Completed).Logger()

		var err error
		if m.store != nil {
			sess.ID, err = m.store.InsertSession(sess)
			if err != nil {
				log.Error().Err(err).Msg("failed to record session")
			}
			if credit && sess.TaskID != nil {
				if ierr := m.store.IncrementTaskProgress(*sess.TaskID); ierr != nil {
					log.Error().Err(ierr).Int64("task_id", *sess.TaskID).Msg("failed to credit task")
				}
			}
		}
		if onEnd != nil {
			onEnd(Interval{Session: sess, Next: next, Err: err})
		}
	}
}

func (m *Machine) engageFocus() []func() {
	var jobs []func()
	if m.focusMode.BlockSites {
		jobs = append(jobs, m.capabilityJob(focus.CapBlockSites, m.focus.BlockSites))
	}
	if m.focusMode.PreventSleep {
		jobs = append(jobs, m.capabilityJob(focus.CapPreventSleep, m.focus.PreventSleep))
	}
	if m.focusMode.FullscreenLock {
		jobs = append(jobs, m.capabilityJob(focus.CapFullscreenLock, m.focus.EnableFullscreenLock))
	}
	return jobs
}

// disengageFocus releases every part of focus mode, whether or not it was engaged.
func (m *Machine) disengageFocus() []func() {
	return []func(){
		m.capabilityJob(focus.CapUnblockSites, m.focus.UnblockSites),
		m.capabilityJob(focus.CapAllowSleep, m.focus.AllowSleep),
		m.capabilityJob(focus.CapFullscreenUnlock, m.focus.DisableFullscreenLock),
	}
}

func (m *Machine) notifyJob(title, body string) func() {
	return m.capabilityJob(focus.CapShowNotification, func() focus.Result {
		return m.focus.ShowNotification(title, body)
	})
}

func (m *Machine) capabilityJob(name string, call func() focus.Result) func() {
	onFocus := m.onFocus
	return func() {
		r := call()
		if !r.Success {
			m.log.Warn().Str("capability", name).Str("error", r.Error()).Msg("focus capability failed")
		}
		if onFocus != nil {
			onFocus(name, r)
		}
	}
}

func (m *Machine) dispatch(jobs []func()) {
	for _, job := range jobs {
		m.runner.Go(job)
	}
}

func breakNoun(kind store.SessionType) string {
	if kind == store.SessionLongBreak {
		return "long break"
	}
	return "short break"
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
