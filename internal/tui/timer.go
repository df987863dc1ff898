package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/focus"
	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

// timerModel shows the countdown and picks the task for a new interval.
type timerModel struct {
	coord  *app.Coordinator
	width  int
	height int
	data   app.View

	bar progress.Model

	// Task picker state. Row 0 is "no task".
	picking      bool
	pickerCursor int
}

func newTimerModel(c *app.Coordinator) timerModel {
	return timerModel{
		coord: c,
		bar:   progress.New(progress.WithSolidFill(string(colorWork)), progress.WithoutPercentage()),
	}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.bar.Width = max(10, w-12)
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return t, nil
	}
	if t.picking {
		return t.updatePicker(keyMsg)
	}

	if key.Matches(keyMsg, keys.Start) {
		if t.data.Timer.Running {
			return t, statusCmd("Timer already running")
		}
		if len(t.data.Tasks) == 0 {
			return t.start(nil)
		}
		t.picking = true
		t.pickerCursor = 0
	}
	return t, nil
}

func (t timerModel) updatePicker(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.pickerCursor > 0 {
			t.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if t.pickerCursor < len(t.data.Tasks) {
			t.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		t.picking = false
		if t.pickerCursor == 0 || t.pickerCursor > len(t.data.Tasks) {
			return t.start(nil)
		}
		id := t.data.Tasks[t.pickerCursor-1].ID
		return t.start(&id)
	case key.Matches(msg, keys.Back):
		t.picking = false
	}
	return t, nil
}

func (t timerModel) start(taskID *int64) (timerModel, tea.Cmd) {
	if err := t.coord.Start(taskID); err != nil {
		return t, errorCmd("Start", err)
	}
	return t, statusCmd("Focus started")
}

func (t timerModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}
	w := t.width - 4

	panel := t.renderClockPanel(w)
	if t.picking {
		return lipgloss.JoinVertical(lipgloss.Left, panel, t.renderPicker(w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panel, t.renderTodayPanel(w))
}

func (t timerModel) renderClockPanel(w int) string {
	st := t.data.Timer
	style := kindStyle(st.Kind)

	var label string
	switch st.Phase() {
	case timer.Idle:
		label = mutedStyle.Render("■  READY")
	case timer.Paused:
		label = warningStyle.Render("⏸  PAUSED · " + strings.ToUpper(st.Kind.Label()))
	default:
		label = style.Render("●  " + strings.ToUpper(st.Kind.Label()))
	}

	clock := clockStyle.Foreground(kindColor(st.Kind)).Width(w - 6).Render(st.Clock())
	if st.Phase() == timer.Idle {
		clock = clockStyle.Foreground(colorMuted).Width(w - 6).Render(st.Clock())
	}

	bar := t.bar
	bar.FullColor = string(kindColor(st.Kind))

	rows := []string{clock, label, "", bar.ViewAs(st.Progress()), "", t.renderStreak()}

	if st.Kind == store.SessionWork && st.Running {
		task := mutedStyle.Render("No task")
		if t.data.ActiveTask != nil {
			task = titleStyle.Render(t.data.ActiveTask.Title) +
				mutedStyle.Render(fmt.Sprintf("  %d/%d", t.data.ActiveTask.CompletedPomodoros, t.data.ActiveTask.EstimatedPomodoros))
		}
		rows = append(rows, task)
		if q := quoteFor(st.StartedAt); q != "" {
			rows = append(rows, quoteStyle.Render("“"+q+"”"))
		}
	}
	if line := t.renderFocusStatus(); line != "" {
		rows = append(rows, "", line)
	}

	rows = append(rows, "", mutedStyle.Render(t.controlsHint()))

	content := lipgloss.JoinVertical(lipgloss.Center, rows...)
	if st.Running {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (t timerModel) controlsHint() string {
	switch t.data.Timer.Phase() {
	case timer.Running:
		return "space: pause  x: stop  r: reset"
	case timer.Paused:
		return "space: resume  x: stop  r: reset"
	default:
		return "s: start  r: reset streak"
	}
}

// renderStreak draws one dot per work interval of the current long-break cycle.
func (t timerModel) renderStreak() string {
	st := t.data.Timer
	every := max(1, t.data.Settings.IntervalsUntilLongBreak)
	filled := st.Streak % every
	if filled == 0 && st.Streak > 0 && st.Kind != store.SessionWork {
		filled = every
	}

	var parts []string
	for i := range every {
		switch {
		case i < filled:
			parts = append(parts, successStyle.Render("●"))
		case i == filled && st.Running && st.Kind == store.SessionWork:
			parts = append(parts, kindStyle(store.SessionWork).Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ") + mutedStyle.Render(fmt.Sprintf("  streak %d", st.Streak))
}

var focusLabels = []struct {
	capability string
	label      string
}{
	{focus.CapBlockSites, "sites blocked"},
	{focus.CapPreventSleep, "sleep blocked"},
	{focus.CapFullscreenLock, "focus lock"},
}

// renderFocusStatus reports the focus mode outcome of the running work interval.
func (t timerModel) renderFocusStatus() string {
	st := t.data.Timer
	if !st.Running || st.Kind != store.SessionWork {
		return ""
	}
	var parts []string
	for _, fl := range focusLabels {
		r, ok := t.data.Focus[fl.capability]
		if !ok {
			continue
		}
		if r.Success {
			parts = append(parts, successStyle.Render("✓ "+fl.label))
		} else {
			parts = append(parts, errorStyle.Render("✗ "+fl.label+": "+r.Error()))
		}
	}
	return strings.Join(parts, "  ")
}

func (t timerModel) renderTodayPanel(w int) string {
	today := t.data.Analytics.Today(t.coord.Today())
	title := titleStyle.Render("Today")
	line := fmt.Sprintf("%s  %s",
		title,
		mutedStyle.Render(fmt.Sprintf("%d pomodoros · %s focused · %d day streak",
			today.Intervals, formatSeconds(today.FocusSeconds), t.data.Analytics.CurrentStreak)),
	)

	rows := []string{line}
	if len(t.data.Tasks) > 0 {
		next := t.data.Tasks[0]
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("Next up: %s (%d/%d)",
			next.Title, next.CompletedPomodoros, next.EstimatedPomodoros)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timerModel) renderPicker(w int) string {
	title := titleStyle.Render("Select Task")

	options := []string{"No task"}
	for _, task := range t.data.Tasks {
		options = append(options, fmt.Sprintf("%s  (%d/%d)", task.Title, task.CompletedPomodoros, task.EstimatedPomodoros))
	}

	rows := []string{title}
	for i, opt := range options {
		cursor := "  "
		style := normalItemStyle
		if i == t.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+opt))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
