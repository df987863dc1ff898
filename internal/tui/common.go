package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Timer", "Tasks", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// fullscreenMsg reports a change of the focus lock.
type fullscreenMsg struct {
	locked bool
}

// switchViewMsg asks the root model to show another view.
type switchViewMsg struct {
	view viewState
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func errorCmd(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

var quotes = []string{
	"The secret of getting ahead is getting started.",
	"Focus on being productive instead of busy.",
	"It always seems impossible until it's done.",
	"Small steps every day add up to big results.",
	"Do the hard thing first.",
	"One pomodoro at a time.",
	"Concentrate all your thoughts upon the work at hand.",
	"Starve your distractions, feed your focus.",
}

// quoteFor picks a quote that stays fixed for the whole interval.
func quoteFor(started *time.Time) string {
	if started == nil {
		return ""
	}
	i := started.Unix() % int64(len(quotes))
	if i < 0 {
		i = -i
	}
	return quotes[i]
}
