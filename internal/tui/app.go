// Package tui is the terminal interface: a timer, the task list, analytics
// charts and the settings form.
package tui

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/export"
	"github.com/sadopc/focusflow/internal/store"
)

type Options struct {
	// ChartDays is how many days the daily chart shows.
	ChartDays int
	// ExportDir receives exported files. Defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	coord  *app.Coordinator
	opts   Options
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	// locked hides navigation while the focus lock is held.
	locked bool

	timer     timerModel
	tasks     tasksModel
	analytics analyticsModel
	settings  settingsModel

	data   app.View
	help   help.Model
	status string
	isErr  bool
}

func NewApp(c *app.Coordinator, opts Options) App {
	h := help.New()
	h.ShowAll = false

	a := App{
		coord:      c,
		opts:       opts,
		activeView: viewTimer,
		timer:      newTimerModel(c),
		tasks:      newTasksModel(c),
		analytics:  newAnalyticsModel(c, opts.ChartDays),
		settings:   newSettingsModel(c),
		help:       h,
	}
	a.sync()
	return a
}

func (a App) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sync pulls a fresh view from the coordinator into every child model.
func (a *App) sync() {
	a.data = a.coord.View()
	a.timer.data = a.data
	a.tasks.setData(a.data)
	a.analytics.setData(a.data)
	a.settings.data = a.data
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	next := model.(App)
	next.sync()
	return next, cmd
}

func (a App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return a, tea.Quit
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (form or picker) gets keys first.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		if handled, model, cmd := a.handleTimerKey(msg); handled {
			return model, cmd
		}

		if a.locked {
			switch {
			case key.Matches(msg, keys.Quit), key.Matches(msg, keys.Export),
				key.Matches(msg, keys.Tab), key.Matches(msg, keys.Tab1), key.Matches(msg, keys.Tab2),
				key.Matches(msg, keys.Tab3), key.Matches(msg, keys.Tab4):
				a.status = "Focus lock is on. Stop the timer (x) to leave."
				a.isErr = false
				return a, nil
			}
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewAnalytics
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, nil
		}

	case tickMsg:
		a.coord.Tick()
		return a, tickCmd()

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isErr = false
		a.exportPicking = false
		return a, nil

	case fullscreenMsg:
		a.locked = msg.locked
		if a.locked {
			a.activeView = viewTimer
			a.exportPicking = false
		}
		return a, nil

	case switchViewMsg:
		a.activeView = msg.view
		return a, nil
	}

	return a.updateActiveView(msg)
}

// handleTimerKey runs the timer controls that work from every view.
func (a App) handleTimerKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Stop):
		if a.coord.Stop() {
			return true, a, statusCmd("Timer stopped")
		}
		return true, a, nil
	case key.Matches(msg, keys.Pause):
		if !a.coord.TogglePause() {
			return true, a, nil
		}
		if a.coord.State().Paused {
			return true, a, statusCmd("Paused")
		}
		return true, a, statusCmd("Resumed")
	case key.Matches(msg, keys.Reset):
		a.coord.Reset()
		return true, a, statusCmd("Timer reset")
	case key.Matches(msg, keys.Start):
		if a.activeView == viewTimer || a.activeView == viewTasks {
			return false, a, nil
		}
		if err := a.coord.Start(nil); err != nil {
			return true, a, errorCmd("Start", err)
		}
		return true, a, statusCmd("Focus started")
	}
	return false, a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.picking
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewTasks:
		content = a.tasks.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("focusflow")

	if a.locked {
		banner := lockBannerStyle.Render("FOCUS LOCK")
		return headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", banner))
	}

	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Countdown indicator for views other than the timer
	timerInfo := ""
	st := a.data.Timer
	if st.Running && a.activeView != viewTimer {
		timerInfo = kindStyle(st.Kind).Render(" ● " + st.Clock())
		if st.Paused {
			timerInfo = warningStyle.Render(" ⏸ " + st.Clock())
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Sessions")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	dir := a.opts.ExportDir
	c := a.coord
	return func() tea.Msg {
		sessions, tasks, err := c.History(store.SessionFilter{})
		if err != nil {
			return statusMsg{text: "Export error: " + err.Error(), isError: true}
		}

		if dir == "" {
			dir, _ = os.UserHomeDir()
		}
		path := filepath.Join(dir, export.Filename(format, time.Now()))
		if err := export.ToFile(format, sessions, tasks, path); err != nil {
			return statusMsg{text: "Export error: " + err.Error(), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
