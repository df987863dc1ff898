package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/store"
)

// tasksModel lists active tasks in order followed by completed ones. The
// cursor runs over both lists.
type tasksModel struct {
	coord  *app.Coordinator
	width  int
	height int
	data   app.View
	cursor int

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 while creating

	// Form field pointers (survive value copies)
	formTitle    *string
	formEstimate *string
}

func newTasksModel(c *app.Coordinator) tasksModel {
	title, estimate := "", "1"
	return tasksModel{
		coord:        c,
		formTitle:    &title,
		formEstimate: &estimate,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *tasksModel) setData(v app.View) {
	m.data = v
	n := len(v.Tasks) + len(v.Done)
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// selected returns the task under the cursor and whether it is still active.
func (m tasksModel) selected() (*store.Task, bool) {
	if m.cursor < len(m.data.Tasks) {
		return &m.data.Tasks[m.cursor], true
	}
	i := m.cursor - len(m.data.Tasks)
	if i < len(m.data.Done) {
		return &m.data.Done[i], false
	}
	return nil, false
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	total := len(m.data.Tasks) + len(m.data.Done)
	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < total-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		return m.showForm(nil)
	case key.Matches(keyMsg, keys.Edit):
		if t, _ := m.selected(); t != nil {
			return m.showForm(t)
		}
	case key.Matches(keyMsg, keys.Complete):
		if t, active := m.selected(); t != nil {
			if err := m.coord.SetTaskCompleted(t.ID, active); err != nil {
				return m, errorCmd("Update task", err)
			}
			if active {
				return m, statusCmd(fmt.Sprintf("Completed %q", t.Title))
			}
			return m, statusCmd(fmt.Sprintf("Reopened %q", t.Title))
		}
	case key.Matches(keyMsg, keys.Delete):
		if t, _ := m.selected(); t != nil {
			if err := m.coord.DeleteTask(t.ID); err != nil {
				return m, errorCmd("Delete task", err)
			}
			return m, statusCmd(fmt.Sprintf("Deleted %q", t.Title))
		}
	case key.Matches(keyMsg, keys.MoveUp), key.Matches(keyMsg, keys.MoveDown):
		t, active := m.selected()
		if t == nil || !active {
			return m, nil
		}
		delta := 1
		if key.Matches(keyMsg, keys.MoveUp) {
			delta = -1
		}
		if err := m.coord.MoveTask(t.ID, delta); err != nil {
			return m, errorCmd("Move task", err)
		}
		m.cursor = min(max(m.cursor+delta, 0), len(m.data.Tasks)-1)
	case key.Matches(keyMsg, keys.Start), key.Matches(keyMsg, keys.Enter):
		t, active := m.selected()
		if t == nil || !active {
			return m, nil
		}
		if err := m.coord.Start(&t.ID); err != nil {
			return m, errorCmd("Start", err)
		}
		return m, tea.Batch(
			statusCmd("Focus started on "+t.Title),
			func() tea.Msg { return switchViewMsg{view: viewTimer} },
		)
	}
	return m, nil
}

func (m tasksModel) showForm(t *store.Task) (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formEstimate = "1"
	m.editingID = 0
	if t != nil {
		*m.formTitle = t.Title
		*m.formEstimate = strconv.Itoa(t.EstimatedPomodoros)
		m.editingID = t.ID
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Validate(validateTitle).Value(m.formTitle),
			huh.NewInput().Title("Estimated pomodoros").Validate(validateEstimate).Value(m.formEstimate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.saveForm()
	}
	return m, cmd
}

func (m tasksModel) saveForm() tea.Cmd {
	title := strings.TrimSpace(*m.formTitle)
	estimate, err := strconv.Atoi(strings.TrimSpace(*m.formEstimate))
	if err != nil {
		return errorCmd("Estimate", err)
	}

	if m.editingID == 0 {
		if _, err := m.coord.AddTask(title, estimate); err != nil {
			return errorCmd("Add task", err)
		}
		return statusCmd(fmt.Sprintf("Added %q", title))
	}

	err = m.coord.UpdateTask(m.editingID, store.TaskUpdate{Title: &title, EstimatedPomodoros: &estimate})
	if err != nil {
		return errorCmd("Update task", err)
	}
	return statusCmd(fmt.Sprintf("Updated %q", title))
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func validateEstimate(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.editingID != 0 {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	if len(m.data.Tasks) == 0 && len(m.data.Done) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s %-36s %s", "", "Task", "Pomodoros")))

	activeID := int64(0)
	if m.data.ActiveTask != nil {
		activeID = m.data.ActiveTask.ID
	}

	for i, t := range m.data.Tasks {
		marker := " "
		if t.ID == activeID {
			marker = kindStyle(store.SessionWork).Render("●")
		}
		rows = append(rows, m.renderRow(i, marker, t, normalItemStyle))
	}

	if len(m.data.Done) > 0 {
		rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  Completed (%d)", len(m.data.Done))))
		for i, t := range m.data.Done {
			rows = append(rows, m.renderRow(len(m.data.Tasks)+i, successStyle.Render("✓"), t, doneItemStyle))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: done/undo  d: delete  K/J: move  enter: start"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderRow(i int, marker string, t store.Task, style lipgloss.Style) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}
	return style.Render(cursor) + marker + " " +
		style.Render(fmt.Sprintf("  %-36s", truncate(t.Title, 36))) +
		renderEstimate(t)
}

// renderEstimate draws completed pomodoros against the estimate, with any
// overrun shown in the warning color.
func renderEstimate(t store.Task) string {
	if t.EstimatedPomodoros > 12 {
		return mutedStyle.Render(fmt.Sprintf("%d/%d", t.CompletedPomodoros, t.EstimatedPomodoros))
	}
	done := min(t.CompletedPomodoros, t.EstimatedPomodoros)
	left := t.EstimatedPomodoros - done
	s := successStyle.Render(strings.Repeat("●", done)) + mutedStyle.Render(strings.Repeat("○", left))
	if over := t.CompletedPomodoros - t.EstimatedPomodoros; over > 0 {
		s += warningStyle.Render(fmt.Sprintf(" +%d", over))
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
