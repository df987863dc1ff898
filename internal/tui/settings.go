package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/criterio"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/settings"
)

type settingsModel struct {
	coord  *app.Coordinator
	width  int
	height int
	data   app.View

	formActive bool
	form       *huh.Form
	fields     *settingsForm
}

// settingsForm holds the form values behind a pointer so they survive value
// copies of the model.
type settingsForm struct {
	work       string
	shortBreak string
	longBreak  string
	every      string
	sounds     bool
	music      bool
	sites      string
}

func newSettingsModel(c *app.Coordinator) settingsModel {
	return settingsModel{
		coord:  c,
		fields: &settingsForm{},
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	cur := s.data.Settings
	*s.fields = settingsForm{
		work:       strconv.Itoa(cur.WorkMinutes),
		shortBreak: strconv.Itoa(cur.ShortBreakMinutes),
		longBreak:  strconv.Itoa(cur.LongBreakMinutes),
		every:      strconv.Itoa(cur.IntervalsUntilLongBreak),
		sounds:     cur.EnableSounds,
		music:      cur.EnableMusic,
		sites:      settings.FormatSites(cur.BlockedSites),
	}
	f := s.fields

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Validate(validatePositive).Value(&f.work),
			huh.NewInput().Title("Short break (min)").Validate(validatePositive).Value(&f.shortBreak),
			huh.NewInput().Title("Long break (min)").Validate(validatePositive).Value(&f.longBreak),
			huh.NewInput().Title("Pomodoros before long break").Validate(validatePositive).Value(&f.every),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewConfirm().Title("Sounds").Description("Ring the terminal bell with notifications").Value(&f.sounds),
			huh.NewConfirm().Title("Music").Value(&f.music),
			huh.NewText().Title("Blocked sites").Description("One hostname per line").Validate(validateSites).Value(&f.sites),
		).Title("Focus"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}
	return s, cmd
}

// save applies only the fields that changed.
func (s settingsModel) save() tea.Cmd {
	next, err := s.fields.settings(s.data.Settings)
	if err != nil {
		return errorCmd("Settings", err)
	}

	u := settings.Diff(s.data.Settings, next)
	if u.Empty() {
		return statusCmd("Settings unchanged")
	}
	if err := s.coord.UpdateSettings(u); err != nil {
		return errorCmd("Settings", describeFieldErrors(err))
	}
	return statusCmd("Settings saved")
}

func (f *settingsForm) settings(base settings.Settings) (settings.Settings, error) {
	ints := []struct {
		raw string
		dst *int
	}{
		{f.work, &base.WorkMinutes},
		{f.shortBreak, &base.ShortBreakMinutes},
		{f.longBreak, &base.LongBreakMinutes},
		{f.every, &base.IntervalsUntilLongBreak},
	}
	for _, in := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(in.raw))
		if err != nil {
			return base, fmt.Errorf("%q is not a number", in.raw)
		}
		*in.dst = n
	}
	base.EnableSounds = f.sounds
	base.EnableMusic = f.music
	base.BlockedSites = settings.CleanSites(settings.ParseSites(f.sites))
	return base, nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

func validateSites(s string) error {
	for _, site := range settings.CleanSites(settings.ParseSites(s)) {
		if err := settings.ValidateHost(site); err != nil {
			return err
		}
	}
	return nil
}

// describeFieldErrors flattens validation errors into one status line.
func describeFieldErrors(err error) error {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s %v", fe.Field, fe.Err))
	}
	return errors.New(strings.Join(parts, "; "))
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	cur := s.data.Settings
	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(30).Render(label), titleStyle.Render(value))
	}

	sites := "none"
	if len(cur.BlockedSites) > 0 {
		sites = strings.Join(cur.BlockedSites, ", ")
	}

	rows := []string{
		title,
		"",
		row("Work", fmt.Sprintf("%d min", cur.WorkMinutes)),
		row("Short break", fmt.Sprintf("%d min", cur.ShortBreakMinutes)),
		row("Long break", fmt.Sprintf("%d min", cur.LongBreakMinutes)),
		row("Pomodoros before long break", strconv.Itoa(cur.IntervalsUntilLongBreak)),
		row("Sounds", onOff(cur.EnableSounds)),
		row("Music", onOff(cur.EnableMusic)),
		row("Blocked sites", sites),
		"",
		mutedStyle.Render("Press enter to edit settings"),
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
