package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/analytics"
	"github.com/sadopc/focusflow/internal/app"
)

type chartMode int

const (
	chartDaily chartMode = iota
	chartHourly
)

type analyticsModel struct {
	coord  *app.Coordinator
	width  int
	height int
	data   app.View

	days  int // days shown in the daily chart
	mode  chartMode
	chart barchart.Model
	// built is the data revision the chart was drawn from.
	built uint64
}

func newAnalyticsModel(c *app.Coordinator, days int) analyticsModel {
	if days < 1 {
		days = 14
	}
	return analyticsModel{
		coord: c,
		days:  days,
		chart: barchart.New(60, 12),
	}
}

func (a *analyticsModel) setSize(w, h int) {
	a.width = w
	a.height = h
	a.buildChart()
}

func (a *analyticsModel) setData(v app.View) {
	a.data = v
	if v.Revision != a.built {
		a.buildChart()
	}
}

func (a analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if a.mode == chartDaily {
				a.mode = chartHourly
			} else {
				a.mode = chartDaily
			}
			a.buildChart()
		}
	}
	return a, nil
}

func (a *analyticsModel) buildChart() {
	chartWidth := max(a.width-8, 20)
	chartHeight := 10
	if a.height > 30 {
		chartHeight = 14
	}

	a.chart = barchart.New(chartWidth, chartHeight)
	a.built = a.data.Revision

	var bars []barchart.BarData
	if a.mode == chartHourly {
		bars = hourlyBars(a.data.Analytics)
	} else {
		bars = dailyBars(a.data.Analytics, a.days, a.today())
	}

	a.chart.PushAll(bars)
	a.chart.Draw()
}

func (a analyticsModel) today() time.Time {
	if a.coord == nil {
		return time.Now()
	}
	return a.coord.Today()
}

func dailyBars(snap analytics.Snapshot, days int, today time.Time) []barchart.BarData {
	style := lipgloss.NewStyle().Foreground(colorWork)
	var bars []barchart.BarData
	for _, d := range snap.LastDays(days, today) {
		label := d.Date
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			label = t.Format("02")
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "pomodoros", Value: float64(d.Intervals), Style: style}},
		})
	}
	return bars
}

func hourlyBars(snap analytics.Snapshot) []barchart.BarData {
	style := lipgloss.NewStyle().Foreground(colorBreak)
	bars := make([]barchart.BarData, 0, len(snap.Hourly))
	for h, n := range snap.Hourly {
		bars = append(bars, barchart.BarData{
			Label:  fmt.Sprintf("%02d", h),
			Values: []barchart.BarValue{{Name: "pomodoros", Value: float64(n), Style: style}},
		})
	}
	return bars
}

func (a analyticsModel) view() string {
	w := a.width - 4

	dailyTab := inactiveTabStyle.Render("Daily")
	hourlyTab := inactiveTabStyle.Render("By hour")
	if a.mode == chartDaily {
		dailyTab = activeTabStyle.Render("Daily")
	} else {
		hourlyTab = activeTabStyle.Render("By hour")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, dailyTab, hourlyTab)

	label := fmt.Sprintf("last %d days", a.days)
	if a.mode == chartHourly {
		label = "completed pomodoros by start hour"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", modeTabs, "  ", mutedStyle.Render(label),
	)

	nav := mutedStyle.Render("  ←/→: switch chart")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", a.renderSummary(), "", a.chart.View(), "", nav,
		),
	)
}

func (a analyticsModel) renderSummary() string {
	snap := a.data.Analytics
	today := snap.Today(a.today())

	peak := "-"
	if h := snap.PeakHour(); h >= 0 {
		peak = fmt.Sprintf("%02d:00", h)
	}

	stat := func(label, value string) string {
		return lipgloss.NewStyle().Width(24).Render(mutedStyle.Render(label) + " " + titleStyle.Render(value))
	}

	rows := []string{
		stat("Today", fmt.Sprintf("%d · %s", today.Intervals, formatHours(today.FocusSeconds))),
		stat("Pomodoros", fmt.Sprintf("%d", snap.TotalIntervals)) +
			stat("Focus", formatHours(snap.TotalFocusSeconds)) +
			stat("Tasks done", fmt.Sprintf("%d", snap.CompletedTasks)),
		stat("Streak", fmt.Sprintf("%d days", snap.CurrentStreak)) +
			stat("Best", fmt.Sprintf("%d days", snap.LongestStreak)) +
			stat("Peak hour", peak),
	}
	if snap.TotalIntervals == 0 {
		rows = append(rows, mutedStyle.Render("No completed pomodoros in this window yet"))
	}
	return strings.Join(rows, "\n")
}
