// Package analytics reduces session history into productivity statistics.
// Everything here is a pure function of its inputs.
package analytics

import (
	"sort"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

// DefaultWindowDays is the lookback used when none is configured.
const DefaultWindowDays = 30

const dateLayout = "2006-01-02"

// DayStat is the completed work of one calendar day.
type DayStat struct {
	Date         string // YYYY-MM-DD
	Intervals    int
	FocusSeconds int64
}

// Snapshot is the aggregated view of a session history.
type Snapshot struct {
	TotalIntervals    int
	TotalFocusSeconds int64
	CompletedTasks    int
	CurrentStreak     int
	LongestStreak     int
	// Daily holds only days with completed work, oldest first.
	Daily  []DayStat
	Hourly [24]int
}

// Compute aggregates completed work sessions. Calendar dates and hours are taken
// in today's location. completedTasks is passed through as the task total.
func Compute(sessions []store.Session, completedTasks int, today time.Time) Snapshot {
	loc := today.Location()
	snap := Snapshot{CompletedTasks: completedTasks}

	buckets := make(map[string]*DayStat)
	for _, s := range sessions {
		if s.Type != store.SessionWork || !s.Completed {
			continue
		}
		local := s.StartTime.In(loc)
		date := local.Format(dateLayout)

		b, ok := buckets[date]
		if !ok {
			b = &DayStat{Date: date}
			buckets[date] = b
		}
		b.Intervals++
		b.FocusSeconds += s.Duration

		snap.Hourly[local.Hour()]++
		snap.TotalIntervals++
		snap.TotalFocusSeconds += s.Duration
	}

	snap.Daily = make([]DayStat, 0, len(buckets))
	for _, b := range buckets {
		snap.Daily = append(snap.Daily, *b)
	}
	sort.Slice(snap.Daily, func(i, j int) bool {
		return snap.Daily[i].Date < snap.Daily[j].Date
	})

	days := make([]int, len(snap.Daily))
	for i, d := range snap.Daily {
		days[i] = dayNumber(d.Date)
	}
	snap.CurrentStreak = currentStreak(days, dayNumber(today.In(loc).Format(dateLayout)))
	snap.LongestStreak = max(longestStreak(days), snap.CurrentStreak)
	return snap
}

// currentStreak counts consecutive days ending at today. days is sorted ascending.
func currentStreak(days []int, today int) int {
	if len(days) == 0 || days[len(days)-1] != today {
		return 0
	}
	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if days[i]-days[i-1] != 1 {
			break
		}
		streak++
	}
	return streak
}

// longestStreak finds the longest run of consecutive days. days is sorted ascending.
func longestStreak(days []int) int {
	longest, run := 0, 0
	for i, d := range days {
		if i > 0 && d-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// dayNumber maps a calendar date to a day count, so that consecutive dates
// differ by exactly one regardless of daylight-saving shifts.
func dayNumber(date string) int {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}
	return int(t.Unix() / 86400)
}

// Window returns the half-open range covering the last days calendar days,
// today included, in now's location.
func Window(now time.Time, days int) (from, to time.Time) {
	if days < 1 {
		days = 1
	}
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -(days - 1)), midnight.AddDate(0, 0, 1)
}

// LastDays returns one entry per calendar day for the n days ending today,
// oldest first, with zero entries for days without work.
func (s Snapshot) LastDays(n int, today time.Time) []DayStat {
	byDate := make(map[string]DayStat, len(s.Daily))
	for _, d := range s.Daily {
		byDate[d.Date] = d
	}
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	out := make([]DayStat, 0, n)
	for i := n - 1; i >= 0; i-- {
		date := midnight.AddDate(0, 0, -i).Format(dateLayout)
		if stat, ok := byDate[date]; ok {
			out = append(out, stat)
		} else {
			out = append(out, DayStat{Date: date})
		}
	}
	return out
}

// Today returns today's statistics, or a zero entry.
func (s Snapshot) Today(today time.Time) DayStat {
	date := today.Format(dateLayout)
	for _, d := range s.Daily {
		if d.Date == date {
			return d
		}
	}
	return DayStat{Date: date}
}

// PeakHour returns the hour with the most completed intervals, or -1 when there are none.
func (s Snapshot) PeakHour() int {
	peak, best := -1, 0
	for h, n := range s.Hourly {
		if n > best {
			peak, best = h, n
		}
	}
	return peak
}
