package timer

import (
	"fmt"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

type Phase int

const (
	Idle Phase = iota
	Running
	Paused
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// TimerState is a snapshot of the single active countdown.
type TimerState struct {
	Running   bool
	Paused    bool
	Remaining int // seconds
	Total     int // seconds
	Kind      store.SessionType
	// Streak counts work intervals completed since the last reset.
	Streak    int
	TaskID    *int64
	StartedAt *time.Time
}

func (s TimerState) Phase() Phase {
	switch {
	case !s.Running:
		return Idle
	case s.Paused:
		return Paused
	default:
		return Running
	}
}

// Progress returns the elapsed fraction of the interval, from 0 to 1.
func (s TimerState) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Total-s.Remaining) / float64(s.Total)
	return min(max(p, 0), 1)
}

// Clock renders the remaining time as MM:SS, or H:MM:SS past an hour.
func (s TimerState) Clock() string {
	return FormatClock(s.Remaining)
}

func FormatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h, m, sec := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
