package store

import "time"

// SessionType is the kind of interval a session recorded.
type SessionType string

const (
	SessionWork       SessionType = "work"
	SessionShortBreak SessionType = "short-break"
	SessionLongBreak  SessionType = "long-break"
)

// IsBreak reports whether t is one of the break kinds.
func (t SessionType) IsBreak() bool {
	return t == SessionShortBreak || t == SessionLongBreak
}

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	return t == SessionWork || t.IsBreak()
}

func (t SessionType) Label() string {
	switch t {
	case SessionWork:
		return "Focus"
	case SessionShortBreak:
		return "Short Break"
	case SessionLongBreak:
		return "Long Break"
	}
	return string(t)
}

type Task struct {
	ID                 int64
	Title              string
	EstimatedPomodoros int
	CompletedPomodoros int
	Completed          bool
	OrderIndex         int
	CreatedAt          time.Time
}

// Session is a finished interval. Sessions are written once and never updated.
type Session struct {
	ID        int64
	TaskID    *int64
	StartTime time.Time
	EndTime   *time.Time
	Duration  int64 // seconds
	Type      SessionType
	Completed bool
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// TaskUpdate carries the fields to change; nil fields are left alone.
type TaskUpdate struct {
	Title              *string
	EstimatedPomodoros *int
	CompletedPomodoros *int
	Completed          *bool
}

// SessionFilter is used to filter sessions in queries. From is inclusive, To is exclusive.
type SessionFilter struct {
	From          *time.Time
	To            *time.Time
	TaskID        *int64
	CompletedOnly bool
	Limit         int
}
