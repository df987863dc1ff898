package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

var csvHeader = []string{"ID", "Task", "Type", "Start", "End", "Duration (s)", "Duration", "Completed"}

func ToCSV(sessions []store.Session, tasks map[int64]*store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, sessions, tasks); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes one row per session after a header row.
func WriteCSV(out io.Writer, sessions []store.Session, tasks map[int64]*store.Task) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		row := []string{
			strconv.FormatInt(s.ID, 10),
			taskTitle(s.TaskID, tasks),
			string(s.Type),
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			strconv.FormatInt(s.Duration, 10),
			formatDuration(s.Duration),
			strconv.FormatBool(s.Completed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// taskTitle resolves a session's task. Sessions without a task get an empty
// title; tasks deleted since the session was recorded show as "Unknown".
func taskTitle(id *int64, tasks map[int64]*store.Task) string {
	if id == nil {
		return ""
	}
	if t, ok := tasks[*id]; ok {
		return t.Title
	}
	return "Unknown"
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
