package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

type jsonExport struct {
	ExportedAt   string        `json:"exported_at"`
	Count        int           `json:"count"`
	FocusSeconds int64         `json:"focus_seconds"`
	Sessions     []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          int64  `json:"id"`
	Task        string `json:"task,omitempty"`
	TaskID      *int64 `json:"task_id,omitempty"`
	Type        string `json:"type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Completed   bool   `json:"completed"`
}

func ToJSON(sessions []store.Session, tasks map[int64]*store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, sessions, tasks, time.Now()); err != nil {
		return err
	}
	return f.Close()
}

// WriteJSON writes an indented document with the sessions and a completed
// focus total.
func WriteJSON(out io.Writer, sessions []store.Session, tasks map[int64]*store.Task, exportedAt time.Time) error {
	export := jsonExport{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		if s.Type == store.SessionWork && s.Completed {
			export.FocusSeconds += s.Duration
		}

		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Task:        taskTitle(s.TaskID, tasks),
			TaskID:      s.TaskID,
			Type:        string(s.Type),
			StartTime:   s.StartTime.Local().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: s.Duration,
			Duration:    formatDuration(s.Duration),
			Completed:   s.Completed,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
