package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

func sampleData() ([]store.Session, map[int64]*store.Task) {
	now := time.Now().UTC()
	end := now
	tid := int64(10)
	gone := int64(77)

	sessions := []store.Session{
		{
			ID:        1,
			TaskID:    &tid,
			StartTime: now.Add(-25 * time.Minute),
			EndTime:   &end,
			Duration:  1500,
			Type:      store.SessionWork,
			Completed: true,
		},
		{
			ID:        2,
			StartTime: now.Add(-5 * time.Minute),
			EndTime:   &end,
			Duration:  300,
			Type:      store.SessionShortBreak,
			Completed: true,
		},
		{
			ID:        3,
			TaskID:    &gone,
			StartTime: now.Add(-10 * time.Minute),
			EndTime:   nil,
			Duration:  600,
			Type:      store.SessionWork,
			Completed: false,
		},
	}

	tasks := map[int64]*store.Task{
		10: {ID: 10, Title: "Write report", EstimatedPomodoros: 3},
	}

	return sessions, tasks
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func readJSON(t *testing.T, path string) jsonExport {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return result
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sessions, tasks, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "1" {
		t.Fatalf("ID = %q, want 1", row[0])
	}
	if row[1] != "Write report" {
		t.Fatalf("Task = %q, want Write report", row[1])
	}
	if row[2] != "work" {
		t.Fatalf("Type = %q, want work", row[2])
	}
	if row[5] != "1500" {
		t.Fatalf("Duration (s) = %q, want 1500", row[5])
	}
	if row[6] != "00:25:00" {
		t.Fatalf("Duration = %q, want 00:25:00", row[6])
	}
	if row[7] != "true" {
		t.Fatalf("Completed = %q, want true", row[7])
	}

	breakRow := records[2]
	if breakRow[1] != "" {
		t.Fatalf("break should have no task, got %q", breakRow[1])
	}
	if breakRow[2] != "short-break" {
		t.Fatalf("Type = %q, want short-break", breakRow[2])
	}

	stopped := records[3]
	if stopped[1] != "Unknown" {
		t.Fatalf("deleted task should show Unknown, got %q", stopped[1])
	}
	if stopped[4] != "" {
		t.Fatalf("missing end time should be empty, got %q", stopped[4])
	}
	if stopped[7] != "false" {
		t.Fatalf("Completed = %q, want false", stopped[7])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestWriteCSVSpecialCharacters(t *testing.T) {
	tid := int64(1)
	sessions := []store.Session{
		{ID: 1, TaskID: &tid, StartTime: time.Now(), Duration: 60, Type: store.SessionWork},
	}
	tasks := map[int64]*store.Task{
		1: {ID: 1, Title: `Review "final", then ship`},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sessions, tasks); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][1] != `Review "final", then ship` {
		t.Fatalf("task title mangled: %q", records[1][1])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sessions, tasks, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	result := readJSON(t, path)
	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(result.Sessions))
	}
	if result.FocusSeconds != 1500 {
		t.Fatalf("focus_seconds = %d, want 1500 (only completed work)", result.FocusSeconds)
	}

	s := result.Sessions[0]
	if s.Task != "Write report" {
		t.Fatalf("Task = %q, want Write report", s.Task)
	}
	if s.TaskID == nil || *s.TaskID != 10 {
		t.Fatalf("TaskID = %v, want 10", s.TaskID)
	}
	if s.Duration != "00:25:00" {
		t.Fatalf("Duration = %q, want 00:25:00", s.Duration)
	}
	if !s.Completed {
		t.Fatal("first session should be completed")
	}

	if result.Sessions[1].TaskID != nil {
		t.Fatal("break session should have no task_id")
	}
	if result.Sessions[2].EndTime != "" {
		t.Fatalf("missing end_time should be empty, got %q", result.Sessions[2].EndTime)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	result := readJSON(t, path)
	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Sessions != nil {
		t.Fatal("sessions should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestWriteJSONTimestamps(t *testing.T) {
	sessions, tasks := sampleData()
	exportedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sessions, tasks, exportedAt); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatal("JSON should be indented")
	}

	var result jsonExport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.ExportedAt != "2025-03-10T09:00:00Z" {
		t.Fatalf("exported_at = %q", result.ExportedAt)
	}
	for _, s := range result.Sessions {
		if _, err := time.Parse(time.RFC3339, s.StartTime); err != nil {
			t.Fatalf("start_time is not valid RFC3339: %q", s.StartTime)
		}
	}
}

// ============================================================
// Formats
// ============================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{" JSON ", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFromPathAndFilename(t *testing.T) {
	if got := FormatFromPath("out/history.JSON"); got != FormatJSON {
		t.Fatalf("FormatFromPath(.JSON) = %q", got)
	}
	if got := FormatFromPath("history.txt"); got != FormatCSV {
		t.Fatalf("FormatFromPath(.txt) = %q", got)
	}

	now := time.Date(2025, 3, 10, 9, 5, 7, 0, time.UTC)
	if got := Filename(FormatJSON, now); got != "focusflow-20250310-090507.json" {
		t.Fatalf("Filename = %q", got)
	}
}

func TestToFile(t *testing.T) {
	sessions, tasks := sampleData()
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "a.csv")
	if err := ToFile(FormatCSV, sessions, tasks, csvPath); err != nil {
		t.Fatal(err)
	}
	if len(readCSV(t, csvPath)) != 4 {
		t.Fatal("csv export should have 4 rows")
	}

	jsonPath := filepath.Join(dir, "a.json")
	if err := ToFile(FormatJSON, sessions, tasks, jsonPath); err != nil {
		t.Fatal(err)
	}
	if readJSON(t, jsonPath).Count != 3 {
		t.Fatal("json export should have 3 sessions")
	}

	if err := ToFile(Format("xml"), sessions, tasks, filepath.Join(dir, "a.xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{1500, "00:25:00"},
		{3661, "01:01:01"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
