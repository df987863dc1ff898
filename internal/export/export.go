// Package export writes session history to CSV or JSON files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/focusflow/internal/store"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Filename returns a timestamped file name such as focusflow-20250310-090000.csv.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("focusflow-%s.%s", now.Format("20060102-150405"), f)
}

// ToFile writes sessions to path in the given format.
func ToFile(f Format, sessions []store.Session, tasks map[int64]*store.Task, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(sessions, tasks, path)
	case FormatJSON:
		return ToJSON(sessions, tasks, path)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
