package tui

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestTerminalOutputKeepsWritesWhole(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "tty"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	out := &terminalOutput{File: f}
	frame := strings.Repeat("x", 4096) + "\n"

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := out.WriteString(frame); err != nil {
				t.Errorf("write frame: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := out.Write([]byte("\a")); err != nil {
				t.Errorf("write bell: %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := string(data)
	if c := strings.Count(got, frame); c != n {
		t.Errorf("whole frames = %d, want %d", c, n)
	}
	if c := strings.Count(got, "\a"); c != n {
		t.Errorf("bells = %d, want %d", c, n)
	}
}
