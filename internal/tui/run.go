package tui

import (
	"context"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/focusflow/internal/app"
	"github.com/sadopc/focusflow/internal/focus"
)

// Run starts the program on the alternate screen and blocks until it exits or
// ctx is cancelled. A non-nil sys drives the focus lock display, and its
// notification bell shares the program's terminal output while it runs.
func Run(ctx context.Context, c *app.Coordinator, sys *focus.System, opts Options) error {
	out := &terminalOutput{File: os.Stdout}
	p := tea.NewProgram(NewApp(c, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)

	if sys != nil {
		prev := sys.SetBell(out)
		defer sys.SetBell(prev)

		screen := sys.Screen()
		screen.OnChange(func(locked bool) {
			p.Send(fullscreenMsg{locked: locked})
		})
		defer screen.OnChange(nil)
	}

	_, err := p.Run()
	return err
}

// terminalOutput serializes writes to the terminal. Frames from the renderer
// and bells from the notifier goroutine each land whole.
type terminalOutput struct {
	*os.File

	mu sync.Mutex
}

func (o *terminalOutput) Write(b []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.File.Write(b)
}

func (o *terminalOutput) WriteString(s string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.File.WriteString(s)
}

var _ io.StringWriter = (*terminalOutput)(nil)
