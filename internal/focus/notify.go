package focus

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Notifier shows desktop notifications. Platforms without a notification
// program are silently skipped.
type Notifier struct {
	GOOS string
	Cmd  Commander
	// Bell receives a BEL character when Sound reports true. Replace it with
	// SetBell once the notifier is in use.
	Bell  io.Writer
	Sound func() bool

	mu sync.Mutex
}

// SetBell swaps the bell writer and returns the previous one.
func (n *Notifier) SetBell(w io.Writer) io.Writer {
	n.mu.Lock()
	defer n.mu.Unlock()
	prev := n.Bell
	n.Bell = w
	return prev
}

func (n *Notifier) Show(title, body string) error {
	n.mu.Lock()
	bell := n.Bell
	n.mu.Unlock()
	if bell != nil && n.Sound != nil && n.Sound() {
		_, _ = io.WriteString(bell, "\a")
	}

	switch n.GOOS {
	case "linux":
		if _, err := n.Cmd.LookPath("notify-send"); err != nil {
			return nil
		}
		_, err := n.Cmd.Run(context.Background(), "notify-send", "--app-name=focusflow", title, body)
		return err
	case "darwin":
		script := `display notification "` + escapeAppleScript(body) + `" with title "` + escapeAppleScript(title) + `"`
		_, err := n.Cmd.Run(context.Background(), "osascript", "-e", script)
		return err
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
