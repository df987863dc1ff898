package focus

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Commander runs the external programs focus mode relies on.
type Commander interface {
	// Run executes a command to completion and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches a long-lived command, such as a sleep inhibitor.
	Start(name string, args ...string) (Process, error)
	// LookPath reports whether a program is installed.
	LookPath(name string) (string, error)
}

// Process is a running command started by a Commander.
type Process interface {
	Stop() error
}

// ExecCommander calls actual programs through os/exec.
type ExecCommander struct{}

func (ExecCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return out, fmt.Errorf("exec %s: %s: %w", name, msg, err)
		}
		return out, fmt.Errorf("exec %s: %w", name, err)
	}
	return out, nil
}

func (ExecCommander) Start(name string, args ...string) (Process, error) {
	c := exec.Command(name, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	p := &execProcess{cmd: c, done: make(chan struct{})}
	go func() {
		p.err = c.Wait()
		close(p.done)
	}()
	return p, nil
}

func (ExecCommander) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *execProcess) Stop() error {
	select {
	case <-p.done:
		// Exited on its own; the inhibition was already gone.
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill %s: %w", p.cmd.Path, err)
	}
	<-p.done
	return nil
}
