// Package focustest provides fakes for the focus package.
package focustest

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/sadopc/focusflow/internal/focus"
)

// Call is one recorded capability invocation.
type Call struct {
	Name  string
	Title string
	Body  string
}

// Recorder is a focus.Capabilities that records every call. Capabilities named
// in Failures return a failed Result with that error.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	Failures map[string]error
}

var _ focus.Capabilities = (*Recorder)(nil)

func (r *Recorder) record(c Call) focus.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if err, ok := r.Failures[c.Name]; ok {
		return focus.Fail(err)
	}
	return focus.OK()
}

// Fail makes every later call of the named capability fail.
func (r *Recorder) Fail(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Failures == nil {
		r.Failures = make(map[string]error)
	}
	if err == nil {
		err = errors.New(name + " failed")
	}
	r.Failures[name] = err
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Names returns the capability names in call order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.calls))
	for i, c := range r.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many times the named capability was called.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Notifications returns the recorded notification calls.
func (r *Recorder) Notifications() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Name == focus.CapShowNotification {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) BlockSites() focus.Result {
	return r.record(Call{Name: focus.CapBlockSites})
}

func (r *Recorder) UnblockSites() focus.Result {
	return r.record(Call{Name: focus.CapUnblockSites})
}

func (r *Recorder) EnableFullscreenLock() focus.Result {
	return r.record(Call{Name: focus.CapFullscreenLock})
}

func (r *Recorder) DisableFullscreenLock() focus.Result {
	return r.record(Call{Name: focus.CapFullscreenUnlock})
}

func (r *Recorder) PreventSleep() focus.Result {
	return r.record(Call{Name: focus.CapPreventSleep})
}

func (r *Recorder) AllowSleep() focus.Result {
	return r.record(Call{Name: focus.CapAllowSleep})
}

func (r *Recorder) ShowNotification(title, body string) focus.Result {
	return r.record(Call{Name: focus.CapShowNotification, Title: title, Body: body})
}

// Command is one recorded Commander invocation.
type Command struct {
	Name  string
	Args  []string
	Start bool
}

// Commander is a focus.Commander that records commands instead of running them.
// Names listed in Missing fail LookPath; Errors maps program names to the error
// Run or Start returns.
type Commander struct {
	mu       sync.Mutex
	Commands []Command
	Missing  map[string]bool
	Errors   map[string]error
	Stopped  int
}

var _ focus.Commander = (*Commander)(nil)

func (c *Commander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Commands = append(c.Commands, Command{Name: name, Args: args})
	return nil, c.Errors[name]
}

func (c *Commander) Start(name string, args ...string) (focus.Process, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Commands = append(c.Commands, Command{Name: name, Args: args, Start: true})
	if err := c.Errors[name]; err != nil {
		return nil, err
	}
	return &process{c: c}, nil
}

func (c *Commander) LookPath(name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Missing[name] {
		return "", errors.New(name + ": executable file not found")
	}
	return "/usr/bin/" + name, nil
}

// Recorded returns a copy of the recorded commands.
func (c *Commander) Recorded() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.Commands)
}

// StopCount returns how many started processes were stopped.
func (c *Commander) StopCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Stopped
}

type process struct {
	c *Commander
}

func (p *process) Stop() error {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.c.Stopped++
	return nil
}
