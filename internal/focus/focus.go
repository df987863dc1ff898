// Package focus implements the side effects of focus mode: site blocking, sleep
// inhibition, the fullscreen lock and desktop notifications. Every operation is
// best-effort and reports its outcome as a Result instead of failing the caller.
package focus

import (
	"errors"
)

// ErrUnsupported is reported when a capability has no implementation on this platform.
var ErrUnsupported = errors.New("not supported on this platform")

// Capability names, used as log fields and status keys.
const (
	CapBlockSites       = "block_sites"
	CapUnblockSites     = "unblock_sites"
	CapFullscreenLock   = "fullscreen_lock"
	CapFullscreenUnlock = "fullscreen_unlock"
	CapPreventSleep     = "prevent_sleep"
	CapAllowSleep       = "allow_sleep"
	CapShowNotification = "notification"
)

// Result is the outcome of a capability call.
type Result struct {
	Success bool
	Err     error
}

func OK() Result { return Result{Success: true} }

func Fail(err error) Result { return Result{Success: false, Err: err} }

// From converts a plain error into a Result.
func From(err error) Result {
	if err != nil {
		return Fail(err)
	}
	return OK()
}

func (r Result) Error() string {
	if r.Success {
		return ""
	}
	if r.Err == nil {
		return "failed"
	}
	return r.Err.Error()
}

// Capabilities is the set of side effects the timer can ask for.
type Capabilities interface {
	BlockSites() Result
	UnblockSites() Result
	EnableFullscreenLock() Result
	DisableFullscreenLock() Result
	PreventSleep() Result
	AllowSleep() Result
	ShowNotification(title, body string) Result
}

// Nop is a Capabilities that does nothing and always succeeds.
type Nop struct{}

func (Nop) BlockSites() Result { return OK() }
func (Nop) UnblockSites() Result { return OK() }
func (Nop) EnableFullscreenLock() Result { return OK() }
func (Nop) DisableFullscreenLock() Result { return OK() }
func (Nop) PreventSleep() Result { return OK() }
func (Nop) AllowSleep() Result { return OK() }
func (Nop) ShowNotification(title, body string) Result { return OK() }
