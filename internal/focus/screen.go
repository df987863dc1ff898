package focus

import "sync"

// ScreenLock tracks the fullscreen lock. The terminal UI subscribes with
// OnChange and hides its navigation while the lock is held.
type ScreenLock struct {
	mu       sync.Mutex
	locked   bool
	onChange func(locked bool)
}

// OnChange registers the handler called after every actual state change.
func (l *ScreenLock) OnChange(fn func(locked bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Set moves the lock to locked and reports whether anything changed.
func (l *ScreenLock) Set(locked bool) bool {
	l.mu.Lock()
	if l.locked == locked {
		l.mu.Unlock()
		return false
	}
	l.locked = locked
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn(locked)
	}
	return true
}

func (l *ScreenLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}
