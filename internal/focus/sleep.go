package focus

import (
	"fmt"
	"sync"
)

// SleepInhibitor keeps the display awake by holding a platform inhibitor
// process for as long as sleep is prevented.
type SleepInhibitor struct {
	GOOS string
	Cmd  Commander

	mu   sync.Mutex
	held Process
}

// Prevent starts the inhibitor. Calling it while already held is a no-op.
func (s *SleepInhibitor) Prevent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held != nil {
		return nil
	}

	name, args, err := inhibitCommand(s.GOOS)
	if err != nil {
		return err
	}
	if _, err := s.Cmd.LookPath(name); err != nil {
		return fmt.Errorf("%s not found: %w", name, ErrUnsupported)
	}
	p, err := s.Cmd.Start(name, args...)
	if err != nil {
		return err
	}
	s.held = p
	return nil
}

// Allow releases the inhibitor. Calling it while not held is a no-op.
func (s *SleepInhibitor) Allow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held == nil {
		return nil
	}
	err := s.held.Stop()
	s.held = nil
	return err
}

func (s *SleepInhibitor) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held != nil
}

func inhibitCommand(goos string) (string, []string, error) {
	switch goos {
	case "linux":
		return "systemd-inhibit", []string{
			"--what=idle:sleep",
			"--who=focusflow",
			"--why=Focus session in progress",
			"--mode=block",
			"sleep", "infinity",
		}, nil
	case "darwin":
		return "caffeinate", []string{"-d", "-i"}, nil
	default:
		return "", nil, ErrUnsupported
	}
}
