package focus

import (
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Options configures a System.
type Options struct {
	GOOS       string
	HostsPath  string
	RedirectIP string
	Commander  Commander
	Bell       io.Writer
	Logger     zerolog.Logger
}

// State reports which parts of focus mode are engaged.
type State struct {
	SitesBlocked   bool
	SleepPrevented bool
	Fullscreen     bool
}

// System is the Capabilities implementation backed by the operating system.
type System struct {
	hosts    *HostsFile
	sleep    *SleepInhibitor
	notifier *Notifier
	screen   *ScreenLock
	goos     string
	log      zerolog.Logger

	sites   func() []string
	blocked atomic.Bool
}

func NewSystem(opts Options) *System {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Commander == nil {
		opts.Commander = ExecCommander{}
	}
	if opts.Bell == nil {
		opts.Bell = os.Stderr
	}
	return &System{
		hosts:    &HostsFile{Path: opts.HostsPath, RedirectIP: opts.RedirectIP},
		sleep:    &SleepInhibitor{GOOS: opts.GOOS, Cmd: opts.Commander},
		notifier: &Notifier{GOOS: opts.GOOS, Cmd: opts.Commander, Bell: opts.Bell},
		screen:   &ScreenLock{},
		goos:     opts.GOOS,
		log:      opts.Logger.With().Str("component", "focus").Logger(),
		sites:    func() []string { return nil },
	}
}

// SetSites sets the source of the hostnames to block. It is read on every
// BlockSites call so settings changes apply to the next work interval.
func (s *System) SetSites(fn func() []string) {
	s.sites = fn
}

// SetSound controls whether notifications also ring the terminal bell.
func (s *System) SetSound(fn func() bool) {
	s.notifier.Sound = fn
}

// SetBell redirects the notification bell and returns the previous writer.
// A full-screen UI routes it through its own terminal output so the BEL is
// never written in the middle of a frame.
func (s *System) SetBell(w io.Writer) io.Writer {
	return s.notifier.SetBell(w)
}

// Screen exposes the fullscreen lock for the presentation layer.
func (s *System) Screen() *ScreenLock {
	return s.screen
}

func (s *System) State() State {
	return State{
		SitesBlocked:   s.blocked.Load(),
		SleepPrevented: s.sleep.Held(),
		Fullscreen:     s.screen.Locked(),
	}
}

func (s *System) hostsSupported() bool {
	switch s.goos {
	case "linux", "darwin", "windows":
		return true
	}
	return false
}

func (s *System) BlockSites() Result {
	if !s.hostsSupported() {
		return Fail(ErrUnsupported)
	}
	sites := s.sites()
	if err := s.hosts.Block(sites); err != nil {
		return Fail(err)
	}
	s.blocked.Store(true)
	s.log.Debug().Int("sites", len(sites)).Str("hosts", s.hosts.Path).Msg("sites blocked")
	return OK()
}

func (s *System) UnblockSites() Result {
	if !s.hostsSupported() {
		return Fail(ErrUnsupported)
	}
	if err := s.hosts.Unblock(); err != nil {
		return Fail(err)
	}
	s.blocked.Store(false)
	return OK()
}

// BlockedHosts lists the hostnames currently redirected by the hosts file,
// including sections left behind by a process that did not exit cleanly.
func (s *System) BlockedHosts() ([]string, error) {
	return s.hosts.Blocked()
}

func (s *System) EnableFullscreenLock() Result {
	if s.screen.Set(true) {
		s.log.Debug().Msg("fullscreen lock on")
	}
	return OK()
}

func (s *System) DisableFullscreenLock() Result {
	if s.screen.Set(false) {
		s.log.Debug().Msg("fullscreen lock off")
	}
	return OK()
}

func (s *System) PreventSleep() Result {
	return From(s.sleep.Prevent())
}

func (s *System) AllowSleep() Result {
	return From(s.sleep.Allow())
}

func (s *System) ShowNotification(title, body string) Result {
	return From(s.notifier.Show(title, body))
}
