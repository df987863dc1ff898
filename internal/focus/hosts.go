package focus

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/sadopc/focusflow/internal/settings"
)

const (
	hostsBegin = "# BEGIN focusflow"
	hostsEnd   = "# END focusflow"
)

// HostsFile redirects blocked sites to a local address by writing a marked
// section into a hosts file. Lines outside the section are never touched.
type HostsFile struct {
	Path       string
	RedirectIP string

	mu sync.Mutex
}

// Block replaces the marked section with redirects for sites. Each site is also
// redirected with a "www." prefix. The file is left untouched when any site is
// not a valid hostname.
func (h *HostsFile) Block(sites []string) error {
	for _, site := range sites {
		if err := settings.ValidateHost(site); err != nil {
			return fmt.Errorf("refusing to block: %w", err)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	content, mode, err := h.read()
	if err != nil {
		return err
	}

	base, _ := stripSection(content)
	var buf bytes.Buffer
	buf.Write(base)
	if buf.Len() > 0 && !bytes.HasSuffix(base, []byte("\n")) {
		buf.WriteByte('\n')
	}

	ip := h.RedirectIP
	if ip == "" {
		ip = "127.0.0.1"
	}
	buf.WriteString(hostsBegin + "\n")
	for _, site := range sites {
		fmt.Fprintf(&buf, "%s %s\n", ip, site)
		if !strings.HasPrefix(site, "www.") {
			fmt.Fprintf(&buf, "%s www.%s\n", ip, site)
		}
	}
	buf.WriteString(hostsEnd + "\n")

	return h.write(buf.Bytes(), mode)
}

// Unblock removes the marked section. It does not rewrite the file when there
// is no section.
func (h *HostsFile) Unblock() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	content, mode, err := h.read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	base, found := stripSection(content)
	if !found {
		return nil
	}
	return h.write(base, mode)
}

// Blocked returns the hostnames currently inside the marked section.
func (h *HostsFile) Blocked() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	content, _, err := h.read()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var hosts []string
	inside := false
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == hostsBegin:
			inside = true
		case line == hostsEnd:
			inside = false
		case inside:
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				hosts = append(hosts, fields[1:]...)
			}
		}
	}
	return hosts, sc.Err()
}

func (h *HostsFile) read() ([]byte, fs.FileMode, error) {
	if h.Path == "" {
		return nil, 0, fmt.Errorf("hosts file path not configured")
	}
	info, err := os.Stat(h.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("stat hosts file: %w", err)
	}
	content, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("read hosts file: %w", err)
	}
	return content, info.Mode().Perm(), nil
}

func (h *HostsFile) write(content []byte, mode fs.FileMode) error {
	// Written in place: /etc/hosts is often a bind mount that cannot be renamed over.
	if err := os.WriteFile(h.Path, content, mode); err != nil {
		return fmt.Errorf("write hosts file: %w", err)
	}
	return nil
}

// stripSection removes every marked section, including an unterminated one.
func stripSection(content []byte) ([]byte, bool) {
	var out bytes.Buffer
	found := false
	inside := false
	for _, line := range bytes.SplitAfter(content, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		trimmed := strings.TrimSpace(string(line))
		switch {
		case trimmed == hostsBegin:
			inside = true
			found = true
		case trimmed == hostsEnd:
			inside = false
		case !inside:
			out.Write(line)
		}
	}
	return out.Bytes(), found
}
