package settings

import (
	"fmt"
	"strings"
)

// NormalizeHost reduces user input such as "https://www.YouTube.com/feed" to
// "youtube.com". It returns "" when nothing usable is left.
func NormalizeHost(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(h, "://"); i >= 0 {
		h = h[i+3:]
	}
	if i := strings.IndexAny(h, "/?#"); i >= 0 {
		h = h[:i]
	}
	if i := strings.LastIndex(h, "@"); i >= 0 {
		h = h[i+1:]
	}
	if i := strings.Index(h, ":"); i >= 0 {
		h = h[:i]
	}
	h = strings.TrimPrefix(h, "www.")
	return strings.Trim(h, ".")
}

// ValidateHost checks that host looks like a DNS name.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("empty hostname")
	}
	if len(host) > 253 {
		return fmt.Errorf("hostname %q too long", host)
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return fmt.Errorf("invalid hostname %q", host)
		}
		for _, r := range label {
			ok := r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
			if !ok {
				return fmt.Errorf("invalid character %q in hostname %q", r, host)
			}
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return fmt.Errorf("invalid hostname %q", host)
		}
	}
	return nil
}

// CleanSites normalizes every entry, dropping blanks and duplicates while
// keeping the first occurrence's position.
func CleanSites(sites []string) []string {
	out := make([]string, 0, len(sites))
	seen := make(map[string]bool, len(sites))
	for _, s := range sites {
		h := NormalizeHost(s)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// ValidSites splits sites into the entries that pass ValidateHost and the ones
// that do not. Order is kept in both.
func ValidSites(sites []string) (valid, invalid []string) {
	valid = make([]string, 0, len(sites))
	for _, s := range sites {
		if ValidateHost(s) != nil {
			invalid = append(invalid, s)
			continue
		}
		valid = append(valid, s)
	}
	return valid, invalid
}

// ParseSites splits free text on commas, whitespace and newlines.
func ParseSites(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	return CleanSites(fields)
}

// FormatSites renders sites one per line for editing.
func FormatSites(sites []string) string {
	return strings.Join(sites, "\n")
}
