// Package settings holds the user-editable pomodoro preferences and converts them
// to and from the key/value rows kept in the store.
package settings

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/sadopc/focusflow/internal/store"
)

// Keys of the settings table.
const (
	KeyWorkDuration            = "work_duration"
	KeyShortBreak              = "short_break"
	KeyLongBreak               = "long_break"
	KeyIntervalsUntilLongBreak = "intervals_until_long_break"
	KeyEnableSounds            = "enable_sounds"
	KeyEnableMusic             = "enable_music"
	KeyBlockedSites            = "blocked_sites"
)

type Settings struct {
	WorkMinutes             int
	ShortBreakMinutes       int
	LongBreakMinutes        int
	IntervalsUntilLongBreak int
	EnableSounds            bool
	EnableMusic             bool
	BlockedSites            []string
}

func Defaults() Settings {
	return Settings{
		WorkMinutes:             25,
		ShortBreakMinutes:       5,
		LongBreakMinutes:        15,
		IntervalsUntilLongBreak: 4,
		EnableSounds:            true,
		EnableMusic:             false,
		BlockedSites:            slices.Clone(store.DefaultBlockedSites),
	}
}

// Decode builds Settings from stored values. Missing keys take their default.
// Values that cannot be parsed or are out of range are replaced by the default,
// and reported in the returned criterio.FieldErrors. The Settings result is
// always usable, even when err is non-nil.
func Decode(values map[string]string) (Settings, error) {
	s := Defaults()
	var errs criterio.FieldErrorsBuilder

	positive := func(key string, dst *int) {
		raw, ok := values[key]
		if !ok {
			return
		}
		n, err := parsePositive(raw)
		if err != nil {
			errs = errs.Append(key, err)
			return
		}
		*dst = n
	}
	boolean := func(key string, dst *bool) {
		raw, ok := values[key]
		if !ok {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			errs = errs.Append(key, fmt.Errorf("invalid boolean %q", raw))
			return
		}
		*dst = b
	}

	positive(KeyWorkDuration, &s.WorkMinutes)
	positive(KeyShortBreak, &s.ShortBreakMinutes)
	positive(KeyLongBreak, &s.LongBreakMinutes)
	positive(KeyIntervalsUntilLongBreak, &s.IntervalsUntilLongBreak)
	boolean(KeyEnableSounds, &s.EnableSounds)
	boolean(KeyEnableMusic, &s.EnableMusic)

	if raw, ok := values[KeyBlockedSites]; ok {
		sites, err := decodeSites(raw)
		if err != nil {
			errs = errs.Append(KeyBlockedSites, err)
		}
		if sites != nil {
			s.BlockedSites = sites
		}
	}

	return s, errs.ToError()
}

// Normalize coerces out-of-range values to their defaults and cleans the site
// list. Sites that are not valid hostnames are dropped.
func (s Settings) Normalize() Settings {
	d := Defaults()
	if s.WorkMinutes < 1 {
		s.WorkMinutes = d.WorkMinutes
	}
	if s.ShortBreakMinutes < 1 {
		s.ShortBreakMinutes = d.ShortBreakMinutes
	}
	if s.LongBreakMinutes < 1 {
		s.LongBreakMinutes = d.LongBreakMinutes
	}
	if s.IntervalsUntilLongBreak < 1 {
		s.IntervalsUntilLongBreak = d.IntervalsUntilLongBreak
	}
	s.BlockedSites, _ = ValidSites(CleanSites(s.BlockedSites))
	return s
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if s.WorkMinutes < 1 {
		errs = errs.Append(KeyWorkDuration, fmt.Errorf("must be at least 1 minute"))
	}
	if s.ShortBreakMinutes < 1 {
		errs = errs.Append(KeyShortBreak, fmt.Errorf("must be at least 1 minute"))
	}
	if s.LongBreakMinutes < 1 {
		errs = errs.Append(KeyLongBreak, fmt.Errorf("must be at least 1 minute"))
	}
	if s.IntervalsUntilLongBreak < 1 {
		errs = errs.Append(KeyIntervalsUntilLongBreak, fmt.Errorf("must be at least 1"))
	}
	for i, site := range s.BlockedSites {
		if err := ValidateHost(site); err != nil {
			errs = errs.Append(fmt.Sprintf("%s[%d]", KeyBlockedSites, i), err)
		}
	}
	return errs.ToError()
}

// Encode renders every field as its stored text value.
func (s Settings) Encode() map[string]string {
	return map[string]string{
		KeyWorkDuration:            strconv.Itoa(s.WorkMinutes),
		KeyShortBreak:              strconv.Itoa(s.ShortBreakMinutes),
		KeyLongBreak:               strconv.Itoa(s.LongBreakMinutes),
		KeyIntervalsUntilLongBreak: strconv.Itoa(s.IntervalsUntilLongBreak),
		KeyEnableSounds:            strconv.FormatBool(s.EnableSounds),
		KeyEnableMusic:             strconv.FormatBool(s.EnableMusic),
		KeyBlockedSites:            encodeSites(s.BlockedSites),
	}
}

// Seconds returns the configured length of an interval of the given kind.
func (s Settings) Seconds(kind store.SessionType) int {
	switch kind {
	case store.SessionShortBreak:
		return s.ShortBreakMinutes * 60
	case store.SessionLongBreak:
		return s.LongBreakMinutes * 60
	default:
		return s.WorkMinutes * 60
	}
}

// BreakAfter picks the break that follows the streak-th completed work interval.
func (s Settings) BreakAfter(streak int) store.SessionType {
	every := s.IntervalsUntilLongBreak
	if every < 1 {
		every = Defaults().IntervalsUntilLongBreak
	}
	if streak > 0 && streak%every == 0 {
		return store.SessionLongBreak
	}
	return store.SessionShortBreak
}

func parsePositive(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		// Accept JSON-style whole numbers such as "25.0".
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid number %q", raw)
		}
		n = int(f)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// decodeSites returns nil when raw cannot be parsed at all. Otherwise it returns
// the valid hostnames, with an error naming any entry it dropped.
func decodeSites(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}

	var sites []string
	if strings.HasPrefix(raw, "[") {
		var entries []string
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			return nil, fmt.Errorf("invalid site list: %w", err)
		}
		sites = CleanSites(entries)
	} else {
		sites = ParseSites(raw)
	}

	valid, dropped := ValidSites(sites)
	if len(dropped) > 0 {
		quoted := make([]string, len(dropped))
		for i, d := range dropped {
			quoted[i] = strconv.Quote(d)
		}
		return valid, fmt.Errorf("dropped invalid hostnames %s", strings.Join(quoted, ", "))
	}
	return valid, nil
}

func encodeSites(sites []string) string {
	if sites == nil {
		sites = []string{}
	}
	data, _ := json.Marshal(sites)
	return string(data)
}
