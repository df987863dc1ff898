package settings

import (
	"slices"
	"strconv"
)

// Update is a partial change to Settings. Nil fields are left unchanged.
type Update struct {
	WorkMinutes             *int
	ShortBreakMinutes       *int
	LongBreakMinutes        *int
	IntervalsUntilLongBreak *int
	EnableSounds            *bool
	EnableMusic             *bool
	BlockedSites            *[]string
}

// Diff returns the update that turns from into to.
func Diff(from, to Settings) Update {
	var u Update
	if from.WorkMinutes != to.WorkMinutes {
		u.WorkMinutes = &to.WorkMinutes
	}
	if from.ShortBreakMinutes != to.ShortBreakMinutes {
		u.ShortBreakMinutes = &to.ShortBreakMinutes
	}
	if from.LongBreakMinutes != to.LongBreakMinutes {
		u.LongBreakMinutes = &to.LongBreakMinutes
	}
	if from.IntervalsUntilLongBreak != to.IntervalsUntilLongBreak {
		u.IntervalsUntilLongBreak = &to.IntervalsUntilLongBreak
	}
	if from.EnableSounds != to.EnableSounds {
		u.EnableSounds = &to.EnableSounds
	}
	if from.EnableMusic != to.EnableMusic {
		u.EnableMusic = &to.EnableMusic
	}
	if !slices.Equal(from.BlockedSites, to.BlockedSites) {
		sites := slices.Clone(to.BlockedSites)
		u.BlockedSites = &sites
	}
	return u
}

func (u Update) Empty() bool {
	return len(u.Encode()) == 0
}

// Apply returns s with the update's fields set.
func (u Update) Apply(s Settings) Settings {
	if u.WorkMinutes != nil {
		s.WorkMinutes = *u.WorkMinutes
	}
	if u.ShortBreakMinutes != nil {
		s.ShortBreakMinutes = *u.ShortBreakMinutes
	}
	if u.LongBreakMinutes != nil {
		s.LongBreakMinutes = *u.LongBreakMinutes
	}
	if u.IntervalsUntilLongBreak != nil {
		s.IntervalsUntilLongBreak = *u.IntervalsUntilLongBreak
	}
	if u.EnableSounds != nil {
		s.EnableSounds = *u.EnableSounds
	}
	if u.EnableMusic != nil {
		s.EnableMusic = *u.EnableMusic
	}
	if u.BlockedSites != nil {
		s.BlockedSites = CleanSites(*u.BlockedSites)
	}
	return s
}

// Encode renders only the changed keys, ready to be upserted one by one.
func (u Update) Encode() map[string]string {
	out := make(map[string]string)
	if u.WorkMinutes != nil {
		out[KeyWorkDuration] = strconv.Itoa(*u.WorkMinutes)
	}
	if u.ShortBreakMinutes != nil {
		out[KeyShortBreak] = strconv.Itoa(*u.ShortBreakMinutes)
	}
	if u.LongBreakMinutes != nil {
		out[KeyLongBreak] = strconv.Itoa(*u.LongBreakMinutes)
	}
	if u.IntervalsUntilLongBreak != nil {
		out[KeyIntervalsUntilLongBreak] = strconv.Itoa(*u.IntervalsUntilLongBreak)
	}
	if u.EnableSounds != nil {
		out[KeyEnableSounds] = strconv.FormatBool(*u.EnableSounds)
	}
	if u.EnableMusic != nil {
		out[KeyEnableMusic] = strconv.FormatBool(*u.EnableMusic)
	}
	if u.BlockedSites != nil {
		out[KeyBlockedSites] = encodeSites(CleanSites(*u.BlockedSites))
	}
	return out
}
