package settings

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusflow/internal/store"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 25, d.WorkMinutes)
	assert.Equal(t, 5, d.ShortBreakMinutes)
	assert.Equal(t, 15, d.LongBreakMinutes)
	assert.Equal(t, 4, d.IntervalsUntilLongBreak)
	assert.True(t, d.EnableSounds)
	assert.False(t, d.EnableMusic)
	assert.Equal(t, store.DefaultBlockedSites, d.BlockedSites)
	require.NoError(t, d.Validate())

	d.BlockedSites[0] = "changed.com"
	assert.Equal(t, "youtube.com", store.DefaultBlockedSites[0], "defaults must not alias the seed list")
}

func TestDecode_SeededStore(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	values, err := s.GetAllSettings()
	require.NoError(t, err)

	got, err := Decode(values)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestDecode_Values(t *testing.T) {
	got, err := Decode(map[string]string{
		KeyWorkDuration:            "50",
		KeyShortBreak:              " 10 ",
		KeyLongBreak:               "30.0",
		KeyIntervalsUntilLongBreak: "2",
		KeyEnableSounds:            "false",
		KeyEnableMusic:             "1",
		KeyBlockedSites:            `["https://www.News.com/top", "news.com", "x.com"]`,
		"unrelated":                "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, Settings{
		WorkMinutes:             50,
		ShortBreakMinutes:       10,
		LongBreakMinutes:        30,
		IntervalsUntilLongBreak: 2,
		EnableSounds:            false,
		EnableMusic:             true,
		BlockedSites:            []string{"news.com", "x.com"},
	}, got)
}

func TestDecode_CoercesInvalid(t *testing.T) {
	got, err := Decode(map[string]string{
		KeyWorkDuration:            "abc",
		KeyIntervalsUntilLongBreak: "0",
		KeyLongBreak:               "-5",
		KeyEnableSounds:            "maybe",
		KeyBlockedSites:            "[not json",
	})

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 5)

	d := Defaults()
	assert.Equal(t, d, got, "every invalid value falls back to its default")
	assert.Equal(t, 4, got.IntervalsUntilLongBreak)
}

func TestDecode_PlainSiteList(t *testing.T) {
	got, err := Decode(map[string]string{KeyBlockedSites: "a.com, b.com\nc.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, got.BlockedSites)

	got, err = Decode(map[string]string{KeyBlockedSites: ""})
	require.NoError(t, err)
	assert.Empty(t, got.BlockedSites)
}

func TestDecode_DropsInvalidHostnames(t *testing.T) {
	got, err := Decode(map[string]string{
		KeyBlockedSites: `["youtube.com\n6.6.6.6 bank.example.com", "reddit.com", "a b.com"]`,
	})

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, KeyBlockedSites, fieldErrs[0].Field)
	assert.Equal(t, []string{"reddit.com"}, got.BlockedSites)
	require.NoError(t, got.Validate())

	back, err := Decode(got.Encode())
	require.NoError(t, err)
	assert.Equal(t, []string{"reddit.com"}, back.BlockedSites)
}

func TestEncodeRoundTrip(t *testing.T) {
	s := Defaults()
	s.WorkMinutes = 45
	s.EnableMusic = true

	enc := s.Encode()
	assert.Equal(t, "45", enc[KeyWorkDuration])
	assert.Equal(t, "true", enc[KeyEnableMusic])
	assert.Equal(t, `["youtube.com","twitter.com","facebook.com","instagram.com","reddit.com","tiktok.com","twitch.tv"]`, enc[KeyBlockedSites])

	back, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestValidate(t *testing.T) {
	s := Defaults()
	s.WorkMinutes = 0
	s.IntervalsUntilLongBreak = 0
	s.BlockedSites = []string{"ok.com", "bad host"}

	err := s.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 3)
	assert.Equal(t, KeyWorkDuration, fieldErrs[0].Field)
	assert.Equal(t, KeyIntervalsUntilLongBreak, fieldErrs[1].Field)
	assert.Equal(t, "blocked_sites[1]", fieldErrs[2].Field)
}

func TestNormalize(t *testing.T) {
	s := Settings{BlockedSites: []string{"WWW.A.com", "a.com", " "}}
	n := s.Normalize()
	assert.Equal(t, 25, n.WorkMinutes)
	assert.Equal(t, 5, n.ShortBreakMinutes)
	assert.Equal(t, 15, n.LongBreakMinutes)
	assert.Equal(t, 4, n.IntervalsUntilLongBreak)
	assert.Equal(t, []string{"a.com"}, n.BlockedSites)
	require.NoError(t, n.Validate())
}

func TestNormalize_DropsInvalidHostnames(t *testing.T) {
	s := Settings{BlockedSites: []string{"ok.com", "evil.com\n1.2.3.4 bank.com", "x_y.com"}}
	assert.Equal(t, []string{"ok.com"}, s.Normalize().BlockedSites)
}

func TestSeconds(t *testing.T) {
	s := Settings{WorkMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15}
	assert.Equal(t, 1500, s.Seconds(store.SessionWork))
	assert.Equal(t, 300, s.Seconds(store.SessionShortBreak))
	assert.Equal(t, 900, s.Seconds(store.SessionLongBreak))
}

func TestBreakAfter(t *testing.T) {
	for every := 1; every <= 6; every++ {
		s := Defaults()
		s.IntervalsUntilLongBreak = every
		for n := 1; n <= 24; n++ {
			want := store.SessionShortBreak
			if n%every == 0 {
				want = store.SessionLongBreak
			}
			assert.Equal(t, want, s.BreakAfter(n), "every=%d streak=%d", every, n)
		}
	}

	t.Run("zero modulus is coerced", func(t *testing.T) {
		s := Settings{IntervalsUntilLongBreak: 0}
		assert.Equal(t, store.SessionLongBreak, s.BreakAfter(4))
		assert.Equal(t, store.SessionShortBreak, s.BreakAfter(3))
	})
}

func TestUpdate(t *testing.T) {
	work := 50
	sounds := false
	sites := []string{"HTTP://Example.com/path", "example.com"}
	u := Update{WorkMinutes: &work, EnableSounds: &sounds, BlockedSites: &sites}

	applied := u.Apply(Defaults())
	assert.Equal(t, 50, applied.WorkMinutes)
	assert.False(t, applied.EnableSounds)
	assert.Equal(t, []string{"example.com"}, applied.BlockedSites)
	assert.Equal(t, 5, applied.ShortBreakMinutes)

	assert.Equal(t, map[string]string{
		KeyWorkDuration: "50",
		KeyEnableSounds: "false",
		KeyBlockedSites: `["example.com"]`,
	}, u.Encode())
	assert.False(t, u.Empty())
	assert.True(t, Update{}.Empty())
}

func TestDiff(t *testing.T) {
	from := Defaults()
	to := from
	to.LongBreakMinutes = 20
	to.BlockedSites = []string{"only.com"}

	u := Diff(from, to)
	assert.Equal(t, map[string]string{
		KeyLongBreak:    "20",
		KeyBlockedSites: `["only.com"]`,
	}, u.Encode())
	assert.Equal(t, to, u.Apply(from))
	assert.True(t, Diff(from, from).Empty())
}
