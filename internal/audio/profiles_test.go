package audio

import (
	"testing"
	"time"

	"breathpacer/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfilesCoverEveryOption(t *testing.T) {
	profiles, err := DefaultProfiles()
	require.NoError(t, err)

	for _, name := range model.ToneProfiles() {
		for _, cue := range allCues {
			tone, err := profiles.Tone(name, cue)
			require.NoError(t, err, "%s/%s", name, cue)
			assert.Positive(t, tone.Frequency)
			assert.Positive(t, tone.Duration)
		}
	}
}

func TestProfilesTone(t *testing.T) {
	profiles, err := ParseProfiles([]byte(`
profiles:
  - name: digital
    waveform: square
    gain: 0.2
    duration_ms: 150
    frequencies: {countdown: 1000, go: 1500, inhale: 1200, exhale: 800}
`))
	require.NoError(t, err)

	tone, err := profiles.Tone(model.ToneDigital, model.CueGo)
	require.NoError(t, err)
	assert.Equal(t, Tone{
		Frequency: 1500,
		Waveform:  WaveSquare,
		Gain:      0.2,
		Duration:  150 * time.Millisecond,
	}, tone)

	_, err = profiles.Tone(model.ToneBell, model.CueGo)
	assert.ErrorIs(t, err, ErrUnknownProfile)
	_, err = profiles.Tone(model.ToneDigital, model.Cue("hum"))
	assert.ErrorIs(t, err, ErrUnknownCue)
}

func TestParseProfilesRejectsInvalidEntries(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want error
	}{
		{
			name: "unknown profile",
			yaml: "profiles: [{name: chime, waveform: sine, gain: 0.5, duration_ms: 100, frequencies: {countdown: 1, go: 1, inhale: 1, exhale: 1}}]",
			want: model.ErrUnknownOption,
		},
		{
			name: "unknown waveform",
			yaml: "profiles: [{name: soft, waveform: noise, gain: 0.5, duration_ms: 100, frequencies: {countdown: 1, go: 1, inhale: 1, exhale: 1}}]",
			want: model.ErrUnknownOption,
		},
		{
			name: "gain too loud",
			yaml: "profiles: [{name: soft, waveform: sine, gain: 1.5, duration_ms: 100, frequencies: {countdown: 1, go: 1, inhale: 1, exhale: 1}}]",
			want: model.ErrOutOfRange,
		},
		{
			name: "no duration",
			yaml: "profiles: [{name: soft, waveform: sine, gain: 0.5, frequencies: {countdown: 1, go: 1, inhale: 1, exhale: 1}}]",
			want: model.ErrOutOfRange,
		},
		{
			name: "missing cue",
			yaml: "profiles: [{name: soft, waveform: sine, gain: 0.5, duration_ms: 100, frequencies: {countdown: 1, go: 1, inhale: 1}}]",
			want: ErrUnknownCue,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProfiles([]byte(tc.yaml))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := ParseProfiles([]byte("profiles: ["))
	assert.Error(t, err)
}
