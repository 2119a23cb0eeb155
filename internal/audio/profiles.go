package audio

import (
	"errors"
	"fmt"
	"time"

	"breathpacer/internal/core/model"
	"breathpacer/resources"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownProfile indicates a tone profile without a definition.
	ErrUnknownProfile = errors.New("unknown tone profile")
	// ErrUnknownCue indicates a cue without a frequency in its profile.
	ErrUnknownCue = errors.New("unknown cue")
)

// Waveform is the oscillator shape of a tone.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveTriangle Waveform = "triangle"
	WaveSquare   Waveform = "square"
	WaveSawtooth Waveform = "sawtooth"
)

// Tone describes a single synthesized beep.
type Tone struct {
	Frequency float64
	Waveform  Waveform
	Gain      float64
	Duration  time.Duration
	Decay     bool
}

// Profile is the timbre used for every cue of a session.
type Profile struct {
	Name        model.ToneProfile
	Waveform    Waveform
	Gain        float64
	Duration    time.Duration
	Decay       bool
	Frequencies map[model.Cue]float64
}

// Profiles indexes profiles by name.
type Profiles map[model.ToneProfile]Profile

type yamlProfiles struct {
	Profiles []yamlProfile `yaml:"profiles"`
}

type yamlProfile struct {
	Name        string             `yaml:"name"`
	Waveform    string             `yaml:"waveform"`
	Gain        float64            `yaml:"gain"`
	DurationMs  int                `yaml:"duration_ms"`
	Decay       bool               `yaml:"decay"`
	Frequencies map[string]float64 `yaml:"frequencies"`
}

var allCues = []model.Cue{model.CueCountdown, model.CueGo, model.CueInhale, model.CueExhale}

// DefaultProfiles parses the built-in profile definitions.
func DefaultProfiles() (Profiles, error) {
	return ParseProfiles(resources.ToneProfiles())
}

// ParseProfiles reads profile definitions from YAML. Every profile must name
// a known tone profile and define a frequency for every cue.
func ParseProfiles(data []byte) (Profiles, error) {
	var fileData yamlProfiles
	if err := yaml.Unmarshal(data, &fileData); err != nil {
		return nil, fmt.Errorf("parse tone profiles yaml: %w", err)
	}

	profiles := make(Profiles, len(fileData.Profiles))
	for _, entry := range fileData.Profiles {
		profile, err := entry.profile()
		if err != nil {
			return nil, err
		}
		profiles[profile.Name] = profile
	}
	return profiles, nil
}

// Tone returns the tone for a cue in the named profile.
func (profiles Profiles) Tone(name model.ToneProfile, cue model.Cue) (Tone, error) {
	profile, ok := profiles[name]
	if !ok {
		return Tone{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	frequency, ok := profile.Frequencies[cue]
	if !ok {
		return Tone{}, fmt.Errorf("%w: %q in profile %q", ErrUnknownCue, cue, name)
	}
	return Tone{
		Frequency: frequency,
		Waveform:  profile.Waveform,
		Gain:      profile.Gain,
		Duration:  profile.Duration,
		Decay:     profile.Decay,
	}, nil
}

func (entry yamlProfile) profile() (Profile, error) {
	name, err := model.ParseToneProfile(entry.Name)
	if err != nil {
		return Profile{}, fmt.Errorf("tone profile: %w", err)
	}

	waveform := Waveform(entry.Waveform)
	switch waveform {
	case WaveSine, WaveTriangle, WaveSquare, WaveSawtooth:
	default:
		return Profile{}, fmt.Errorf("tone profile %q: waveform %q: %w", name, entry.Waveform, model.ErrUnknownOption)
	}
	if entry.Gain <= 0 || entry.Gain > 1 {
		return Profile{}, fmt.Errorf("tone profile %q: gain %v not in (0, 1]: %w", name, entry.Gain, model.ErrOutOfRange)
	}
	if entry.DurationMs <= 0 {
		return Profile{}, fmt.Errorf("tone profile %q: duration %dms: %w", name, entry.DurationMs, model.ErrOutOfRange)
	}

	frequencies := make(map[model.Cue]float64, len(allCues))
	for _, cue := range allCues {
		frequency, ok := entry.Frequencies[string(cue)]
		if !ok || frequency <= 0 {
			return Profile{}, fmt.Errorf("tone profile %q: %w: %q", name, ErrUnknownCue, cue)
		}
		frequencies[cue] = frequency
	}

	return Profile{
		Name:        name,
		Waveform:    waveform,
		Gain:        entry.Gain,
		Duration:    time.Duration(entry.DurationMs) * time.Millisecond,
		Decay:       entry.Decay,
		Frequencies: frequencies,
	}, nil
}
