package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrOutOfRange indicates a configuration value outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")
	// ErrUnknownOption indicates an enumerated value that is not recognized.
	ErrUnknownOption = errors.New("unknown option")
)

const (
	MinBreathDuration = 500 * time.Millisecond
	MaxBreathDuration = 60 * time.Second

	MinCycleLimit = 1
	MaxCycleLimit = 100

	DefaultBreathIn  = 4 * time.Second
	DefaultBreathOut = 6 * time.Second
)

// ToneProfile selects the timbre of emitted cues. It never affects timing.
type ToneProfile string

const (
	ToneSoft    ToneProfile = "soft"
	ToneBell    ToneProfile = "bell"
	ToneDigital ToneProfile = "digital"
	ToneWarm    ToneProfile = "warm"
)

// ToneProfiles lists the supported profiles in display order.
func ToneProfiles() []ToneProfile {
	return []ToneProfile{ToneSoft, ToneBell, ToneDigital, ToneWarm}
}

// ParseToneProfile converts a name into a ToneProfile.
func ParseToneProfile(value string) (ToneProfile, error) {
	name := ToneProfile(strings.ToLower(strings.TrimSpace(value)))
	for _, profile := range ToneProfiles() {
		if profile == name {
			return profile, nil
		}
	}
	return "", fmt.Errorf("tone profile %q: %w", value, ErrUnknownOption)
}

// VisualStyle selects how the visual display renders a phase.
type VisualStyle string

const (
	VisualCircle VisualStyle = "circle"
	VisualBar    VisualStyle = "bar"
)

// VisualStyles lists the supported styles in display order.
func VisualStyles() []VisualStyle {
	return []VisualStyle{VisualCircle, VisualBar}
}

// ParseVisualStyle converts a name into a VisualStyle.
func ParseVisualStyle(value string) (VisualStyle, error) {
	name := VisualStyle(strings.ToLower(strings.TrimSpace(value)))
	for _, style := range VisualStyles() {
		if style == name {
			return style, nil
		}
	}
	return "", fmt.Errorf("visual style %q: %w", value, ErrUnknownOption)
}

// Cue identifies which audible cue a tone marks.
type Cue string

const (
	CueCountdown Cue = "countdown"
	CueGo        Cue = "go"
	CueInhale    Cue = "inhale"
	CueExhale    Cue = "exhale"
)

// PacerConfig contains the settings of a pacing session.
// A zero CycleLimit means the session runs until stopped.
type PacerConfig struct {
	BreathIn   time.Duration
	BreathOut  time.Duration
	CycleLimit int

	SoundEnabled   bool
	VisualEnabled  bool
	CountdownTones bool

	ToneProfile ToneProfile
	VisualStyle VisualStyle
}

// DefaultPacerConfig returns the startup configuration.
func DefaultPacerConfig() PacerConfig {
	return PacerConfig{
		BreathIn:       DefaultBreathIn,
		BreathOut:      DefaultBreathOut,
		SoundEnabled:   true,
		VisualEnabled:  true,
		CountdownTones: true,
		ToneProfile:    ToneSoft,
		VisualStyle:    VisualCircle,
	}
}

// Bounded reports whether the session stops after CycleLimit cycles.
func (config PacerConfig) Bounded() bool {
	return config.CycleLimit > 0
}

// CycleDuration returns the length of one inhale plus one exhale.
func (config PacerConfig) CycleDuration() time.Duration {
	return config.BreathIn + config.BreathOut
}

// Validate checks every field of the configuration.
func (config PacerConfig) Validate() error {
	if err := validateBreath("breath in", config.BreathIn); err != nil {
		return err
	}
	if err := validateBreath("breath out", config.BreathOut); err != nil {
		return err
	}
	if err := validateCycleLimit(config.CycleLimit); err != nil {
		return err
	}
	if _, err := ParseToneProfile(string(config.ToneProfile)); err != nil {
		return err
	}
	if _, err := ParseVisualStyle(string(config.VisualStyle)); err != nil {
		return err
	}
	return nil
}

// SetBreathIn updates the inhale duration. Out-of-range values are rejected
// and the previous value is kept.
func (config *PacerConfig) SetBreathIn(duration time.Duration) error {
	if err := validateBreath("breath in", duration); err != nil {
		return err
	}
	config.BreathIn = duration
	return nil
}

// SetBreathOut updates the exhale duration.
func (config *PacerConfig) SetBreathOut(duration time.Duration) error {
	if err := validateBreath("breath out", duration); err != nil {
		return err
	}
	config.BreathOut = duration
	return nil
}

// SetCycleLimit bounds the session. Zero removes the bound.
func (config *PacerConfig) SetCycleLimit(limit int) error {
	if err := validateCycleLimit(limit); err != nil {
		return err
	}
	config.CycleLimit = limit
	return nil
}

// SetSoundEnabled toggles audible cues.
func (config *PacerConfig) SetSoundEnabled(enabled bool) {
	config.SoundEnabled = enabled
}

// SetVisualEnabled toggles the full-screen visual display.
func (config *PacerConfig) SetVisualEnabled(enabled bool) {
	config.VisualEnabled = enabled
}

// SetCountdownTones toggles tones on countdown steps.
func (config *PacerConfig) SetCountdownTones(enabled bool) {
	config.CountdownTones = enabled
}

// SetToneProfile updates the tone profile.
func (config *PacerConfig) SetToneProfile(profile ToneProfile) error {
	parsed, err := ParseToneProfile(string(profile))
	if err != nil {
		return err
	}
	config.ToneProfile = parsed
	return nil
}

// SetVisualStyle updates the visual style.
func (config *PacerConfig) SetVisualStyle(style VisualStyle) error {
	parsed, err := ParseVisualStyle(string(style))
	if err != nil {
		return err
	}
	config.VisualStyle = parsed
	return nil
}

func validateBreath(field string, duration time.Duration) error {
	if duration < MinBreathDuration || duration > MaxBreathDuration {
		return fmt.Errorf("%s %dms not in [%d, %d]ms: %w", field,
			duration.Milliseconds(), MinBreathDuration.Milliseconds(), MaxBreathDuration.Milliseconds(), ErrOutOfRange)
	}
	return nil
}

func validateCycleLimit(limit int) error {
	if limit == 0 {
		return nil
	}
	if limit < MinCycleLimit || limit > MaxCycleLimit {
		return fmt.Errorf("cycle limit %d not in [%d, %d]: %w", limit, MinCycleLimit, MaxCycleLimit, ErrOutOfRange)
	}
	return nil
}
