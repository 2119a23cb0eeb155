package preferences

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"breathpacer/internal/core/model"
)

// Field names an editable text setting.
type Field string

const (
	FieldBreathIn   Field = "breath_in"
	FieldBreathOut  Field = "breath_out"
	FieldCycleLimit Field = "cycle_limit"
)

// Form holds the settings as the user typed them. Durations are seconds and
// an empty cycle limit means unbounded.
type Form struct {
	BreathIn       string
	BreathOut      string
	CycleLimit     string
	SoundEnabled   bool
	VisualEnabled  bool
	CountdownTones bool
	ToneProfile    string
	VisualStyle    string
}

// FormFromConfig renders a configuration into form values.
func FormFromConfig(config model.PacerConfig) Form {
	limit := ""
	if config.CycleLimit > 0 {
		limit = strconv.Itoa(config.CycleLimit)
	}
	return Form{
		BreathIn:       formatSeconds(config.BreathIn),
		BreathOut:      formatSeconds(config.BreathOut),
		CycleLimit:     limit,
		SoundEnabled:   config.SoundEnabled,
		VisualEnabled:  config.VisualEnabled,
		CountdownTones: config.CountdownTones,
		ToneProfile:    string(config.ToneProfile),
		VisualStyle:    string(config.VisualStyle),
	}
}

// Apply writes the form onto a copy of config through its setters. Fields
// that fail validation keep their previous value and are reported.
func (form Form) Apply(config model.PacerConfig) (model.PacerConfig, map[Field]error) {
	invalid := make(map[Field]error)

	if duration, err := parseSeconds(form.BreathIn); err != nil {
		invalid[FieldBreathIn] = err
	} else if err := config.SetBreathIn(duration); err != nil {
		invalid[FieldBreathIn] = err
	}
	if duration, err := parseSeconds(form.BreathOut); err != nil {
		invalid[FieldBreathOut] = err
	} else if err := config.SetBreathOut(duration); err != nil {
		invalid[FieldBreathOut] = err
	}
	if limit, err := parseCycleLimit(form.CycleLimit); err != nil {
		invalid[FieldCycleLimit] = err
	} else if err := config.SetCycleLimit(limit); err != nil {
		invalid[FieldCycleLimit] = err
	}

	config.SetSoundEnabled(form.SoundEnabled)
	config.SetVisualEnabled(form.VisualEnabled)
	config.SetCountdownTones(form.CountdownTones)
	// Selects only offer known values.
	_ = config.SetToneProfile(model.ToneProfile(form.ToneProfile))
	_ = config.SetVisualStyle(model.VisualStyle(form.VisualStyle))

	return config, invalid
}

// ValidateBreath checks a breath duration entry.
func ValidateBreath(value string) error {
	duration, err := parseSeconds(value)
	if err != nil {
		return err
	}
	config := model.DefaultPacerConfig()
	return config.SetBreathIn(duration)
}

// ValidateCycleLimit checks a cycle limit entry.
func ValidateCycleLimit(value string) error {
	limit, err := parseCycleLimit(value)
	if err != nil {
		return err
	}
	config := model.DefaultPacerConfig()
	return config.SetCycleLimit(limit)
}

func parseSeconds(value string) (time.Duration, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%q is not a number of seconds", value)
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Millisecond), nil
}

func parseCycleLimit(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", value)
	}
	return limit, nil
}

func formatSeconds(duration time.Duration) string {
	return strconv.FormatFloat(duration.Seconds(), 'f', -1, 64)
}
