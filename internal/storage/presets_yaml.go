package storage

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"breathpacer/internal/core/model"
	"breathpacer/resources"

	"gopkg.in/yaml.v3"
)

// PresetsFileName is the user presets file inside the config directory.
const PresetsFileName = "presets.yaml"

// ErrPresetNotFound indicates no preset matches the requested name.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named breathing pattern.
type Preset struct {
	Name       string
	BreathIn   time.Duration
	BreathOut  time.Duration
	CycleLimit int
}

type yamlPresets struct {
	Presets []yamlPreset `yaml:"presets"`
}

type yamlPreset struct {
	Name        string `yaml:"name"`
	BreathInMs  int    `yaml:"breath_in_ms"`
	BreathOutMs int    `yaml:"breath_out_ms"`
	CycleLimit  int    `yaml:"cycle_limit"`
}

// Apply returns a copy of config using the preset's timings. Sound and
// visual options are left as they are.
func (preset Preset) Apply(config model.PacerConfig) model.PacerConfig {
	_ = config.SetBreathIn(preset.BreathIn)
	_ = config.SetBreathOut(preset.BreathOut)
	_ = config.SetCycleLimit(preset.CycleLimit)
	return config
}

// Summary renders the preset timings, e.g. "4s in / 6s out, unbounded".
func (preset Preset) Summary() string {
	cycles := "unbounded"
	if preset.CycleLimit > 0 {
		cycles = fmt.Sprintf("%d cycles", preset.CycleLimit)
	}
	return fmt.Sprintf("%s in / %s out, %s", preset.BreathIn, preset.BreathOut, cycles)
}

// BuiltinPresets returns the presets shipped with the application.
func BuiltinPresets() ([]Preset, error) {
	return ParsePresets(resources.Presets())
}

// ParsePresets reads presets from YAML. Entries without a name or with
// out-of-range timings are skipped.
func ParsePresets(data []byte) ([]Preset, error) {
	var fileData yamlPresets
	if err := yaml.Unmarshal(data, &fileData); err != nil {
		return nil, fmt.Errorf("parse presets yaml: %w", err)
	}

	presets := make([]Preset, 0, len(fileData.Presets))
	for _, entry := range fileData.Presets {
		preset, ok := entry.preset()
		if !ok {
			continue
		}
		presets = append(presets, preset)
	}
	return presets, nil
}

// LoadPresets returns the built-in presets followed by those read from path.
// A user preset replaces a built-in one with the same name. A missing file is
// not an error.
func LoadPresets(path string) ([]Preset, error) {
	presets, err := BuiltinPresets()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return presets, nil
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return presets, nil
		}
		return presets, fmt.Errorf("read presets file: %w", err)
	}

	userPresets, err := ParsePresets(rawData)
	if err != nil {
		return presets, err
	}
	return mergePresets(presets, userPresets), nil
}

// FindPreset looks a preset up by name, ignoring case.
func FindPreset(presets []Preset, name string) (Preset, error) {
	for _, preset := range presets {
		if strings.EqualFold(preset.Name, strings.TrimSpace(name)) {
			return preset, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
}

func mergePresets(base, overrides []Preset) []Preset {
	merged := append([]Preset(nil), base...)
	for _, override := range overrides {
		replaced := false
		for index := range merged {
			if strings.EqualFold(merged[index].Name, override.Name) {
				merged[index] = override
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, override)
		}
	}
	return merged
}

func (entry yamlPreset) preset() (Preset, bool) {
	name := strings.TrimSpace(entry.Name)
	if name == "" {
		return Preset{}, false
	}

	config := model.DefaultPacerConfig()
	breathIn := time.Duration(entry.BreathInMs) * time.Millisecond
	breathOut := time.Duration(entry.BreathOutMs) * time.Millisecond
	if config.SetBreathIn(breathIn) != nil || config.SetBreathOut(breathOut) != nil {
		return Preset{}, false
	}
	if config.SetCycleLimit(entry.CycleLimit) != nil {
		return Preset{}, false
	}

	return Preset{
		Name:       name,
		BreathIn:   breathIn,
		BreathOut:  breathOut,
		CycleLimit: entry.CycleLimit,
	}, true
}
