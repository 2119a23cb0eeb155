package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"breathpacer/internal/core/model"
	"breathpacer/internal/platform"
	"breathpacer/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "BREATHPACER"

	keyBreathInMs     = "breath_in_ms"
	keyBreathOutMs    = "breath_out_ms"
	keyCycleLimit     = "cycle_limit"
	keySound          = "sound"
	keyVisual         = "visual"
	keyCountdownTones = "countdown_tones"
	keyToneProfile    = "tone_profile"
	keyVisualStyle    = "visual_style"
	keyFullscreen     = "fullscreen"
	keyPresetsFile    = "presets_file"
	keyLogLevel       = "log_level"
	keyMetricsAddr    = "metrics_addr"
)

// flagKeys maps command flags onto config keys. Flags override every other
// source when set.
var flagKeys = map[string]string{
	"in":              keyBreathInMs,
	"out":             keyBreathOutMs,
	"cycles":          keyCycleLimit,
	"sound":           keySound,
	"visual":          keyVisual,
	"countdown-tones": keyCountdownTones,
	"tone":            keyToneProfile,
	"style":           keyVisualStyle,
	"metrics-addr":    keyMetricsAddr,
}

// loadDotEnv loads KEY=value pairs without overriding the environment. A
// missing file is ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// newConfig layers defaults, the config file and BREATHPACER_* variables. A
// missing default config file is not an error; a missing explicit one is.
func newConfig(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		if configDir, err := platform.ConfigDir(appName); err == nil {
			v.AddConfigPath(configDir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	defaults := model.DefaultPacerConfig()
	v.SetDefault(keyBreathInMs, defaults.BreathIn.Milliseconds())
	v.SetDefault(keyBreathOutMs, defaults.BreathOut.Milliseconds())
	v.SetDefault(keyCycleLimit, defaults.CycleLimit)
	v.SetDefault(keySound, defaults.SoundEnabled)
	v.SetDefault(keyVisual, defaults.VisualEnabled)
	v.SetDefault(keyCountdownTones, defaults.CountdownTones)
	v.SetDefault(keyToneProfile, string(defaults.ToneProfile))
	v.SetDefault(keyVisualStyle, string(defaults.VisualStyle))
	v.SetDefault(keyFullscreen, true)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyMetricsAddr, "")
	if configDir, err := platform.ConfigDir(appName); err == nil {
		v.SetDefault(keyPresetsFile, filepath.Join(configDir, storage.PresetsFileName))
	}
}

// bindFlags binds the known flags defined on cmd.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// pacerConfig builds the engine configuration through the validated setters.
// Invalid values are logged and the default is kept.
func pacerConfig(v *viper.Viper, logger zerolog.Logger) model.PacerConfig {
	config := model.DefaultPacerConfig()
	check := func(key string, err error) {
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("invalid setting, keeping default")
		}
	}

	check(keyBreathInMs, config.SetBreathIn(time.Duration(v.GetInt64(keyBreathInMs))*time.Millisecond))
	check(keyBreathOutMs, config.SetBreathOut(time.Duration(v.GetInt64(keyBreathOutMs))*time.Millisecond))
	check(keyCycleLimit, config.SetCycleLimit(v.GetInt(keyCycleLimit)))
	config.SetSoundEnabled(v.GetBool(keySound))
	config.SetVisualEnabled(v.GetBool(keyVisual))
	config.SetCountdownTones(v.GetBool(keyCountdownTones))
	check(keyToneProfile, config.SetToneProfile(model.ToneProfile(v.GetString(keyToneProfile))))
	check(keyVisualStyle, config.SetVisualStyle(model.VisualStyle(v.GetString(keyVisualStyle))))
	return config
}
