package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries state shared by every command once the config is loaded.
type cli struct {
	configFile string
	envFile    string
	logLevel   string

	config *viper.Viper
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	state := &cli{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "BreathPacer paces breathing with timed inhale and exhale phases",
		Long: `BreathPacer runs a 3-2-1 countdown followed by alternating inhale and
exhale phases of configurable length, with optional tones and a full-screen
visual. Without a subcommand it starts the desktop app in the system tray.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, state)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&state.configFile, "config", "", "config file (default: config.yaml in the user config dir)")
	flags.StringVar(&state.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.StringVar(&state.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newGUICmd(state))
	rootCmd.AddCommand(newPaceCmd(state))
	rootCmd.AddCommand(newCalcCmd(state))
	rootCmd.AddCommand(newPresetsCmd(state))

	return rootCmd
}

func (state *cli) load(cmd *cobra.Command) error {
	if err := loadDotEnv(state.envFile); err != nil {
		return err
	}

	config, err := newConfig(state.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(config, cmd); err != nil {
		return err
	}
	state.config = config

	level := state.logLevel
	if level == "" {
		level = config.GetString(keyLogLevel)
	}
	state.logger = newLogger(os.Stderr, level)
	state.logger.Debug().Str("config", config.ConfigFileUsed()).Msg("configuration loaded")
	return nil
}
