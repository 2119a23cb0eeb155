package main

import (
	"fmt"
	"text/tabwriter"

	"breathpacer/internal/storage"

	"github.com/spf13/cobra"
)

func newPresetsCmd(state *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List breathing presets",
		Long: `List the built-in breathing presets followed by those from the user
presets file (presets_file), which may override built-ins by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := storage.LoadPresets(state.config.GetString(keyPresetsFile))
			if err != nil {
				state.logger.Warn().Err(err).Msg("user presets not loaded")
			}

			writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, preset := range presets {
				fmt.Fprintf(writer, "%s\t%s\n", preset.Name, preset.Summary())
			}
			return writer.Flush()
		},
	}
}
