package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"breathpacer/internal/core/model"
	"breathpacer/internal/core/pacer"
	"breathpacer/internal/storage"

	"github.com/spf13/cobra"
)

func newPaceCmd(state *cli) *cobra.Command {
	var presetName string

	paceCmd := &cobra.Command{
		Use:   "pace",
		Short: "Run a pacing session in the terminal",
		Long: `Run a pacing session without the desktop app. Countdown, phase and
remaining-time lines are printed until the cycle limit is reached or the
process is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := pacerConfig(state.config, state.logger)
			if presetName != "" {
				presets, err := storage.LoadPresets(state.config.GetString(keyPresetsFile))
				if err != nil {
					state.logger.Warn().Err(err).Msg("user presets not loaded")
				}
				preset, err := storage.FindPreset(presets, presetName)
				if err != nil {
					return err
				}
				config = applyPreset(cmd, preset, config)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := startServices(ctx, config, state.config, state.logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			events := svc.engine.Subscribe(subscriberBuffer)
			svc.engine.Start()
			return streamSession(ctx, svc.engine, events, cmd.OutOrStdout())
		},
	}

	flags := paceCmd.Flags()
	flags.Int("in", int(model.DefaultBreathIn.Milliseconds()), "inhale duration in milliseconds")
	flags.Int("out", int(model.DefaultBreathOut.Milliseconds()), "exhale duration in milliseconds")
	flags.Int("cycles", 0, "stop after this many cycles (0 runs until interrupted)")
	flags.Bool("sound", true, "play tone cues")
	flags.Bool("countdown-tones", true, "play tones during the countdown")
	flags.String("tone", string(model.ToneSoft), "tone profile: soft, bell, digital, warm")
	flags.String("metrics-addr", "", "serve /metrics and /status on this address")
	flags.StringVar(&presetName, "preset", "", "start from a named preset")

	return paceCmd
}

// applyPreset uses the preset timings unless a timing flag was given
// explicitly.
func applyPreset(cmd *cobra.Command, preset storage.Preset, config model.PacerConfig) model.PacerConfig {
	override := config
	config = preset.Apply(config)
	if cmd.Flags().Changed("in") {
		config.BreathIn = override.BreathIn
	}
	if cmd.Flags().Changed("out") {
		config.BreathOut = override.BreathOut
	}
	if cmd.Flags().Changed("cycles") {
		config.CycleLimit = override.CycleLimit
	}
	return config
}

// streamSession prints engine events until the run ends. Cancelling ctx
// stops the engine and drains the final state changes.
func streamSession(ctx context.Context, engine *pacer.Engine, events <-chan pacer.Event, out io.Writer) error {
	started := false
	for {
		select {
		case <-ctx.Done():
			engine.Stop()
			ctx = context.Background()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if line, show := formatEvent(event); show {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			if event.Type != pacer.EventStateChange {
				continue
			}
			if event.Mode != pacer.ModeIdle {
				started = true
				continue
			}
			if started {
				return nil
			}
		}
	}
}

func formatEvent(event pacer.Event) (string, bool) {
	switch event.Type {
	case pacer.EventCountdown:
		if event.Countdown == 0 {
			return "go", true
		}
		return fmt.Sprintf("%d", event.Countdown), true
	case pacer.EventStateChange:
		switch event.Mode {
		case pacer.ModeCountdown:
			return fmt.Sprintf("starting run %s", event.RunID), true
		case pacer.ModeStopped:
			return fmt.Sprintf("stopped (%s)", event.Message), true
		}
	case pacer.EventPhaseChange:
		cycle := fmt.Sprintf("cycle %d", event.Cycle)
		if event.CycleLimit > 0 {
			cycle = fmt.Sprintf("cycle %d/%d", event.Cycle, event.CycleLimit)
		}
		return fmt.Sprintf("%-7s %s  %s", event.Phase, cycle, event.PhaseDuration), true
	case pacer.EventTick:
		if event.Remaining > 0 && event.Remaining%time.Second == 0 {
			return fmt.Sprintf("  %ds", int(event.Remaining/time.Second)), true
		}
	case pacer.EventCompleted:
		return fmt.Sprintf("completed %d cycles", event.Cycle), true
	case pacer.EventAudioError:
		return fmt.Sprintf("audio: %s", event.Message), true
	}
	return "", false
}
