package main

import (
	"errors"

	"breathpacer/internal/core/model"
	"breathpacer/internal/core/pacer"
	"breathpacer/internal/platform"
	"breathpacer/internal/storage"
	"breathpacer/internal/ui/calculator"
	"breathpacer/internal/ui/overlay"
	"breathpacer/internal/ui/preferences"
	"breathpacer/internal/ui/tray"
	"breathpacer/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"
)

const overlayAlpha = 230

func newGUICmd(state *cli) *cobra.Command {
	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "Start the desktop app (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, state)
		},
	}

	flags := guiCmd.Flags()
	flags.Bool("visual", true, "show the full-screen visual during sessions")
	flags.String("style", string(model.VisualCircle), "visual style: circle or bar")
	flags.String("metrics-addr", "", "serve /metrics and /status on this address")
	return guiCmd
}

func runGUI(cmd *cobra.Command, state *cli) error {
	logger := state.logger

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Info().Msg("already running, bringing the pacer window forward")
			return platform.ActivateRunning(appName)
		}
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IdleIcon))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	config := pacerConfig(state.config, logger)
	presets, err := storage.LoadPresets(state.config.GetString(keyPresetsFile))
	if err != nil {
		logger.Warn().Err(err).Msg("user presets not loaded")
	}

	svc, err := startServices(cmd.Context(), config, state.config, logger)
	if err != nil {
		return err
	}
	engine := svc.engine

	fullscreen := state.config.GetBool(keyFullscreen)
	overlayWindow := overlay.New(fyneApp, overlay.Config{
		Opacity:    overlayAlpha,
		Fullscreen: fullscreen,
		Style:      config.VisualStyle,
	})
	overlayWindow.SetOnStop(engine.Stop)

	calcWindow := calculator.New(fyneApp, logger)
	pacerWindow := preferences.New(fyneApp, engine, presets, preferences.Callbacks{
		OnCalculator: calcWindow.Show,
	}, logger)

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnStart:      engine.Start,
		OnStop:       engine.Stop,
		OnRestart:    engine.Restart,
		OnPacer:      pacerWindow.Show,
		OnCalculator: calcWindow.Show,
		OnQuit: func() {
			engine.Stop()
			fyneApp.Quit()
		},
	})

	guard.OnActivate(func() {
		fyne.Do(pacerWindow.Show)
	})

	activeIcon := resources.MustIcon(resources.ActiveIcon)
	idleIcon := resources.MustIcon(resources.IdleIcon)
	desktopApp.SetSystemTrayIcon(idleIcon)

	events := engine.Subscribe(subscriberBuffer)
	go func() {
		for event := range events {
			session := engine.Config()
			if event.Type == pacer.EventStateChange {
				handleStateChange(event, session, fullscreen, overlayWindow, desktopApp, activeIcon, idleIcon)
			}
			overlayWindow.HandleEvent(event, session.VisualEnabled)
			pacerWindow.HandleEvent(event)
			trayManager.HandleEvent(event)
		}
	}()

	fyneApp.Lifecycle().SetOnStopped(svc.Close)

	pacerWindow.Show()
	fyneApp.Run()
	return nil
}

func handleStateChange(event pacer.Event, session model.PacerConfig, fullscreen bool, overlayWindow *overlay.Window, desktopApp desktop.App, activeIcon, idleIcon fyne.Resource) {
	switch event.Mode {
	case pacer.ModeCountdown:
		fyne.Do(func() {
			overlayWindow.UpdateConfig(overlay.Config{
				Opacity:    overlayAlpha,
				Fullscreen: fullscreen,
				Style:      session.VisualStyle,
			})
			desktopApp.SetSystemTrayIcon(activeIcon)
		})
	case pacer.ModeIdle:
		fyne.Do(func() {
			desktopApp.SetSystemTrayIcon(idleIcon)
		})
	}
}
