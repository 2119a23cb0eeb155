package preferences

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"breathpacer/internal/core/model"
	"breathpacer/internal/core/pacer"
	"breathpacer/internal/storage"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

// Controller is the part of the pacer engine the window drives.
type Controller interface {
	Start()
	Stop()
	Restart()
	Config() model.PacerConfig
	UpdateConfig(config model.PacerConfig) error
}

// Callbacks defines window action handlers.
type Callbacks struct {
	OnCalculator func()
}

// Window is the main pacer window: session controls plus settings.
type Window struct {
	window     fyne.Window
	controller Controller
	presets    []storage.Preset
	callbacks  Callbacks
	logger     zerolog.Logger

	statusLabel    *widget.Label
	invalidLabel   *widget.Label
	startButton    *widget.Button
	stopButton     *widget.Button
	restartButton  *widget.Button
	presetSelect   *widget.Select
	breathIn       *widget.Entry
	breathOut      *widget.Entry
	cycleLimit     *widget.Entry
	sound          *widget.Check
	visual         *widget.Check
	countdownTones *widget.Check
	toneSelect     *widget.Select
	styleSelect    *widget.Select
}

// New creates the pacer window.
func New(app fyne.App, controller Controller, presets []storage.Preset, callbacks Callbacks, logger zerolog.Logger) *Window {
	window := app.NewWindow("BreathPacer")

	prefs := &Window{
		window:     window,
		controller: controller,
		presets:    presets,
		callbacks:  callbacks,
		logger:     logger.With().Str("component", "pacer_window").Logger(),
	}

	prefs.statusLabel = widget.NewLabelWithStyle(statusText(pacer.Event{Mode: pacer.ModeIdle}), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	prefs.invalidLabel = widget.NewLabel("")
	prefs.invalidLabel.Wrapping = fyne.TextWrapWord

	prefs.startButton = widget.NewButton("Start", prefs.handleStart)
	prefs.stopButton = widget.NewButton("Stop", controller.Stop)
	prefs.restartButton = widget.NewButton("Restart", prefs.handleRestart)
	prefs.stopButton.Disable()

	prefs.breathIn = widget.NewEntry()
	prefs.breathIn.Validator = ValidateBreath
	prefs.breathOut = widget.NewEntry()
	prefs.breathOut.Validator = ValidateBreath
	prefs.cycleLimit = widget.NewEntry()
	prefs.cycleLimit.Validator = ValidateCycleLimit
	prefs.cycleLimit.SetPlaceHolder("unbounded")

	prefs.sound = widget.NewCheck("Sound cues", nil)
	prefs.visual = widget.NewCheck("Full-screen visual", nil)
	prefs.countdownTones = widget.NewCheck("Tones during countdown", nil)
	prefs.toneSelect = widget.NewSelect(toneOptions(), nil)
	prefs.styleSelect = widget.NewSelect(styleOptions(), nil)

	prefs.presetSelect = widget.NewSelect(presetNames(presets), prefs.handlePreset)
	prefs.presetSelect.PlaceHolder = "Choose a preset"

	form := widget.NewForm(
		widget.NewFormItem("Preset", prefs.presetSelect),
		widget.NewFormItem("Breathe in (s)", prefs.breathIn),
		widget.NewFormItem("Breathe out (s)", prefs.breathOut),
		widget.NewFormItem("Cycles", prefs.cycleLimit),
		widget.NewFormItem("Tone", prefs.toneSelect),
		widget.NewFormItem("Visual style", prefs.styleSelect),
	)

	controls := container.NewHBox(prefs.startButton, prefs.stopButton, prefs.restartButton, layout.NewSpacer(),
		widget.NewButton("Calculator", func() {
			if prefs.callbacks.OnCalculator != nil {
				prefs.callbacks.OnCalculator()
			}
		}))

	content := container.NewVBox(
		prefs.statusLabel,
		controls,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		prefs.sound,
		prefs.countdownTones,
		prefs.visual,
		prefs.invalidLabel,
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(440, 520))
	window.SetCloseIntercept(window.Hide)

	prefs.loadConfig(controller.Config())
	return prefs
}

// Show displays the window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// HandleEvent refreshes the status line and button states.
func (prefs *Window) HandleEvent(event pacer.Event) {
	if event.Type == pacer.EventAudioError {
		return
	}
	fyne.Do(func() {
		prefs.setStatusUnsafe(event)
	})
}

func (prefs *Window) setStatusUnsafe(event pacer.Event) {
	prefs.statusLabel.SetText(statusText(event))
	if event.Mode == pacer.ModeIdle || event.Mode == pacer.ModeStopped {
		prefs.startButton.Enable()
		prefs.stopButton.Disable()
		return
	}
	prefs.startButton.Disable()
	prefs.stopButton.Enable()
}

func (prefs *Window) handleStart() {
	if !prefs.applyForm() {
		return
	}
	prefs.controller.Start()
}

func (prefs *Window) handleRestart() {
	prefs.controller.Stop()
	if !prefs.applyForm() {
		return
	}
	prefs.controller.Restart()
}

func (prefs *Window) handlePreset(name string) {
	preset, err := storage.FindPreset(prefs.presets, name)
	if err != nil {
		return
	}
	config, _ := prefs.form().Apply(prefs.controller.Config())
	prefs.loadConfig(preset.Apply(config))
}

// applyForm pushes the form to the engine. Invalid fields keep their prior
// value and are listed under the form.
func (prefs *Window) applyForm() bool {
	config, invalid := prefs.form().Apply(prefs.controller.Config())
	prefs.invalidLabel.SetText(invalidText(invalid))
	if len(invalid) > 0 {
		prefs.logger.Warn().Int("fields", len(invalid)).Msg("invalid settings kept previous values")
	}

	if err := prefs.controller.UpdateConfig(config); err != nil {
		prefs.logger.Warn().Err(err).Msg("settings not applied")
		prefs.invalidLabel.SetText(err.Error())
		return false
	}
	prefs.loadConfig(config)
	return true
}

func (prefs *Window) form() Form {
	return Form{
		BreathIn:       prefs.breathIn.Text,
		BreathOut:      prefs.breathOut.Text,
		CycleLimit:     prefs.cycleLimit.Text,
		SoundEnabled:   prefs.sound.Checked,
		VisualEnabled:  prefs.visual.Checked,
		CountdownTones: prefs.countdownTones.Checked,
		ToneProfile:    prefs.toneSelect.Selected,
		VisualStyle:    prefs.styleSelect.Selected,
	}
}

func (prefs *Window) loadConfig(config model.PacerConfig) {
	form := FormFromConfig(config)
	prefs.breathIn.SetText(form.BreathIn)
	prefs.breathOut.SetText(form.BreathOut)
	prefs.cycleLimit.SetText(form.CycleLimit)
	prefs.sound.SetChecked(form.SoundEnabled)
	prefs.visual.SetChecked(form.VisualEnabled)
	prefs.countdownTones.SetChecked(form.CountdownTones)
	prefs.toneSelect.SetSelected(form.ToneProfile)
	prefs.styleSelect.SetSelected(form.VisualStyle)
}

func statusText(event pacer.Event) string {
	switch event.Mode {
	case pacer.ModeCountdown:
		if event.Countdown <= 0 {
			return "Go"
		}
		return fmt.Sprintf("Starting in %d", event.Countdown)
	case pacer.ModeRunning:
		phase := "Breathe in"
		if event.Phase == pacer.PhaseExhale {
			phase = "Breathe out"
		}
		cycle := fmt.Sprintf("cycle %d", event.Cycle)
		if event.CycleLimit > 0 {
			cycle = fmt.Sprintf("cycle %d/%d", event.Cycle, event.CycleLimit)
		}
		seconds := math.Ceil(event.Remaining.Seconds())
		return fmt.Sprintf("%s · %s · %.0fs", phase, cycle, seconds)
	default:
		return "Ready"
	}
}

func invalidText(invalid map[Field]error) string {
	if len(invalid) == 0 {
		return ""
	}
	lines := make([]string, 0, len(invalid))
	for field, err := range invalid {
		lines = append(lines, fmt.Sprintf("%s: %v (kept previous value)", field, err))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

func toneOptions() []string {
	options := make([]string, 0, len(model.ToneProfiles()))
	for _, profile := range model.ToneProfiles() {
		options = append(options, string(profile))
	}
	return options
}

func styleOptions() []string {
	options := make([]string, 0, len(model.VisualStyles()))
	for _, style := range model.VisualStyles() {
		options = append(options, string(style))
	}
	return options
}

func presetNames(presets []storage.Preset) []string {
	names := make([]string, 0, len(presets))
	for _, preset := range presets {
		names = append(names, preset.Name)
	}
	return names
}
