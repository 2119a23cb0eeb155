package overlay

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"breathpacer/internal/core/model"
	"breathpacer/internal/core/pacer"
	"breathpacer/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    uint8
	Fullscreen bool
	Style      model.VisualStyle
}

// Window shows the breathing visual while a session runs.
type Window struct {
	app            fyne.App
	window         fyne.Window
	config         Config
	background     *canvas.Rectangle
	visual         *fyne.Container
	layout         *breathLayout
	phaseLabel     *canvas.Text
	countdownLabel *canvas.Text
	timerLabel     *canvas.Text
	cycleLabel     *canvas.Text
	stopButton     *widget.Button
	engine         *animation.Engine
	cancelCtx      context.CancelFunc
	onStop         func()
}

const (
	windowedWidth  = float32(420)
	windowedHeight = float32(480)
)

var (
	inhaleColor = color.NRGBA{R: 94, G: 196, B: 182, A: 255}
	exhaleColor = color.NRGBA{R: 120, G: 144, B: 214, A: 255}
	trackColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 40}
	textColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	timerColor  = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a new overlay window.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow("BreathPacer")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	circle := canvas.NewCircle(inhaleColor)
	track := canvas.NewRectangle(trackColor)
	track.CornerRadius = 12
	bar := canvas.NewRectangle(inhaleColor)
	bar.CornerRadius = 12
	breath := &breathLayout{style: config.Style}
	visual := container.New(breath, circle, track, bar)

	phaseLabel := newText("", 32, true)
	countdownLabel := newText("", 96, true)
	timerLabel := newText("--:--", 20, true)
	timerLabel.Color = timerColor
	cycleLabel := newText("", 16, false)

	stopButton := widget.NewButton("Stop", nil)

	header := container.NewVBox(phaseLabel, cycleLabel)
	footer := container.NewVBox(timerLabel, container.NewCenter(stopButton))
	center := container.NewStack(visual, countdownLabel)
	root := container.NewStack(background, container.NewBorder(header, footer, nil, nil, center))
	window.SetContent(root)

	overlay := &Window{
		app:            app,
		window:         window,
		config:         config,
		background:     background,
		visual:         visual,
		layout:         breath,
		phaseLabel:     phaseLabel,
		countdownLabel: countdownLabel,
		timerLabel:     timerLabel,
		cycleLabel:     cycleLabel,
		stopButton:     stopButton,
	}
	overlay.engine = animation.New(animation.DefaultConfig(), overlay.SetFrame)

	stopButton.OnTapped = overlay.requestStop
	window.Canvas().SetOnTypedKey(func(event *fyne.KeyEvent) {
		if event.Name == fyne.KeyEscape {
			overlay.requestStop()
		}
	})
	window.SetCloseIntercept(overlay.requestStop)

	return overlay
}

// HandleEvent updates the overlay from an engine event. The overlay only
// appears when visible is set for the run.
func (overlay *Window) HandleEvent(event pacer.Event, visible bool) {
	switch event.Type {
	case pacer.EventStateChange:
		switch event.Mode {
		case pacer.ModeCountdown:
			if !visible {
				return
			}
			overlay.stopAnimation()
			overlay.engine.Hold(0)
			fyne.Do(func() {
				overlay.setPhaseUnsafe(pacer.PhaseNone, 0, event.CycleLimit)
				overlay.setCountdownUnsafe(event.Countdown)
				overlay.show()
			})
		case pacer.ModeIdle, pacer.ModeStopped:
			overlay.stopAnimation()
			fyne.Do(overlay.hide)
		}
	case pacer.EventCountdown:
		fyne.Do(func() {
			overlay.setCountdownUnsafe(event.Countdown)
		})
	case pacer.EventPhaseChange:
		fyne.Do(func() {
			overlay.clearCountdownUnsafe()
			overlay.setPhaseUnsafe(event.Phase, event.Cycle, event.CycleLimit)
			overlay.setRemainingUnsafe(event.Remaining)
		})
		overlay.startAnimation(event)
	case pacer.EventTick:
		fyne.Do(func() {
			overlay.setRemainingUnsafe(event.Remaining)
		})
	}
}

// SetOnStop sets the handler for the Stop button and Escape key.
func (overlay *Window) SetOnStop(handler func()) {
	overlay.onStop = handler
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{A: config.Opacity}
	overlay.layout.style = config.Style
	canvas.Refresh(overlay.background)
	overlay.visual.Refresh()
}

// SetFrame renders an animation frame.
func (overlay *Window) SetFrame(frame animation.Frame) {
	fyne.Do(func() {
		overlay.setFrameUnsafe(frame)
	})
}

func (overlay *Window) setFrameUnsafe(frame animation.Frame) {
	fill := inhaleColor
	if frame.Phase == pacer.PhaseExhale {
		fill = exhaleColor
	}
	objects := overlay.visual.Objects
	objects[0].(*canvas.Circle).FillColor = fill
	objects[2].(*canvas.Rectangle).FillColor = fill
	overlay.layout.level = frame.Level
	overlay.visual.Refresh()
}

func (overlay *Window) setPhaseUnsafe(phase pacer.Phase, cycle, limit int) {
	overlay.phaseLabel.Text = phaseText(phase)
	overlay.phaseLabel.Refresh()
	overlay.cycleLabel.Text = cycleText(cycle, limit)
	overlay.cycleLabel.Refresh()
}

func (overlay *Window) setCountdownUnsafe(value int) {
	overlay.countdownLabel.Text = countdownText(value)
	overlay.countdownLabel.Refresh()
}

func (overlay *Window) clearCountdownUnsafe() {
	overlay.countdownLabel.Text = ""
	overlay.countdownLabel.Refresh()
}

func (overlay *Window) setRemainingUnsafe(remaining time.Duration) {
	overlay.timerLabel.Text = formatDuration(remaining)
	overlay.timerLabel.Refresh()
}

func (overlay *Window) startAnimation(event pacer.Event) {
	overlay.stopAnimation()
	ctx, cancel := context.WithCancel(context.Background())
	overlay.cancelCtx = cancel
	overlay.engine.StartPhase(ctx, event.Phase, event.PhaseDuration, event.PhaseDuration-event.Remaining)
}

func (overlay *Window) stopAnimation() {
	if overlay.cancelCtx != nil {
		overlay.cancelCtx()
		overlay.cancelCtx = nil
	}
	overlay.engine.Stop()
}

func (overlay *Window) requestStop() {
	if overlay.onStop != nil {
		overlay.onStop()
	}
}

func (overlay *Window) show() {
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()
}

func (overlay *Window) hide() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.window.Resize(fyne.NewSize(windowedWidth, windowedHeight))
	overlay.window.CenterOnScreen()
}

func newText(value string, size float32, bold bool) *canvas.Text {
	text := canvas.NewText(value, textColor)
	text.Alignment = fyne.TextAlignCenter
	text.TextStyle = fyne.TextStyle{Bold: bold}
	text.TextSize = size
	return text
}

func phaseText(phase pacer.Phase) string {
	switch phase {
	case pacer.PhaseInhale:
		return "Breathe in"
	case pacer.PhaseExhale:
		return "Breathe out"
	default:
		return "Get ready"
	}
}

func cycleText(cycle, limit int) string {
	if cycle <= 0 {
		return ""
	}
	if limit > 0 {
		return fmt.Sprintf("Cycle %d of %d", cycle, limit)
	}
	return fmt.Sprintf("Cycle %d", cycle)
}

func countdownText(value int) string {
	if value <= 0 {
		return "Go"
	}
	return fmt.Sprintf("%d", value)
}

// formatDuration rounds up to whole seconds so a phase never shows 00:00
// while it is still running.
func formatDuration(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	seconds := int(math.Ceil(value.Seconds()))
	minutes := seconds / 60
	seconds = seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
