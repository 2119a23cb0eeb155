package pacer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"breathpacer/internal/clock"
	"breathpacer/internal/core/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// CountdownStart is the first countdown value shown after Start.
	CountdownStart = 3
	// CountdownStep separates consecutive countdown values.
	CountdownStep = time.Second
	// RunningDelay separates the final countdown value from the first inhale.
	RunningDelay = time.Second
	// DisplayTick is the period of the cosmetic remaining-time ticker.
	DisplayTick = 100 * time.Millisecond
	// RestartDelay separates the stop and start halves of Restart.
	RestartDelay = 100 * time.Millisecond
)

// ErrSessionActive indicates the configuration cannot change mid-session.
var ErrSessionActive = errors.New("pacing session active")

// Sounder plays audible cues. Play must not block on audio output.
type Sounder interface {
	Play(profile model.ToneProfile, cue model.Cue) error
}

// Options contains runtime collaborators for the Engine.
type Options struct {
	Clock    clock.Clock
	Sounder  Sounder
	Logger   zerolog.Logger
	NewRunID func() string
}

// Engine is the breathing pacer state machine. All state sits behind one
// mutex; scheduled callbacks carry the generation they were armed in and are
// ignored once that generation has ended.
type Engine struct {
	mu      sync.Mutex
	config  model.PacerConfig
	session model.PacerConfig
	options Options
	logger  zerolog.Logger

	mode       Mode
	runID      string
	generation uint64
	countdown  int
	phase      Phase
	cycle      int
	remaining  time.Duration

	// pending is the single armed transition: a countdown step, a phase
	// boundary or a delayed restart.
	pending clock.Timer
	ticker  clock.Timer

	events []chan Event
	closed bool
}

type toneBatch struct {
	runID   string
	profile model.ToneProfile
	cues    []model.Cue
}

// New creates an idle Engine with the provided configuration.
func New(config model.PacerConfig, options Options) *Engine {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.NewRunID == nil {
		options.NewRunID = uuid.NewString
	}
	return &Engine{
		config:  config,
		options: options,
		logger:  options.Logger.With().Str("component", "pacer").Logger(),
		mode:    ModeIdle,
	}
}

// Subscribe registers a new observer channel. Events are dropped for
// observers whose buffer is full.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		close(ch)
		return ch
	}
	engine.events = append(engine.events, ch)
	return ch
}

// Config returns the configuration used by the next run.
func (engine *Engine) Config() model.PacerConfig {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.config
}

// UpdateConfig replaces the configuration. It is rejected while a run is in
// progress.
func (engine *Engine) UpdateConfig(config model.PacerConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.mode != ModeIdle {
		return ErrSessionActive
	}
	engine.config = config
	return nil
}

// Snapshot returns the current engine state.
func (engine *Engine) Snapshot() Snapshot {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return Snapshot{
		Mode:      engine.mode,
		RunID:     engine.runID,
		Countdown: engine.countdown,
		Phase:     engine.phase,
		Cycle:     engine.cycle,
		Remaining: engine.remaining,
	}
}

// Start begins the countdown. It is a no-op unless the engine is idle.
func (engine *Engine) Start() {
	var batch toneBatch
	engine.mu.Lock()
	engine.startLocked(&batch)
	engine.mu.Unlock()
	engine.play(batch)
}

// Stop cancels every scheduled callback and returns to idle.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	engine.stopLocked(ReasonStopped)
	engine.mu.Unlock()
}

// Restart stops the current run and starts a fresh one after RestartDelay.
func (engine *Engine) Restart() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.closed {
		return
	}
	engine.stopLocked(ReasonRestart)
	generation := engine.generation
	engine.pending = engine.options.Clock.AfterFunc(RestartDelay, func() {
		engine.restartStep(generation)
	})
}

// Close stops the engine and closes every observer channel.
func (engine *Engine) Close() {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return
	}
	engine.stopLocked(ReasonClosed)
	engine.closed = true
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (engine *Engine) startLocked(batch *toneBatch) bool {
	if engine.closed || engine.mode != ModeIdle {
		return false
	}
	engine.cancelTimersLocked()
	engine.generation++
	engine.session = engine.config
	engine.runID = engine.options.NewRunID()
	engine.mode = ModeCountdown
	engine.countdown = CountdownStart
	engine.phase = PhaseNone
	engine.cycle = 0
	engine.remaining = 0

	engine.logger.Info().
		Str("run_id", engine.runID).
		Dur("breath_in", engine.session.BreathIn).
		Dur("breath_out", engine.session.BreathOut).
		Int("cycle_limit", engine.session.CycleLimit).
		Msg("pacing session started")

	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.emitLocked(engine.eventLocked(EventCountdown))
	if engine.session.CountdownTones {
		engine.cueLocked(batch, model.CueCountdown)
	}
	engine.armLocked(CountdownStep, engine.countdownStep)
	return true
}

func (engine *Engine) countdownStep(generation uint64) {
	var batch toneBatch
	engine.mu.Lock()
	if !engine.currentLocked(generation, ModeCountdown) {
		engine.mu.Unlock()
		return
	}
	engine.pending = nil

	if engine.countdown > 0 {
		engine.countdown--
		engine.emitLocked(engine.eventLocked(EventCountdown))
		if engine.session.CountdownTones {
			cue := model.CueCountdown
			if engine.countdown == 0 {
				cue = model.CueGo
			}
			engine.cueLocked(&batch, cue)
		}
		delay := CountdownStep
		if engine.countdown == 0 {
			delay = RunningDelay
		}
		engine.armLocked(delay, engine.countdownStep)
	} else {
		engine.enterRunningLocked(&batch)
	}
	engine.mu.Unlock()
	engine.play(batch)
}

func (engine *Engine) enterRunningLocked(batch *toneBatch) {
	engine.mode = ModeRunning
	engine.countdown = 0
	engine.cycle = 1
	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.enterPhaseLocked(PhaseInhale, batch)

	generation := engine.generation
	engine.ticker = engine.options.Clock.Every(DisplayTick, func() {
		engine.displayTick(generation)
	})
}

func (engine *Engine) enterPhaseLocked(phase Phase, batch *toneBatch) {
	engine.phase = phase
	engine.remaining = engine.phaseDurationLocked()

	engine.logger.Debug().
		Str("run_id", engine.runID).
		Str("phase", string(phase)).
		Int("cycle", engine.cycle).
		Msg("phase started")

	engine.emitLocked(engine.eventLocked(EventPhaseChange))
	if phase == PhaseInhale {
		engine.cueLocked(batch, model.CueInhale)
	} else {
		engine.cueLocked(batch, model.CueExhale)
	}
	engine.armLocked(engine.remaining, engine.phaseStep)
}

func (engine *Engine) phaseStep(generation uint64) {
	var batch toneBatch
	engine.mu.Lock()
	if !engine.currentLocked(generation, ModeRunning) {
		engine.mu.Unlock()
		return
	}
	engine.pending = nil

	switch engine.phase {
	case PhaseInhale:
		engine.enterPhaseLocked(PhaseExhale, &batch)
	default:
		if engine.session.Bounded() && engine.cycle >= engine.session.CycleLimit {
			engine.emitLocked(engine.eventLocked(EventCompleted))
			engine.stopLocked(ReasonCompleted)
			break
		}
		engine.cycle++
		engine.enterPhaseLocked(PhaseInhale, &batch)
	}
	engine.mu.Unlock()
	engine.play(batch)
}

// displayTick only touches the remaining time; phase boundaries belong to
// phaseStep.
func (engine *Engine) displayTick(generation uint64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.currentLocked(generation, ModeRunning) {
		return
	}
	engine.remaining -= DisplayTick
	if engine.remaining < 0 {
		engine.remaining = 0
	}
	engine.emitLocked(engine.eventLocked(EventTick))
}

func (engine *Engine) restartStep(generation uint64) {
	var batch toneBatch
	engine.mu.Lock()
	if !engine.currentLocked(generation, ModeIdle) {
		engine.mu.Unlock()
		return
	}
	engine.pending = nil
	engine.startLocked(&batch)
	engine.mu.Unlock()
	engine.play(batch)
}

func (engine *Engine) stopLocked(reason string) bool {
	engine.cancelTimersLocked()
	engine.generation++
	if engine.mode == ModeIdle {
		return false
	}

	engine.logger.Info().
		Str("run_id", engine.runID).
		Str("reason", reason).
		Str("mode", string(engine.mode)).
		Int("cycle", engine.cycle).
		Msg("pacing session stopped")

	engine.countdown = 0
	engine.phase = PhaseNone
	engine.cycle = 0
	engine.remaining = 0

	engine.mode = ModeStopped
	stopped := engine.eventLocked(EventStateChange)
	stopped.Message = reason
	engine.emitLocked(stopped)
	engine.mode = ModeIdle
	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.runID = ""
	return true
}

func (engine *Engine) cancelTimersLocked() {
	if engine.pending != nil {
		engine.pending.Stop()
		engine.pending = nil
	}
	if engine.ticker != nil {
		engine.ticker.Stop()
		engine.ticker = nil
	}
}

func (engine *Engine) armLocked(delay time.Duration, step func(uint64)) {
	if engine.pending != nil {
		engine.pending.Stop()
	}
	generation := engine.generation
	engine.pending = engine.options.Clock.AfterFunc(delay, func() {
		step(generation)
	})
}

func (engine *Engine) currentLocked(generation uint64, mode Mode) bool {
	return !engine.closed && generation == engine.generation && engine.mode == mode
}

func (engine *Engine) phaseDurationLocked() time.Duration {
	switch engine.phase {
	case PhaseInhale:
		return engine.session.BreathIn
	case PhaseExhale:
		return engine.session.BreathOut
	default:
		return 0
	}
}

func (engine *Engine) cueLocked(batch *toneBatch, cue model.Cue) {
	if !engine.session.SoundEnabled {
		return
	}
	batch.runID = engine.runID
	batch.profile = engine.session.ToneProfile
	batch.cues = append(batch.cues, cue)
}

// play runs outside the lock so audio problems never hold up a transition.
func (engine *Engine) play(batch toneBatch) {
	if engine.options.Sounder == nil {
		return
	}
	for _, cue := range batch.cues {
		err := engine.options.Sounder.Play(batch.profile, cue)
		if err == nil {
			continue
		}
		engine.logger.Debug().Err(err).
			Str("run_id", batch.runID).
			Str("cue", string(cue)).
			Msg("tone emission failed")

		engine.mu.Lock()
		event := engine.eventLocked(EventAudioError)
		event.RunID = batch.runID
		event.Message = err.Error()
		engine.emitLocked(event)
		engine.mu.Unlock()
	}
}

func (engine *Engine) eventLocked(eventType EventType) Event {
	duration := engine.phaseDurationLocked()
	return Event{
		Type:          eventType,
		RunID:         engine.runID,
		Mode:          engine.mode,
		Countdown:     engine.countdown,
		Phase:         engine.phase,
		Cycle:         engine.cycle,
		CycleLimit:    engine.session.CycleLimit,
		Remaining:     engine.remaining,
		PhaseDuration: duration,
		Progress:      phaseProgress(duration, engine.remaining),
		At:            engine.options.Clock.Now(),
	}
}

func (engine *Engine) emitLocked(event Event) {
	for _, ch := range engine.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func phaseProgress(duration, remaining time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	progress := float64(duration-remaining) / float64(duration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
