package pacer

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"breathpacer/internal/clock"
	"breathpacer/internal/core/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

type recordingSounder struct {
	mu   sync.Mutex
	cues []model.Cue
	err  error
}

func (sounder *recordingSounder) Play(_ model.ToneProfile, cue model.Cue) error {
	sounder.mu.Lock()
	defer sounder.mu.Unlock()
	sounder.cues = append(sounder.cues, cue)
	return sounder.err
}

func (sounder *recordingSounder) played() []model.Cue {
	sounder.mu.Lock()
	defer sounder.mu.Unlock()
	return append([]model.Cue(nil), sounder.cues...)
}

type harness struct {
	engine  *Engine
	clock   *clock.Manual
	events  <-chan Event
	sounder *recordingSounder
}

func newHarness(t *testing.T, config model.PacerConfig) *harness {
	t.Helper()
	manual := clock.NewManual(testEpoch)
	sounder := &recordingSounder{}
	runs := 0
	engine := New(config, Options{
		Clock:   manual,
		Sounder: sounder,
		Logger:  zerolog.Nop(),
		NewRunID: func() string {
			runs++
			return fmt.Sprintf("run-%d", runs)
		},
	})
	t.Cleanup(engine.Close)
	return &harness{
		engine:  engine,
		clock:   manual,
		events:  engine.Subscribe(1 << 16),
		sounder: sounder,
	}
}

func (h *harness) drain() []Event {
	var out []Event
	for {
		select {
		case event, ok := <-h.events:
			if !ok {
				return out
			}
			out = append(out, event)
		default:
			return out
		}
	}
}

func (h *harness) elapsed(event Event) time.Duration {
	return event.At.Sub(testEpoch)
}

func filter(events []Event, eventType EventType) []Event {
	var out []Event
	for _, event := range events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func pacerConfig(breathIn, breathOut time.Duration, cycles int) model.PacerConfig {
	config := model.DefaultPacerConfig()
	config.BreathIn = breathIn
	config.BreathOut = breathOut
	config.CycleLimit = cycles
	return config
}

func TestStartReachesInhaleAfterFourSeconds(t *testing.T) {
	tests := []struct {
		name      string
		breathIn  time.Duration
		breathOut time.Duration
	}{
		{"shortest phases", 500 * time.Millisecond, 500 * time.Millisecond},
		{"defaults", 4 * time.Second, 6 * time.Second},
		{"longest phases", time.Minute, time.Minute},
		{"asymmetric", 700 * time.Millisecond, 45 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, pacerConfig(tt.breathIn, tt.breathOut, 0))
			h.engine.Start()

			snapshot := h.engine.Snapshot()
			assert.Equal(t, ModeCountdown, snapshot.Mode)
			assert.Equal(t, 3, snapshot.Countdown)

			h.clock.Advance(3999 * time.Millisecond)
			assert.Equal(t, ModeCountdown, h.engine.Snapshot().Mode)
			assert.Equal(t, 0, h.engine.Snapshot().Countdown)

			h.clock.Advance(time.Millisecond)
			snapshot = h.engine.Snapshot()
			assert.Equal(t, ModeRunning, snapshot.Mode)
			assert.Equal(t, PhaseInhale, snapshot.Phase)
			assert.Equal(t, 1, snapshot.Cycle)
			assert.Equal(t, tt.breathIn, snapshot.Remaining)

			phases := filter(h.drain(), EventPhaseChange)
			require.Len(t, phases, 1)
			assert.Equal(t, 4*time.Second, h.elapsed(phases[0]))
		})
	}
}

func TestCountdownStrictlyDecreases(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Start()
	h.clock.Advance(4 * time.Second)

	countdown := filter(h.drain(), EventCountdown)
	require.Len(t, countdown, 4)
	for index, event := range countdown {
		assert.Equal(t, 3-index, event.Countdown)
		assert.Equal(t, time.Duration(index)*time.Second, h.elapsed(event))
		assert.Equal(t, ModeCountdown, event.Mode)
	}
}

func TestPhasesAlternateStartingWithInhale(t *testing.T) {
	breathIn := 1500 * time.Millisecond
	breathOut := 2500 * time.Millisecond
	h := newHarness(t, pacerConfig(breathIn, breathOut, 0))
	h.engine.Start()
	h.clock.Advance(4*time.Second + 10*(breathIn+breathOut))

	phases := filter(h.drain(), EventPhaseChange)
	require.Len(t, phases, 21)

	expectedAt := 4 * time.Second
	for index, event := range phases {
		want := PhaseInhale
		duration := breathIn
		if index%2 == 1 {
			want = PhaseExhale
			duration = breathOut
		}
		assert.Equal(t, want, event.Phase, "phase %d", index)
		assert.Equal(t, expectedAt, h.elapsed(event), "phase %d", index)
		assert.Equal(t, duration, event.PhaseDuration)
		assert.Equal(t, duration, event.Remaining)
		assert.Equal(t, index/2+1, event.Cycle)
		expectedAt += duration
	}
}

func TestBoundedSessionStopsAfterLimit(t *testing.T) {
	h := newHarness(t, pacerConfig(time.Second, 2*time.Second, 3))
	h.engine.Start()
	h.clock.Advance(4*time.Second + 3*3*time.Second)

	events := h.drain()
	phases := filter(events, EventPhaseChange)
	require.Len(t, phases, 6)
	inhales, exhales := 0, 0
	for _, event := range phases {
		if event.Phase == PhaseInhale {
			inhales++
		} else {
			exhales++
		}
	}
	assert.Equal(t, 3, inhales)
	assert.Equal(t, 3, exhales)

	completed := filter(events, EventCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, 3, completed[0].Cycle)
	assert.Equal(t, 13*time.Second, h.elapsed(completed[0]))

	states := filter(events, EventStateChange)
	require.GreaterOrEqual(t, len(states), 2)
	assert.Equal(t, ModeStopped, states[len(states)-2].Mode)
	assert.Equal(t, ReasonCompleted, states[len(states)-2].Message)
	assert.Equal(t, ModeIdle, states[len(states)-1].Mode)

	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(time.Hour)
	assert.Empty(t, h.drain())
}

func TestUnboundedSessionNeverStopsOnItsOwn(t *testing.T) {
	h := newHarness(t, pacerConfig(time.Second, time.Second, 0))
	h.engine.Start()

	for minute := 0; minute < 30; minute++ {
		h.clock.Advance(time.Minute)
		events := h.drain()
		assert.Empty(t, filter(events, EventCompleted))
		for _, event := range filter(events, EventStateChange) {
			assert.NotEqual(t, ModeStopped, event.Mode)
		}
	}

	snapshot := h.engine.Snapshot()
	assert.Equal(t, ModeRunning, snapshot.Mode)
	assert.Greater(t, snapshot.Cycle, 800)

	h.engine.Stop()
	states := filter(h.drain(), EventStateChange)
	require.Len(t, states, 2)
	assert.Equal(t, ModeStopped, states[0].Mode)
	assert.Equal(t, ReasonStopped, states[0].Message)
	assert.Equal(t, ModeIdle, states[1].Mode)
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	once := newHarness(t, model.DefaultPacerConfig())
	once.engine.Start()
	once.clock.Advance(6 * time.Second)
	once.engine.Stop()
	once.clock.Advance(time.Minute)

	twice := newHarness(t, model.DefaultPacerConfig())
	twice.engine.Start()
	twice.engine.Start()
	twice.clock.Advance(6 * time.Second)
	twice.engine.Start()
	twice.engine.Stop()
	twice.engine.Stop()
	twice.clock.Advance(time.Minute)

	onceEvents := once.drain()
	twiceEvents := twice.drain()
	require.Equal(t, len(onceEvents), len(twiceEvents))
	for index := range onceEvents {
		assert.Equal(t, onceEvents[index].Type, twiceEvents[index].Type)
		assert.Equal(t, onceEvents[index].Mode, twiceEvents[index].Mode)
		assert.Equal(t, onceEvents[index].Phase, twiceEvents[index].Phase)
		assert.Equal(t, onceEvents[index].At, twiceEvents[index].At)
	}
	assert.Equal(t, once.sounder.played(), twice.sounder.played())
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Stop()
	assert.Empty(t, h.drain())
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
}

func TestStopClearsState(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Start()
	h.clock.Advance(5 * time.Second)
	h.engine.Stop()

	assert.Equal(t, Snapshot{Mode: ModeIdle}, h.engine.Snapshot())
	assert.Zero(t, h.clock.Pending())
}

func TestStopDuringCountdown(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Start()
	h.clock.Advance(1500 * time.Millisecond)
	h.engine.Stop()
	h.drain()

	h.clock.Advance(time.Minute)
	assert.Empty(t, h.drain())
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
}

func TestRestartDiscardsPreviousRun(t *testing.T) {
	h := newHarness(t, pacerConfig(4*time.Second, 6*time.Second, 0))
	h.engine.Start()
	h.clock.Advance(4*time.Second + 1500*time.Millisecond)
	before := h.drain()
	require.NotEmpty(t, filter(before, EventPhaseChange))
	assert.Equal(t, "run-1", before[0].RunID)

	h.engine.Restart()
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)

	h.clock.Advance(RestartDelay)
	assert.Equal(t, ModeCountdown, h.engine.Snapshot().Mode)

	h.clock.Advance(time.Minute)
	after := h.drain()

	states := filter(after, EventStateChange)
	require.GreaterOrEqual(t, len(states), 3)
	assert.Equal(t, ModeStopped, states[0].Mode)
	assert.Equal(t, "run-1", states[0].RunID)
	assert.Equal(t, ReasonRestart, states[0].Message)
	assert.Equal(t, ModeIdle, states[1].Mode)
	assert.Equal(t, ModeCountdown, states[2].Mode)
	assert.Equal(t, "run-2", states[2].RunID)

	phases := filter(after, EventPhaseChange)
	require.NotEmpty(t, phases)
	for _, event := range phases {
		assert.Equal(t, "run-2", event.RunID)
	}
	restartAt := 5500 * time.Millisecond
	assert.Equal(t, restartAt+RestartDelay+4*time.Second, h.elapsed(phases[0]))
	assert.Equal(t, PhaseInhale, phases[0].Phase)
	for _, event := range filter(after, EventTick) {
		assert.Equal(t, "run-2", event.RunID)
	}
}

func TestStopCancelsPendingRestart(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Start()
	h.clock.Advance(5 * time.Second)
	h.engine.Restart()
	h.engine.Stop()
	h.drain()

	h.clock.Advance(time.Minute)
	assert.Empty(t, h.drain())
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
}

func TestRestartFromIdleStartsAfterDelay(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Restart()
	assert.Empty(t, h.drain())

	h.clock.Advance(RestartDelay - time.Millisecond)
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)
	h.clock.Advance(time.Millisecond)
	assert.Equal(t, ModeCountdown, h.engine.Snapshot().Mode)
}

func TestDisplayTickerNeverChangesPhase(t *testing.T) {
	breathIn := 1250 * time.Millisecond
	breathOut := 950 * time.Millisecond
	h := newHarness(t, pacerConfig(breathIn, breathOut, 0))
	h.engine.Start()
	h.clock.Advance(4*time.Second + 20*(breathIn+breathOut))

	var current Event
	ticks := 0
	for _, event := range h.drain() {
		switch event.Type {
		case EventPhaseChange:
			current = event
		case EventTick:
			ticks++
			require.NotEmpty(t, current.Phase)
			assert.Equal(t, current.Phase, event.Phase)
			assert.Equal(t, current.Cycle, event.Cycle)
			assert.GreaterOrEqual(t, event.Remaining, time.Duration(0))
			assert.LessOrEqual(t, event.Remaining, event.PhaseDuration)
			assert.GreaterOrEqual(t, event.Progress, 0.0)
			assert.LessOrEqual(t, event.Progress, 1.0)
		}
	}
	assert.Equal(t, int((20*(breathIn+breathOut))/DisplayTick), ticks)
}

func TestRemainingCountsDownByDisplayTick(t *testing.T) {
	h := newHarness(t, pacerConfig(4*time.Second, 6*time.Second, 0))
	h.engine.Start()
	h.clock.Advance(4 * time.Second)
	h.clock.Advance(time.Second)
	assert.Equal(t, 3*time.Second, h.engine.Snapshot().Remaining)

	h.clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 3*time.Second, h.engine.Snapshot().Remaining)
}

func TestToneCues(t *testing.T) {
	tests := []struct {
		name           string
		sound          bool
		countdownTones bool
		want           []model.Cue
	}{
		{
			name:           "countdown tones",
			sound:          true,
			countdownTones: true,
			want: []model.Cue{
				model.CueCountdown, model.CueCountdown, model.CueCountdown, model.CueGo,
				model.CueInhale, model.CueExhale, model.CueInhale,
			},
		},
		{
			name:  "phase tones only",
			sound: true,
			want:  []model.Cue{model.CueInhale, model.CueExhale, model.CueInhale},
		},
		{
			name:           "sound disabled",
			countdownTones: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := pacerConfig(time.Second, time.Second, 0)
			config.SoundEnabled = tt.sound
			config.CountdownTones = tt.countdownTones
			h := newHarness(t, config)
			h.engine.Start()
			h.clock.Advance(6 * time.Second)

			assert.Equal(t, tt.want, h.sounder.played())
		})
	}
}

func TestAudioFailureDoesNotAffectTimeline(t *testing.T) {
	silent := newHarness(t, pacerConfig(time.Second, 2*time.Second, 2))
	failing := newHarness(t, pacerConfig(time.Second, 2*time.Second, 2))
	failing.sounder.err = errors.New("audio device unavailable")

	for _, h := range []*harness{silent, failing} {
		h.engine.Start()
		h.clock.Advance(20 * time.Second)
	}

	silentEvents := silent.drain()
	failingEvents := failing.drain()

	audioErrors := filter(failingEvents, EventAudioError)
	assert.NotEmpty(t, audioErrors)
	assert.Equal(t, "audio device unavailable", audioErrors[0].Message)
	assert.Empty(t, filter(silentEvents, EventAudioError))

	var withoutErrors []Event
	for _, event := range failingEvents {
		if event.Type != EventAudioError {
			withoutErrors = append(withoutErrors, event)
		}
	}
	assert.Equal(t, silentEvents, withoutErrors)
}

func TestUpdateConfig(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())

	invalid := model.DefaultPacerConfig()
	invalid.BreathIn = 100 * time.Millisecond
	assert.ErrorIs(t, h.engine.UpdateConfig(invalid), model.ErrOutOfRange)
	assert.Equal(t, model.DefaultBreathIn, h.engine.Config().BreathIn)

	h.engine.Start()
	updated := pacerConfig(time.Second, time.Second, 1)
	assert.ErrorIs(t, h.engine.UpdateConfig(updated), ErrSessionActive)

	h.engine.Stop()
	require.NoError(t, h.engine.UpdateConfig(updated))
	assert.Equal(t, updated, h.engine.Config())

	h.drain()
	h.engine.Start()
	h.clock.Advance(4*time.Second + 2*time.Second)
	assert.Len(t, filter(h.drain(), EventCompleted), 1)
}

func TestCloseClosesSubscribers(t *testing.T) {
	h := newHarness(t, model.DefaultPacerConfig())
	h.engine.Start()
	h.engine.Close()
	h.engine.Close()

	events := h.drain()
	states := filter(events, EventStateChange)
	require.NotEmpty(t, states)
	assert.Equal(t, ModeIdle, states[len(states)-1].Mode)

	_, ok := <-h.events
	assert.False(t, ok)

	h.engine.Start()
	assert.Equal(t, ModeIdle, h.engine.Snapshot().Mode)

	late := h.engine.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}

func TestPhaseProgress(t *testing.T) {
	assert.Equal(t, 0.0, phaseProgress(0, 0))
	assert.Equal(t, 0.0, phaseProgress(time.Second, time.Second))
	assert.Equal(t, 0.5, phaseProgress(time.Second, 500*time.Millisecond))
	assert.Equal(t, 1.0, phaseProgress(time.Second, 0))
	assert.Equal(t, 0.0, phaseProgress(time.Second, 2*time.Second))
}
