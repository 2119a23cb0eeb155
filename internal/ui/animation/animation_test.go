package animation

import (
	"context"
	"sync"
	"testing"
	"time"

	"breathpacer/internal/core/pacer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale(t *testing.T) {
	cases := []struct {
		name     string
		phase    pacer.Phase
		elapsed  time.Duration
		duration time.Duration
		want     float64
	}{
		{"inhale start", pacer.PhaseInhale, 0, 4 * time.Second, 0},
		{"inhale middle", pacer.PhaseInhale, 2 * time.Second, 4 * time.Second, 0.5},
		{"inhale end", pacer.PhaseInhale, 4 * time.Second, 4 * time.Second, 1},
		{"inhale overrun", pacer.PhaseInhale, 5 * time.Second, 4 * time.Second, 1},
		{"exhale start", pacer.PhaseExhale, 0, 6 * time.Second, 1},
		{"exhale middle", pacer.PhaseExhale, 3 * time.Second, 6 * time.Second, 0.5},
		{"exhale end", pacer.PhaseExhale, 6 * time.Second, 6 * time.Second, 0},
		{"negative elapsed", pacer.PhaseExhale, -time.Second, 6 * time.Second, 1},
		{"no phase", pacer.PhaseNone, time.Second, 4 * time.Second, 0},
		{"zero duration", pacer.PhaseInhale, 0, 0, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Scale(tc.phase, tc.elapsed, tc.duration), 1e-9)
		})
	}
}

func TestScaleIsMonotonicWithinPhase(t *testing.T) {
	previous := Scale(pacer.PhaseInhale, 0, time.Second)
	for step := time.Duration(1); step <= 100; step++ {
		current := Scale(pacer.PhaseInhale, step*10*time.Millisecond, time.Second)
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
}

type frameLog struct {
	mu     sync.Mutex
	frames []Frame
}

func (log *frameLog) add(frame Frame) {
	log.mu.Lock()
	log.frames = append(log.frames, frame)
	log.mu.Unlock()
}

func (log *frameLog) snapshot() []Frame {
	log.mu.Lock()
	defer log.mu.Unlock()
	return append([]Frame(nil), log.frames...)
}

func TestStartPhaseRendersToTheEnd(t *testing.T) {
	log := &frameLog{}
	engine := New(Config{FrameInterval: 5 * time.Millisecond}, log.add)

	engine.StartPhase(context.Background(), pacer.PhaseInhale, 40*time.Millisecond, 0)

	require.Eventually(t, func() bool {
		frames := log.snapshot()
		return len(frames) > 0 && frames[len(frames)-1].Remaining == 0
	}, time.Second, 5*time.Millisecond)

	frames := log.snapshot()
	last := frames[len(frames)-1]
	assert.Equal(t, pacer.PhaseInhale, last.Phase)
	assert.InDelta(t, 1.0, last.Level, 1e-9)
	for index := 1; index < len(frames); index++ {
		assert.GreaterOrEqual(t, frames[index].Level, frames[index-1].Level)
	}
}

func TestStartPhaseHonoursElapsed(t *testing.T) {
	log := &frameLog{}
	engine := New(Config{FrameInterval: time.Hour}, log.add)

	engine.StartPhase(context.Background(), pacer.PhaseExhale, 10*time.Second, 5*time.Second)
	require.Eventually(t, func() bool { return len(log.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	engine.Stop()

	first := log.snapshot()[0]
	assert.InDelta(t, 0.5, first.Level, 0.01)
	assert.InDelta(t, float64(5*time.Second), float64(first.Remaining), float64(50*time.Millisecond))
}

func TestStopAndHold(t *testing.T) {
	log := &frameLog{}
	engine := New(Config{FrameInterval: 5 * time.Millisecond}, log.add)

	engine.StartPhase(context.Background(), pacer.PhaseInhale, time.Hour, 0)
	require.Eventually(t, func() bool { return len(log.snapshot()) > 2 }, time.Second, 5*time.Millisecond)

	engine.Hold(0)
	time.Sleep(20 * time.Millisecond)
	settled := len(log.snapshot())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, len(log.snapshot()))

	assert.Contains(t, log.snapshot(), Frame{})
}
