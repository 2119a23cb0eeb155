package animation

import (
	"context"
	"sync"
	"time"

	"breathpacer/internal/core/pacer"
)

// Config contains animation timing values.
type Config struct {
	FrameInterval time.Duration
}

// Frame is a single rendered state of the breathing visual.
type Frame struct {
	Phase     pacer.Phase
	Level     float64
	Remaining time.Duration
}

// Engine drives the breathing visual between engine phase events. The
// engine owns timing; the animation only interpolates inside a phase.
type Engine struct {
	mu     sync.Mutex
	config Config
	render func(Frame)
	cancel context.CancelFunc
	now    func() time.Time
}

// New creates a new animation engine.
func New(config Config, render func(Frame)) *Engine {
	if config.FrameInterval <= 0 {
		config.FrameInterval = DefaultConfig().FrameInterval
	}
	return &Engine{
		config: config,
		render: render,
		now:    time.Now,
	}
}

// StartPhase animates a phase that started elapsed ago and lasts duration.
// Any running animation is replaced.
func (engine *Engine) StartPhase(ctx context.Context, phase pacer.Phase, duration, elapsed time.Duration) {
	engine.start(ctx, func(runCtx context.Context) {
		begin := engine.now().Add(-elapsed)
		for {
			spent := engine.now().Sub(begin)
			if spent > duration {
				spent = duration
			}
			if runCtx.Err() != nil {
				return
			}
			engine.render(Frame{
				Phase:     phase,
				Level:     Scale(phase, spent, duration),
				Remaining: duration - spent,
			})
			if spent >= duration {
				return
			}
			if !sleepWithContext(runCtx, engine.config.FrameInterval) {
				return
			}
		}
	})
}

// Hold stops any animation and renders a static level.
func (engine *Engine) Hold(level float64) {
	engine.Stop()
	engine.render(Frame{Level: level})
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
