package metrics

import (
	"context"

	"breathpacer/internal/core/pacer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "breathpacer"

// Recorder turns engine events into Prometheus series.
type Recorder struct {
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionsStopped   prometheus.Counter
	phaseTransitions  *prometheus.CounterVec
	audioErrors       prometheus.Counter
	engineMode        *prometheus.GaugeVec
}

// NewRecorder registers the pacer series on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	recorder := &Recorder{
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Pacing sessions that entered the countdown",
		}),
		sessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Bounded sessions that reached their cycle limit",
		}),
		sessionsStopped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_stopped_total",
			Help:      "Sessions ended by stop, restart or shutdown",
		}),
		phaseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_transitions_total",
			Help:      "Breathing phases entered",
		}, []string{"phase"}),
		audioErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_errors_total",
			Help:      "Cue tones that could not be played",
		}),
		engineMode: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engine_mode",
			Help:      "1 for the current engine mode, 0 otherwise",
		}, []string{"mode"}),
	}
	recorder.setMode(pacer.ModeIdle)
	return recorder
}

// Observe records a single engine event.
func (recorder *Recorder) Observe(event pacer.Event) {
	switch event.Type {
	case pacer.EventStateChange:
		recorder.setMode(event.Mode)
		switch event.Mode {
		case pacer.ModeCountdown:
			recorder.sessionsStarted.Inc()
		case pacer.ModeStopped:
			if event.Message != pacer.ReasonCompleted {
				recorder.sessionsStopped.Inc()
			}
		}
	case pacer.EventCompleted:
		recorder.sessionsCompleted.Inc()
	case pacer.EventPhaseChange:
		recorder.phaseTransitions.WithLabelValues(string(event.Phase)).Inc()
	case pacer.EventAudioError:
		recorder.audioErrors.Inc()
	}
}

// Run observes events until the channel closes or ctx is done.
func (recorder *Recorder) Run(ctx context.Context, events <-chan pacer.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			recorder.Observe(event)
		}
	}
}

func (recorder *Recorder) setMode(mode pacer.Mode) {
	for _, known := range []pacer.Mode{pacer.ModeIdle, pacer.ModeCountdown, pacer.ModeRunning, pacer.ModeStopped} {
		value := 0.0
		if known == mode {
			value = 1
		}
		recorder.engineMode.WithLabelValues(string(known)).Set(value)
	}
}
