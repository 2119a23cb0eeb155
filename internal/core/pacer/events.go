package pacer

import "time"

// Mode represents the current engine mode.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeCountdown Mode = "countdown"
	ModeRunning   Mode = "running"
	ModeStopped   Mode = "stopped"
)

// Phase is one half of a breathing cycle.
type Phase string

const (
	PhaseNone   Phase = ""
	PhaseInhale Phase = "inhale"
	PhaseExhale Phase = "exhale"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventCountdown   EventType = "countdown"
	EventPhaseChange EventType = "phase_change"
	EventTick        EventType = "tick"
	EventCompleted   EventType = "completed"
	EventAudioError  EventType = "audio_error"
)

// Stop reasons reported in the Message of a Stopped state change.
const (
	ReasonStopped   = "stopped"
	ReasonRestart   = "restart"
	ReasonClosed    = "closed"
	ReasonCompleted = "completed"
)

// Event represents an engine update for observers.
type Event struct {
	Type  EventType
	RunID string
	Mode  Mode

	Countdown int

	Phase         Phase
	Cycle         int
	CycleLimit    int
	Remaining     time.Duration
	PhaseDuration time.Duration
	Progress      float64

	// Message holds the stop reason on Stopped state changes and the error
	// text on audio errors.
	Message string
	At      time.Time
}

// Snapshot is a read-only copy of the engine state.
type Snapshot struct {
	Mode      Mode
	RunID     string
	Countdown int
	Phase     Phase
	Cycle     int
	Remaining time.Duration
}
