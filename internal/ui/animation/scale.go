package animation

import (
	"math"
	"time"

	"breathpacer/internal/core/pacer"
)

// Scale returns the visual level in [0, 1] for a phase that has been running
// for elapsed out of duration. Inhale grows from 0 to 1 and exhale shrinks
// back to 0, both eased at the ends.
func Scale(phase pacer.Phase, elapsed, duration time.Duration) float64 {
	progress := 1.0
	if duration > 0 {
		progress = float64(elapsed) / float64(duration)
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	eased := easeInOut(progress)
	switch phase {
	case pacer.PhaseInhale:
		return eased
	case pacer.PhaseExhale:
		return 1 - eased
	default:
		return 0
	}
}

func easeInOut(progress float64) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*progress)
}
