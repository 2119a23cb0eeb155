package animation

import "time"

// DefaultConfig returns the frame pacing used by the overlay.
func DefaultConfig() Config {
	return Config{
		FrameInterval: 33 * time.Millisecond,
	}
}
