package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// SampleRate of synthesized PCM, mono signed 16-bit little endian.
	SampleRate     = 44100
	BytesPerSample = 2

	rampDuration = 10 * time.Millisecond
	decayRate    = 5.0
)

// Synthesize renders a tone as mono signed 16-bit little-endian PCM. Short
// linear ramps at both ends avoid clicks.
func Synthesize(tone Tone, sampleRate int) []byte {
	count := int(tone.Duration.Seconds() * float64(sampleRate))
	if count <= 0 || sampleRate <= 0 {
		return nil
	}
	ramp := int(rampDuration.Seconds() * float64(sampleRate))
	if ramp*2 > count {
		ramp = count / 2
	}

	pcm := make([]byte, count*BytesPerSample)
	for index := 0; index < count; index++ {
		cycles := tone.Frequency * float64(index) / float64(sampleRate)
		value := oscillate(tone.Waveform, cycles) * tone.Gain * envelope(index, count, ramp, tone.Decay)
		if value > 1 {
			value = 1
		}
		if value < -1 {
			value = -1
		}
		sample := int16(math.Round(value * math.MaxInt16))
		binary.LittleEndian.PutUint16(pcm[index*BytesPerSample:], uint16(sample))
	}
	return pcm
}

func oscillate(waveform Waveform, cycles float64) float64 {
	phase := cycles - math.Floor(cycles)
	switch waveform {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return 4*math.Abs(phase-0.5) - 1
	case WaveSawtooth:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

func envelope(index, count, ramp int, decay bool) float64 {
	level := 1.0
	if ramp > 0 {
		if index < ramp {
			level = float64(index) / float64(ramp)
		} else if remaining := count - 1 - index; remaining < ramp {
			level = float64(remaining) / float64(ramp)
		}
	}
	if decay {
		level *= math.Exp(-decayRate * float64(index) / float64(count))
	}
	return level
}
