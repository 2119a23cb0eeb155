package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"breathpacer/internal/core/model"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"
)

// ErrAudioUnavailable indicates the audio device could not be opened.
var ErrAudioUnavailable = errors.New("audio unavailable")

const drainPoll = 20 * time.Millisecond

// Player plays cue tones through a process-wide audio context. The context
// is acquired lazily on first use and shared by every pacing session.
type Player struct {
	profiles Profiles
	logger   zerolog.Logger

	once    sync.Once
	context *oto.Context
	err     error

	mu     sync.Mutex
	active map[*oto.Player]struct{}
	closed bool
}

// NewPlayer creates a Player for the given profiles.
func NewPlayer(profiles Profiles, logger zerolog.Logger) *Player {
	return &Player{
		profiles: profiles,
		logger:   logger.With().Str("component", "audio").Logger(),
		active:   make(map[*oto.Player]struct{}),
	}
}

// Warm acquires the audio context ahead of the first cue.
func (player *Player) Warm() error {
	return player.acquire()
}

// Play starts a tone and returns without waiting for it to finish.
func (player *Player) Play(profile model.ToneProfile, cue model.Cue) error {
	tone, err := player.profiles.Tone(profile, cue)
	if err != nil {
		return err
	}
	if err := player.acquire(); err != nil {
		return err
	}

	player.mu.Lock()
	defer player.mu.Unlock()
	if player.closed {
		return ErrAudioUnavailable
	}
	stream := player.context.NewPlayer(bytes.NewReader(Synthesize(tone, SampleRate)))
	stream.Play()
	player.active[stream] = struct{}{}
	go player.release(stream)
	return nil
}

// Close stops every playing tone and suspends the audio context. A context
// that was never acquired will not be acquired afterwards.
func (player *Player) Close() error {
	player.once.Do(func() {
		player.err = ErrAudioUnavailable
	})

	player.mu.Lock()
	player.closed = true
	streams := make([]*oto.Player, 0, len(player.active))
	for stream := range player.active {
		streams = append(streams, stream)
	}
	player.mu.Unlock()

	for _, stream := range streams {
		_ = stream.Close()
	}
	if player.context == nil {
		return nil
	}
	return player.context.Suspend()
}

func (player *Player) acquire() error {
	player.once.Do(func() {
		context, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			player.err = fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
			player.logger.Warn().Err(err).Msg("audio context unavailable, cues disabled")
			return
		}
		<-ready
		player.context = context
		player.logger.Debug().Int("sample_rate", SampleRate).Msg("audio context ready")
	})
	return player.err
}

// release keeps the stream referenced until playback ends, then frees it.
func (player *Player) release(stream *oto.Player) {
	for stream.IsPlaying() {
		time.Sleep(drainPoll)
	}
	if err := stream.Close(); err != nil {
		player.logger.Debug().Err(err).Msg("close tone stream")
	}
	player.mu.Lock()
	delete(player.active, stream)
	player.mu.Unlock()
}
