package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const audioSampleRate = 48000

// ringSamples is about 170ms of 48kHz stereo.
const ringSamples = 16384

// AudioPlayer plays the emulator's stereo int16 output through oto.
type AudioPlayer struct {
	player *oto.Player
	ring   *SampleRing
}

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

// otoContext creates the process-wide oto context on first use.
func otoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   audioSampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   40 * time.Millisecond,
		})
		if otoInitErr == nil {
			<-ready
		}
	})
	return otoCtx, otoInitErr
}

// NewAudioPlayer opens the audio device and starts playback.
func NewAudioPlayer(volume float64) (*AudioPlayer, error) {
	ctx, err := otoContext()
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	ring := NewSampleRing(ringSamples)
	player := ctx.NewPlayer(ring)
	// two frames of stereo int16
	player.SetBufferSize(2 * audioSampleRate / 50 * 4)
	player.SetVolume(volume)
	player.Play()

	return &AudioPlayer{player: player, ring: ring}, nil
}

// QueueSamples hands one frame of samples to the player.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	a.ring.Push(samples)
}

// GetBufferLevel returns the bytes queued in the ring and inside oto.
// The emulation loop paces itself on it.
func (a *AudioPlayer) GetBufferLevel() int {
	return a.ring.Buffered() + a.player.BufferedSize()
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	a.ring.Close()
	a.player.Close()
}
