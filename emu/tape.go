package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/golang/glog"
	"github.com/hajimehoshi/go-mp3"
)

// Tape is a cassette recording reduced to the one bit the EAR input
// sees: whether each sample is above the zero line. Position advances
// with the CPU clock while playing.
type Tape struct {
	levels     []bool
	sampleRate int

	playing    bool
	startCycle uint64 // CPU cycle at which playback last started
	startPos   int    // sample index at startCycle
}

// NewTape creates a stopped tape from EAR levels sampled at sampleRate.
func NewTape(levels []bool, sampleRate int) *Tape {
	return &Tape{levels: levels, sampleRate: sampleRate}
}

// LoadTape decodes a WAV or MP3 recording, chosen by the extension of name.
func LoadTape(name string, r io.ReadSeeker) (*Tape, error) {
	var t *Tape
	var err error
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".wav":
		t, err = DecodeWAV(r)
	case ".mp3":
		t, err = DecodeMP3(r)
	default:
		return nil, fmt.Errorf("tape: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, err
	}
	glog.Infof("tape: %s, %d Hz, %s", filepath.Base(name), t.sampleRate, t.Duration().Round(time.Millisecond))
	return t, nil
}

// DecodeWAV reads a PCM WAV stream. Only the first channel is used.
func DecodeWAV(r io.ReadSeeker) (*Tape, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}

	chans := int(dec.NumChans)
	if chans < 1 {
		return nil, errors.New("wav: no channels")
	}

	// 8-bit WAV samples are unsigned with the zero line at 128.
	zero := 0
	if dec.BitDepth == 8 {
		zero = 128
	}

	levels := make([]bool, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		levels = append(levels, buf.Data[i] > zero)
	}
	return NewTape(levels, int(dec.SampleRate)), nil
}

// DecodeMP3 reads an MP3 stream. The decoder always yields 16-bit
// little-endian stereo; the left channel is used.
func DecodeMP3(r io.Reader) (*Tape, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	levels := make([]bool, 0, len(pcm)/4)
	for i := 0; i+1 < len(pcm); i += 4 {
		levels = append(levels, int16(binary.LittleEndian.Uint16(pcm[i:])) > 0)
	}
	return NewTape(levels, dec.SampleRate()), nil
}

// Play starts the tape at CPU cycle cycle.
func (t *Tape) Play(cycle uint64) {
	if t.playing {
		return
	}
	t.playing = true
	t.startCycle = cycle
}

// Stop halts the tape at CPU cycle cycle, keeping its position.
func (t *Tape) Stop(cycle uint64) {
	if !t.playing {
		return
	}
	t.startPos = t.Position(cycle)
	t.playing = false
}

// Rewind moves the tape back to the start. A playing tape keeps playing
// from there.
func (t *Tape) Rewind(cycle uint64) {
	t.startPos = 0
	t.startCycle = cycle
}

// Playing reports whether the tape is running.
func (t *Tape) Playing() bool { return t.playing }

// Position returns the sample index under the head at CPU cycle cycle.
func (t *Tape) Position(cycle uint64) int {
	pos := t.startPos
	if t.playing && cycle > t.startCycle {
		pos += int((cycle - t.startCycle) * uint64(t.sampleRate) / CyclesPerSecond)
	}
	if pos > len(t.levels) {
		pos = len(t.levels)
	}
	return pos
}

// LevelAt returns the EAR level at CPU cycle cycle. A stopped tape reads
// low. Reaching the end stops the tape.
func (t *Tape) LevelAt(cycle uint64) bool {
	if !t.playing {
		return false
	}
	pos := t.Position(cycle)
	if pos >= len(t.levels) {
		t.startPos = len(t.levels)
		t.playing = false
		glog.Info("tape: end of tape")
		return false
	}
	return t.levels[pos]
}

// Len returns the number of samples on the tape.
func (t *Tape) Len() int { return len(t.levels) }

// Duration returns the running time of the tape.
func (t *Tape) Duration() time.Duration {
	if t.sampleRate == 0 {
		return 0
	}
	return time.Duration(len(t.levels)) * time.Second / time.Duration(t.sampleRate)
}
