package emu

import (
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	recordRate      = 22050
	recordBitDepth  = 16
	recordAmplitude = 8192
	recordPerFrame  = recordRate / FramesPerSecond
	wavFormatPCM    = 1
)

// TapeRecorder captures the MIC output frame by frame so that a SAVE can
// be written out as a WAV file.
type TapeRecorder struct {
	samples []int
}

// NewTapeRecorder creates an empty recorder.
func NewTapeRecorder() *TapeRecorder {
	return &TapeRecorder{}
}

// captureFrame appends one frame of MIC levels spread over span cycles.
func (r *TapeRecorder) captureFrame(trace *micTrace, span int) {
	trace.sample(recordPerFrame, span, func(_ int, high bool) {
		v := -recordAmplitude
		if high {
			v = recordAmplitude
		}
		r.samples = append(r.samples, v)
	})
}

// Len returns the number of recorded samples.
func (r *TapeRecorder) Len() int { return len(r.samples) }

// Duration returns the recorded running time.
func (r *TapeRecorder) Duration() time.Duration {
	return time.Duration(len(r.samples)) * time.Second / recordRate
}

// Reset discards the recording.
func (r *TapeRecorder) Reset() {
	r.samples = r.samples[:0]
}

// Tape returns the recording as a stopped tape, ready to load back.
func (r *TapeRecorder) Tape() *Tape {
	levels := make([]bool, len(r.samples))
	for i, v := range r.samples {
		levels[i] = v > 0
	}
	return NewTape(levels, recordRate)
}

// Save writes the recording as a 16-bit mono PCM WAV.
func (r *TapeRecorder) Save(w io.WriteSeeker) error {
	enc := wav.NewEncoder(w, recordRate, recordBitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: recordRate},
		Data:           r.samples,
		SourceBitDepth: recordBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}
