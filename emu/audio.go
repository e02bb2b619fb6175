package emu

import "math"

const (
	sampleRate      = 48000
	samplesPerFrame = sampleRate / FramesPerSecond
	micAmplitude    = 6000
	lpfCutoffHz     = 3500.0
)

// lpfAlpha is the smoothing factor for the first-order RC low-pass filter.
// Derived from: alpha = dt / (RC + dt) where RC = 1/(2*pi*fc).
var lpfAlpha = 1.0 / (float64(sampleRate)/(2*math.Pi*lpfCutoffHz) + 1)

type micEdge struct {
	cycle uint64
	level bool
}

// micTrace records MIC transitions, stamped with CPU cycles, over one
// frame.
type micTrace struct {
	start uint64 // CPU cycle at frame start
	first bool   // level at frame start
	level bool   // current level
	edges []micEdge
}

func (t *micTrace) reset() {
	t.start = 0
	t.first = false
	t.level = false
	t.edges = t.edges[:0]
}

// begin starts a new frame at cycle, carrying the current level over.
func (t *micTrace) begin(cycle uint64) {
	t.start = cycle
	t.first = t.level
	t.edges = t.edges[:0]
}

func (t *micTrace) record(cycle uint64, level bool) {
	if level == t.level {
		return
	}
	t.level = level
	t.edges = append(t.edges, micEdge{cycle: cycle, level: level})
}

// sample calls fn with the MIC level at n evenly spaced points across the
// first span cycles of the frame.
func (t *micTrace) sample(n, span int, fn func(i int, high bool)) {
	level := t.first
	next := 0
	for i := 0; i < n; i++ {
		at := t.start + uint64(span)*uint64(i)/uint64(n)
		for next < len(t.edges) && t.edges[next].cycle <= at {
			level = t.edges[next].level
			next++
		}
		fn(i, level)
	}
}

// mixAudio renders the frame's MIC activity as stereo PCM. The MIC line
// drives a single bit, so samples are either silence or micAmplitude
// before filtering.
func (e *Emulator) mixAudio() {
	e.audioBuffer = e.audioBuffer[:0]
	e.board.mic.sample(samplesPerFrame, e.board.FrameCycles(), func(_ int, high bool) {
		var s int16
		if high {
			s = micAmplitude
		}
		e.audioBuffer = append(e.audioBuffer, s, s)
	})
	e.applyLowPass()
}

// applyLowPass applies a first-order RC low-pass filter to the audio
// buffer to round off the square edges. Applied per stereo channel with
// state persisting across frames.
func (e *Emulator) applyLowPass() {
	for i := 0; i < len(e.audioBuffer); i += 2 {
		inL := float64(e.audioBuffer[i])
		inR := float64(e.audioBuffer[i+1])
		e.filterPrevL = lpfAlpha*inL + (1-lpfAlpha)*e.filterPrevL
		e.filterPrevR = lpfAlpha*inR + (1-lpfAlpha)*e.filterPrevR
		e.audioBuffer[i] = int16(math.Round(e.filterPrevL))
		e.audioBuffer[i+1] = int16(math.Round(e.filterPrevR))
	}
}

// GetAudioSamples returns accumulated audio samples as 16-bit stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}
