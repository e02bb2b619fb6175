package emu

import (
	"math"
	"testing"
)

func TestLowPass_StepResponse(t *testing.T) {
	e := &Emulator{audioBuffer: make([]int16, 0, 64)}
	for i := 0; i < 32; i++ {
		e.audioBuffer = append(e.audioBuffer, micAmplitude, micAmplitude)
	}

	e.applyLowPass()

	expected0 := int16(math.Round(lpfAlpha * micAmplitude))
	if e.audioBuffer[0] != expected0 || e.audioBuffer[1] != expected0 {
		t.Errorf("sample 0: got %d/%d, want %d", e.audioBuffer[0], e.audioBuffer[1], expected0)
	}
	for i := 2; i < len(e.audioBuffer); i += 2 {
		if e.audioBuffer[i] < e.audioBuffer[i-2] {
			t.Errorf("sample %d (%d) < sample %d (%d): expected monotonic ramp",
				i/2, e.audioBuffer[i], i/2-1, e.audioBuffer[i-2])
			break
		}
	}
	if last := e.audioBuffer[len(e.audioBuffer)-2]; last != micAmplitude {
		t.Errorf("expected convergence to %d, got %d", micAmplitude, last)
	}
}

func TestLowPass_StatePersistence(t *testing.T) {
	e := &Emulator{audioBuffer: make([]int16, 0, 16)}
	e.audioBuffer = append(e.audioBuffer, 1000, 1000, 1000, 1000)
	e.applyLowPass()
	last := e.audioBuffer[2]

	e.audioBuffer = append(e.audioBuffer[:0], 1000, 1000)
	e.applyLowPass()
	if e.audioBuffer[0] <= last {
		t.Errorf("filter state reset: got %d after %d", e.audioBuffer[0], last)
	}
}

func TestMicTrace_NoEdgesHoldsLevel(t *testing.T) {
	var tr micTrace
	tr.record(0, true)
	tr.begin(1000)

	highs := 0
	tr.sample(10, 100, func(_ int, high bool) {
		if high {
			highs++
		}
	})
	if highs != 10 {
		t.Errorf("expected level carried into the frame, got %d/10 high", highs)
	}
}

func TestMicTrace_EdgesPlacedByCycle(t *testing.T) {
	var tr micTrace
	tr.begin(1000)
	tr.record(1050, true)
	tr.record(1075, false)

	got := make([]bool, 4)
	tr.sample(4, 100, func(i int, high bool) { got[i] = high })

	// Sample points at cycles 1000, 1025, 1050, 1075
	want := []bool{false, false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %t, got %t", i, want[i], got[i])
		}
	}
}

func TestMicTrace_DuplicateLevelIgnored(t *testing.T) {
	var tr micTrace
	tr.begin(0)
	tr.record(10, false)
	tr.record(20, true)
	tr.record(30, true)
	if len(tr.edges) != 1 {
		t.Errorf("expected 1 edge, got %d", len(tr.edges))
	}
}

func TestMixAudio_FrameLength(t *testing.T) {
	e := createTestEmulator()
	e.RunFrame()
	if got := len(e.GetAudioSamples()); got != samplesPerFrame*2 {
		t.Errorf("expected %d samples, got %d", samplesPerFrame*2, got)
	}
}
