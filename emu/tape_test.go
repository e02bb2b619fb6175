package emu

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// cyclesPerSample returns the CPU cycles spanned by one sample at rate.
func cyclesPerSample(rate int) uint64 {
	return uint64(CyclesPerSecond / rate)
}

func TestTape_StoppedReadsLow(t *testing.T) {
	tape := NewTape([]bool{true, true, true}, 1000)
	if tape.LevelAt(0) {
		t.Error("stopped tape should read low")
	}
}

func TestTape_LevelFollowsClock(t *testing.T) {
	tape := NewTape([]bool{false, true, false, true}, 1000)
	step := cyclesPerSample(1000)

	tape.Play(100)
	for i, want := range []bool{false, true, false, true} {
		cycle := 100 + uint64(i)*step
		if got := tape.LevelAt(cycle); got != want {
			t.Errorf("sample %d: expected %t, got %t", i, want, got)
		}
	}
}

func TestTape_StopKeepsPosition(t *testing.T) {
	tape := NewTape(make([]bool, 10), 1000)
	step := cyclesPerSample(1000)

	tape.Play(0)
	tape.Stop(3 * step)
	if got := tape.Position(10 * step); got != 3 {
		t.Errorf("expected position 3 while stopped, got %d", got)
	}

	tape.Play(20 * step)
	if got := tape.Position(22 * step); got != 5 {
		t.Errorf("expected position 5 after resume, got %d", got)
	}

	tape.Rewind(22 * step)
	if got := tape.Position(22 * step); got != 0 {
		t.Errorf("expected position 0 after rewind, got %d", got)
	}
	if !tape.Playing() {
		t.Error("rewind should not stop a playing tape")
	}
}

func TestTape_StopsAtEnd(t *testing.T) {
	tape := NewTape([]bool{true, true}, 1000)
	tape.Play(0)
	if tape.LevelAt(5 * cyclesPerSample(1000)) {
		t.Error("past the end should read low")
	}
	if tape.Playing() {
		t.Error("tape should stop at the end")
	}
	if tape.Position(0) != 2 {
		t.Errorf("expected position at end, got %d", tape.Position(0))
	}
}

func TestTape_UnsupportedExtension(t *testing.T) {
	if _, err := LoadTape("game.p", bytes.NewReader(nil)); err == nil {
		t.Error("expected error for .p file")
	}
}

func TestTape_InvalidWAV(t *testing.T) {
	if _, err := DecodeWAV(bytes.NewReader([]byte("not a wav file at all"))); err == nil {
		t.Error("expected error for invalid wav data")
	}
}

func TestTape_InvalidMP3(t *testing.T) {
	if _, err := DecodeMP3(bytes.NewReader([]byte{0x00, 0x01, 0x02})); err == nil {
		t.Error("expected error for invalid mp3 data")
	}
}

func TestTapeRecorder_WAVRoundTrip(t *testing.T) {
	var tr micTrace
	tr.begin(0)
	tr.record(30000, true)

	rec := NewTapeRecorder()
	rec.captureFrame(&tr, 60000)
	if rec.Len() != recordPerFrame {
		t.Fatalf("expected %d samples, got %d", recordPerFrame, rec.Len())
	}

	path := filepath.Join(t.TempDir(), "save.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Save(f); err != nil {
		t.Fatalf("Save: %v", err)
	}
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tape, err := LoadTape(path, f)
	if err != nil {
		t.Fatalf("LoadTape: %v", err)
	}
	if tape.Len() != rec.Len() {
		t.Fatalf("expected %d samples, got %d", rec.Len(), tape.Len())
	}

	want := rec.Tape()
	for i := range want.levels {
		if tape.levels[i] != want.levels[i] {
			t.Fatalf("sample %d: expected %t, got %t", i, want.levels[i], tape.levels[i])
		}
	}
	if tape.levels[0] || !tape.levels[len(tape.levels)-1] {
		t.Error("expected low then high")
	}
}

func TestTape_EightBitWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "8bit.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 8000, 8, 2, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: 8000},
		// left channel: high, low, high; right channel inverted
		Data:           []int{200, 50, 50, 200, 200, 50},
		SourceBitDepth: 8,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tape, err := DecodeWAV(f)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	want := []bool{true, false, true}
	if tape.Len() != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), tape.Len())
	}
	for i := range want {
		if tape.levels[i] != want[i] {
			t.Errorf("sample %d: expected %t, got %t", i, want[i], tape.levels[i])
		}
	}
}
