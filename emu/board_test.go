package emu

import (
	"testing"
)

// patch is a block of code placed at a ROM address.
type patch struct {
	addr uint16
	code []byte
}

// makeTestBoard builds a powered board whose ROM is all NOPs apart from
// the given patches.
func makeTestBoard(patches ...patch) *Board {
	rom := make([]byte, ROMSize)
	for _, p := range patches {
		copy(rom[p.addr:], p.code)
	}
	b := NewBoard(rom)
	b.PowerOn()
	return b
}

func readWord(b *Board, addr uint16) uint16 {
	return uint16(b.Peek(addr)) | uint16(b.Peek(addr+1))<<8
}

// counterHandler increments the 16-bit word at 0x4000 and returns with ret.
func counterHandler(ret ...byte) []byte {
	code := []byte{
		0x2A, 0x00, 0x40, // LD HL,(0x4000)
		0x23,             // INC HL
		0x22, 0x00, 0x40, // LD (0x4000),HL
	}
	return append(code, ret...)
}

func TestBoard_ProceedCarriesOverdraft(t *testing.T) {
	b := makeTestBoard()

	b.Proceed(1)
	if b.Cycles() != 4 {
		t.Fatalf("expected one NOP (4 cycles), got %d", b.Cycles())
	}
	if b.allowed != -3 {
		t.Fatalf("expected overdraft of 3, got allowed=%d", b.allowed)
	}

	b.Proceed(3)
	if b.Cycles() != 4 {
		t.Errorf("overdraft should absorb the request, got %d cycles", b.Cycles())
	}
	if b.allowed != 0 {
		t.Errorf("expected allowed=0, got %d", b.allowed)
	}

	b.Proceed(1)
	if b.Cycles() != 8 {
		t.Errorf("expected 8 cycles, got %d", b.Cycles())
	}
}

func TestBoard_ProceedZeroRunsNothing(t *testing.T) {
	b := makeTestBoard()
	b.Proceed(0)
	if b.Cycles() != 0 {
		t.Errorf("expected no cycles, got %d", b.Cycles())
	}
}

func TestBoard_FrameCycles(t *testing.T) {
	b := makeTestBoard()
	want := FrameTicks / TicksPerCycle

	b.RunFrame()
	got := b.FrameCycles()
	if got < want || got >= want+4 {
		t.Errorf("expected %d cycles (+<4 overdraft), got %d", want, got)
	}
}

func TestBoard_NoCumulativeDrift(t *testing.T) {
	b := makeTestBoard()
	const frames = 3
	for i := 0; i < frames; i++ {
		b.RunFrame()
	}

	want := uint64(frames * FrameTicks / TicksPerCycle)
	got := b.Cycles()
	if got < want || got >= want+4 {
		t.Errorf("expected %d total cycles (+<4), got %d", want, got)
	}
}

func TestBoard_RunFrameUnpoweredPanics(t *testing.T) {
	b := NewBoard(make([]byte, ROMSize))
	expectPanic(t, "RunFrame unpowered", func() { b.RunFrame() })
}

func TestBoard_PowerDuringFramePanics(t *testing.T) {
	b := makeTestBoard()
	b.inFrame = true
	expectPanic(t, "PowerOn in frame", func() { b.PowerOn() })
	expectPanic(t, "PowerOff in frame", func() { b.PowerOff() })
	expectPanic(t, "RunFrame in frame", func() { b.RunFrame() })
}

func TestBoard_PowerOnIdempotent(t *testing.T) {
	b := makeTestBoard()
	b.RunFrame()

	b.PowerOn()
	b.PowerOn()
	if !b.Powered() {
		t.Fatal("board should be powered")
	}
	if b.Cycles() != 0 {
		t.Errorf("expected CPU reset, got %d cycles", b.Cycles())
	}
	if b.Registers().PC != 0 {
		t.Errorf("expected PC=0, got %04X", b.Registers().PC)
	}
	if b.ula.Rendering() {
		t.Error("ULA should be idle after power on")
	}
}

func TestBoard_PowerOffThenOn(t *testing.T) {
	b := makeTestBoard()
	b.PowerOff()
	b.PowerOff()
	if b.Powered() {
		t.Fatal("board should be off")
	}
	b.PowerOn()
	b.RunFrame()
}

func TestBoard_KeyboardThroughPort(t *testing.T) {
	b := makeTestBoard(patch{0, []byte{
		0x01, 0xFE, 0xF7, // LD BC,0xF7FE
		0xED, 0x78, // IN A,(C)
		0x32, 0x00, 0x40, // LD (0x4000),A
		0x76, // HALT
	}})
	b.Keyboard().Press(Key1)

	b.RunFrame()

	got := DecodeInput(b.Peek(0x4000))
	want := InputLatch{Columns: 0x1E, PAL: true}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestBoard_EARFromTape(t *testing.T) {
	b := makeTestBoard(patch{0, []byte{
		0x01, 0xFE, 0x7F, // LD BC,0x7FFE
		0xED, 0x78, // IN A,(C)
		0x32, 0x00, 0x40, // LD (0x4000),A
		0x76, // HALT
	}})
	tape := NewTape([]bool{true, true, true, true}, 1000)
	tape.Play(0)
	b.InsertTape(tape)

	b.RunFrame()

	if got := b.Peek(0x4000); !DecodeInput(got).EAR {
		t.Errorf("expected EAR bit set, got 0x%02X", got)
	}
}

func TestBoard_PowerOnKeepsTapePosition(t *testing.T) {
	b := makeTestBoard()
	tape := NewTape(make([]bool, 5*22050), 22050)
	tape.Play(b.Cycles())
	b.InsertTape(tape)

	for i := 0; i < 50; i++ {
		b.RunFrame()
	}
	before := tape.Position(b.Cycles())
	if before == 0 {
		t.Fatal("tape did not advance")
	}

	b.PowerOn()
	if !tape.Playing() {
		t.Fatal("tape should keep playing across a reset")
	}
	if got := tape.Position(b.Cycles()); got != before {
		t.Errorf("expected position %d right after reset, got %d", before, got)
	}

	for i := 0; i < 25; i++ {
		b.RunFrame()
	}
	if got := tape.Position(b.Cycles()); got <= before {
		t.Errorf("tape should move forward after reset: %d then %d", before, got)
	}
}

func TestBoard_PowerOnLeavesStoppedTape(t *testing.T) {
	b := makeTestBoard()
	tape := NewTape(make([]bool, 22050), 22050)
	b.InsertTape(tape)
	b.RunFrame()

	b.PowerOn()
	if tape.Playing() {
		t.Error("reset should not start a stopped tape")
	}
}

func TestBoard_EjectClearsEAR(t *testing.T) {
	b := makeTestBoard()
	b.ula.SetEAR(true)
	b.InsertTape(nil)
	val, _ := b.ula.ReadPort(0xFFFE)
	if DecodeInput(val).EAR {
		t.Errorf("expected EAR low after eject, got 0x%02X", val)
	}
}

func TestBoard_NMIEveryLine(t *testing.T) {
	b := makeTestBoard(
		patch{0, []byte{
			0x31, 0x00, 0x60, // LD SP,0x6000
			0xD3, PortNMIOn, // OUT (0xFE),A
			0x76,       // HALT
			0x18, 0xFD, // JR -3
		}},
		patch{0x66, counterHandler(0xED, 0x45)}, // RETN
	)

	b.RunFrame()

	// The last line's handler finishes in the next frame.
	got := readWord(b, 0x4000)
	if got < TotalHeight-1 || got > TotalHeight {
		t.Errorf("expected about %d NMIs, got %d", TotalHeight, got)
	}
	if b.ula.LineCounter() != TotalHeight {
		t.Errorf("expected line counter %d, got %d", TotalHeight, b.ula.LineCounter())
	}
	if !b.ula.NMIEnabled() {
		t.Error("NMI generator should be on")
	}
}

func TestBoard_INTFromRefresh(t *testing.T) {
	b := makeTestBoard(
		patch{0, []byte{
			0x31, 0x00, 0x60, // LD SP,0x6000
			0xED, 0x56, // IM 1
			0xFB,       // EI
			0x18, 0xFE, // JR $
		}},
		patch{0x38, counterHandler(0xFB, 0xED, 0x4D)}, // EI; RETI
	)

	b.RunFrame()

	if readWord(b, 0x4000) == 0 {
		t.Error("expected the INT handler to run")
	}
}

func TestBoard_INTMaskedByDI(t *testing.T) {
	b := makeTestBoard(
		patch{0, []byte{0x31, 0x00, 0x60, 0xED, 0x56, 0x18, 0xFE}},
		patch{0x38, counterHandler(0xFB, 0xED, 0x4D)},
	)

	b.RunFrame()

	if got := readWord(b, 0x4000); got != 0 {
		t.Errorf("expected no interrupts with IFF1 clear, got %d", got)
	}
}

func TestBoard_MICTrace(t *testing.T) {
	b := makeTestBoard(patch{0, []byte{
		0xD3, 0xFF, // OUT (0xFF),A  MIC high
		0xDB, 0xFE, // IN A,(0xFE)   MIC low, NMI off
		0x76, // HALT
	}})

	b.RunFrame()

	if len(b.mic.edges) != 2 {
		t.Fatalf("expected 2 MIC edges, got %d", len(b.mic.edges))
	}
	if !b.mic.edges[0].level || b.mic.edges[1].level {
		t.Error("expected high then low")
	}
	if b.mic.edges[0].cycle >= b.mic.edges[1].cycle {
		t.Error("edges should be in cycle order")
	}
}

func TestBoard_WriteRAM(t *testing.T) {
	b := makeTestBoard()

	if err := b.WriteRAM(RAMStart, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteRAM: %v", err)
	}
	for i, want := range []uint8{1, 2, 3} {
		if got := b.Peek(RAMStart + uint16(i)); got != want {
			t.Errorf("0x%04X: expected %d, got %d", RAMStart+i, want, got)
		}
	}

	if err := b.WriteRAM(RAMEnd-1, []byte{0xAA}); err != nil {
		t.Errorf("last RAM byte should be writable: %v", err)
	}

	tests := []struct {
		name string
		addr uint16
		n    int
	}{
		{"below RAM", ROMEnd - 1, 2},
		{"past RAM", RAMEnd - 1, 2},
		{"unused", UnusedStart, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.WriteRAM(tt.addr, make([]byte, tt.n)); err == nil {
				t.Error("expected range error")
			}
		})
	}
}

func TestBoard_LoadROM(t *testing.T) {
	b := makeTestBoard()
	if err := b.LoadROM(nil); err == nil {
		t.Error("expected error for empty ROM")
	}
	if err := b.LoadROM([]byte{0xC3, 0x34, 0x12}); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if b.Peek(0) != 0xC3 || b.Peek(3) != 0 {
		t.Error("ROM not replaced and padded")
	}
}

func TestBoard_SetBorder(t *testing.T) {
	b := makeTestBoard()
	b.SetBorder(0)
	b.RunFrame()
	if got := b.ULA().Frame()[0]; got != 0 {
		t.Errorf("expected border index 0 drawn, got %d", got)
	}
}

func TestBoard_SetRegisters(t *testing.T) {
	b := makeTestBoard()
	regs := b.Registers()
	regs.PC = 0x2000
	b.SetRegisters(regs)

	b.Proceed(1)
	if got := b.Registers().PC; got != 0x2001 {
		t.Errorf("expected PC=0x2001, got 0x%04X", got)
	}
}
