package emu

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/user-none/go-chip-z80"
)

var _ ULAHost = (*Board)(nil)

// Board owns the CPU, the ULA, the port latches and the memory regions,
// and runs the CPU for as long as the ULA's raster demands.
type Board struct {
	rom      *ROM
	ram      *RAM
	mem      *MemoryMap
	ports    *Ports
	keyboard *Keyboard
	ula      *ULA
	engine   *Engine
	z80Mem   *Z80Memory

	// allowed carries the overdraft between Proceed calls: it goes
	// negative when the last instruction ran past the request.
	allowed     int
	frameCycles int

	powered bool
	inFrame bool
	trace   bool

	tape *Tape
	mic  micTrace
}

// NewBoard assembles a powered-down board around the given ROM image.
func NewBoard(rom []byte) *Board {
	b := &Board{
		rom:      NewROM(rom),
		ram:      &RAM{},
		ports:    NewPorts(),
		keyboard: NewKeyboard(DefaultKeyRows()),
	}
	b.mem = NewMemoryMap(b.rom, b.ram)
	b.ula = NewULA(b, b.keyboard)
	b.z80Mem = NewZ80Memory(b)
	b.engine = NewEngine(b.z80Mem)

	b.ports.ReadingPort = b.readingPort
	b.ports.WrittenPort = b.writtenPort
	b.engine.InstructionPost = b.instructionPost

	if glog.V(3) {
		b.trace = true
		b.engine.InstructionPre = b.tracePre
	}
	return b
}

// PowerOn raises power: ULA state, CPU registers, port latches and the
// cycle accumulator return to their power-on values. RAM is left as is.
// Calling PowerOn on a powered board has the same result as calling it once.
func (b *Board) PowerOn() {
	b.mustBeIdle("PowerOn")
	// The CPU cycle count restarts at zero; a running tape moves to the
	// new timeline at its current position.
	rebaseTape := b.tape != nil && b.tape.Playing()
	if rebaseTape {
		b.tape.Stop(b.engine.Cycles())
	}
	b.ula.RaisePower()
	b.engine.Reset()
	if rebaseTape {
		b.tape.Play(b.engine.Cycles())
	}
	b.ports.Reset()
	b.allowed = 0
	b.frameCycles = 0
	b.mic.reset()
	b.powered = true
}

// PowerOff lowers power. Calling it on an unpowered board does nothing.
func (b *Board) PowerOff() {
	b.mustBeIdle("PowerOff")
	b.ula.LowerPower()
	b.powered = false
}

// Powered reports whether the board is powered.
func (b *Board) Powered() bool { return b.powered }

func (b *Board) mustBeIdle(op string) {
	if b.inFrame {
		panic(fmt.Sprintf("emu: %s during frame render", op))
	}
}

// RunFrame renders one complete frame, running the CPU in step with the
// raster.
func (b *Board) RunFrame() {
	if !b.powered {
		panic("emu: RunFrame on a board that is powered off")
	}
	b.mustBeIdle("RunFrame")

	b.inFrame = true
	b.frameCycles = 0
	b.mic.begin(b.engine.Cycles())
	for y := 0; y < TotalHeight; y++ {
		b.ula.RenderLine(y)
	}
	b.inFrame = false

	glog.V(2).Infof("frame %d: %d cycles, line counter %d", b.ula.FrameCounter(), b.frameCycles, b.ula.LineCounter())
}

// Proceed runs the CPU for the requested cycles plus any carried
// balance. Whole instructions always complete, so the CPU may run past
// the request; the overdraft is deducted from the next call.
func (b *Board) Proceed(cycles int) {
	b.allowed += cycles
	taken := b.engine.Run(b.allowed)
	b.frameCycles += taken
	b.allowed -= taken
}

// PulseNMI forwards a ULA NMI pulse to the CPU.
func (b *Board) PulseNMI() { b.engine.PulseNMI() }

// AssertINT forwards a ULA INT request to the CPU.
func (b *Board) AssertINT() { b.engine.AssertINT() }

func (b *Board) readingPort(port uint16) {
	if val, ok := b.ula.ReadPort(port); ok {
		b.ports.SetInput(uint8(port), val)
	}
}

func (b *Board) writtenPort(port uint16, val uint8) {
	b.ula.WritePort(port, val)
}

func (b *Board) instructionPost(r uint8) {
	b.ula.InstructionExecuted(r)
	if b.trace {
		glog.Infof("R=%02X CYCLES=%d", r, b.engine.Cycles())
	}
}

func (b *Board) tracePre(pc uint16) {
	glog.Infof("PC=%04X NMI=%t LINECNTR=%d", pc, b.ula.NMIEnabled(), b.ula.LineCounter())
}

// sampleEAR latches the tape level at cycle into the ULA.
func (b *Board) sampleEAR(cycle uint64) {
	if b.tape != nil {
		b.ula.SetEAR(b.tape.LevelAt(cycle))
	}
}

// traceMIC records a MIC transition at cycle, if any.
func (b *Board) traceMIC(cycle uint64) {
	b.mic.record(cycle, b.ula.MIC())
}

// FrameCycles returns the CPU cycles executed during the current or
// last frame.
func (b *Board) FrameCycles() int { return b.frameCycles }

// Cycles returns the CPU cycles executed since power-on.
func (b *Board) Cycles() uint64 { return b.engine.Cycles() }

// ULA returns the board's display unit.
func (b *Board) ULA() *ULA { return b.ula }

// Keyboard returns the board's key matrix.
func (b *Board) Keyboard() *Keyboard { return b.keyboard }

// InsertTape attaches t as the cassette input. A nil tape ejects.
func (b *Board) InsertTape(t *Tape) {
	b.tape = t
	if t == nil {
		b.ula.SetEAR(false)
	}
}

// Tape returns the inserted tape or nil.
func (b *Board) Tape() *Tape { return b.tape }

// Peek reads addr as a data access, without side effects.
func (b *Board) Peek(addr uint16) uint8 {
	return b.mem.Read(addr, PhaseData)
}

// LoadROM replaces the ROM image.
func (b *Board) LoadROM(image []byte) error {
	if err := ValidateROM(image); err != nil {
		return err
	}
	b.mustBeIdle("LoadROM")
	b.rom.Load(image)
	return nil
}

// WriteRAM copies data into RAM starting at CPU address addr.
func (b *Board) WriteRAM(addr uint16, data []byte) error {
	start := int(addr)
	end := start + len(data)
	if start < RAMStart || end > RAMEnd {
		return fmt.Errorf("RAM write 0x%04X-0x%04X outside 0x%04X-0x%04X", start, end-1, RAMStart, RAMEnd-1)
	}
	for i, v := range data {
		b.ram.Poke(uint16(start-RAMStart+i), v)
	}
	return nil
}

// SetBorder sets the border colour index for loaders.
func (b *Board) SetBorder(index uint8) {
	b.mustBeIdle("SetBorder")
	b.ula.SetBorder(index)
}

// Registers returns the CPU registers.
func (b *Board) Registers() z80.Registers { return b.engine.Registers() }

// SetRegisters loads the CPU registers.
func (b *Board) SetRegisters(regs z80.Registers) {
	b.mustBeIdle("SetRegisters")
	b.engine.SetRegisters(regs)
}
