package emu

import "fmt"

// Raster geometry and timing (PAL, 50 Hz).
const (
	VerticalRetraceLines = 6
	UpperRasterBorder    = 56
	ActiveRasterHeight   = 192
	LowerRasterBorder    = 56

	HorizontalRasterBorder = 64 // pixels each side of the active area
	ActiveRasterWidth      = 256
	HorizontalRetrace      = 30 // ticks

	RasterWidth  = HorizontalRasterBorder*2 + ActiveRasterWidth
	RasterHeight = UpperRasterBorder + ActiveRasterHeight + LowerRasterBorder
	TotalHeight  = VerticalRetraceLines + RasterHeight

	CyclesPerSecond = 3250000
	FramesPerSecond = 50

	// TicksPerCycle is the number of pixel ticks per CPU cycle.
	TicksPerCycle = 2

	// LineTicks is the tick cost of any scanline, retrace included.
	LineTicks = RasterWidth + HorizontalRetrace
	// FrameTicks is the tick cost of one complete frame.
	FrameTicks = LineTicks * TotalHeight

	// FlashFrames is the number of frames between flash toggles.
	FlashFrames = 32

	upperBorderEnd = VerticalRetraceLines + UpperRasterBorder
	activeEnd      = upperBorderEnd + ActiveRasterHeight
	lowerBorderEnd = activeEnd + LowerRasterBorder
)

// Fails to compile if TicksPerCycle is not positive.
const _ uint = TicksPerCycle - 1

// ULAHost is the ULA's handle back to the board that owns it.
type ULAHost interface {
	// Proceed runs the CPU for at least cycles cycles.
	Proceed(cycles int)
	// PulseNMI raises one non-maskable interrupt edge.
	PulseNMI()
	// AssertINT asserts the maskable interrupt for the next instruction.
	AssertINT()
}

// ULA generates the raster, clocks the CPU, counts lines, drives the
// interrupts and decodes the keyboard and cassette port.
type ULA struct {
	host     ULAHost
	keyboard *Keyboard

	powered     bool
	lineCounter int
	nmiEnabled  bool
	border      uint8
	mic         bool
	ear         bool

	flash        bool
	frameCounter int

	ticks    int // ticks not yet converted to cycles
	nextLine int

	pixels []uint8 // RasterWidth*RasterHeight palette indices, being drawn
	frame  []uint8 // last completed frame
}

// NewULA creates a powered-down ULA reporting to host.
func NewULA(host ULAHost, keyboard *Keyboard) *ULA {
	return &ULA{
		host:     host,
		keyboard: keyboard,
		border:   DefaultBorder,
		pixels:   make([]uint8, RasterWidth*RasterHeight),
		frame:    make([]uint8, RasterWidth*RasterHeight),
	}
}

// RaisePower returns the ULA to its power-on state. Calling it on a
// powered ULA has the same result as calling it once.
func (u *ULA) RaisePower() {
	u.mustBeIdle("RaisePower")
	u.powered = true
	u.lineCounter = 0
	u.nmiEnabled = false
	u.border = DefaultBorder
	u.mic = false
	u.ear = false
	u.flash = false
	u.frameCounter = 0
	u.ticks = 0
	for i := range u.pixels {
		u.pixels[i] = DefaultBorder
		u.frame[i] = DefaultBorder
	}
}

// LowerPower powers the ULA down. State is kept until the next RaisePower.
func (u *ULA) LowerPower() {
	u.mustBeIdle("LowerPower")
	u.powered = false
}

// Powered reports whether the ULA is powered.
func (u *ULA) Powered() bool { return u.powered }

// Rendering reports whether a frame is partially drawn.
func (u *ULA) Rendering() bool { return u.nextLine != 0 }

func (u *ULA) mustBeIdle(op string) {
	if u.Rendering() {
		panic(fmt.Sprintf("emu: %s during frame render (next line %d)", op, u.nextLine))
	}
}

// RenderLine draws scanline y and clocks the CPU for its duration. Lines
// must be rendered in order, 0 through TotalHeight-1, once per frame.
func (u *ULA) RenderLine(y int) {
	if y != u.nextLine {
		panic(fmt.Sprintf("emu: RenderLine(%d) out of order, expected line %d", y, u.nextLine))
	}

	switch {
	case y < VerticalRetraceLines:
		u.tick(RasterWidth)
	case y < upperBorderEnd:
		u.renderBorder(0, y-VerticalRetraceLines, RasterWidth)
	case y < activeEnd:
		row := y - VerticalRetraceLines
		u.renderBorder(0, row, HorizontalRasterBorder)
		u.renderActive(HorizontalRasterBorder, row, ActiveRasterWidth)
		u.renderBorder(HorizontalRasterBorder+ActiveRasterWidth, row, HorizontalRasterBorder)
	case y < lowerBorderEnd:
		u.renderBorder(0, y-VerticalRetraceLines, RasterWidth)
	}

	if u.nmiEnabled {
		u.host.PulseNMI()
	}
	u.lineCounter++
	u.tick(HorizontalRetrace)

	u.nextLine = y + 1
	if u.nextLine == TotalHeight {
		u.endFrame()
	}
}

// renderBorder writes width border pixels starting at (x, row), one tick
// per pixel. The border is re-read for every pixel since the CPU may
// change it during a tick.
func (u *ULA) renderBorder(x, row, width int) {
	base := row*RasterWidth + x
	for i := 0; i < width; i++ {
		u.pixels[base+i] = u.border
		u.tick(1)
	}
}

// renderActive fills the display area with the background colour.
func (u *ULA) renderActive(x, row, width int) {
	base := row*RasterWidth + x
	for i := 0; i < width; i++ {
		u.pixels[base+i] = Background
		u.tick(1)
	}
}

// tick advances the clock by n pixel ticks and asks the host to run any
// whole CPU cycles now owed. The remainder carries to the next tick.
func (u *ULA) tick(n int) {
	u.ticks += n
	if cycles := u.ticks / TicksPerCycle; cycles > 0 {
		u.ticks -= cycles * TicksPerCycle
		u.host.Proceed(cycles)
	}
}

func (u *ULA) endFrame() {
	u.nextLine = 0
	copy(u.frame, u.pixels)
	u.frameCounter++
	if u.frameCounter%FlashFrames == 0 {
		u.flash = !u.flash
	}
}

// InstructionExecuted observes the refresh register after each
// instruction. The maskable interrupt is asserted while R bit 6 is low.
func (u *ULA) InstructionExecuted(r uint8) {
	if r&0x40 == 0 {
		u.host.AssertINT()
	}
}

// ReadPort handles an IN cycle. It returns the value for the input latch
// and true when the port is decoded by the ULA (address bit 0 low).
// With NMI disabled the read also clears MIC and the line counter.
func (u *ULA) ReadPort(port uint16) (uint8, bool) {
	if port&1 != 0 {
		return 0, false
	}

	latch := InputLatch{
		Columns: u.keyboard.SelectedKeys(uint8(port >> 8)),
		PAL:     true,
		EAR:     u.ear,
	}

	if !u.nmiEnabled {
		u.mic = false
		u.lineCounter = 0
	}
	return latch.Encode(), true
}

// WritePort handles an OUT cycle. Writes to PortNMIOff and PortNMIOn
// switch NMI generation; every write loads the border, sets MIC and
// resets the line counter.
func (u *ULA) WritePort(port uint16, val uint8) {
	switch uint8(port) {
	case PortNMIOff:
		u.nmiEnabled = false
	case PortNMIOn:
		u.nmiEnabled = true
	}
	u.border = DecodeOutput(val).Border
	u.mic = true
	u.lineCounter = 0
}

// SetBorder loads the border colour from the low three bits of v, as a
// snapshot loader restoring the display would.
func (u *ULA) SetBorder(v uint8) { u.border = DecodeOutput(v).Border }

// SetEAR latches the cassette input level.
func (u *ULA) SetEAR(level bool) { u.ear = level }

// MIC returns the cassette output level.
func (u *ULA) MIC() bool { return u.mic }

// LineCounter returns the current line counter value.
func (u *ULA) LineCounter() int { return u.lineCounter }

// NMIEnabled reports whether NMI generation is on.
func (u *ULA) NMIEnabled() bool { return u.nmiEnabled }

// Border returns the current border palette index.
func (u *ULA) Border() uint8 { return u.border }

// Flash returns the flash state.
func (u *ULA) Flash() bool { return u.flash }

// FrameCounter returns the number of frames completed since power-on.
func (u *ULA) FrameCounter() int { return u.frameCounter }

// Frame returns the last completed frame as palette indices, row major,
// RasterWidth pixels per row. The slice is owned by the ULA and is
// rewritten at the end of the next frame.
func (u *ULA) Frame() []uint8 { return u.frame }
