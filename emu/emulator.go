package emu

import (
	"github.com/golang/glog"
	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

// Framebuffer geometry. The whole raster, border included, is shown.
const (
	ScreenWidth     = RasterWidth
	MaxScreenHeight = RasterHeight
)

// Flat address boundaries for ReadMemory.
const (
	ramFlatStart = 0x0000
	ramFlatEnd   = RAMSize - 1
)

// Pad buttons beyond the d-pad.
const (
	ButtonFire    = 4
	ButtonNewline = 5
	ButtonSpace   = 6
	ButtonShift   = 7
	padButtons    = 8
)

// JoystickLayout selects which keys the pad's directions and fire
// button press.
type JoystickLayout int

const (
	JoystickCursor JoystickLayout = iota // 7/6/5/8, fire 0
	JoystickQAOP                         // Q/A/O/P, fire M
)

// joystickKeys lists up, down, left, right and fire for each layout.
var joystickKeys = map[JoystickLayout][5]Key{
	JoystickCursor: {Key7, Key6, Key5, Key8, Key0},
	JoystickQAOP:   {KeyQ, KeyA, KeyO, KeyP, KeyM},
}

// ParseJoystickLayout maps an option value to a layout. Unknown values
// select the cursor layout.
func ParseJoystickLayout(s string) JoystickLayout {
	if s == "qaop" {
		return JoystickQAOP
	}
	return JoystickCursor
}

type keyEvent struct {
	key  Key
	down bool
}

// Emulator wraps a Board with the frontend-facing API: RGBA video,
// PCM audio, pad and keyboard input, tape control and save states.
type Emulator struct {
	board   *Board
	palette *Palette

	framebuffer []byte

	region Region
	timing RegionTiming

	// Key events wait here until the next frame boundary.
	pending  []keyEvent
	buttons  uint32
	joystick JoystickLayout

	tapeAutoplay bool
	recorder     *TapeRecorder

	// Pre-allocated audio buffer for external consumption
	audioBuffer []int16

	// Low-pass filter state, persists across frames
	filterPrevL float64
	filterPrevR float64
}

// NewEmulator validates rom, builds a board around it and powers it on.
func NewEmulator(rom []byte, region Region) (Emulator, error) {
	if err := ValidateROM(rom); err != nil {
		return Emulator{}, err
	}

	board := NewBoard(rom)
	board.PowerOn()
	glog.Infof("ROM loaded: %d bytes, CRC32 %08X", len(rom), board.rom.CRC())

	return Emulator{
		board:        board,
		palette:      NewPalette(DefaultColours),
		framebuffer:  make([]byte, ScreenWidth*MaxScreenHeight*4),
		region:       RegionPAL,
		timing:       GetTimingForRegion(region),
		tapeAutoplay: true,
		audioBuffer:  make([]int16, 0, samplesPerFrame*2),
	}, nil
}

// RunFrame executes one frame of emulation.
func (e *Emulator) RunFrame() {
	e.applyKeyEvents()
	e.board.RunFrame()
	e.mixAudio()
	if e.recorder != nil {
		e.recorder.captureFrame(&e.board.mic, e.board.FrameCycles())
	}
	e.palette.Expand(e.framebuffer, e.board.ula.Frame())
}

// KeyDown queues a key press for the next frame boundary.
func (e *Emulator) KeyDown(key Key) {
	e.pending = append(e.pending, keyEvent{key: key, down: true})
}

// KeyUp queues a key release for the next frame boundary.
func (e *Emulator) KeyUp(key Key) {
	e.pending = append(e.pending, keyEvent{key: key, down: false})
}

func (e *Emulator) applyKeyEvents() {
	kb := e.board.keyboard
	for _, ev := range e.pending {
		if ev.down {
			kb.Press(ev.key)
		} else {
			kb.Release(ev.key)
		}
	}
	e.pending = e.pending[:0]
}

// buttonKey returns the key pad button bit presses.
func (e *Emulator) buttonKey(bit int) Key {
	switch bit {
	case emucore.ButtonUp, emucore.ButtonDown, emucore.ButtonLeft, emucore.ButtonRight, ButtonFire:
		return joystickKeys[e.joystick][bit]
	case ButtonNewline:
		return KeyNewline
	case ButtonSpace:
		return KeySpace
	case ButtonShift:
		return KeyShift
	}
	return KeyNone
}

// SetInput turns player 1's pad bitmask into key presses. Only changes
// since the last call generate key events.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	changed := buttons ^ e.buttons
	for bit := 0; bit < padButtons; bit++ {
		mask := uint32(1) << bit
		if changed&mask == 0 {
			continue
		}
		if buttons&mask != 0 {
			e.KeyDown(e.buttonKey(bit))
		} else {
			e.KeyUp(e.buttonKey(bit))
		}
	}
	e.buttons = buttons
}

// SetJoystick changes the pad layout, releasing keys held through the
// old layout.
func (e *Emulator) SetJoystick(layout JoystickLayout) {
	if layout == e.joystick {
		return
	}
	e.SetInput(0, 0)
	e.joystick = layout
}

// GetFramebuffer returns raw RGBA pixel data for the last frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.framebuffer
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return ScreenWidth * 4
}

// GetActiveHeight returns the display height.
func (e *Emulator) GetActiveHeight() int {
	return MaxScreenHeight
}

// GetRegion returns the emulator's region setting.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       e.timing.FPS,
		Scanlines: e.timing.Scanlines,
	}
}

// SetRegion is accepted for interface compatibility; the machine is
// PAL only.
func (e *Emulator) SetRegion(region Region) {
	if region != RegionPAL {
		glog.V(1).Infof("region %v requested, staying on PAL", region)
	}
}

// Board returns the underlying board.
func (e *Emulator) Board() *Board {
	return e.board
}

// InsertTape loads t into the cassette deck, replacing any tape already
// there. With autoplay on, the tape starts immediately.
func (e *Emulator) InsertTape(t *Tape) {
	e.board.InsertTape(t)
	if t != nil && e.tapeAutoplay {
		t.Play(e.board.Cycles())
	}
}

// EjectTape removes the tape.
func (e *Emulator) EjectTape() {
	e.board.InsertTape(nil)
}

// PlayTape starts the inserted tape.
func (e *Emulator) PlayTape() {
	if t := e.board.Tape(); t != nil {
		t.Play(e.board.Cycles())
	}
}

// StopTape stops the inserted tape.
func (e *Emulator) StopTape() {
	if t := e.board.Tape(); t != nil {
		t.Stop(e.board.Cycles())
	}
}

// ToggleTape starts a stopped tape or stops a running one.
func (e *Emulator) ToggleTape() {
	if t := e.board.Tape(); t != nil && t.Playing() {
		e.StopTape()
		return
	}
	e.PlayTape()
}

// RewindTape moves the inserted tape to its start.
func (e *Emulator) RewindTape() {
	if t := e.board.Tape(); t != nil {
		t.Rewind(e.board.Cycles())
	}
}

// AttachRecorder starts capturing MIC output into r. A nil recorder
// stops capturing.
func (e *Emulator) AttachRecorder(r *TapeRecorder) {
	e.recorder = r
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "joystick":
		e.SetJoystick(ParseJoystickLayout(value))
	case "tape_autoplay":
		e.tapeAutoplay = value == "true"
	}
}

// ReadRAM reads a single byte of RAM by offset.
// Returns 0 for offsets beyond the RAM size.
func (e *Emulator) ReadRAM(offset uint16) byte {
	if int(offset) >= RAMSize {
		return 0
	}
	return e.board.ram.Peek(offset)
}

// GetRAM returns a copy of RAM.
func (e *Emulator) GetRAM() []byte {
	out := make([]byte, RAMSize)
	copy(out, e.board.ram.data[:])
	return out
}

// SetRAM writes data into RAM from offset 0.
func (e *Emulator) SetRAM(data []byte) {
	copy(e.board.ram.data[:], data)
}

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Flat addresses are RAM offsets.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		if cur < ramFlatStart || cur > ramFlatEnd {
			return count
		}
		buf[i] = e.ReadRAM(uint16(cur - ramFlatStart))
		count++
	}
	return count
}

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	return []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: RAMSize},
	}
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	if regionType == emucore.MemorySystemRAM {
		return e.GetRAM()
	}
	return nil
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	if regionType == emucore.MemorySystemRAM {
		e.SetRAM(data)
	}
}
