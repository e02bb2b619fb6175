package ui

import (
	"sync"

	"github.com/user-none/emzx/emu"
)

// KeyEvent is a single ZX81 key edge.
type KeyEvent struct {
	Key  emu.Key
	Down bool
}

// Command is a frontend request that must run between frames.
type Command int

const (
	CommandToggleTape Command = iota
	CommandRewindTape
	CommandReset
)

// InputBatch is everything collected by the Ebiten thread since the
// emulation goroutine last drained SharedInput.
type InputBatch struct {
	Pad      uint32
	Keys     []KeyEvent
	Commands []Command
}

// SharedInput carries pad state, key edges and commands from the Ebiten
// thread to the emulation goroutine. Key edges are queued so a press and
// release inside one frame are both seen.
type SharedInput struct {
	mu       sync.Mutex
	pad      uint32
	keys     []KeyEvent
	commands []Command
}

// SetPad records the current pad bitmask.
func (si *SharedInput) SetPad(buttons uint32) {
	si.mu.Lock()
	si.pad = buttons
	si.mu.Unlock()
}

// PostKey queues a key edge.
func (si *SharedInput) PostKey(key emu.Key, down bool) {
	si.mu.Lock()
	si.keys = append(si.keys, KeyEvent{Key: key, Down: down})
	si.mu.Unlock()
}

// PostCommand queues a command.
func (si *SharedInput) PostCommand(c Command) {
	si.mu.Lock()
	si.commands = append(si.commands, c)
	si.mu.Unlock()
}

// Drain moves queued input into b, reusing its slices.
func (si *SharedInput) Drain(b *InputBatch) {
	si.mu.Lock()
	b.Pad = si.pad
	b.Keys = append(b.Keys[:0], si.keys...)
	b.Commands = append(b.Commands[:0], si.commands...)
	si.keys = si.keys[:0]
	si.commands = si.commands[:0]
	si.mu.Unlock()
}

// SharedFramebuffer hands finished frames from the emulation goroutine
// to Ebiten's Draw. Update copies into a back buffer; Read copies the back
// buffer into a front buffer the caller may use without the lock.
type SharedFramebuffer struct {
	mu     sync.Mutex
	back   []byte
	front  []byte
	stride int
	height int
}

// NewSharedFramebuffer creates a framebuffer sized for a full raster.
func NewSharedFramebuffer() *SharedFramebuffer {
	size := emu.ScreenWidth * emu.MaxScreenHeight * 4
	return &SharedFramebuffer{
		back:  make([]byte, size),
		front: make([]byte, size),
	}
}

// Update stores a frame.
func (sf *SharedFramebuffer) Update(pixels []byte, stride, height int) {
	sf.mu.Lock()
	n := min(stride*height, len(sf.back), len(pixels))
	copy(sf.back, pixels[:n])
	sf.stride = stride
	sf.height = height
	sf.mu.Unlock()
}

// Read returns the latest frame. Height is zero until the first Update.
func (sf *SharedFramebuffer) Read() (pixels []byte, stride, height int) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	n := min(sf.stride*sf.height, len(sf.back))
	copy(sf.front, sf.back[:n])
	return sf.front, sf.stride, sf.height
}

// EmuControl coordinates pause, resume and stop between the Ebiten
// thread and the emulation goroutine.
type EmuControl struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopped  bool
}

// NewEmuControl creates a running control.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// RequestPause asks the emulation goroutine to pause and blocks until it
// has parked between frames, or has stopped.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.pauseReq = true
	for !ec.paused && !ec.stopped {
		ec.cond.Wait()
	}
}

// RequestResume releases a paused emulation goroutine.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// CheckPause is called by the emulation goroutine between frames. It
// parks while a pause is requested and returns false once the goroutine
// should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	for ec.pauseReq && !ec.stopped {
		if !ec.paused {
			ec.paused = true
			ec.cond.Broadcast()
		}
		ec.cond.Wait()
	}
	ec.paused = false
	return !ec.stopped
}

// Stop makes the next or current CheckPause return false.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopped = true
	ec.pauseReq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// IsPaused reports whether the emulation goroutine is parked.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.paused
}
