package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emzx/emu"
)

// hostKeys maps host keys to the ZX81 keys they hold down. Keys with no
// ZX81 equivalent of their own press SHIFT plus the key carrying the
// shifted legend.
var hostKeys = map[ebiten.Key][]emu.Key{
	ebiten.KeyDigit0: {emu.Key0},
	ebiten.KeyDigit1: {emu.Key1},
	ebiten.KeyDigit2: {emu.Key2},
	ebiten.KeyDigit3: {emu.Key3},
	ebiten.KeyDigit4: {emu.Key4},
	ebiten.KeyDigit5: {emu.Key5},
	ebiten.KeyDigit6: {emu.Key6},
	ebiten.KeyDigit7: {emu.Key7},
	ebiten.KeyDigit8: {emu.Key8},
	ebiten.KeyDigit9: {emu.Key9},

	ebiten.KeyA: {emu.KeyA},
	ebiten.KeyB: {emu.KeyB},
	ebiten.KeyC: {emu.KeyC},
	ebiten.KeyD: {emu.KeyD},
	ebiten.KeyE: {emu.KeyE},
	ebiten.KeyF: {emu.KeyF},
	ebiten.KeyG: {emu.KeyG},
	ebiten.KeyH: {emu.KeyH},
	ebiten.KeyI: {emu.KeyI},
	ebiten.KeyJ: {emu.KeyJ},
	ebiten.KeyK: {emu.KeyK},
	ebiten.KeyL: {emu.KeyL},
	ebiten.KeyM: {emu.KeyM},
	ebiten.KeyN: {emu.KeyN},
	ebiten.KeyO: {emu.KeyO},
	ebiten.KeyP: {emu.KeyP},
	ebiten.KeyQ: {emu.KeyQ},
	ebiten.KeyR: {emu.KeyR},
	ebiten.KeyS: {emu.KeyS},
	ebiten.KeyT: {emu.KeyT},
	ebiten.KeyU: {emu.KeyU},
	ebiten.KeyV: {emu.KeyV},
	ebiten.KeyW: {emu.KeyW},
	ebiten.KeyX: {emu.KeyX},
	ebiten.KeyY: {emu.KeyY},
	ebiten.KeyZ: {emu.KeyZ},

	ebiten.KeyEnter:      {emu.KeyNewline},
	ebiten.KeySpace:      {emu.KeySpace},
	ebiten.KeyPeriod:     {emu.KeyPeriod},
	ebiten.KeyShiftLeft:  {emu.KeyShift},
	ebiten.KeyShiftRight: {emu.KeyShift},

	ebiten.KeyBackspace:  {emu.KeyShift, emu.Key0}, // RUBOUT
	ebiten.KeyArrowLeft:  {emu.KeyShift, emu.Key5},
	ebiten.KeyArrowDown:  {emu.KeyShift, emu.Key6},
	ebiten.KeyArrowUp:    {emu.KeyShift, emu.Key7},
	ebiten.KeyArrowRight: {emu.KeyShift, emu.Key8},
	ebiten.KeyComma:      {emu.KeyShift, emu.KeyPeriod},
}

// keyTracker turns host key edges into ZX81 key edges. ZX81 keys are
// reference counted, so releasing one of two host keys holding SHIFT
// leaves SHIFT down.
type keyTracker struct {
	held map[emu.Key]int
}

func newKeyTracker() *keyTracker {
	return &keyTracker{held: make(map[emu.Key]int)}
}

// press handles a host key going down and calls post for every ZX81 key
// that changes state.
func (t *keyTracker) press(k ebiten.Key, post func(emu.Key, bool)) {
	for _, zk := range hostKeys[k] {
		t.held[zk]++
		if t.held[zk] == 1 {
			post(zk, true)
		}
	}
}

// release handles a host key going up.
func (t *keyTracker) release(k ebiten.Key, post func(emu.Key, bool)) {
	for _, zk := range hostKeys[k] {
		if t.held[zk] == 0 {
			continue
		}
		t.held[zk]--
		if t.held[zk] == 0 {
			post(zk, false)
		}
	}
}

// releaseAll lets go of every held key, as when the window loses focus.
func (t *keyTracker) releaseAll(post func(emu.Key, bool)) {
	for zk, n := range t.held {
		if n > 0 {
			post(zk, false)
		}
	}
	clear(t.held)
}
