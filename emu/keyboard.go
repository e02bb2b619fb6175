package emu

// Key identifies one physical key of the 40-key matrix.
type Key int

const (
	KeyNone Key = iota
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyShift
	KeyNewline
	KeySpace
	KeyPeriod
)

// keyColumns is the number of keys on each matrix row.
const keyColumns = 5

// KeyRow lists the keys of one row in column order (column 0 first).
type KeyRow [keyColumns]Key

// DefaultKeyRows returns the standard row-select mapping. Each row is
// selected by the high byte of an I/O read with exactly one bit low.
func DefaultKeyRows() map[uint8]KeyRow {
	return map[uint8]KeyRow{
		0xFE: {KeyShift, KeyZ, KeyX, KeyC, KeyV},
		0xFD: {KeyA, KeyS, KeyD, KeyF, KeyG},
		0xFB: {KeyQ, KeyW, KeyE, KeyR, KeyT},
		0xF7: {Key1, Key2, Key3, Key4, Key5},
		0xEF: {Key0, Key9, Key8, Key7, Key6},
		0xDF: {KeyP, KeyO, KeyI, KeyU, KeyY},
		0xBF: {KeyNewline, KeyL, KeyK, KeyJ, KeyH},
		0x7F: {KeySpace, KeyPeriod, KeyM, KeyN, KeyB},
	}
}

// Keyboard is the key matrix: an immutable row mapping plus the set of
// keys currently held down.
type Keyboard struct {
	rows    map[uint8]KeyRow
	pressed map[Key]bool
}

// NewKeyboard creates a Keyboard with a private copy of rows.
func NewKeyboard(rows map[uint8]KeyRow) *Keyboard {
	k := &Keyboard{
		rows:    make(map[uint8]KeyRow, len(rows)),
		pressed: make(map[Key]bool),
	}
	for sel, row := range rows {
		k.rows[sel] = row
	}
	return k
}

// Press marks key as held down.
func (k *Keyboard) Press(key Key) {
	k.pressed[key] = true
}

// Release marks key as up.
func (k *Keyboard) Release(key Key) {
	delete(k.pressed, key)
}

// ReleaseAll clears the press set.
func (k *Keyboard) ReleaseAll() {
	clear(k.pressed)
}

// Pressed reports whether key is held down.
func (k *Keyboard) Pressed(key Key) bool {
	return k.pressed[key]
}

// SelectedKeys returns the active-low column byte for the row selected
// by sel: bit n is cleared when the key in column n is held. Bits 5-7 are
// always set. A selector with no row mapping reads as no keys pressed.
func (k *Keyboard) SelectedKeys(sel uint8) uint8 {
	result := uint8(0xFF)
	row, ok := k.rows[sel]
	if !ok {
		return result
	}
	for column, key := range row {
		if k.pressed[key] {
			result &^= 1 << column
		}
	}
	return result
}
