package emu

import (
	"encoding/binary"
	"errors"
)

const (
	ulaSerializeVersion = 1
	// ULASerializeSize is the total bytes needed for ULA serialization.
	// version(1) + powered(1) + lineCounter(4) + nmiEnabled(1) + border(1) +
	// mic(1) + ear(1) + flash(1) + frameCounter(4) + ticks(4) + frame
	ULASerializeSize = 19 + RasterWidth*RasterHeight
)

// Serialize writes ULA state to buf. buf must be at least
// ULASerializeSize bytes. The ULA must be between frames.
func (u *ULA) Serialize(buf []byte) error {
	if len(buf) < ULASerializeSize {
		return errors.New("ULA serialize buffer too small")
	}
	if u.Rendering() {
		return errors.New("ULA serialize during frame render")
	}

	buf[0] = ulaSerializeVersion
	buf[1] = boolByte(u.powered)
	binary.LittleEndian.PutUint32(buf[2:], uint32(int32(u.lineCounter)))
	buf[6] = boolByte(u.nmiEnabled)
	buf[7] = u.border
	buf[8] = boolByte(u.mic)
	buf[9] = boolByte(u.ear)
	buf[10] = boolByte(u.flash)
	binary.LittleEndian.PutUint32(buf[11:], uint32(u.frameCounter))
	binary.LittleEndian.PutUint32(buf[15:], uint32(u.ticks))
	copy(buf[19:], u.frame)
	return nil
}

// Deserialize restores ULA state from buf.
func (u *ULA) Deserialize(buf []byte) error {
	if len(buf) < ULASerializeSize {
		return errors.New("ULA deserialize buffer too small")
	}
	if buf[0] != ulaSerializeVersion {
		return errors.New("unsupported ULA state version")
	}
	if u.Rendering() {
		return errors.New("ULA deserialize during frame render")
	}

	u.powered = buf[1] != 0
	u.lineCounter = int(int32(binary.LittleEndian.Uint32(buf[2:])))
	u.nmiEnabled = buf[6] != 0
	u.border = buf[7] & (paletteSize - 1)
	u.mic = buf[8] != 0
	u.ear = buf[9] != 0
	u.flash = buf[10] != 0
	u.frameCounter = int(binary.LittleEndian.Uint32(buf[11:]))
	u.ticks = int(binary.LittleEndian.Uint32(buf[15:]))
	copy(u.frame, buf[19:ULASerializeSize])
	copy(u.pixels, u.frame)
	return nil
}
