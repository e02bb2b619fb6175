package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"

	"github.com/user-none/go-chip-z80"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "eMZXState\x00\x00\x00"
	stateHeaderSize = 22 // magic(12) + version(2) + romCRC(4) + dataCRC(4)
)

// Fixed serialization sizes for inline components
const (
	boardSerializeSize    = 10 // allowed(4) + frameCycles(4) + intAsserted(1) + micLevel(1)
	emulatorSerializeSize = 17 // joystick(1) + filterPrevL(8) + filterPrevR(8)
)

// Section offsets within a save state.
const (
	portsStateOffset = stateHeaderSize + z80.SerializeSize + RAMSize
	ulaStateOffset   = portsStateOffset + PortsSerializeSize
)

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// SerializeSize returns the total size in bytes of a save state.
func SerializeSize() int {
	return stateHeaderSize +
		z80.SerializeSize +
		RAMSize +
		PortsSerializeSize +
		ULASerializeSize +
		boardSerializeSize +
		emulatorSerializeSize
}

// Serialize creates a save state and returns it as a byte slice. States
// are tied to the loaded ROM and to this build.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, SerializeSize())

	// Write header
	copy(data[0:12], stateMagic)
	binary.LittleEndian.PutUint16(data[12:14], stateVersion)
	binary.LittleEndian.PutUint32(data[14:18], e.board.rom.CRC())

	offset := stateHeaderSize

	// Z80 CPU
	if err := e.board.engine.cpu.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += z80.SerializeSize

	// RAM
	copy(data[offset:], e.board.ram.data[:])
	offset += RAMSize

	// Port latches
	if err := e.board.ports.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += PortsSerializeSize

	// ULA
	if err := e.board.ula.Serialize(data[offset:]); err != nil {
		return nil, err
	}
	offset += ULASerializeSize

	offset = e.serializeBoard(data, offset)
	e.serializeEmulator(data, offset)

	// Calculate and write data CRC32 (over everything after header)
	dataCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	binary.LittleEndian.PutUint32(data[18:22], dataCRC)

	return data, nil
}

// Deserialize restores emulator state from a save state byte slice.
// Held keys and the tape position are not part of the state.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := stateHeaderSize

	// Z80 CPU
	if err := e.board.engine.cpu.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += z80.SerializeSize

	// RAM
	copy(e.board.ram.data[:], data[offset:offset+RAMSize])
	offset += RAMSize

	// Port latches
	if err := e.board.ports.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += PortsSerializeSize

	// ULA
	if err := e.board.ula.Deserialize(data[offset:]); err != nil {
		return err
	}
	offset += ULASerializeSize

	offset = e.deserializeBoard(data, offset)
	e.deserializeEmulator(data, offset)

	e.palette.Expand(e.framebuffer, e.board.ula.Frame())
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < SerializeSize() {
		return errors.New("save state too short")
	}

	if string(data[0:12]) != stateMagic {
		return errors.New("invalid save state magic")
	}

	version := binary.LittleEndian.Uint16(data[12:14])
	if version > stateVersion {
		return errors.New("unsupported save state version")
	}

	romCRC := binary.LittleEndian.Uint32(data[14:18])
	if romCRC != e.board.rom.CRC() {
		return errors.New("save state is for a different ROM")
	}

	expectedCRC := binary.LittleEndian.Uint32(data[18:22])
	actualCRC := crc32.ChecksumIEEE(data[stateHeaderSize:])
	if expectedCRC != actualCRC {
		return errors.New("save state data is corrupted")
	}

	// Section versions are checked here so Deserialize never stops
	// part way through.
	if data[portsStateOffset] != portsSerializeVersion {
		return errors.New("unsupported ports state version")
	}
	if data[ulaStateOffset] != ulaSerializeVersion {
		return errors.New("unsupported ULA state version")
	}

	return nil
}

// serializeBoard writes Board inline state to the data buffer.
func (e *Emulator) serializeBoard(data []byte, offset int) int {
	b := e.board
	binary.LittleEndian.PutUint32(data[offset:], uint32(int32(b.allowed)))
	offset += 4
	binary.LittleEndian.PutUint32(data[offset:], uint32(int32(b.frameCycles)))
	offset += 4
	data[offset] = boolByte(b.engine.intAsserted)
	offset++
	data[offset] = boolByte(b.mic.level)
	offset++
	return offset
}

// deserializeBoard reads Board inline state from the data buffer.
func (e *Emulator) deserializeBoard(data []byte, offset int) int {
	b := e.board
	b.allowed = int(int32(binary.LittleEndian.Uint32(data[offset:])))
	offset += 4
	b.frameCycles = int(int32(binary.LittleEndian.Uint32(data[offset:])))
	offset += 4
	b.engine.intAsserted = data[offset] != 0
	offset++
	b.mic.reset()
	b.mic.level = data[offset] != 0
	offset++
	return offset
}

// serializeEmulator writes Emulator inline state to the data buffer.
func (e *Emulator) serializeEmulator(data []byte, offset int) int {
	data[offset] = uint8(e.joystick)
	offset++

	binary.LittleEndian.PutUint64(data[offset:], math.Float64bits(e.filterPrevL))
	offset += 8

	binary.LittleEndian.PutUint64(data[offset:], math.Float64bits(e.filterPrevR))
	offset += 8

	return offset
}

// deserializeEmulator reads Emulator inline state from the data buffer.
func (e *Emulator) deserializeEmulator(data []byte, offset int) int {
	e.joystick = JoystickLayout(data[offset])
	offset++

	e.filterPrevL = math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	e.filterPrevR = math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8

	return offset
}
