package emu

import "hash/crc32"

// Memory map boundaries (Z80 view, 16-bit).
const (
	ROMStart    = 0x0000
	ROMEnd      = 0x2000
	RAMStart    = 0x2000
	RAMEnd      = 0x6000
	UnusedStart = 0x6000

	ROMSize    = ROMEnd - ROMStart     // 8KB
	RAMSize    = RAMEnd - RAMStart     // 16KB
	UnusedSize = 0x10000 - UnusedStart // 40KB
	UnusedFill = 0xFF

	// Opcode fetches with A15 set see the lower 16KB: A15 and A14 are
	// forced low before decode.
	fetchMirrorBit  = 0x8000
	fetchMirrorMask = 0xC000
)

// Access is the access level a mapping grants.
type Access int

const (
	AccessReadOnly Access = iota
	AccessReadWrite
)

// BusPhase tells the mapper what kind of memory cycle is in progress.
type BusPhase int

const (
	PhaseData        BusPhase = iota // data read or write
	PhaseOpcodeFetch                 // M1 opcode fetch
)

// MemRegion is a contiguous block of memory addressed by offset.
type MemRegion interface {
	Peek(offset uint16) uint8
	Poke(offset uint16, val uint8)
	Size() int
}

var (
	_ MemRegion = (*ROM)(nil)
	_ MemRegion = (*RAM)(nil)
	_ MemRegion = (*UnusedMemory)(nil)
)

// ROM holds the 8KB system image.
type ROM struct {
	data [ROMSize]uint8
	crc  uint32
}

// NewROM copies image into a new ROM. Images shorter than ROMSize are
// zero padded; longer ones are truncated.
func NewROM(image []byte) *ROM {
	r := &ROM{}
	r.Load(image)
	return r
}

// Load replaces the ROM contents with image.
func (r *ROM) Load(image []byte) {
	r.data = [ROMSize]uint8{}
	n := copy(r.data[:], image)
	r.crc = crc32.ChecksumIEEE(image[:n])
}

// CRC returns the CRC32 of the loaded image.
func (r *ROM) CRC() uint32 { return r.crc }

func (r *ROM) Peek(offset uint16) uint8 { return r.data[int(offset)%ROMSize] }

// Poke stores into the image. Bus writes never reach here; loaders use it.
func (r *ROM) Poke(offset uint16, val uint8) { r.data[int(offset)%ROMSize] = val }

func (r *ROM) Size() int { return ROMSize }

// RAM is the 16KB read-write store.
type RAM struct {
	data [RAMSize]uint8
}

func (r *RAM) Peek(offset uint16) uint8      { return r.data[int(offset)%RAMSize] }
func (r *RAM) Poke(offset uint16, val uint8) { r.data[int(offset)%RAMSize] = val }
func (r *RAM) Size() int                     { return RAMSize }

// UnusedMemory answers every read with a fixed fill byte and ignores writes.
type UnusedMemory struct {
	fill uint8
}

func (u *UnusedMemory) Peek(uint16) uint8  { return u.fill }
func (u *UnusedMemory) Poke(uint16, uint8) {}
func (u *UnusedMemory) Size() int          { return UnusedSize }

// MemoryMapping is the result of decoding one address: which region
// answers, the region's base address and offset mask, the access level
// granted, and the region offset the address resolved to.
type MemoryMapping struct {
	Region MemRegion
	Begin  uint16
	Mask   uint16
	Access Access
	Offset uint16
}

// MemoryMap decodes Z80 addresses onto the board's memory regions.
//
// Memory map (16-bit):
//
//	0x0000-0x1FFF  ROM (8KB, read-only)
//	0x2000-0x5FFF  RAM (16KB)
//	0x6000-0xFFFF  Unused (reads 0xFF, writes ignored)
//
// An opcode fetch from 0x8000-0xFFFF decodes as if A15 and A14 were low.
type MemoryMap struct {
	rom    *ROM
	ram    *RAM
	unused *UnusedMemory
}

// NewMemoryMap creates a MemoryMap over the given regions.
func NewMemoryMap(rom *ROM, ram *RAM) *MemoryMap {
	return &MemoryMap{
		rom:    rom,
		ram:    ram,
		unused: &UnusedMemory{fill: UnusedFill},
	}
}

// Mapping resolves addr for the given bus phase. Every address resolves.
func (m *MemoryMap) Mapping(addr uint16, phase BusPhase) MemoryMapping {
	if phase == PhaseOpcodeFetch && addr&fetchMirrorBit != 0 {
		addr &^= fetchMirrorMask
	}

	var mapping MemoryMapping
	switch {
	case addr < ROMEnd:
		mapping = MemoryMapping{Region: m.rom, Begin: ROMStart, Mask: 0xFFFF, Access: AccessReadOnly}
	case addr < RAMEnd:
		mapping = MemoryMapping{Region: m.ram, Begin: RAMStart, Mask: 0xFFFF, Access: AccessReadWrite}
	default:
		mapping = MemoryMapping{Region: m.unused, Begin: UnusedStart, Mask: 0xFFFF, Access: AccessReadOnly}
	}
	mapping.Offset = (addr - mapping.Begin) & mapping.Mask
	return mapping
}

// Read returns the byte visible at addr during the given phase.
func (m *MemoryMap) Read(addr uint16, phase BusPhase) uint8 {
	mapping := m.Mapping(addr, phase)
	return mapping.Region.Peek(mapping.Offset)
}

// Write stores val at addr. Writes to read-only mappings are discarded.
func (m *MemoryMap) Write(addr uint16, val uint8) {
	mapping := m.Mapping(addr, PhaseData)
	if mapping.Access != AccessReadWrite {
		return
	}
	mapping.Region.Poke(mapping.Offset, val)
}
