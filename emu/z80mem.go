package emu

import "github.com/user-none/go-chip-z80"

var _ z80.CycleBus = (*Z80Memory)(nil)

// Z80Memory implements z80.CycleBus for the board.
//
// Memory goes through the MemoryMap: opcode fetches decode with
// PhaseOpcodeFetch, everything else with PhaseData. I/O goes through the
// board's Ports. Port reads latch the cassette input at the exact T-state
// of the read, and both port directions record MIC transitions.
type Z80Memory struct {
	board *Board
}

// NewZ80Memory creates a Z80Memory connected to the given Board.
func NewZ80Memory(board *Board) *Z80Memory {
	return &Z80Memory{board: board}
}

// Fetch reads an opcode byte during an M1 cycle.
func (m *Z80Memory) Fetch(addr uint16) uint8 {
	return m.board.mem.Read(addr, PhaseOpcodeFetch)
}

// Read reads a data byte.
func (m *Z80Memory) Read(addr uint16) uint8 {
	return m.board.mem.Read(addr, PhaseData)
}

// Write writes a data byte. Writes to read-only regions are dropped.
func (m *Z80Memory) Write(addr uint16, val uint8) {
	m.board.mem.Write(addr, val)
}

// In reads from an I/O port at the CPU's current cycle.
func (m *Z80Memory) In(port uint16) uint8 {
	return m.CycleIn(m.board.engine.Cycles(), port)
}

// Out writes to an I/O port at the CPU's current cycle.
func (m *Z80Memory) Out(port uint16, val uint8) {
	m.CycleOut(m.board.engine.Cycles(), port, val)
}

func (m *Z80Memory) CycleFetch(_ uint64, addr uint16) uint8 { return m.Fetch(addr) }

func (m *Z80Memory) CycleRead(_ uint64, addr uint16) uint8 { return m.Read(addr) }

func (m *Z80Memory) CycleWrite(_ uint64, addr uint16, val uint8) { m.Write(addr, val) }

// CycleIn samples the tape, then performs the port read.
func (m *Z80Memory) CycleIn(cycle uint64, port uint16) uint8 {
	m.board.sampleEAR(cycle)
	val := m.board.ports.Read(port)
	m.board.traceMIC(cycle)
	return val
}

// CycleOut performs the port write.
func (m *Z80Memory) CycleOut(cycle uint64, port uint16, val uint8) {
	m.board.ports.Write(port, val)
	m.board.traceMIC(cycle)
}
