package emu

import "github.com/user-none/go-chip-z80"

// intData is the byte on the data bus during interrupt acknowledge.
// The ROM runs in IM 1, which ignores it.
const intData = 0xFF

// Engine runs the Z80 in cycle budgets and exposes named hook slots
// around every instruction.
type Engine struct {
	cpu *z80.CPU

	// InstructionPre is called with PC before each instruction.
	InstructionPre func(pc uint16)
	// InstructionPost is called with R after each instruction.
	InstructionPost func(r uint8)

	// intAsserted holds INT for exactly one instruction boundary.
	intAsserted bool
}

// NewEngine creates an Engine with a Z80 attached to bus.
func NewEngine(bus z80.Bus) *Engine {
	return &Engine{cpu: z80.New(bus)}
}

// Run executes whole instructions until at least budget cycles have
// elapsed and returns the number executed. The result exceeds budget by
// less than the cost of the last instruction. A budget of zero or less
// runs nothing.
func (e *Engine) Run(budget int) int {
	executed := 0
	for executed < budget {
		executed += e.step()
	}
	return executed
}

func (e *Engine) step() int {
	if e.InstructionPre != nil {
		e.InstructionPre(e.cpu.Registers().PC)
	}

	cycles := e.cpu.Step()

	// INT is a pulse: it is seen at one boundary and then released.
	if e.intAsserted {
		e.intAsserted = false
		e.cpu.INT(false, intData)
	}

	if e.InstructionPost != nil {
		e.InstructionPost(e.cpu.Registers().R)
	}
	return cycles
}

// PulseNMI latches a non-maskable interrupt for the next instruction.
func (e *Engine) PulseNMI() {
	e.cpu.NMI()
}

// AssertINT asserts the maskable interrupt for the next instruction
// boundary only.
func (e *Engine) AssertINT() {
	e.intAsserted = true
	e.cpu.INT(true, intData)
}

// Reset puts the Z80 in its power-on state and releases INT.
func (e *Engine) Reset() {
	e.cpu.Reset()
	e.intAsserted = false
}

// Cycles returns the T-states executed since the last Reset.
func (e *Engine) Cycles() uint64 {
	return e.cpu.Cycles()
}

// Registers returns a snapshot of the CPU registers.
func (e *Engine) Registers() z80.Registers {
	return e.cpu.Registers()
}

// SetRegisters loads all CPU registers, as snapshot loaders need.
func (e *Engine) SetRegisters(regs z80.Registers) {
	e.cpu.SetState(regs)
}
