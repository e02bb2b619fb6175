package emu

// Port numbers (low address byte) the ULA decodes on writes.
const (
	PortNMIOff = 0xFD
	PortNMIOn  = 0xFE
)

// InputLatch is the byte the ULA drives onto the data bus for an
// even-port read.
//
//	bit 0-4  keyboard columns (active low)
//	bit 5    always 1
//	bit 6    display standard (1 = 50 Hz)
//	bit 7    EAR, cassette input level
type InputLatch struct {
	Columns uint8 // low five bits used
	PAL     bool
	EAR     bool
}

// Encode packs the latch into its bus byte.
func (l InputLatch) Encode() uint8 {
	v := l.Columns&0x1F | 1<<5
	if l.PAL {
		v |= 1 << 6
	}
	if l.EAR {
		v |= 1 << 7
	}
	return v
}

// DecodeInput unpacks a bus byte read from an even port.
func DecodeInput(v uint8) InputLatch {
	return InputLatch{
		Columns: v & 0x1F,
		PAL:     v&(1<<6) != 0,
		EAR:     v&(1<<7) != 0,
	}
}

// OutputLatch holds the fields the ULA decodes from a port write.
type OutputLatch struct {
	Border uint8 // palette index, bits 0-2
}

// DecodeOutput unpacks a byte written to any port.
func DecodeOutput(v uint8) OutputLatch {
	return OutputLatch{Border: v & 0x07}
}

// Ports is the Z80 I/O space: one input and one output latch per port
// number (low address byte) plus notification slots that fire around
// each access.
//
// ReadingPort runs before the input latch is sampled, so a device can
// place its value with SetInput. WrittenPort runs after the output latch
// has been stored.
type Ports struct {
	input  [256]uint8
	output [256]uint8

	ReadingPort func(port uint16)
	WrittenPort func(port uint16, val uint8)
}

// NewPorts creates a Ports with every input latch floating high.
func NewPorts() *Ports {
	p := &Ports{}
	p.Reset()
	return p
}

// Reset returns all latches to their power-on values.
func (p *Ports) Reset() {
	for i := range p.input {
		p.input[i] = 0xFF
	}
	p.output = [256]uint8{}
}

// Read performs an IN cycle on the full 16-bit port address.
func (p *Ports) Read(port uint16) uint8 {
	if p.ReadingPort != nil {
		p.ReadingPort(port)
	}
	return p.input[uint8(port)]
}

// Write performs an OUT cycle on the full 16-bit port address.
func (p *Ports) Write(port uint16, val uint8) {
	p.output[uint8(port)] = val
	if p.WrittenPort != nil {
		p.WrittenPort(port, val)
	}
}

// SetInput sets the value the next read of port will return.
func (p *Ports) SetInput(port uint8, val uint8) {
	p.input[port] = val
}

// Output returns the last value written to port.
func (p *Ports) Output(port uint8) uint8 {
	return p.output[port]
}
