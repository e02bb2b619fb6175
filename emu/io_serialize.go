package emu

import "errors"

const (
	portsSerializeVersion = 1
	// PortsSerializeSize is the total bytes needed for Ports serialization.
	// version(1) + input latches(256) + output latches(256)
	PortsSerializeSize = 513
)

// Serialize writes port latch state to buf. buf must be at least
// PortsSerializeSize bytes.
func (p *Ports) Serialize(buf []byte) error {
	if len(buf) < PortsSerializeSize {
		return errors.New("ports serialize buffer too small")
	}

	buf[0] = portsSerializeVersion
	copy(buf[1:257], p.input[:])
	copy(buf[257:513], p.output[:])
	return nil
}

// Deserialize restores port latch state from buf.
func (p *Ports) Deserialize(buf []byte) error {
	if len(buf) < PortsSerializeSize {
		return errors.New("ports deserialize buffer too small")
	}
	if buf[0] != portsSerializeVersion {
		return errors.New("unsupported ports state version")
	}

	copy(p.input[:], buf[1:257])
	copy(p.output[:], buf[257:513])
	return nil
}
