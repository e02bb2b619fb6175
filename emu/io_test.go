package emu

import "testing"

func TestInputLatch_Encode(t *testing.T) {
	tests := []struct {
		latch InputLatch
		want  uint8
	}{
		{InputLatch{Columns: 0x1F}, 0x3F},
		{InputLatch{Columns: 0x1F, PAL: true}, 0x7F},
		{InputLatch{Columns: 0x1F, PAL: true, EAR: true}, 0xFF},
		{InputLatch{Columns: 0x1E, PAL: true}, 0x7E},
		{InputLatch{Columns: 0xFF}, 0x3F},
		{InputLatch{}, 0x20},
	}
	for _, tt := range tests {
		if got := tt.latch.Encode(); got != tt.want {
			t.Errorf("%+v: expected 0x%02X, got 0x%02X", tt.latch, tt.want, got)
		}
	}
}

func TestInputLatch_Decode(t *testing.T) {
	l := DecodeInput(0xDB)
	if l.Columns != 0x1B {
		t.Errorf("expected columns 0x1B, got 0x%02X", l.Columns)
	}
	if !l.PAL || !l.EAR {
		t.Errorf("expected PAL and EAR set: %+v", l)
	}
	if DecodeInput(0x3F).PAL {
		t.Error("bit 6 clear should decode as 60 Hz")
	}
}

func TestOutputLatch(t *testing.T) {
	for v := 0; v < 256; v++ {
		l := DecodeOutput(uint8(v))
		if l.Border != uint8(v)&7 {
			t.Fatalf("0x%02X: expected border %d, got %d", v, v&7, l.Border)
		}
	}
}

func TestPorts_DefaultInputsFloatHigh(t *testing.T) {
	p := NewPorts()
	for _, port := range []uint16{0x0000, 0x00FE, 0xFEFE, 0x1234} {
		if got := p.Read(port); got != 0xFF {
			t.Errorf("port 0x%04X: expected 0xFF, got 0x%02X", port, got)
		}
	}
}

func TestPorts_ReadingSlotRunsFirst(t *testing.T) {
	p := NewPorts()
	var seen uint16
	p.ReadingPort = func(port uint16) {
		seen = port
		p.SetInput(uint8(port), 0x42)
	}

	if got := p.Read(0xBFFE); got != 0x42 {
		t.Errorf("expected value placed by slot, got 0x%02X", got)
	}
	if seen != 0xBFFE {
		t.Errorf("slot should see the full port, got 0x%04X", seen)
	}
}

func TestPorts_WrittenSlotRunsAfterStore(t *testing.T) {
	p := NewPorts()
	var stored uint8
	p.WrittenPort = func(port uint16, val uint8) {
		stored = p.Output(uint8(port))
	}

	p.Write(0x12FD, 0x99)
	if stored != 0x99 {
		t.Errorf("latch should hold the value when the slot runs, got 0x%02X", stored)
	}
	if p.Output(0xFD) != 0x99 {
		t.Errorf("expected latch 0x99, got 0x%02X", p.Output(0xFD))
	}
}

func TestPorts_LowByteDecode(t *testing.T) {
	p := NewPorts()
	p.SetInput(0xFE, 0x11)
	if p.Read(0x7FFE) != 0x11 || p.Read(0x00FE) != 0x11 {
		t.Error("high address byte should not select a different latch")
	}
}

func TestPorts_Reset(t *testing.T) {
	p := NewPorts()
	p.SetInput(1, 0)
	p.Write(2, 0x55)
	p.Reset()
	if p.Read(1) != 0xFF || p.Output(2) != 0 {
		t.Error("reset should restore power-on latches")
	}
}

func TestPorts_SerializeRoundTrip(t *testing.T) {
	p := NewPorts()
	p.SetInput(0xFE, 0x5A)
	p.Write(0xFF, 0x07)

	buf := make([]byte, PortsSerializeSize)
	if err := p.Serialize(buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	q := NewPorts()
	if err := q.Deserialize(buf); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if q.input[0xFE] != 0x5A || q.Output(0xFF) != 0x07 {
		t.Error("latches not restored")
	}

	if err := q.Serialize(buf[:10]); err == nil {
		t.Error("expected error for short buffer")
	}
	buf[0] = 99
	if err := q.Deserialize(buf); err == nil {
		t.Error("expected error for unknown version")
	}
}
