package adapter

import (
	"testing"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emzx/emu"
)

func TestFactory_SystemInfo(t *testing.T) {
	info := (&Factory{}).SystemInfo()

	if info.ScreenWidth != emu.RasterWidth || info.MaxScreenHeight != emu.RasterHeight {
		t.Errorf("unexpected screen %dx%d", info.ScreenWidth, info.MaxScreenHeight)
	}
	if info.SerializeSize != emu.SerializeSize() {
		t.Errorf("SerializeSize: expected %d, got %d", emu.SerializeSize(), info.SerializeSize)
	}

	seen := map[int]bool{}
	for _, b := range info.Buttons {
		if b.ID < 4 {
			t.Errorf("button %s uses d-pad bit %d", b.Name, b.ID)
		}
		if seen[b.ID] {
			t.Errorf("duplicate button bit %d", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestFactory_CreateEmulator(t *testing.T) {
	f := &Factory{}

	if _, err := f.CreateEmulator(nil, emucore.RegionPAL); err == nil {
		t.Error("expected error for empty ROM")
	}

	e, err := f.CreateEmulator(make([]byte, emu.ROMSize), emucore.RegionNTSC)
	if err != nil {
		t.Fatalf("CreateEmulator: %v", err)
	}
	if e.GetRegion() != emucore.RegionPAL {
		t.Error("emulator should run PAL")
	}
	if _, ok := e.(emucore.SaveStater); !ok {
		t.Error("emulator should support save states")
	}

	region, found := f.DetectRegion(nil)
	if region != emucore.RegionPAL || found {
		t.Error("DetectRegion should report PAL without a database hit")
	}
}
