package emu

import emucore "github.com/user-none/eblitui/api"

// Region is the display standard a core runs at.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// RegionTiming holds timing constants for a display standard.
type RegionTiming struct {
	ClockHz   int // Z80 clock frequency
	Scanlines int // Total scanlines per frame
	FPS       int // Frames per second
}

// PAL timing: Z80 3.25 MHz, 310 scanlines, 50 Hz
var PALTiming = RegionTiming{
	ClockHz:   CyclesPerSecond,
	Scanlines: TotalHeight,
	FPS:       FramesPerSecond,
}

// GetTimingForRegion returns PAL timing for every region; only the PAL
// machine is modelled.
func GetTimingForRegion(Region) RegionTiming {
	return PALTiming
}

// DetectRegion returns PAL for any ROM image. ZX81 ROMs carry no region
// marker.
func DetectRegion([]byte) Region {
	return RegionPAL
}

// DefaultRegion returns the default region (PAL).
func DefaultRegion() Region {
	return RegionPAL
}
