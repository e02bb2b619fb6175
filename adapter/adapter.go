package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/emzx/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the ZX81.
type Factory struct{}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            emu.Name,
		ConsoleName:     "Sinclair ZX81",
		Extensions:      []string{".rom", ".bin"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     float64(emu.ScreenWidth) / float64(emu.MaxScreenHeight),
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "Fire", ID: emu.ButtonFire, DefaultKey: "J", DefaultPad: "A"},
			{Name: "Newline", ID: emu.ButtonNewline, DefaultKey: "Enter", DefaultPad: "Start"},
			{Name: "Space", ID: emu.ButtonSpace, DefaultKey: "Space", DefaultPad: "B"},
			{Name: "Shift", ID: emu.ButtonShift, DefaultKey: "ShiftLeft", DefaultPad: "Select"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "joystick",
				Label:       "Joystick Keys",
				Description: "Keys pressed by the d-pad and fire button",
				Type:        emucore.CoreOptionSelect,
				Default:     "cursor",
				Values:      []string{"cursor", "qaop"},
				Category:    emucore.CoreOptionCategoryInput,
				PerGame:     true,
			},
			{
				Key:         "tape_autoplay",
				Label:       "Tape Autoplay",
				Description: "Start a tape as soon as it is inserted",
				Type:        emucore.CoreOptionBool,
				Default:     "true",
				Category:    emucore.CoreOptionCategoryCore,
			},
		},
		RDBName:       "Sinclair - ZX 81",
		ThumbnailRepo: "Sinclair_-_ZX_81",
		DataDirName:   emu.Name,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a new emulator instance with the given ROM. The
// machine is PAL only, so region is ignored.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DetectRegion always reports PAL. The bool is false since no ROM
// database is consulted.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DetectRegion(rom), false
}
