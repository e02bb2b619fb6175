package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/emzx/adapter"
	"github.com/user-none/emzx/emu"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadB, BitID: emu.ButtonFire},
		{RetroID: libretro.JoypadA, BitID: emu.ButtonSpace},
		{RetroID: libretro.JoypadStart, BitID: emu.ButtonNewline},
		{RetroID: libretro.JoypadSelect, BitID: emu.ButtonShift},
	})
}

func main() {}
