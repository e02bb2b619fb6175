//go:build !libretro && !ios

package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/emzx/adapter"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	joystick := flag.String("joystick", "cursor", "pad layout: cursor or qaop")
	autoplay := flag.Bool("tape-autoplay", true, "start tapes as soon as they are inserted")
	flag.Parse()
	defer glog.Flush()

	factory := &adapter.Factory{}

	if *romPath != "" {
		options := map[string]string{
			"joystick":      *joystick,
			"tape_autoplay": "false",
		}
		if *autoplay {
			options["tape_autoplay"] = "true"
		}
		if err := standalone.RunDirect(factory, *romPath, "pal", options); err != nil {
			glog.Exit(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		glog.Exit(err)
	}
}
