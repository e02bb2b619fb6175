package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/emzx/bridge/ebiten"
	"github.com/user-none/emzx/cli"
	"github.com/user-none/emzx/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to the 8K ROM image (required)")
	tapePath := flag.String("tape", "", "WAV or MP3 tape to insert")
	recordPath := flag.String("record", "", "write MIC output to this WAV file on exit")
	joystick := flag.String("joystick", "cursor", "pad layout: cursor or qaop")
	scale := flag.Int("scale", 2, "window scale")
	flag.Parse()
	defer glog.Flush()

	if *romPath == "" {
		glog.Exitf("ROM path is required. Usage: %s -rom <path>", emu.Name)
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		glog.Exitf("Failed to load ROM: %v", err)
	}

	e, err := emubridge.NewEmulator(romData)
	if err != nil {
		glog.Exitf("Failed to initialize emulator: %v", err)
	}
	e.Scale = *scale
	e.SetOption("joystick", *joystick)

	if *tapePath != "" {
		if err := insertTape(e.Emulator, *tapePath); err != nil {
			glog.Exitf("Failed to load tape: %v", err)
		}
	}

	var recorder *emu.TapeRecorder
	if *recordPath != "" {
		recorder = emu.NewTapeRecorder()
		e.AttachRecorder(recorder)
	}

	w, h := e.WindowSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(emu.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.MaxScreenHeight, -1, -1)
	ebiten.SetTPS(emu.FramesPerSecond)

	runner := cli.NewRunner(e)
	runErr := ebiten.RunGame(runner)
	runner.Close()
	e.Close()

	if recorder != nil {
		if err := saveRecording(recorder, *recordPath); err != nil {
			glog.Errorf("Failed to save recording: %v", err)
		}
	}
	if runErr != nil {
		glog.Fatal(runErr)
	}
}

func insertTape(e *emu.Emulator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tape, err := emu.LoadTape(path, f)
	if err != nil {
		return err
	}
	e.InsertTape(tape)
	return nil
}

func saveRecording(r *emu.TapeRecorder, path string) error {
	if r.Len() == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	glog.Infof("Recording saved to %s (%v)", path, r.Duration())
	return nil
}
