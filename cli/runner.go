// Package cli runs the emulator in a plain Ebiten window.
package cli

import (
	"time"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emucore "github.com/user-none/eblitui/api"
	emubridge "github.com/user-none/emzx/bridge/ebiten"
	"github.com/user-none/emzx/emu"
	"github.com/user-none/emzx/ui"
)

// Audio buffer thresholds in bytes for frame pacing: 50ms and 100ms of
// 48kHz stereo int16.
const (
	adtMinBuffer = 9600
	adtMaxBuffer = 19200
)

// Runner owns the emulation goroutine. The Ebiten thread polls input
// into shared state and draws the last finished frame.
type Runner struct {
	emulator    *emubridge.Emulator
	audioPlayer *ui.AudioPlayer

	emuControl        *ui.EmuControl
	sharedInput       *ui.SharedInput
	sharedFramebuffer *ui.SharedFramebuffer
	emuDone           chan struct{}

	// Ebiten thread only
	keys      *keyTracker
	hostKeys  []ebiten.Key
	wasActive bool
}

// NewRunner starts emulating e. Without an audio device the runner
// still works, paced by the clock alone.
func NewRunner(e *emubridge.Emulator) *Runner {
	player, err := ui.NewAudioPlayer(1.0)
	if err != nil {
		glog.Warningf("audio disabled: %v", err)
	}

	r := &Runner{
		emulator:          e,
		audioPlayer:       player,
		emuControl:        ui.NewEmuControl(),
		sharedInput:       &ui.SharedInput{},
		sharedFramebuffer: ui.NewSharedFramebuffer(),
		emuDone:           make(chan struct{}),
		keys:              newKeyTracker(),
	}

	go r.emulationLoop()
	return r
}

// Close stops the emulation goroutine and waits for it. The emulator is
// safe to use from the caller once Close returns.
func (r *Runner) Close() {
	if r.emuControl != nil {
		r.emuControl.Stop()
		<-r.emuDone
		r.emuControl = nil
	}
	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

func (r *Runner) emulationLoop() {
	defer close(r.emuDone)

	timing := r.emulator.GetTiming()
	frameTime := time.Second / time.Duration(timing.FPS)
	last := time.Now()
	var batch ui.InputBatch

	for r.emuControl.CheckPause() {
		r.sharedInput.Drain(&batch)
		r.applyInput(&batch)

		r.emulator.RunFrame()

		if r.audioPlayer != nil {
			r.audioPlayer.QueueSamples(r.emulator.GetAudioSamples())
		}
		r.sharedFramebuffer.Update(
			r.emulator.GetFramebuffer(),
			r.emulator.GetFramebufferStride(),
			r.emulator.GetActiveHeight(),
		)

		sleep := frameTime - time.Since(last)
		if r.audioPlayer != nil {
			switch level := r.audioPlayer.GetBufferLevel(); {
			case level < adtMinBuffer:
				sleep = sleep * 9 / 10
			case level > adtMaxBuffer:
				sleep = sleep * 11 / 10
			}
		}
		if sleep > time.Millisecond {
			time.Sleep(sleep)
		}
		last = time.Now()
	}
}

// applyInput runs on the emulation goroutine, between frames.
func (r *Runner) applyInput(b *ui.InputBatch) {
	e := r.emulator
	e.SetInput(0, b.Pad)
	for _, k := range b.Keys {
		if k.Down {
			e.KeyDown(k.Key)
		} else {
			e.KeyUp(k.Key)
		}
	}
	for _, c := range b.Commands {
		switch c {
		case ui.CommandToggleTape:
			e.ToggleTape()
			if t := e.Board().Tape(); t != nil {
				glog.Infof("tape playing: %t", t.Playing())
			}
		case ui.CommandRewindTape:
			e.RewindTape()
			glog.Info("tape rewound")
		case ui.CommandReset:
			e.Board().PowerOn()
			glog.Info("reset")
		}
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		if r.wasActive {
			r.keys.releaseAll(r.sharedInput.PostKey)
			r.sharedInput.SetPad(0)
			r.wasActive = false
		}
		return nil
	}
	r.wasActive = true

	r.pollKeyboard()
	r.sharedInput.SetPad(pollGamepads())
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	pixels, stride, height := r.sharedFramebuffer.Read()
	if height == 0 {
		return
	}
	r.emulator.DrawCachedFramebuffer(screen, pixels, stride, height)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

func (r *Runner) pollKeyboard() {
	r.hostKeys = inpututil.AppendJustPressedKeys(r.hostKeys[:0])
	for _, k := range r.hostKeys {
		switch k {
		case ebiten.KeyF5:
			r.sharedInput.PostCommand(ui.CommandToggleTape)
		case ebiten.KeyF6:
			r.sharedInput.PostCommand(ui.CommandRewindTape)
		case ebiten.KeyF12:
			r.sharedInput.PostCommand(ui.CommandReset)
		default:
			r.keys.press(k, r.sharedInput.PostKey)
		}
	}

	r.hostKeys = inpututil.AppendJustReleasedKeys(r.hostKeys[:0])
	for _, k := range r.hostKeys {
		r.keys.release(k, r.sharedInput.PostKey)
	}
}

// pollGamepads folds every standard-layout gamepad into one pad bitmask.
func pollGamepads() uint32 {
	var pad uint32
	set := func(bit int, on bool) {
		if on {
			pad |= 1 << bit
		}
	}

	const deadzone = 0.5
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		pressed := func(b ebiten.StandardGamepadButton) bool {
			return ebiten.IsStandardGamepadButtonPressed(id, b)
		}
		x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)

		set(emucore.ButtonUp, pressed(ebiten.StandardGamepadButtonLeftTop) || y < -deadzone)
		set(emucore.ButtonDown, pressed(ebiten.StandardGamepadButtonLeftBottom) || y > deadzone)
		set(emucore.ButtonLeft, pressed(ebiten.StandardGamepadButtonLeftLeft) || x < -deadzone)
		set(emucore.ButtonRight, pressed(ebiten.StandardGamepadButtonLeftRight) || x > deadzone)
		set(emu.ButtonFire, pressed(ebiten.StandardGamepadButtonRightBottom))
		set(emu.ButtonSpace, pressed(ebiten.StandardGamepadButtonRightRight))
		set(emu.ButtonNewline, pressed(ebiten.StandardGamepadButtonCenterRight))
		set(emu.ButtonShift, pressed(ebiten.StandardGamepadButtonCenterLeft))
	}
	return pad
}
