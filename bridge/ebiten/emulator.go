// Package ebiten draws the emulator's framebuffer with Ebiten.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/emzx/emu"
)

// Emulator wraps emu.Emulator with Ebiten rendering.
type Emulator struct {
	*emu.Emulator

	// Scale is the integer upscale applied before fitting the window.
	// Zero or one fits the window directly.
	Scale int

	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

// NewEmulator creates a powered-on emulator with Ebiten rendering.
func NewEmulator(rom []byte) (*Emulator, error) {
	base, err := emu.NewEmulator(rom, emu.DefaultRegion())
	if err != nil {
		return nil, err
	}
	return &Emulator{Emulator: &base}, nil
}

// Layout implements ebiten.Game.
func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// WindowSize returns the initial window size for the configured scale.
func (e *Emulator) WindowSize() (int, int) {
	s := e.Scale
	if s < 1 {
		s = 1
	}
	return emu.ScreenWidth * s, emu.MaxScreenHeight * s
}

// DrawCachedFramebuffer renders a frame copied out of the emulation
// goroutine, letterboxed to keep the raster's aspect ratio.
func (e *Emulator) DrawCachedFramebuffer(screen *ebiten.Image, pixels []byte, stride, activeHeight int) {
	if activeHeight == 0 || stride != emu.ScreenWidth*4 {
		return
	}
	n := stride * activeHeight
	if len(pixels) < n {
		return
	}

	if e.offscreen == nil || e.offscreen.Bounds().Dy() != activeHeight {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, activeHeight)
	}
	e.offscreen.WritePixels(pixels[:n])

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	w, h := float64(emu.ScreenWidth), float64(activeHeight)
	scale := min(float64(sw)/w, float64(sh)/h)
	if e.Scale > 1 && scale >= float64(e.Scale) {
		scale = float64(int(scale))
	}

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate((float64(sw)-w*scale)/2, (float64(sh)-h*scale)/2)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(e.offscreen, &e.drawOpts)
}
