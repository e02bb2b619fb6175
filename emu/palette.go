package emu

// Palette indices used by the display.
const (
	ColourBlack uint8 = 0
	ColourWhite uint8 = 1

	// DefaultBorder is the border index after power-on.
	DefaultBorder = ColourWhite
	// Background fills the active display area.
	Background = ColourWhite

	paletteSize = 8
)

// Colour is an 8-bit-per-channel RGB triple.
type Colour struct {
	R, G, B uint8
}

// DefaultColours only populates black and white; the remaining
// indices render black.
var DefaultColours = [paletteSize]Colour{
	{0x00, 0x00, 0x00},
	{0xD7, 0xD7, 0xD7},
}

// Palette maps 3-bit colour indices to RGBA pixels.
type Palette struct {
	rgba [paletteSize][4]uint8
}

// NewPalette builds a palette from colours. Alpha is always opaque.
func NewPalette(colours [paletteSize]Colour) *Palette {
	p := &Palette{}
	for i, c := range colours {
		p.rgba[i] = [4]uint8{c.R, c.G, c.B, 0xFF}
	}
	return p
}

// Colour returns the packed 0xRRGGBBAA value for index. Only the low
// three bits of index are used.
func (p *Palette) Colour(index uint8) uint32 {
	c := p.rgba[index&(paletteSize-1)]
	return uint32(c[0])<<24 | uint32(c[1])<<16 | uint32(c[2])<<8 | uint32(c[3])
}

// Expand converts a slice of palette indices into RGBA bytes. dst must
// hold at least 4*len(indices) bytes.
func (p *Palette) Expand(dst []byte, indices []uint8) {
	for i, idx := range indices {
		copy(dst[i*4:i*4+4], p.rgba[idx&(paletteSize-1)][:])
	}
}
