// Package basic7x13 exposes the x/image 7x13 bitmap face as a tinyfont.Fonter.
package basic7x13

import (
	"image"
	"image/color"

	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Font is a 7x13 monospace font covering printable ASCII and Latin-1.
//
// Concurrent access is not safe due to internal glyph reuse.
var Font tinyfont.Fonter = New(basicfont.Face7x13)

// Face adapts a basicfont.Face to tinyfont.
type Face struct {
	face *basicfont.Face
	g    glyph
}

// New wraps f.
func New(f *basicfont.Face) *Face {
	return &Face{face: f, g: glyph{face: f}}
}

type glyph struct {
	face *basicfont.Face
	r    rune
}

// Draw paints the glyph with its baseline at y.
func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	dr, mask, mp, _, ok := g.face.Glyph(fixed.P(int(x), int(y)), g.r)
	if !ok {
		dr, mask, mp, _, ok = g.face.Glyph(fixed.P(int(x), int(y)), '?')
		if !ok {
			return
		}
	}
	for py := 0; py < dr.Dy(); py++ {
		for px := 0; px < dr.Dx(); px++ {
			if !inked(mask, mp.X+px, mp.Y+py) {
				continue
			}
			display.SetPixel(int16(dr.Min.X+px), int16(dr.Min.Y+py), c)
		}
	}
}

func inked(mask image.Image, x, y int) bool {
	_, _, _, a := mask.At(x, y).RGBA()
	return a >= 0x8000
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	f := g.face
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    uint8(f.Width),
		Height:   uint8(f.Ascent + f.Descent),
		XAdvance: uint8(f.Advance),
		XOffset:  int8(f.Left),
		YOffset:  int8(-f.Ascent),
	}
}

func (f *Face) GetYAdvance() uint8 { return uint8(f.face.Height) }

func (f *Face) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}

// Ascent is the distance from the top of a line to its baseline.
func (f *Face) Ascent() int16 { return int16(f.face.Ascent) }
