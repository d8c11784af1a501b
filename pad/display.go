package pad

import (
	"image"
	"image/color"

	"inkpad/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay lets tinyfont draw into an RGBA framebuffer.
type fbDisplay struct {
	fb hal.Framebuffer
}

var _ drivers.Displayer = (*fbDisplay)(nil)

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGBA8888 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}

	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}

	off := iy*d.fb.StrideBytes() + ix*4
	if off < 0 || off+3 >= len(buf) {
		return
	}
	buf[off+0] = c.R
	buf[off+1] = c.G
	buf[off+2] = c.B
	buf[off+3] = 0xFF
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

// scaledDisplay magnifies every pixel to an n x n block so that bitmap text
// keeps its logical size on high-density displays.
type scaledDisplay struct {
	d drivers.Displayer
	n int16
}

func (s scaledDisplay) Size() (x, y int16) {
	w, h := s.d.Size()
	return w / s.n, h / s.n
}

func (s scaledDisplay) SetPixel(x, y int16, c color.RGBA) {
	for dy := int16(0); dy < s.n; dy++ {
		for dx := int16(0); dx < s.n; dx++ {
			s.d.SetPixel(x*s.n+dx, y*s.n+dy, c)
		}
	}
}

func (s scaledDisplay) Display() error { return s.d.Display() }

// rgbaView wraps the framebuffer memory without copying.
func rgbaView(fb hal.Framebuffer) (*image.RGBA, bool) {
	if fb == nil || fb.Format() != hal.PixelFormatRGBA8888 {
		return nil, false
	}
	buf := fb.Buffer()
	if len(buf) < fb.StrideBytes()*fb.Height() {
		return nil, false
	}
	return &image.RGBA{
		Pix:    buf,
		Stride: fb.StrideBytes(),
		Rect:   image.Rect(0, 0, fb.Width(), fb.Height()),
	}, true
}
