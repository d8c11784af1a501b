package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"inkpad/fonts/basic7x13"
	"inkpad/hal"
	"inkpad/kernel"

	"golang.org/x/image/font/basicfont"
	"tinygo.org/x/tinyfont"
)

const (
	panicFontWidth  = 7
	panicFontHeight = 13
	panicFontAscent = 11
)

// installPanicHandler logs the first task panic and paints it over the
// framebuffer. The kernel cancels the remaining tasks; the runner keeps
// showing the last frame until it is closed.
func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := panicLines(info)
		if l := h.Logger(); l != nil {
			for _, line := range lines {
				if ll, ok := l.(hal.LevelLogger); ok {
					ll.WriteLevel(hal.LevelError, line)
				} else {
					l.WriteLineString(line)
				}
			}
		}

		disp := h.Display()
		if disp == nil {
			return
		}
		fb := disp.Framebuffer()
		if fb == nil || fb.Format() != hal.PixelFormatRGBA8888 {
			return
		}
		paintPanic(fb, lines)
	})
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{
		"inkpad panic:",
		fmt.Sprintf("task: %d", info.TaskID),
		fmt.Sprintf("panic: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func paintPanic(fb hal.Framebuffer, lines []string) {
	fb.ClearRGB(255, 255, 255)

	// The UI task may still be drawing with the shared face.
	font := basic7x13.New(basicfont.Face7x13)
	d := panicDisplay{fb: fb}
	fg := color.RGBA{R: 0xB9, G: 0x1C, B: 0x1C, A: 0xFF}

	cols := fb.Width() / panicFontWidth
	if cols <= 0 {
		cols = 1
	}
	y := 0
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", "    ")
		for len(line) > 0 {
			if y+panicFontHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 0, int16(y+panicFontAscent), chunk, fg)
			y += panicFontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = fb.Present()
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d panicDisplay) Size() (x, y int16) {
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
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

func (d panicDisplay) Display() error { return nil }

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
