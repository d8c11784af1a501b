// Package surface implements the drawing canvas: a fixed-size raster that
// freehand strokes are composited onto as the pointer moves.
package surface

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"inkpad/internal/datauri"

	"golang.org/x/image/vector"
)

// DefaultSize is the logical edge length of the canvas.
const DefaultSize = 300

// Style is the persistent stroke configuration.
type Style struct {
	// Width is the line width in logical units.
	Width      float64
	Stroke     color.RGBA
	Background color.RGBA
}

// DefaultStyle is a 12 unit black pen on white.
func DefaultStyle() Style {
	return Style{
		Width:      12,
		Stroke:     color.RGBA{A: 0xFF},
		Background: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
}

// Point is a position in local logical coordinates (origin at the canvas
// top-left).
type Point struct {
	X, Y float64
}

var (
	ErrBadSize  = errors.New("surface: size must be positive")
	ErrBadScale = errors.New("surface: scale must be positive")
	ErrBadWidth = errors.New("surface: stroke width must be positive")
)

// Surface is a square raster of Size logical units backed by
// ceil(Size*Scale) device pixels.
//
// A Surface is not safe for concurrent use.
type Surface struct {
	size  int
	scale float64
	style Style

	img  *image.RGBA
	src  *image.Uniform
	rast *vector.Rasterizer

	active bool
	pen    Point
	buf    bytes.Buffer
	enc    png.Encoder
}

// New allocates the backing store and fills it with the background color.
func New(size int, scale float64, style Style) (*Surface, error) {
	if size <= 0 {
		return nil, ErrBadSize
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, ErrBadScale
	}
	if !(style.Width > 0) {
		return nil, ErrBadWidth
	}

	px := int(math.Ceil(float64(size) * scale))
	s := &Surface{
		size:  size,
		scale: scale,
		style: style,
		img:   image.NewRGBA(image.Rect(0, 0, px, px)),
		src:   image.NewUniform(style.Stroke),
		rast:  vector.NewRasterizer(0, 0),
		enc:   png.Encoder{CompressionLevel: png.BestSpeed},
	}
	s.fill()
	return s, nil
}

// Size returns the logical edge length.
func (s *Surface) Size() int { return s.size }

// Scale returns the device pixel ratio.
func (s *Surface) Scale() float64 { return s.scale }

// Style returns the stroke configuration.
func (s *Surface) Style() Style { return s.style }

// Active reports whether a stroke is in progress.
func (s *Surface) Active() bool { return s.active }

// Image returns the backing store. Callers must not modify it.
func (s *Surface) Image() *image.RGBA { return s.img }

// BeginStroke opens a new path at p. Nothing is drawn until ExtendStroke.
// An already active stroke is abandoned; its pixels stay.
func (s *Surface) BeginStroke(p Point) {
	s.active = true
	s.pen = p
}

// ExtendStroke draws a round-capped segment from the pen to p. It does
// nothing when no stroke is active.
func (s *Surface) ExtendStroke(p Point) {
	if !s.active {
		return
	}
	s.segment(s.pen, p)
	s.pen = p
}

// EndStroke closes the current path. It is idempotent.
func (s *Surface) EndStroke() {
	s.active = false
}

// Reset repaints the whole raster with the background. Stroke state is
// left alone.
func (s *Surface) Reset() {
	s.fill()
}

// ExportImage encodes the backing store as a PNG data URI.
func (s *Surface) ExportImage() (string, error) {
	s.buf.Reset()
	if err := s.enc.Encode(&s.buf, s.img); err != nil {
		return "", fmt.Errorf("surface: encode png: %w", err)
	}
	return datauri.Encode("image/png", s.buf.Bytes()), nil
}

func (s *Surface) fill() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.style.Background), image.Point{}, draw.Src)
}
