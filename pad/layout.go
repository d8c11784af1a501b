package pad

import (
	"math"

	"inkpad/surface"
)

const (
	margin        = 10
	buttonHeight  = 28
	buttonGap     = 10
	clearWidth    = 80
	predictWidth  = 110
	labelHeight   = 16
	rowGap        = 8
	minContentW   = clearWidth + predictWidth + buttonGap + 2*margin
	canvasBorder  = 2
	labelBaseline = 12
)

// Rect is an axis-aligned rectangle in logical units.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Layout places the widget parts inside a viewport, all in logical client
// coordinates.
type Layout struct {
	Canvas  Rect
	Clear   Rect
	Predict Rect
	Label   Rect
}

// ContentSize is the smallest viewport that fits a canvas of canvasSize.
func ContentSize(canvasSize int) (w, h int) {
	w = canvasSize + 2*margin
	if w < minContentW {
		w = minContentW
	}
	h = margin + canvasSize + margin + buttonHeight + rowGap + labelHeight + margin
	return w, h
}

// ComputeLayout centers the content in a viewW x viewH viewport.
func ComputeLayout(canvasSize int, viewW, viewH float64) Layout {
	cw, ch := ContentSize(canvasSize)
	ox := math.Max(0, math.Floor((viewW-float64(cw))/2))
	oy := math.Max(0, math.Floor((viewH-float64(ch))/2))

	size := float64(canvasSize)
	cx := ox + (float64(cw)-size)/2
	canvas := Rect{X: cx, Y: oy + margin, W: size, H: size}

	rowY := canvas.Y + size + margin
	row := float64(clearWidth + buttonGap + predictWidth)
	bx := ox + (float64(cw)-row)/2
	return Layout{
		Canvas:  canvas,
		Clear:   Rect{X: bx, Y: rowY, W: clearWidth, H: buttonHeight},
		Predict: Rect{X: bx + clearWidth + buttonGap, Y: rowY, W: predictWidth, H: buttonHeight},
		Label:   Rect{X: ox + margin, Y: rowY + buttonHeight + rowGap, W: float64(cw - 2*margin), H: labelHeight},
	}
}

// Local maps client coordinates to canvas-local ones.
func (l Layout) Local(x, y float64) surface.Point {
	return surface.Point{X: x - l.Canvas.X, Y: y - l.Canvas.Y}
}
