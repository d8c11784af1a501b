//go:build cgo

package window

import (
	"inkpad/hal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// input polls ebiten once per Update and turns state changes into hal events.
// Positions are converted from screen pixels to logical units.
type input struct {
	h      *hal.Host
	scale  float64
	width  float64
	height float64

	mouse      *mouseTracker
	touchID    ebiten.TouchID
	touching   bool
	tx, ty     int
	touchBuf   []ebiten.TouchID
	keyMapping []keyMapping
}

type keyMapping struct {
	key  ebiten.Key
	code hal.KeyCode
}

func newInput(h *hal.Host, scale float64, width, height int) *input {
	in := &input{
		h:      h,
		scale:  scale,
		width:  float64(width),
		height: float64(height),
		keyMapping: []keyMapping{
			{ebiten.KeyEnter, hal.KeyEnter},
			{ebiten.KeyNumpadEnter, hal.KeyEnter},
			{ebiten.KeyEscape, hal.KeyEscape},
			{ebiten.KeyBackspace, hal.KeyBackspace},
			{ebiten.KeyDelete, hal.KeyDelete},
		},
	}
	in.mouse = newMouseTracker(func(x, y int) bool { return in.inside(in.logical(x, y)) })
	return in
}

func (in *input) poll() {
	in.pollMouse()
	in.pollTouch()
	in.pollKeys()
}

func (in *input) logical(x, y int) (float64, float64) {
	return float64(x) / in.scale, float64(y) / in.scale
}

func (in *input) inside(lx, ly float64) bool {
	return lx >= 0 && ly >= 0 && lx < in.width && ly < in.height
}

func (in *input) emit(kind hal.PointerKind, src hal.PointerSource, x, y int) {
	lx, ly := in.logical(x, y)
	in.h.EmitPointer(hal.PointerEvent{Kind: kind, Source: src, X: lx, Y: ly})
}

// ebitenMouse reads the left button and cursor for the current frame.
type ebitenMouse struct{}

func (ebitenMouse) CursorPosition() (int, int) { return ebiten.CursorPosition() }
func (ebitenMouse) JustPressed() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}
func (ebitenMouse) JustReleased() bool {
	return inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
}

func (in *input) pollMouse() {
	in.mouse.step(ebitenMouse{}, func(kind hal.PointerKind, x, y int) {
		in.emit(kind, hal.SourceMouse, x, y)
	})
}

// pollTouch follows the first finger down only, like touches[0].
func (in *input) pollTouch() {
	if !in.touching {
		in.touchBuf = inpututil.AppendJustPressedTouchIDs(in.touchBuf[:0])
		if len(in.touchBuf) == 0 {
			return
		}
		in.touchID = in.touchBuf[0]
		in.touching = true
		in.tx, in.ty = ebiten.TouchPosition(in.touchID)
		in.emit(hal.PointerDown, hal.SourceTouch, in.tx, in.ty)
		return
	}

	if inpututil.IsTouchJustReleased(in.touchID) {
		in.touching = false
		in.emit(hal.PointerUp, hal.SourceTouch, in.tx, in.ty)
		return
	}

	x, y := ebiten.TouchPosition(in.touchID)
	if x != in.tx || y != in.ty {
		in.tx, in.ty = x, y
		in.emit(hal.PointerMove, hal.SourceTouch, x, y)
	}
}

func (in *input) pollKeys() {
	for _, m := range in.keyMapping {
		if inpututil.IsKeyJustPressed(m.key) {
			in.h.EmitKey(hal.KeyEvent{Code: m.code, Press: true})
		}
		if inpututil.IsKeyJustReleased(m.key) {
			in.h.EmitKey(hal.KeyEvent{Code: m.code, Press: false})
		}
	}
}
