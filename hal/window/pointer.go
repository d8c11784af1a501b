package window

import "inkpad/hal"

// mouseSource reports the mouse state of the current frame.
type mouseSource interface {
	CursorPosition() (x, y int)
	JustPressed() bool
	JustReleased() bool
}

// mouseTracker derives pointer edges from per-frame mouse state. Positions
// stay in screen pixels.
type mouseTracker struct {
	inside func(x, y int) bool

	in   bool
	x, y int
}

func newMouseTracker(inside func(x, y int) bool) *mouseTracker {
	return &mouseTracker{inside: inside, x: -1, y: -1}
}

// step emits, in order, a leave when the cursor has left the window, then a
// down, a move and an up for the current frame. A move at the point of a
// down in the same frame is not emitted.
func (t *mouseTracker) step(src mouseSource, emit func(kind hal.PointerKind, x, y int)) {
	x, y := src.CursorPosition()
	if !t.inside(x, y) {
		if t.in {
			t.in = false
			emit(hal.PointerLeave, x, y)
		}
		t.x, t.y = x, y
		return
	}
	t.in = true

	moved := x != t.x || y != t.y
	if src.JustPressed() {
		emit(hal.PointerDown, x, y)
		moved = false
	}
	if moved {
		emit(hal.PointerMove, x, y)
	}
	if src.JustReleased() {
		emit(hal.PointerUp, x, y)
	}
	t.x, t.y = x, y
}
