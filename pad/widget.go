// Package pad is the letter pad widget: a drawing canvas, a Clear button, a
// Predict button and the predicted label, driven by pointer and key events.
//
// A Widget is owned by one goroutine. Only the prediction request runs
// elsewhere, and its outcome comes back through Options.Deliver.
package pad

import (
	"context"
	"fmt"

	"inkpad/hal"
	"inkpad/predict"
	"inkpad/surface"
)

// Canvas is the drawing surface the widget drives.
type Canvas interface {
	BeginStroke(p surface.Point)
	ExtendStroke(p surface.Point)
	EndStroke()
	Reset()
	ExportImage() (string, error)
}

// strokeReporter is implemented by canvases that can tell whether a stroke
// is open. Moves without one leave such a canvas unchanged.
type strokeReporter interface {
	Active() bool
}

// Logger receives widget diagnostics.
type Logger interface {
	Logf(level hal.Level, format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Logf(hal.Level, string, ...any) {}

// Options configures a Widget.
type Options struct {
	// Canvas is nil until the surface is mounted; Predict is a no-op then.
	Canvas     Canvas
	CanvasSize int
	// ViewWidth and ViewHeight size the viewport in logical units. Zero
	// means ContentSize.
	ViewWidth, ViewHeight float64
	Predictor             predict.Predictor
	// Deliver hands a settled request back to the owning goroutine, which
	// must then call Apply. It is called from the request goroutine.
	Deliver func(predict.Outcome)
	Logger  Logger
	// Context parents every request context.
	Context context.Context
	Theme   Theme
}

type button uint8

const (
	buttonNone button = iota
	buttonClear
	buttonPredict
)

// Widget is the single state record passed to every input handler.
type Widget struct {
	canvas     Canvas
	canvasSize int
	viewW      float64
	viewH      float64
	predictor  predict.Predictor
	deliver    func(predict.Outcome)
	log        Logger
	ctx        context.Context
	theme      Theme

	tracker       predict.Tracker
	pressed       button
	mouseInCanvas bool
	dirty         bool
}

// New returns a Widget that needs a first Render.
func New(opts Options) *Widget {
	w := &Widget{
		canvas:     opts.Canvas,
		canvasSize: opts.CanvasSize,
		viewW:      opts.ViewWidth,
		viewH:      opts.ViewHeight,
		predictor:  opts.Predictor,
		deliver:    opts.Deliver,
		log:        opts.Logger,
		ctx:        opts.Context,
		theme:      opts.Theme,
		dirty:      true,
	}
	if w.canvasSize <= 0 {
		w.canvasSize = surface.DefaultSize
	}
	cw, ch := ContentSize(w.canvasSize)
	if w.viewW <= 0 {
		w.viewW = float64(cw)
	}
	if w.viewH <= 0 {
		w.viewH = float64(ch)
	}
	if w.log == nil {
		w.log = nopLogger{}
	}
	if w.ctx == nil {
		w.ctx = context.Background()
	}
	if w.theme == (Theme{}) {
		w.theme = DefaultTheme()
	}
	return w
}

// Layout is recomputed from the current viewport on every call.
func (w *Widget) Layout() Layout {
	return ComputeLayout(w.canvasSize, w.viewW, w.viewH)
}

// Resize changes the viewport; the content is re-centered.
func (w *Widget) Resize(viewW, viewH float64) {
	w.viewW, w.viewH = viewW, viewH
	w.dirty = true
}

// State returns the prediction state shown next to the buttons.
func (w *Widget) State() predict.State { return w.tracker.State() }

// Dirty reports whether the widget needs a Render.
func (w *Widget) Dirty() bool { return w.dirty }

type handlerKey struct {
	src  hal.PointerSource
	kind hal.PointerKind
}

// pointerHandlers maps every input event the widget listens to onto one
// handler. Touch has no leave: a touch stays bound to the canvas it started
// on until it ends.
var pointerHandlers = map[handlerKey]func(*Widget, hal.PointerEvent){
	{hal.SourceMouse, hal.PointerDown}:  (*Widget).pressStart,
	{hal.SourceMouse, hal.PointerMove}:  (*Widget).mouseMove,
	{hal.SourceMouse, hal.PointerUp}:    (*Widget).pressEnd,
	{hal.SourceMouse, hal.PointerLeave}: (*Widget).mouseLeave,
	{hal.SourceTouch, hal.PointerDown}:  (*Widget).pressStart,
	{hal.SourceTouch, hal.PointerMove}:  (*Widget).touchMove,
	{hal.SourceTouch, hal.PointerUp}:    (*Widget).pressEnd,
}

// HandlePointer dispatches ev and reports whether the widget consumed it.
func (w *Widget) HandlePointer(ev hal.PointerEvent) bool {
	h, ok := pointerHandlers[handlerKey{ev.Source, ev.Kind}]
	if !ok {
		return false
	}
	h(w, ev)
	return true
}

// HandleKey maps Enter to Predict and Escape, Backspace or Delete to Clear.
func (w *Widget) HandleKey(ev hal.KeyEvent) bool {
	if !ev.Press {
		return false
	}
	switch ev.Code {
	case hal.KeyEnter:
		if !w.tracker.State().InFlight {
			w.Predict()
		}
		return true
	case hal.KeyEscape, hal.KeyBackspace, hal.KeyDelete:
		w.Clear()
		return true
	}
	return false
}

func (w *Widget) pressStart(ev hal.PointerEvent) {
	l := w.Layout()
	switch {
	case l.Canvas.Contains(ev.X, ev.Y):
		if ev.Source == hal.SourceMouse {
			w.mouseInCanvas = true
		}
		if w.canvas != nil {
			w.canvas.BeginStroke(l.Local(ev.X, ev.Y))
		}
	case l.Clear.Contains(ev.X, ev.Y):
		w.pressed = buttonClear
	case l.Predict.Contains(ev.X, ev.Y):
		w.pressed = buttonPredict
	}
}

func (w *Widget) mouseMove(ev hal.PointerEvent) {
	l := w.Layout()
	inside := l.Canvas.Contains(ev.X, ev.Y)
	if !inside {
		if w.mouseInCanvas {
			w.mouseInCanvas = false
			w.endStroke()
		}
		return
	}
	w.mouseInCanvas = true
	w.extendStroke(l, ev)
}

func (w *Widget) touchMove(ev hal.PointerEvent) {
	w.extendStroke(w.Layout(), ev)
}

func (w *Widget) mouseLeave(hal.PointerEvent) {
	w.mouseInCanvas = false
	w.pressed = buttonNone
	w.endStroke()
}

func (w *Widget) pressEnd(ev hal.PointerEvent) {
	w.endStroke()

	pressed := w.pressed
	w.pressed = buttonNone
	l := w.Layout()
	switch {
	case pressed == buttonClear && l.Clear.Contains(ev.X, ev.Y):
		w.Clear()
	case pressed == buttonPredict && l.Predict.Contains(ev.X, ev.Y):
		if !w.tracker.State().InFlight {
			w.Predict()
		}
	}
}

func (w *Widget) extendStroke(l Layout, ev hal.PointerEvent) {
	if w.canvas == nil {
		return
	}
	if r, ok := w.canvas.(strokeReporter); ok && !r.Active() {
		return
	}
	w.canvas.ExtendStroke(l.Local(ev.X, ev.Y))
	w.dirty = true
}

func (w *Widget) endStroke() {
	if w.canvas != nil {
		w.canvas.EndStroke()
	}
}

// Clear resets the canvas. The label is kept.
func (w *Widget) Clear() {
	if w.canvas == nil {
		return
	}
	w.canvas.Reset()
	w.dirty = true
}

// Predict snapshots the canvas and submits it. It reports false, changing
// nothing, when there is no canvas to snapshot. A request still in flight is
// cancelled and its outcome will be ignored.
func (w *Widget) Predict() bool {
	if w.canvas == nil || w.predictor == nil {
		return false
	}
	uri, err := w.canvas.ExportImage()
	if err != nil {
		w.log.Logf(hal.LevelWarn, "predict: snapshot: %v", err)
		return false
	}

	ctx, gen := w.tracker.Begin(w.ctx)
	w.dirty = true
	w.log.Logf(hal.LevelDebug, "predict: request %d (%d bytes)", gen, len(uri))

	predictor, deliver := w.predictor, w.deliver
	go func() {
		o := predict.Outcome{Gen: gen}
		resp, err := predictor.Predict(ctx, &predict.Request{Image: uri})
		switch {
		case err != nil:
			o.Err = err
		case resp == nil || resp.Prediction == nil:
			o.Err = fmt.Errorf("%w: empty response", predict.ErrMalformed)
		default:
			o.Label = resp.Prediction.String()
		}
		if deliver != nil {
			deliver(o)
		}
	}()
	return true
}

// Apply settles a delivered outcome. Outcomes of superseded requests are
// dropped.
func (w *Widget) Apply(o predict.Outcome) {
	if !w.tracker.Settle(o) {
		w.log.Logf(hal.LevelDebug, "predict: dropped stale result for request %d", o.Gen)
		return
	}
	w.dirty = true
	if o.Err != nil {
		w.log.Logf(hal.LevelWarn, "predict: request %d failed: %v", o.Gen, o.Err)
		return
	}
	w.log.Logf(hal.LevelInfo, "predict: request %d -> %q", o.Gen, o.Label)
}

// Close cancels any request in flight.
func (w *Widget) Close() {
	w.tracker.Cancel()
}
