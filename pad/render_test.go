package pad

import (
	"context"
	"image"
	"image/color"
	"testing"

	"inkpad/hal"
	"inkpad/predict"
	"inkpad/surface"
)

type testFB struct {
	w, h    int
	buf     []byte
	present int
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*4)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGBA8888 }
func (f *testFB) StrideBytes() int        { return f.w * 4 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) ClearRGB(r, g, b uint8)  {}
func (f *testFB) Present() error          { f.present++; return nil }

func (f *testFB) at(x, y int) color.RGBA {
	i := y*f.w*4 + x*4
	return color.RGBA{R: f.buf[i], G: f.buf[i+1], B: f.buf[i+2], A: f.buf[i+3]}
}

func TestCaptions(t *testing.T) {
	tests := []struct {
		st     predict.State
		button string
		label  string
	}{
		{predict.State{}, "Predict", ""},
		{predict.State{InFlight: true}, "Predicting...", ""},
		{predict.State{Label: "7", HasLabel: true}, "Predict", "Predicted: 7"},
		{predict.State{Label: "", HasLabel: true}, "Predict", "Predicted: "},
	}
	for _, tt := range tests {
		b, l := Captions(tt.st)
		if b != tt.button || l != tt.label {
			t.Fatalf("Captions(%+v) = %q, %q", tt.st, b, l)
		}
	}
}

func TestRenderBlitsCanvasAtScale(t *testing.T) {
	const scale = 2
	s, err := surface.New(surface.DefaultSize, scale, surface.DefaultStyle())
	if err != nil {
		t.Fatalf("surface.New() = %v", err)
	}
	w := New(Options{Canvas: s})
	cw, ch := ContentSize(surface.DefaultSize)
	fb := newTestFB(cw*scale, ch*scale)

	l := w.Layout()
	x, y := center(l.Canvas)
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerDown, Source: hal.SourceMouse, X: x, Y: y})
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerMove, Source: hal.SourceMouse, X: x + 1, Y: y})
	if !w.Dirty() {
		t.Fatal("stroke did not mark the widget dirty")
	}

	if err := w.Render(fb, scale); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if fb.present != 1 || w.Dirty() {
		t.Fatalf("present=%d dirty=%v", fb.present, w.Dirty())
	}

	th := DefaultTheme()
	style := surface.DefaultStyle()
	if got := fb.at(0, 0); got != th.Page {
		t.Fatalf("page = %v", got)
	}
	if got := fb.at(int(l.Canvas.X*scale)+2, int(l.Canvas.Y*scale)+2); got != style.Background {
		t.Fatalf("canvas corner = %v", got)
	}
	if got := fb.at(int(x*scale), int(y*scale)); got != style.Stroke {
		t.Fatalf("stroke = %v", got)
	}
}

func TestRenderBusyPredictButton(t *testing.T) {
	release := make(chan struct{})
	p := predict.PredictorFunc(func(ctx context.Context, req *predict.Request) (*predict.Response, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, ctx.Err()
	})
	h := newHarness(t, p, 0, 0)
	defer close(release)
	defer h.w.Close()

	cw, ch := ContentSize(surface.DefaultSize)
	fb := newTestFB(cw, ch)
	th := DefaultTheme()
	corner := device(h.w.Layout().Predict, 1).Min.Add(image.Pt(1, 1))

	if err := h.w.Render(fb, 1); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if got := fb.at(corner.X, corner.Y); got != th.PredictFill {
		t.Fatalf("idle fill = %v", got)
	}

	h.w.Predict()
	if err := h.w.Render(fb, 1); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if got := fb.at(corner.X, corner.Y); got != th.BusyFill {
		t.Fatalf("busy fill = %v", got)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	w := New(Options{})
	if err := w.Render(badFormatFB{newTestFB(4, 4)}, 1); err != hal.ErrNotImplemented {
		t.Fatalf("Render() = %v", err)
	}
}

type badFormatFB struct{ *testFB }

func (badFormatFB) Format() hal.PixelFormat { return 0 }

func TestHoverDoesNotDirty(t *testing.T) {
	s, err := surface.New(surface.DefaultSize, 1, surface.DefaultStyle())
	if err != nil {
		t.Fatalf("surface.New() = %v", err)
	}
	w := New(Options{Canvas: s})
	cw, ch := ContentSize(surface.DefaultSize)
	fb := newTestFB(cw, ch)
	if err := w.Render(fb, 1); err != nil {
		t.Fatalf("Render() = %v", err)
	}

	x, y := center(w.Layout().Canvas)
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerMove, Source: hal.SourceMouse, X: x, Y: y})
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerMove, Source: hal.SourceMouse, X: x + 3, Y: y + 2})
	if w.Dirty() {
		t.Fatal("hover over the canvas marked the widget dirty")
	}

	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerDown, Source: hal.SourceMouse, X: x, Y: y})
	if err := w.Render(fb, 1); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerMove, Source: hal.SourceMouse, X: x + 4, Y: y})
	if !w.Dirty() {
		t.Fatal("move during a stroke did not mark the widget dirty")
	}
}
