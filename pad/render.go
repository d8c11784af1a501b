package pad

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"inkpad/fonts/basic7x13"
	"inkpad/hal"
	"inkpad/predict"

	"tinygo.org/x/tinyfont"
)

// Theme holds the widget colors.
type Theme struct {
	Page        color.RGBA
	Border      color.RGBA
	ClearFill   color.RGBA
	ClearText   color.RGBA
	PredictFill color.RGBA
	BusyFill    color.RGBA
	PredictText color.RGBA
	Label       color.RGBA
}

func DefaultTheme() Theme {
	return Theme{
		Page:        color.RGBA{R: 0xEE, G: 0xF2, B: 0xFF, A: 0xFF},
		Border:      color.RGBA{R: 0xC7, G: 0xD2, B: 0xFE, A: 0xFF},
		ClearFill:   color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		ClearText:   color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
		PredictFill: color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
		BusyFill:    color.RGBA{R: 0x81, G: 0x7C, B: 0xEE, A: 0xFF},
		PredictText: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Label:       color.RGBA{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
	}
}

const (
	captionClear      = "Clear"
	captionPredict    = "Predict"
	captionPredicting = "Predicting..."
	labelPrefix       = "Predicted: "
)

// Captions returns the Predict button caption and the label line for s.
// The label line is empty when there is no label.
func Captions(s predict.State) (button, label string) {
	button = captionPredict
	if s.InFlight {
		button = captionPredicting
	}
	if s.HasLabel {
		label = labelPrefix + s.Label
	}
	return button, label
}

// Imager is implemented by canvases that can be shown.
type Imager interface {
	Image() *image.RGBA
}

// Render draws the whole widget into fb and presents it. scale is the
// number of framebuffer pixels per logical unit.
func (w *Widget) Render(fb hal.Framebuffer, scale float64) error {
	dst, ok := rgbaView(fb)
	if !ok {
		return hal.ErrNotImplemented
	}
	if scale <= 0 {
		scale = 1
	}
	l := w.Layout()
	th := w.theme
	st := w.tracker.State()

	fill(dst, dst.Bounds(), th.Page)

	border := Rect{
		X: l.Canvas.X - canvasBorder, Y: l.Canvas.Y - canvasBorder,
		W: l.Canvas.W + 2*canvasBorder, H: l.Canvas.H + 2*canvasBorder,
	}
	fill(dst, device(border, scale), th.Border)
	if im, ok := w.canvas.(Imager); ok && im.Image() != nil {
		src := im.Image()
		at := device(l.Canvas, scale).Min
		draw.Draw(dst, src.Bounds().Sub(src.Bounds().Min).Add(at), src, src.Bounds().Min, draw.Src)
	}

	caption, label := Captions(st)

	fill(dst, device(l.Clear, scale), th.Border)
	fill(dst, device(inset(l.Clear, 2), scale), th.ClearFill)
	predictFill := th.PredictFill
	if st.InFlight {
		predictFill = th.BusyFill
	}
	fill(dst, device(l.Predict, scale), predictFill)

	n := int16(math.Max(1, math.Round(scale)))
	text := scaledDisplay{d: &fbDisplay{fb: fb}, n: n}
	// Text is laid out on a grid of n device pixels per unit.
	k := scale / float64(n)
	centered(text, l.Clear, k, captionClear, th.ClearText)
	centered(text, l.Predict, k, caption, th.PredictText)
	if label != "" {
		x := int16(l.Label.X * k)
		y := int16((l.Label.Y + labelBaseline) * k)
		tinyfont.WriteLine(text, basic7x13.Font, x, y, label, th.Label)
	}

	w.dirty = false
	return fb.Present()
}

func centered(d scaledDisplay, r Rect, k float64, s string, c color.RGBA) {
	_, tw := tinyfont.LineWidth(basic7x13.Font, s)
	x := (r.X + (r.W-float64(tw))/2) * k
	y := (r.Y + r.H/2 + 4) * k
	tinyfont.WriteLine(d, basic7x13.Font, int16(x), int16(y), s, c)
}

func inset(r Rect, d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

func device(r Rect, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X*scale)),
		int(math.Round(r.Y*scale)),
		int(math.Round((r.X+r.W)*scale)),
		int(math.Round((r.Y+r.H)*scale)),
	)
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}
