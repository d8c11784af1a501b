//go:build cgo

// Package window shows the host framebuffer in a desktop window and feeds
// mouse, touch and keyboard input back into the host HAL.
package window

import (
	"inkpad/hal"

	"github.com/hajimehoshi/ebiten/v2"
)

// Config controls the desktop window.
type Config struct {
	Title string
	// Width and Height are the window size in logical units.
	Width, Height int
	// Scale overrides the device scale factor when > 0.
	Scale  float64
	TPS    int
	Logger hal.Logger
}

// DeviceScale reports the device pixel ratio of the primary monitor.
func DeviceScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		if s := m.DeviceScaleFactor(); s > 0 {
			return s
		}
	}
	return 1
}

// Run opens the window and blocks until it closes or the app fails.
func Run(cfg Config, newApp func(hal.HAL) (hal.App, error)) (err error) {
	scale := cfg.Scale
	if scale <= 0 {
		scale = DeviceScale()
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}

	h := hal.NewHost(hal.HostConfig{Width: cfg.Width, Height: cfg.Height, Scale: scale, Logger: cfg.Logger})
	app, err := newApp(h)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w, hh := h.FramebufferSize()
	g := &game{
		h:     h,
		app:   app,
		in:    newInput(h, scale, cfg.Width, cfg.Height),
		pix:   make([]byte, w*hh*4),
		width: w, height: hh,
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(g)
}

type game struct {
	h      *hal.Host
	app    hal.App
	in     *input
	img    *ebiten.Image
	pix    []byte
	frame  uint64
	width  int
	height int
}

func (g *game) Update() error {
	g.in.poll()
	return g.app.Step()
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(g.width, g.height)
	}
	if frame := g.h.Snapshot(g.pix); frame != g.frame {
		g.frame = frame
		g.img.WritePixels(g.pix)
	}
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
