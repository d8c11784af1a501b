// Package ui is the task that owns the letter pad widget. It feeds HAL input
// into the widget, settles prediction outcomes handed back by request
// goroutines, and renders into the HAL framebuffer.
package ui

import (
	"sync/atomic"

	logclient "inkpad/client/logger"
	"inkpad/hal"
	"inkpad/kernel"
	"inkpad/pad"
	"inkpad/predict"
	"inkpad/surface"
)

// outcomeSlots is how many settled requests may wait for the task.
const outcomeSlots = 4

// Config selects what the widget draws and where it sends snapshots.
type Config struct {
	CanvasSize int
	Style      surface.Style
	Predictor  predict.Predictor
	Theme      pad.Theme
}

type Service struct {
	disp   hal.Display
	in     hal.Input
	logCap kernel.Capability
	cfg    Config

	// outcomes carries whole outcomes, so labels are not bound by the
	// kernel message size.
	outcomes chan predict.Outcome
	mounted  atomic.Pointer[pad.Widget]

	w *pad.Widget
}

// New returns the UI task. logCap needs the send right.
func New(d hal.Display, in hal.Input, logCap kernel.Capability, cfg Config) *Service {
	if cfg.CanvasSize <= 0 {
		cfg.CanvasSize = surface.DefaultSize
	}
	if cfg.Style == (surface.Style{}) {
		cfg.Style = surface.DefaultStyle()
	}
	return &Service{
		disp:     d,
		in:       in,
		logCap:   logCap,
		cfg:      cfg,
		outcomes: make(chan predict.Outcome, outcomeSlots),
	}
}

// Prediction reports the widget's prediction state. It is safe to call from
// any goroutine and is zero until the task has mounted its canvas.
func (s *Service) Prediction() predict.State {
	w := s.mounted.Load()
	if w == nil {
		return predict.State{}
	}
	return w.State()
}

func (s *Service) Run(ctx *kernel.Context) {
	log := logclient.NewClient(ctx, s.logCap)

	if s.disp == nil || s.disp.Framebuffer() == nil {
		log.Logf(hal.LevelError, "ui: no framebuffer")
		return
	}
	fb := s.disp.Framebuffer()
	scale := s.disp.Scale()
	if scale <= 0 {
		scale = 1
	}

	surf, err := surface.New(s.cfg.CanvasSize, scale, s.cfg.Style)
	if err != nil {
		log.Logf(hal.LevelError, "ui: canvas: %v", err)
		return
	}

	s.w = pad.New(pad.Options{
		Canvas:     surf,
		CanvasSize: s.cfg.CanvasSize,
		ViewWidth:  float64(fb.Width()) / scale,
		ViewHeight: float64(fb.Height()) / scale,
		Predictor:  s.cfg.Predictor,
		Deliver:    s.deliver(ctx),
		Logger:     log,
		Context:    ctx.Context(),
		Theme:      s.cfg.Theme,
	})
	defer s.w.Close()
	s.mounted.Store(s.w)
	var (
		ptr <-chan hal.PointerEvent
		kbd <-chan hal.KeyEvent
	)
	if s.in != nil {
		if p := s.in.Pointer(); p != nil {
			ptr = p.Events()
		}
		if k := s.in.Keyboard(); k != nil {
			kbd = k.Events()
		}
	}

	log.Logf(hal.LevelInfo, "ui: canvas %dx%d at scale %g", s.cfg.CanvasSize, s.cfg.CanvasSize, scale)
	for {
		if s.w.Dirty() {
			if err := s.w.Render(fb, scale); err != nil {
				log.Logf(hal.LevelError, "ui: render: %v", err)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case ev := <-ptr:
			s.w.HandlePointer(ev)
			s.drainPointer(ptr)
		case ev := <-kbd:
			s.w.HandleKey(ev)
		case o := <-s.outcomes:
			s.w.Apply(o)
		}
	}
}

// drainPointer folds queued pointer events into one frame.
func (s *Service) drainPointer(ptr <-chan hal.PointerEvent) {
	for {
		select {
		case ev := <-ptr:
			s.w.HandlePointer(ev)
		default:
			return
		}
	}
}

// deliver returns the callback request goroutines use to hand their outcome
// back to the task. It gives up once the kernel shuts down.
func (s *Service) deliver(ctx *kernel.Context) func(predict.Outcome) {
	return func(o predict.Outcome) {
		select {
		case s.outcomes <- o:
		case <-ctx.Done():
		}
	}
}
