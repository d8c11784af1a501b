// Package app wires the kernel, its services and the prediction client onto
// a HAL.
package app

import (
	"fmt"

	logclient "inkpad/client/logger"
	"inkpad/config"
	"inkpad/hal"
	"inkpad/internal/buildinfo"
	"inkpad/kernel"
	"inkpad/predict"
	"inkpad/proto"
	"inkpad/services/logger"
	"inkpad/services/ui"
)

type system struct {
	h    hal.HAL
	k    *kernel.Kernel
	tick uint64
}

// New validates cfg, starts the logger and UI tasks and returns the App the
// runner steps once per frame.
func New(h hal.HAL, cfg config.Config) (hal.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	style, err := cfg.Style()
	if err != nil {
		return nil, err
	}
	client, err := predict.NewClient(cfg.EndpointURL, cfg.HTTPClient())
	if err != nil {
		return nil, fmt.Errorf("predict client: %w", err)
	}

	installPanicHandler(h)

	k := kernel.New()

	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logSend := logEP.Restrict(kernel.RightSend)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))
	k.AddTask(kernel.TaskFunc(func(ctx *kernel.Context) {
		logclient.Logf(ctx, logSend, proto.LevelInfo, "inkpad %s: predicting via %s", buildinfo.Short(), client.Endpoint())
	}))
	k.AddTask(ui.New(h.Display(), h.Input(), logSend, ui.Config{
		CanvasSize: cfg.Canvas.Size,
		Style:      style,
		Predictor:  client,
	}))

	return &system{h: h, k: k}, nil
}

// Step advances the kernel clock by one tick.
func (s *system) Step() error {
	s.tick++
	s.k.TickTo(s.tick)
	return nil
}

// Close stops every task. A task panic is reported here.
func (s *system) Close() error {
	err := s.k.Shutdown()
	if l := s.h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("inkpad: stopped after %d ticks", s.tick))
	}
	return err
}
