package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"inkpad/app"
	"inkpad/config"
	"inkpad/hal"
	"inkpad/hal/window"
	"inkpad/internal/buildinfo"
	"inkpad/pad"
)

func main() {
	var hcfg hal.HeadlessConfig
	flag.BoolVar(&hcfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hcfg.Hz, "hz", 60, "Tick rate.")
	flag.Uint64Var(&hcfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	cf := config.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := cf.Load()
	if err != nil {
		fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	log, err := hal.NewLogger(cfg.LogConfig())
	if err != nil {
		fatalf("logger: %v", err)
	}

	newApp := func(h hal.HAL) (hal.App, error) { return app.New(h, cfg) }
	w, h := pad.ContentSize(cfg.Canvas.Size)

	if hcfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		host := hal.NewHost(hal.HostConfig{Width: w, Height: h, Scale: cfg.Canvas.Scale, Logger: log})
		err = hal.RunHeadless(ctx, host, newApp, hcfg)
	} else {
		err = window.Run(window.Config{
			Title:  buildinfo.Title(cfg.Window.Title),
			Width:  w,
			Height: h,
			Scale:  cfg.Canvas.Scale,
			TPS:    hcfg.Hz,
			Logger: log,
		}, newApp)
	}
	if err != nil {
		log.WriteLevel(hal.LevelError, err.Error())
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
