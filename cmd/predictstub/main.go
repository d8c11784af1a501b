// Command predictstub is a stand-in for the letter recognition service. It
// accepts the same POST /predict requests and answers with a fixed label, a
// failure status, or after a delay.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"inkpad/hal"

	"go.uber.org/zap"
)

func main() {
	var opts stubOptions
	addr := flag.String("addr", "127.0.0.1:5000", "Listen address.")
	flag.StringVar(&opts.label, "label", "A", "Label to answer with. Integers are sent as JSON numbers.")
	flag.IntVar(&opts.fail, "fail", 0, "Answer every request with this HTTP status instead.")
	flag.DurationVar(&opts.delay, "delay", 0, "Wait this long before answering.")
	level := flag.String("log-level", "info", "Log level.")
	flag.Parse()

	hl, err := hal.NewLogger(hal.LogConfig{Level: *level})
	if err != nil {
		fatalf("logger: %v", err)
	}
	log := hl.Zap()
	defer log.Sync()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(opts, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", *addr), zap.String("label", opts.label), zap.Int("fail", opts.fail), zap.Duration("delay", opts.delay))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve", zap.Error(err))
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
