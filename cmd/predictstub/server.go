package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"inkpad/internal/datauri"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

type stubOptions struct {
	label string
	fail  int
	delay time.Duration
}

func newRouter(opts stubOptions, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/predict", predictHandler(opts, log))
	r.Options("/predict", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func predictHandler(opts stubOptions, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = middleware.GetReqID(r.Context())
		}
		log := log.With(zap.String("request_id", reqID))

		var req struct {
			Image string `json:"image"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
			return
		}
		mediaType, data, err := datauri.Decode(req.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if mediaType != "image/png" {
			writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("media type %q", mediaType))
			return
		}
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("png: %w", err))
			return
		}
		log.Debug("snapshot", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height), zap.Int("bytes", len(data)))

		if opts.delay > 0 {
			t := time.NewTimer(opts.delay)
			defer t.Stop()
			select {
			case <-t.C:
			case <-r.Context().Done():
				log.Info("client went away")
				return
			}
		}

		if opts.fail != 0 {
			log.Info("failing", zap.Int("status", opts.fail))
			writeJSON(w, opts.fail, map[string]string{"error": "model not loaded"})
			return
		}
		log.Info("predicted", zap.String("label", opts.label))
		writeJSON(w, http.StatusOK, map[string]any{"prediction": labelValue(opts.label)})
	}
}

// labelValue sends integer labels as JSON numbers, like services that use
// class indices.
func labelValue(label string) any {
	if n, err := strconv.ParseInt(label, 10, 64); err == nil {
		return n
	}
	return label
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, X-Request-Id")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
