package pad

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"inkpad/hal"
	"inkpad/predict"
	"inkpad/surface"
)

type recordedRequest struct {
	contentType string
	body        map[string]string
}

type predictServer struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request, image string)
}

func (s *predictServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]string
	_ = json.Unmarshal(raw, &body)

	s.mu.Lock()
	s.requests = append(s.requests, recordedRequest{contentType: r.Header.Get("Content-Type"), body: body})
	s.mu.Unlock()

	s.respond(w, r, body["image"])
}

func (s *predictServer) recorded() []recordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedRequest(nil), s.requests...)
}

func newSurfaceHarness(t *testing.T, srv *predictServer) *harness {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	client, err := predict.NewClient(ts.URL+"/predict", ts.Client())
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	s, err := surface.New(surface.DefaultSize, 1, surface.DefaultStyle())
	if err != nil {
		t.Fatalf("surface.New() = %v", err)
	}

	h := &harness{log: &recordLogger{}, outcomes: make(chan predict.Outcome, 4)}
	h.w = New(Options{
		Canvas:    s,
		Predictor: client,
		Deliver:   func(o predict.Outcome) { h.outcomes <- o },
		Logger:    h.log,
	})
	return h
}

func drawStroke(w *Widget) {
	l := w.Layout()
	x, y := center(l.Canvas)
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerDown, Source: hal.SourceMouse, X: x, Y: y})
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerMove, Source: hal.SourceMouse, X: x + 40, Y: y + 30})
	w.HandlePointer(hal.PointerEvent{Kind: hal.PointerUp, Source: hal.SourceMouse, X: x + 40, Y: y + 30})
}

func TestPredictSendsOnePost(t *testing.T) {
	srv := &predictServer{respond: func(w http.ResponseWriter, r *http.Request, image string) {
		io.WriteString(w, `{"prediction":"A"}`)
	}}
	h := newSurfaceHarness(t, srv)

	drawStroke(h.w)
	click(h.w, hal.SourceMouse, h.w.Layout().Predict)
	h.settle(t)

	reqs := srv.recorded()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if reqs[0].contentType != "application/json" {
		t.Fatalf("Content-Type = %q", reqs[0].contentType)
	}
	if img := reqs[0].body["image"]; !strings.HasPrefix(img, "data:image/png;base64,") {
		t.Fatalf("image = %.40q", img)
	}
}

func TestPredictSuccessShowsLabel(t *testing.T) {
	srv := &predictServer{respond: func(w http.ResponseWriter, r *http.Request, image string) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"prediction":"A"}`)
	}}
	h := newSurfaceHarness(t, srv)

	drawStroke(h.w)
	h.w.Predict()
	if st := h.w.State(); !st.InFlight || st.HasLabel {
		t.Fatalf("state while predicting = %+v", st)
	}
	h.settle(t)

	st := h.w.State()
	if st.InFlight || !st.HasLabel || st.Label != "A" {
		t.Fatalf("state = %+v", st)
	}
	if _, label := Captions(st); label != "Predicted: A" {
		t.Fatalf("label line = %q", label)
	}
}

func TestPredictServerErrorShowsNothing(t *testing.T) {
	srv := &predictServer{respond: func(w http.ResponseWriter, r *http.Request, image string) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"model not loaded"}`)
	}}
	h := newSurfaceHarness(t, srv)

	h.w.Predict()
	h.settle(t)

	if st := h.w.State(); st.InFlight || st.HasLabel {
		t.Fatalf("state = %+v", st)
	}
	if !h.log.contains("model not loaded") {
		t.Fatal("diagnostic not logged")
	}
}

func TestPredictNetworkErrorShowsNothing(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := predict.NewClient(url, nil)
	if err != nil {
		t.Fatalf("NewClient() = %v", err)
	}
	s, _ := surface.New(surface.DefaultSize, 1, surface.DefaultStyle())
	h := &harness{log: &recordLogger{}, outcomes: make(chan predict.Outcome, 1)}
	h.w = New(Options{Canvas: s, Predictor: client, Deliver: func(o predict.Outcome) { h.outcomes <- o }, Logger: h.log})

	h.w.Predict()
	h.settle(t)

	if st := h.w.State(); st.InFlight || st.HasLabel {
		t.Fatalf("state = %+v", st)
	}
	if h.log.count(hal.LevelWarn) != 1 {
		t.Fatal("diagnostic not logged")
	}
}

func TestSupersededHTTPRequestIsCancelled(t *testing.T) {
	blank, err := surface.New(surface.DefaultSize, 1, surface.DefaultStyle())
	if err != nil {
		t.Fatalf("surface.New() = %v", err)
	}
	blankURI, _ := blank.ExportImage()

	srv := &predictServer{respond: func(w http.ResponseWriter, r *http.Request, image string) {
		if image == blankURI {
			<-r.Context().Done()
			return
		}
		io.WriteString(w, `{"prediction":"B"}`)
	}}
	h := newSurfaceHarness(t, srv)

	h.w.Predict()
	drawStroke(h.w)
	h.w.Predict()

	for i := 0; i < 2; i++ {
		o := h.settle(t)
		if o.Gen == 1 && !errors.Is(o.Err, context.Canceled) {
			t.Fatalf("first request err = %v, want context.Canceled", o.Err)
		}
	}

	st := h.w.State()
	if st.InFlight || !st.HasLabel || st.Label != "B" {
		t.Fatalf("state = %+v", st)
	}
}
