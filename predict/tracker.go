package predict

import (
	"context"
	"sync"
)

// State is what the widget renders: the busy flag and the optional label.
type State struct {
	Label    string
	HasLabel bool
	InFlight bool
}

// Outcome is how one request settled. A nil Err means Label is valid.
type Outcome struct {
	Gen   uint32
	Label string
	Err   error
}

// Tracker numbers requests so that only the most recently issued one may
// change State. Issuing a request cancels the previous one.
type Tracker struct {
	mu     sync.Mutex
	gen    uint32
	cancel context.CancelFunc
	state  State
}

// Begin clears the label, marks a request in flight and returns its
// context and generation.
func (t *Tracker) Begin(parent context.Context) (context.Context, uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.gen++
	t.state = State{InFlight: true}
	return ctx, t.gen
}

// Settle applies o if it belongs to the latest request and reports whether
// it did. Stale outcomes leave State untouched.
func (t *Tracker) Settle(o Outcome) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if o.Gen != t.gen || !t.state.InFlight {
		return false
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.state.InFlight = false
	if o.Err == nil {
		t.state.Label = o.Label
		t.state.HasLabel = true
	}
	return true
}

// Cancel aborts the outstanding request, if any. Its outcome will be
// treated as a failure when it arrives.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
}

// Generation returns the number of the latest request.
func (t *Tracker) Generation() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
