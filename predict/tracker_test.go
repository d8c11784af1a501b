package predict

import (
	"context"
	"errors"
	"testing"
)

func TestTrackerSuccess(t *testing.T) {
	var tr Tracker
	_, gen := tr.Begin(context.Background())
	if st := tr.State(); !st.InFlight || st.HasLabel {
		t.Fatalf("state after Begin = %+v", st)
	}

	if !tr.Settle(Outcome{Gen: gen, Label: "A"}) {
		t.Fatal("current outcome was not applied")
	}
	if st := tr.State(); st.InFlight || !st.HasLabel || st.Label != "A" {
		t.Fatalf("state = %+v", st)
	}
}

func TestTrackerFailureLeavesNoLabel(t *testing.T) {
	var tr Tracker
	_, gen := tr.Begin(context.Background())
	tr.Settle(Outcome{Gen: gen, Label: "A"})

	_, gen = tr.Begin(context.Background())
	if st := tr.State(); st.HasLabel {
		t.Fatalf("Begin did not clear the label: %+v", st)
	}
	tr.Settle(Outcome{Gen: gen, Err: errors.New("HTTP 500")})
	if st := tr.State(); st.InFlight || st.HasLabel {
		t.Fatalf("state = %+v", st)
	}
}

func TestTrackerLatestIssuedWins(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		var tr Tracker
		ctx1, gen1 := tr.Begin(context.Background())
		_, gen2 := tr.Begin(context.Background())

		if ctx1.Err() == nil {
			t.Fatal("superseded request was not cancelled")
		}

		first := Outcome{Gen: gen1, Label: "A"}
		second := Outcome{Gen: gen2, Label: "B"}
		if reverse {
			if !tr.Settle(second) {
				t.Fatal("latest outcome rejected")
			}
			if tr.Settle(first) {
				t.Fatal("stale outcome applied")
			}
		} else {
			if tr.Settle(first) {
				t.Fatal("stale outcome applied")
			}
			if st := tr.State(); !st.InFlight {
				t.Fatal("stale outcome cleared the busy flag")
			}
			if !tr.Settle(second) {
				t.Fatal("latest outcome rejected")
			}
		}

		if st := tr.State(); st.InFlight || st.Label != "B" || !st.HasLabel {
			t.Fatalf("reverse=%v: state = %+v", reverse, st)
		}
	}
}

func TestTrackerSettleTwice(t *testing.T) {
	var tr Tracker
	_, gen := tr.Begin(context.Background())
	tr.Settle(Outcome{Gen: gen, Label: "A"})
	if tr.Settle(Outcome{Gen: gen, Label: "Z"}) {
		t.Fatal("duplicate outcome applied")
	}
	if st := tr.State(); st.Label != "A" {
		t.Fatalf("label = %q", st.Label)
	}
}

func TestTrackerCancel(t *testing.T) {
	var tr Tracker
	ctx, _ := tr.Begin(context.Background())
	tr.Cancel()
	if ctx.Err() == nil {
		t.Fatal("Cancel did not cancel the request context")
	}
}
