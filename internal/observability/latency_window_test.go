package observability

import "testing"

func TestOpLatencyWindowSnapshot(t *testing.T) {
	w := newOpLatencyWindow(8)
	w.Observe("get", 5)
	w.Observe("get", 7)
	w.Observe("get", 9)
	w.ObserveError("get")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Ops) != 1 {
		t.Fatalf("len(Ops) = %d, want 1", len(snap.Ops))
	}
	s := snap.Ops[0]
	if s.Op != "get" || s.Samples != 3 || s.Errors != 1 {
		t.Fatalf("stats = %+v", s)
	}
	if s.LastMS != 9 {
		t.Fatalf("LastMS = %.2f, want 9", s.LastMS)
	}
	if s.P50MS != 7 {
		t.Fatalf("P50MS = %.2f, want 7", s.P50MS)
	}
	if s.P95MS <= 7 || s.P95MS > 9 {
		t.Fatalf("P95MS = %.2f, want (7,9]", s.P95MS)
	}
	if s.TargetP95MS != 10 {
		t.Fatalf("TargetP95MS = %.2f, want 10", s.TargetP95MS)
	}
}

func TestOpLatencyWindowWraps(t *testing.T) {
	w := newOpLatencyWindow(2)
	w.Observe("set", 100)
	w.Observe("set", 1)
	w.Observe("set", 1)

	s := w.Snapshot().Ops[0]
	if s.Samples != 2 || s.AvgMS != 1 {
		t.Fatalf("stats = %+v, want oldest sample evicted", s)
	}
}
