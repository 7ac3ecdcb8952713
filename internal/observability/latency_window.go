package observability

import (
	"math"
	"sort"
	"sync"
	"time"
)

type OpLatencyStats struct {
	Op          string  `json:"op"`
	Samples     int     `json:"samples"`
	Errors      int     `json:"errors"`
	LastMS      float64 `json:"last_ms"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	P99MS       float64 `json:"p99_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type LatencySnapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	WindowSize  int              `json:"window_size"`
	Ops         []OpLatencyStats `json:"ops"`
}

// opLatencyWindow keeps the last maxSamples latencies per backend operation in
// a ring buffer.
type opLatencyWindow struct {
	mu         sync.RWMutex
	maxSamples int
	ops        map[string]*latencyRing
	errors     map[string]int
}

type latencyRing struct {
	values []float64
	next   int
	filled bool
	last   float64
}

func newOpLatencyWindow(maxSamples int) *opLatencyWindow {
	if maxSamples <= 0 {
		maxSamples = 256
	}
	return &opLatencyWindow{
		maxSamples: maxSamples,
		ops:        make(map[string]*latencyRing),
		errors:     make(map[string]int),
	}
}

func (w *opLatencyWindow) Observe(op string, ms float64) {
	if op == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ring, ok := w.ops[op]
	if !ok {
		ring = &latencyRing{values: make([]float64, w.maxSamples)}
		w.ops[op] = ring
	}
	ring.values[ring.next] = ms
	ring.last = ms
	ring.next++
	if ring.next >= len(ring.values) {
		ring.next = 0
		ring.filled = true
	}
}

func (w *opLatencyWindow) ObserveError(op string) {
	if op == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errors[op]++
}

func (w *opLatencyWindow) Snapshot() LatencySnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.ops))
	for op := range w.ops {
		names = append(names, op)
	}
	sort.Strings(names)

	stats := make([]OpLatencyStats, 0, len(names))
	for _, op := range names {
		ring := w.ops[op]
		n := ring.next
		if ring.filled {
			n = len(ring.values)
		}
		if n <= 0 {
			continue
		}
		samples := make([]float64, n)
		copy(samples, ring.values[:n])
		sort.Float64s(samples)

		sum := 0.0
		for _, v := range samples {
			sum += v
		}
		stats = append(stats, OpLatencyStats{
			Op:          op,
			Samples:     n,
			Errors:      w.errors[op],
			LastMS:      round2(ring.last),
			AvgMS:       round2(sum / float64(n)),
			P50MS:       round2(quantile(samples, 0.50)),
			P95MS:       round2(quantile(samples, 0.95)),
			P99MS:       round2(quantile(samples, 0.99)),
			TargetP95MS: opTargetP95MS(op),
		})
	}

	return LatencySnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.maxSamples,
		Ops:         stats,
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func opTargetP95MS(op string) float64 {
	switch op {
	case "get", "range":
		return 10
	case "set", "append", "trim", "delete", "expire":
		return 15
	default:
		return 0
	}
}
