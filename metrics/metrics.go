// Package metrics provides metrics-related utilities.
//
// Counters are kept in the github.com/codahale/metrics registry,
// which publishes them on expvar. Latencies are kept in windowed
// HDR histograms so that recent behavior is not swamped by the
// whole process history.
//
// Defined metrics:
//   vm.state.HALT (counter)
//   vm.state.FAULT (counter)
//   vm.state.BREAK (counter)
//   elapsed.FUNC (histogram, see RecordElapsed)
package metrics

import (
	"encoding/json"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/codahale/hdrhistogram"
	"github.com/codahale/metrics"
)

// Period is the interval at which callers are expected to
// rotate their latency windows.
var Period = time.Minute

// CountState increments the counter prefix.state,
// for example vm.state.FAULT.
func CountState(prefix, state string) {
	metrics.Counter(prefix + "." + state).Add()
}

// Count increments the named counter by n.
func Count(name string, n uint64) {
	metrics.Counter(name).AddN(n)
}

// Counters returns a snapshot of all counters.
func Counters() map[string]uint64 {
	c, _ := metrics.Snapshot()
	return c
}

// RotatingLatency records durations in a ring of
// histograms, one per period. Values above max are
// counted as overflow rather than recorded.
type RotatingLatency struct {
	mu     sync.Mutex
	w      *hdrhistogram.WindowedHistogram
	max    time.Duration
	over   int64
	numRot int
}

// NewRotatingLatency returns a RotatingLatency with n
// windows, recording durations up to max.
func NewRotatingLatency(n int, max time.Duration) *RotatingLatency {
	return &RotatingLatency{
		w:   hdrhistogram.NewWindowed(n, 0, int64(max), 2),
		max: max,
	}
}

// Record records one duration in the current window.
func (r *RotatingLatency) Record(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d > r.max {
		r.over++
		return
	}
	r.w.Current.RecordValue(int64(d))
}

// RecordSince records the duration elapsed since t0.
func (r *RotatingLatency) RecordSince(t0 time.Time) {
	r.Record(time.Since(t0))
}

// Rotate starts a new window, discarding the oldest one.
func (r *RotatingLatency) Rotate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Rotate()
	r.numRot++
}

// Merge returns a histogram of all retained windows.
func (r *RotatingLatency) Merge() *hdrhistogram.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.w.Merge()
}

// Over returns the number of durations above max.
func (r *RotatingLatency) Over() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.over
}

// String satisfies expvar.Var.
func (r *RotatingLatency) String() string {
	h := r.Merge()
	r.mu.Lock()
	v := struct {
		NumRot int
		Over   int64
		Count  int64
		Mean   float64
		P99    int64
		Max    int64
	}{
		NumRot: r.numRot,
		Over:   r.over,
		Count:  h.TotalCount(),
		Mean:   h.Mean(),
		P99:    h.ValueAtQuantile(99),
		Max:    h.Max(),
	}
	r.mu.Unlock()
	b, _ := json.Marshal(v)
	return string(b)
}

var (
	elapsedMu sync.Mutex
	elapsed   = map[string]*metrics.Histogram{}
)

// RecordElapsed records the time since t0 in a histogram
// named after the calling function. Use it as
//
//   defer metrics.RecordElapsed(time.Now())
func RecordElapsed(t0 time.Time) {
	d := time.Since(t0)
	name := "elapsed." + callerName()
	elapsedMu.Lock()
	h, ok := elapsed[name]
	if !ok {
		h = metrics.NewHistogram(name, 0, int64(time.Minute), 2)
		elapsed[name] = h
	}
	elapsedMu.Unlock()
	h.RecordValue(int64(d))
}

// Elapsed returns the names of the histograms RecordElapsed
// has created, sorted.
func Elapsed() []string {
	elapsedMu.Lock()
	defer elapsedMu.Unlock()
	names := make([]string, 0, len(elapsed))
	for name := range elapsed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func callerName() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	name := runtime.FuncForPC(pc).Name()
	return name[strings.LastIndexByte(name, '/')+1:]
}
