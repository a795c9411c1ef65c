package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the collection metrics of a fault-localization session.
type Metrics struct {
	// Per-test timings
	testDuration         *Histogram
	coverageReadDuration *Histogram
	collectDuration      *Histogram

	// Element counts by requirement kind
	observed *CounterVec
	covered  *CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics() *Metrics {
	return &Metrics{
		testDuration:         NewHistogram(),
		coverageReadDuration: NewHistogram(),
		collectDuration:      NewHistogram(),
		observed:             NewCounterVec(),
		covered:              NewCounterVec(),
	}
}

func (m *Metrics) TestDuration() *Histogram         { return m.testDuration }
func (m *Metrics) CoverageReadDuration() *Histogram { return m.coverageReadDuration }
func (m *Metrics) CollectDuration() *Histogram      { return m.collectDuration }
func (m *Metrics) Observed() *CounterVec            { return m.observed }
func (m *Metrics) Covered() *CounterVec             { return m.covered }

// Snapshot returns a snapshot of all metrics for reporting.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	return &MetricsSnapshot{
		TestDuration:         m.testDuration.Snapshot(),
		CoverageReadDuration: m.coverageReadDuration.Snapshot(),
		CollectDuration:      m.collectDuration.Snapshot(),
		Observed:             m.observed.Snapshot(),
		Covered:              m.covered.Snapshot(),
	}
}

// MetricsSnapshot holds a point-in-time snapshot of all metrics.
type MetricsSnapshot struct {
	TestDuration         HistogramSnapshot `json:"test_duration"`
	CoverageReadDuration HistogramSnapshot `json:"coverage_read_duration"`
	CollectDuration      HistogramSnapshot `json:"collect_duration"`
	Observed             map[string]int64  `json:"observed"`
	Covered              map[string]int64  `json:"covered"`
}

// Histogram tracks the distribution of duration measurements.
// Thread-safe for concurrent observations.
type Histogram struct {
	mu     sync.RWMutex
	values []float64 // Stored in microseconds for precision
}

// NewHistogram creates a new histogram.
func NewHistogram() *Histogram {
	return &Histogram{
		values: make([]float64, 0, 256),
	}
}

// Observe records a duration measurement.
func (h *Histogram) Observe(d time.Duration) {
	micros := float64(d.Microseconds())
	h.mu.Lock()
	h.values = append(h.values, micros)
	h.mu.Unlock()
}

// Snapshot returns a point-in-time snapshot with percentiles calculated.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.values) == 0 {
		return HistogramSnapshot{}
	}

	sorted := make([]float64, len(h.values))
	copy(sorted, h.values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	return HistogramSnapshot{
		Count: len(sorted),
		Total: time.Duration(sum) * time.Microsecond,
		Mean:  time.Duration(mean) * time.Microsecond,
		P50:   time.Duration(percentile(sorted, 0.50)) * time.Microsecond,
		P95:   time.Duration(percentile(sorted, 0.95)) * time.Microsecond,
		Max:   time.Duration(sorted[len(sorted)-1]) * time.Microsecond,
	}
}

// HistogramSnapshot holds calculated statistics for a histogram.
type HistogramSnapshot struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	Max   time.Duration `json:"max"`
}

// percentile calculates the p-th percentile from sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	// Linear interpolation
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Counter is a monotonically increasing counter using atomic operations.
type Counter struct {
	value int64
}

// NewCounter creates a new counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
}

// Add adds the given value to the counter.
func (c *Counter) Add(delta int64) {
	atomic.AddInt64(&c.value, delta)
}

// Get returns the current value.
func (c *Counter) Get() int64 {
	return atomic.LoadInt64(&c.value)
}

// CounterVec is a collection of counters with labels.
type CounterVec struct {
	mu       sync.RWMutex
	counters map[string]*Counter
}

// NewCounterVec creates a new counter vector.
func NewCounterVec() *CounterVec {
	return &CounterVec{
		counters: make(map[string]*Counter),
	}
}

// WithLabels returns a counter for the given label string.
func (cv *CounterVec) WithLabels(labels string) *Counter {
	cv.mu.RLock()
	c, ok := cv.counters[labels]
	cv.mu.RUnlock()

	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()

	// Double-check after acquiring write lock
	if c, ok := cv.counters[labels]; ok {
		return c
	}

	c = NewCounter()
	cv.counters[labels] = c
	return c
}

// Snapshot returns the current values of all counters.
func (cv *CounterVec) Snapshot() map[string]int64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	snapshot := make(map[string]int64, len(cv.counters))
	for label, c := range cv.counters {
		snapshot[label] = c.Get()
	}
	return snapshot
}

// ServeHTTP implements http.Handler for metrics exposition.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := m.Snapshot()

	format := r.URL.Query().Get("format")
	if format == "json" || r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.Encode(snapshot)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	snapshot.WriteText(w)
}

// WriteText writes a human-readable rendering of the snapshot.
func (s *MetricsSnapshot) WriteText(w io.Writer) {
	fmt.Fprintf(w, "# Collection Metrics\n\n")
	writeHistogramSummary(w, "Test Duration", s.TestDuration)
	writeHistogramSummary(w, "Coverage Read Duration", s.CoverageReadDuration)
	writeHistogramSummary(w, "Collect Duration", s.CollectDuration)

	writeCounters(w, "Observed elements", s.Observed)
	writeCounters(w, "Covered elements", s.Covered)
}

func writeHistogramSummary(w io.Writer, name string, h HistogramSnapshot) {
	if h.Count == 0 {
		fmt.Fprintf(w, "%s: no data\n", name)
		return
	}
	fmt.Fprintf(w, "%s (n=%d):\n", name, h.Count)
	fmt.Fprintf(w, "  Total: %v, Mean: %v, P50: %v, P95: %v, Max: %v\n",
		h.Total, h.Mean, h.P50, h.P95, h.Max)
}

func writeCounters(w io.Writer, name string, counters map[string]int64) {
	if len(counters) == 0 {
		return
	}
	labels := make([]string, 0, len(counters))
	for label := range counters {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	fmt.Fprintf(w, "\n%s:\n", name)
	for _, label := range labels {
		fmt.Fprintf(w, "  %s: %d\n", label, counters[label])
	}
}
