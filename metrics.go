package pressauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected credentials.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins refused before password
	// verification.
	MetricLoginRateLimited
	// MetricSessionCreated counts issued sessions.
	MetricSessionCreated
	// MetricSessionInvalidated counts sessions removed individually.
	MetricSessionInvalidated
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricLogoutAll counts bulk per-user invalidations.
	MetricLogoutAll
	// MetricCSRFFailure counts CSRF token mismatches.
	MetricCSRFFailure
	// MetricPermissionDenied counts authorization refusals.
	MetricPermissionDenied
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld counts changes rejected on the current
	// password check.
	MetricPasswordChangeInvalidOld
	// MetricPasswordChangeReuseRejected counts changes rejected for reusing
	// the current password.
	MetricPasswordChangeReuseRejected
	// MetricPasswordResetRequest counts issued reset tokens.
	MetricPasswordResetRequest
	// MetricPasswordResetConfirmSuccess counts completed resets.
	MetricPasswordResetConfirmSuccess
	// MetricPasswordResetConfirmFailure counts rejected reset tokens.
	MetricPasswordResetConfirmFailure
	// MetricVerifyLatency is the session verification latency histogram.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line so concurrent
// increments of different metrics do not contend.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and an optional latency histogram for
// the session verification hot path.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to a counter. Safe for concurrent use; a no-op when metrics
// are disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only [MetricVerifyLatency] carries a
// histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricVerifyLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies every counter and histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
