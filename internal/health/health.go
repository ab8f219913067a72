// Package health tracks upstream health from activity fetch outcomes.
package health

import (
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusUnknown   Status = "UNKNOWN"
	StatusHealthy   Status = "HEALTHY"
	StatusDegraded  Status = "DEGRADED"
	StatusUnhealthy Status = "UNHEALTHY"

	// DefaultUnhealthyThreshold is the number of consecutive degraded
	// fetches before the upstream is considered unhealthy.
	DefaultUnhealthyThreshold = 5

	// DefaultDegradedLatency is the P95 fetch latency above which the
	// upstream is considered degraded.
	DefaultDegradedLatency = 5 * time.Second

	latencyWindowSize = 20
)

// Tracker is safe for concurrent use.
type Tracker struct {
	mu                   sync.RWMutex
	status               Status
	consecutiveDegraded  int
	lastCompleteAt       *time.Time
	lastDegradedAt       *time.Time
	lastDegradedCalls    []string
	recentLatencies      []time.Duration
	unhealthyThreshold   int
	degradedLatencyLimit time.Duration
	nowFn                func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		status:               StatusUnknown,
		unhealthyThreshold:   DefaultUnhealthyThreshold,
		degradedLatencyLimit: DefaultDegradedLatency,
		recentLatencies:      make([]time.Duration, 0, latencyWindowSize),
		nowFn:                time.Now,
	}
}

// RecordFetch records one fetch. degraded lists the explorer calls that
// failed during it.
func (h *Tracker) RecordFetch(latency time.Duration, degraded []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.nowFn()

	if len(h.recentLatencies) >= latencyWindowSize {
		h.recentLatencies = h.recentLatencies[1:]
	}
	h.recentLatencies = append(h.recentLatencies, latency)

	if len(degraded) > 0 {
		h.consecutiveDegraded++
		h.lastDegradedAt = &now
		h.lastDegradedCalls = append([]string(nil), degraded...)
	} else {
		h.consecutiveDegraded = 0
		h.lastCompleteAt = &now
	}

	switch {
	case h.consecutiveDegraded >= h.unhealthyThreshold:
		h.status = StatusUnhealthy
	case h.consecutiveDegraded > 0 || h.latencyDegraded():
		h.status = StatusDegraded
	default:
		h.status = StatusHealthy
	}
}

// latencyDegraded must be called with mu held.
func (h *Tracker) latencyDegraded() bool {
	if len(h.recentLatencies) < 2 {
		return false
	}
	return h.percentile(95) > h.degradedLatencyLimit
}

// percentile must be called with mu held.
func (h *Tracker) percentile(pct int) time.Duration {
	n := len(h.recentLatencies)
	if n == 0 {
		return 0
	}
	sorted := make([]time.Duration, n)
	copy(sorted, h.recentLatencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (pct*n - 1) / 100
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}

func (h *Tracker) Snapshot() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Snapshot{
		Status:              string(h.status),
		ConsecutiveDegraded: h.consecutiveDegraded,
		LastCompleteAt:      h.lastCompleteAt,
		LastDegradedAt:      h.lastDegradedAt,
		LastDegradedCalls:   h.lastDegradedCalls,
		P95LatencyMs:        h.percentile(95).Milliseconds(),
	}
}

// Snapshot is a point-in-time view (JSON-safe).
type Snapshot struct {
	Status              string     `json:"status"`
	ConsecutiveDegraded int        `json:"consecutive_degraded"`
	LastCompleteAt      *time.Time `json:"last_complete_at,omitempty"`
	LastDegradedAt      *time.Time `json:"last_degraded_at,omitempty"`
	LastDegradedCalls   []string   `json:"last_degraded_calls,omitempty"`
	P95LatencyMs        int64      `json:"p95_latency_ms"`
}
