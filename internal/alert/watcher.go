package alert

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/emperorhan/base-score/internal/health"
)

const defaultWatchInterval = 30 * time.Second

// SnapshotSource is the read side of health.Tracker.
type SnapshotSource interface {
	Snapshot() health.Snapshot
}

// Watcher polls a health source and alerts on transitions into UNHEALTHY
// and back out of it.
type Watcher struct {
	source   SnapshotSource
	alerter  Alerter
	upstream string
	interval time.Duration
	logger   *slog.Logger

	last health.Status
}

func NewWatcher(source SnapshotSource, alerter Alerter, upstream string, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return &Watcher{
		source:   source,
		alerter:  alerter,
		upstream: upstream,
		interval: interval,
		logger:   logger.With("component", "health_watcher"),
		last:     health.StatusUnknown,
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check compares the current snapshot with the last observed status and
// sends at most one alert.
func (w *Watcher) Check(ctx context.Context) {
	snap := w.source.Snapshot()
	status := health.Status(snap.Status)
	prev := w.last
	w.last = status

	var a Alert
	switch {
	case status == health.StatusUnhealthy && prev != health.StatusUnhealthy:
		a = Alert{
			Type:    AlertTypeUnhealthy,
			Title:   "Explorer upstream unhealthy",
			Message: strconv.Itoa(snap.ConsecutiveDegraded) + " consecutive degraded fetches",
		}
	case prev == health.StatusUnhealthy && status == health.StatusHealthy:
		a = Alert{
			Type:    AlertTypeRecovery,
			Title:   "Explorer upstream recovered",
			Message: "fetches are complete again",
		}
	default:
		return
	}

	a.Upstream = w.upstream
	a.Fields = map[string]string{
		"p95_latency_ms": strconv.FormatInt(snap.P95LatencyMs, 10),
	}
	if len(snap.LastDegradedCalls) > 0 {
		a.Fields["degraded_calls"] = strings.Join(snap.LastDegradedCalls, ",")
	}

	w.logger.Warn("health transition", "from", prev, "to", status)
	if err := w.alerter.Send(ctx, a); err != nil {
		w.logger.Warn("health alert not delivered", "type", a.Type, "error", err)
	}
}
