package activity

import (
	"context"
	"errors"
	"sync"

	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/metrics"
)

// ErrSuperseded is returned by Tracker.Load when a newer request replaced
// the one in flight.
var ErrSuperseded = errors.New("activity request superseded")

// SummaryFetcher is implemented by *Fetcher.
type SummaryFetcher interface {
	FetchActivity(ctx context.Context, address string) (model.WalletActivitySummary, error)
}

// Ticket identifies one in-flight request.
type Ticket struct {
	seq    uint64
	cancel context.CancelFunc
}

// Tracker keeps the summary for the active wallet. Only the most recently
// started request may publish; older results are dropped.
type Tracker struct {
	fetcher SummaryFetcher

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current *model.WalletActivitySummary
}

func NewTracker(fetcher SummaryFetcher) *Tracker {
	return &Tracker{fetcher: fetcher}
}

// Begin starts a new request and cancels the previous one.
func (t *Tracker) Begin(ctx context.Context) (context.Context, Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	t.seq++
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	return ctx, Ticket{seq: t.seq, cancel: cancel}
}

// Commit publishes s if ticket is still the latest request.
func (t *Tracker) Commit(ticket Ticket, s model.WalletActivitySummary) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer ticket.cancel()
	if ticket.seq != t.seq {
		metrics.StaleResultsDiscarded.Inc()
		return false
	}
	t.current = &s
	t.cancel = nil
	return true
}

// Reset drops the current summary and invalidates any request in flight.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
	t.current = nil
}

// Current returns the last published summary.
func (t *Tracker) Current() (model.WalletActivitySummary, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return model.WalletActivitySummary{}, false
	}
	return *t.current, true
}

// Load fetches address and publishes the result unless a newer Load or a
// Reset happened meanwhile.
func (t *Tracker) Load(ctx context.Context, address string) (model.WalletActivitySummary, error) {
	reqCtx, ticket := t.Begin(ctx)
	s, err := t.fetcher.FetchActivity(reqCtx, address)
	if err != nil {
		ticket.cancel()
		if t.superseded(ticket) {
			metrics.StaleResultsDiscarded.Inc()
			return model.WalletActivitySummary{}, ErrSuperseded
		}
		return model.WalletActivitySummary{}, err
	}
	if !t.Commit(ticket, s) {
		return model.WalletActivitySummary{}, ErrSuperseded
	}
	return s, nil
}

func (t *Tracker) superseded(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ticket.seq != t.seq
}
