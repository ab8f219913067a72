package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Config tunes a Breaker. Zero values take the defaults noted per field.
type Config struct {
	FailureThreshold int           // consecutive failures that open the circuit (5)
	SuccessThreshold int           // half-open successes that close it again (2)
	OpenTimeout      time.Duration // cool-off before a half-open probe (30s)
	OnStateChange    func(from, to State)
	Now              func() time.Time
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 2
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Breaker stops calls to an upstream (Basescan, the Base node) after a run
// of failures and lets a probe through once OpenTimeout has passed.
type Breaker struct {
	cfg Config

	mu       sync.Mutex
	state    State
	failures int
	probes   int
	openedAt time.Time
}

func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg.withDefaults()}
}

// Allow reports ErrCircuitOpen while the circuit is open and the cool-off
// has not elapsed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current() == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

// Record feeds the outcome of a guarded call. A nil err counts as success;
// otherwise the failure counts only when countable is nil or returns true.
func (b *Breaker) Record(err error, countable func(error) bool) {
	switch {
	case err == nil:
		b.RecordSuccess()
	case countable == nil || countable(err):
		b.RecordFailure()
	}
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	if b.state != StateHalfOpen {
		return
	}
	b.probes++
	if b.probes >= b.cfg.SuccessThreshold {
		b.moveTo(StateClosed)
	}
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.probes = 0
	b.openedAt = b.cfg.Now()
	if b.state == StateHalfOpen || b.failures >= b.cfg.FailureThreshold {
		b.moveTo(StateOpen)
	}
}

func (b *Breaker) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// current promotes an expired open circuit to half-open. Callers hold mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.cfg.Now().Sub(b.openedAt) > b.cfg.OpenTimeout {
		b.moveTo(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) moveTo(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.probes = 0
	if to == StateClosed {
		b.failures = 0
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
