package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/metrics"
)

const (
	defaultProbeTimeout   = 500 * time.Millisecond
	defaultReprobeDelay   = 250 * time.Millisecond
	defaultReprobeAttempt = 3
)

// Descriptor is one known wallet provider.
type Descriptor interface {
	ID() string
	Name() string
	// Detect reports whether the provider is present on the platform.
	Detect(ctx context.Context) bool
	// Provider returns the injected provider or ErrProviderUnavailable.
	Provider() (Provider, error)
}

// injectedDescriptor detects a provider by global key and optional flag.
type injectedDescriptor struct {
	id       string
	name     string
	key      string
	flag     string
	platform PlatformWalletAccess
}

func (d *injectedDescriptor) ID() string   { return d.id }
func (d *injectedDescriptor) Name() string { return d.name }

func (d *injectedDescriptor) Detect(context.Context) bool {
	p, ok := d.platform.Injected(d.key)
	if !ok || p == nil {
		return false
	}
	return d.flag == "" || p.Flag(d.flag)
}

func (d *injectedDescriptor) Provider() (Provider, error) {
	p, ok := d.platform.Injected(d.key)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, d.id)
	}
	return p, nil
}

// DefaultDescriptors is the fixed provider table, in display order.
func DefaultDescriptors(platform PlatformWalletAccess) []Descriptor {
	return []Descriptor{
		&injectedDescriptor{id: "metamask", name: "MetaMask", key: "ethereum", flag: "isMetaMask", platform: platform},
		&injectedDescriptor{id: "coinbase", name: "Coinbase Wallet", key: "ethereum", flag: "isCoinbaseWallet", platform: platform},
		&injectedDescriptor{id: "okx", name: "OKX Wallet", key: "okxwallet", platform: platform},
		&injectedDescriptor{id: "rabby", name: "Rabby Wallet", key: "rabby", platform: platform},
		&injectedDescriptor{id: "farcaster", name: "Farcaster Wallet", key: "farcaster", platform: platform},
	}
}

type Registry struct {
	descriptors    []Descriptor
	probeTimeout   time.Duration
	reprobeDelay   time.Duration
	reprobeAttempt int
	logger         *slog.Logger
}

type RegistryOption func(*Registry)

func WithProbeTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.probeTimeout = d }
}

// WithReprobe sets how often and how long Connect waits for a provider that
// is not injected yet.
func WithReprobe(attempts int, delay time.Duration) RegistryOption {
	return func(r *Registry) {
		r.reprobeAttempt = attempts
		r.reprobeDelay = delay
	}
}

func NewRegistry(descriptors []Descriptor, logger *slog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		descriptors:    descriptors,
		probeTimeout:   defaultProbeTimeout,
		reprobeDelay:   defaultReprobeDelay,
		reprobeAttempt: defaultReprobeAttempt,
		logger:         logger.With("component", "wallet_registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reprobeAttempt <= 0 {
		r.reprobeAttempt = 1
	}
	return r
}

// Lookup finds a descriptor by id.
func (r *Registry) Lookup(id string) (Descriptor, error) {
	for _, d := range r.descriptors {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, id)
}

// ListAvailable probes every descriptor in declaration order. A probe that
// panics or outlives the probe timeout counts as not detected.
func (r *Registry) ListAvailable(ctx context.Context) []Descriptor {
	var out []Descriptor
	for _, d := range r.descriptors {
		if r.probe(ctx, d) {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) probe(ctx context.Context, d Descriptor) bool {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	result := make(chan bool, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Warn("wallet probe panicked", "provider", d.ID(), "panic", rec)
				result <- false
			}
		}()
		result <- d.Detect(ctx)
	}()

	select {
	case ok := <-result:
		return ok
	case <-ctx.Done():
		r.logger.Debug("wallet probe timed out", "provider", d.ID())
		return false
	}
}

// Connect requests accounts from d. A provider that is not injected yet is
// re-probed a bounded number of times before ErrProviderUnavailable.
func (r *Registry) Connect(ctx context.Context, d Descriptor) ([]model.WalletAddress, error) {
	p, err := r.awaitProvider(ctx, d)
	if err != nil {
		metrics.WalletConnects.WithLabelValues(d.ID(), "unavailable").Inc()
		return nil, err
	}

	accounts, err := requestStrings(ctx, p, "eth_requestAccounts")
	if err != nil {
		if code, ok := ProviderErrorCode(err); ok && code == CodeUserRejected {
			metrics.WalletConnects.WithLabelValues(d.ID(), "rejected").Inc()
			return nil, fmt.Errorf("%w: %s: %w", ErrConnectionRejected, d.ID(), err)
		}
		metrics.WalletConnects.WithLabelValues(d.ID(), "error").Inc()
		return nil, fmt.Errorf("eth_requestAccounts %s: %w", d.ID(), err)
	}

	addrs := make([]model.WalletAddress, 0, len(accounts))
	for _, a := range accounts {
		addr, err := model.NormalizeAddress(a)
		if err != nil {
			r.logger.Warn("provider returned invalid account", "provider", d.ID(), "account", a)
			continue
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		metrics.WalletConnects.WithLabelValues(d.ID(), "no_accounts").Inc()
		return nil, fmt.Errorf("%w: %s", ErrNoAccounts, d.ID())
	}
	metrics.WalletConnects.WithLabelValues(d.ID(), "ok").Inc()
	r.logger.Info("wallet connected", "provider", d.ID(), "address", addrs[0].String())
	return addrs, nil
}

func (r *Registry) awaitProvider(ctx context.Context, d Descriptor) (Provider, error) {
	var lastErr error
	for attempt := 1; attempt <= r.reprobeAttempt; attempt++ {
		p, err := d.Provider()
		if err == nil {
			return p, nil
		}
		lastErr = err
		if !errors.Is(err, ErrProviderUnavailable) || attempt == r.reprobeAttempt {
			break
		}
		timer := time.NewTimer(r.reprobeDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
