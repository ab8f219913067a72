package wallet

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/emperorhan/base-score/internal/domain/model"
)

type handlerFunc func(params []any) (any, error)

type fakeProvider struct {
	mu       sync.Mutex
	flags    map[string]bool
	handlers map[string]handlerFunc
	calls    []string
	events   chan json.RawMessage
}

func newFakeProvider(flags ...string) *fakeProvider {
	p := &fakeProvider{flags: make(map[string]bool), handlers: make(map[string]handlerFunc)}
	for _, f := range flags {
		p.flags[f] = true
	}
	return p
}

func (p *fakeProvider) on(method string, h handlerFunc) *fakeProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = h
	return p
}

func (p *fakeProvider) returns(method string, v any) *fakeProvider {
	return p.on(method, func([]any) (any, error) { return v, nil })
}

func (p *fakeProvider) Flag(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flags[name]
}

func (p *fakeProvider) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	p.mu.Lock()
	p.calls = append(p.calls, method)
	h, ok := p.handlers[method]
	p.mu.Unlock()
	if !ok {
		return nil, &ProviderError{Code: CodeUnsupportedMethod, Message: "method not supported: " + method}
	}
	v, err := h(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (p *fakeProvider) Subscribe(event string) (<-chan json.RawMessage, func()) {
	return p.events, func() {}
}

func (p *fakeProvider) methodCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

type fakePlatform struct {
	mu        sync.Mutex
	providers map[string]InjectedProvider
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{providers: make(map[string]InjectedProvider)}
}

func (f *fakePlatform) inject(key string, p InjectedProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[key] = p
}

func (f *fakePlatform) Injected(key string) (InjectedProvider, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.providers[key]
	return p, ok
}

// stubDescriptor lets tests control Detect directly.
type stubDescriptor struct {
	id     string
	detect func(ctx context.Context) bool
}

func (d *stubDescriptor) ID() string                      { return d.id }
func (d *stubDescriptor) Name() string                    { return d.id }
func (d *stubDescriptor) Detect(ctx context.Context) bool { return d.detect(ctx) }
func (d *stubDescriptor) Provider() (Provider, error)     { return nil, ErrProviderUnavailable }

type fetcherFunc func(ctx context.Context, address string) (model.WalletActivitySummary, error)

func (f fetcherFunc) FetchActivity(ctx context.Context, address string) (model.WalletActivitySummary, error) {
	return f(ctx, address)
}

func summaryFetcher() fetcherFunc {
	return func(_ context.Context, address string) (model.WalletActivitySummary, error) {
		addr, err := model.NormalizeAddress(address)
		if err != nil {
			return model.WalletActivitySummary{}, err
		}
		s := model.EmptySummary(addr)
		s.TxVolume = 3
		return s, nil
	}
}
