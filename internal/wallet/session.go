package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/emperorhan/base-score/internal/activity"
	"github.com/emperorhan/base-score/internal/domain/model"
)

// Loader is implemented by *activity.Tracker.
type Loader interface {
	Load(ctx context.Context, address string) (model.WalletActivitySummary, error)
	Current() (model.WalletActivitySummary, bool)
	Reset()
}

// ConnectResult is the outcome of a connect flow. ChainWarning is set when
// the wallet stayed on another chain; the connect still succeeded.
type ConnectResult struct {
	Wallet       model.ConnectedWallet
	Summary      model.WalletActivitySummary
	ChainWarning error
}

// Session drives connect, chain negotiation and summary loading for the
// active wallet.
type Session struct {
	registry   *Registry
	negotiator *Negotiator
	loader     Loader
	wallets    *Collection
	target     model.ChainDescriptor
	logger     *slog.Logger
}

func NewSession(
	registry *Registry,
	negotiator *Negotiator,
	loader Loader,
	wallets *Collection,
	target model.ChainDescriptor,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		registry:   registry,
		negotiator: negotiator,
		loader:     loader,
		wallets:    wallets,
		target:     target,
		logger:     logger.With("component", "wallet_session"),
	}
}

// Active returns the address whose summary is being shown.
func (s *Session) Active() (model.WalletAddress, bool) {
	summary, ok := s.loader.Current()
	return summary.Address, ok
}

// Resume loads the first account a detected provider already authorized
// (eth_accounts), without prompting.
func (s *Session) Resume(ctx context.Context) (model.WalletActivitySummary, bool, error) {
	for _, d := range s.registry.ListAvailable(ctx) {
		p, err := d.Provider()
		if err != nil {
			continue
		}
		accounts, err := requestStrings(ctx, p, "eth_accounts")
		if err != nil {
			s.logger.Debug("eth_accounts failed", "provider", d.ID(), "error", err)
			continue
		}
		if len(accounts) == 0 {
			continue
		}
		summary, err := s.load(ctx, accounts[0])
		if err != nil {
			return model.WalletActivitySummary{}, false, err
		}
		return summary, true, nil
	}
	return model.WalletActivitySummary{}, false, nil
}

// Connect runs the full flow for provider id: request accounts, negotiate
// the chain, record the wallet and load its summary.
func (s *Session) Connect(ctx context.Context, providerID string) (ConnectResult, error) {
	d, err := s.registry.Lookup(providerID)
	if err != nil {
		return ConnectResult{}, err
	}
	accounts, err := s.registry.Connect(ctx, d)
	if err != nil {
		return ConnectResult{}, err
	}
	p, err := d.Provider()
	if err != nil {
		return ConnectResult{}, err
	}
	addr := accounts[0]

	var result ConnectResult
	chainID := s.target.ChainID
	if err := s.negotiator.EnsureChain(ctx, p, s.target); err != nil {
		s.logger.Warn("chain negotiation failed, continuing on current chain",
			"provider", d.ID(),
			"address", addr.String(),
			"error", err,
		)
		result.ChainWarning = err
		if current, cerr := s.negotiator.CurrentChain(ctx, p); cerr == nil {
			chainID = current
		}
	}

	balance, err := FetchBalance(ctx, p, addr)
	if err != nil {
		s.logger.Warn("balance read failed", "address", addr.String(), "error", err)
		balance = model.ZeroEther
	}

	w, err := s.record(addr, d.ID(), chainID, balance)
	if err != nil {
		return ConnectResult{}, err
	}
	result.Wallet = w

	summary, err := s.load(ctx, addr.String())
	if err != nil {
		return result, err
	}
	result.Summary = summary
	return result, nil
}

func (s *Session) record(addr model.WalletAddress, providerID string, chainID int64, balance string) (model.ConnectedWallet, error) {
	if existing, ok := s.wallets.FindByAddress(addr.String()); ok {
		if err := s.wallets.UpdateBalance(existing.ID, balance); err != nil {
			return model.ConnectedWallet{}, err
		}
		return s.wallets.Get(existing.ID)
	}
	w := model.NewConnectedWallet(addr, providerID, chainID, balance)
	if err := s.wallets.Add(w); err != nil {
		return model.ConnectedWallet{}, err
	}
	return w, nil
}

// HandleAccountsChanged reloads for the new first account, or clears the
// session when the wallet disconnected every account.
func (s *Session) HandleAccountsChanged(ctx context.Context, accounts []string) (model.WalletActivitySummary, error) {
	if len(accounts) == 0 {
		s.loader.Reset()
		s.logger.Info("wallet disconnected all accounts")
		return model.WalletActivitySummary{}, nil
	}
	return s.load(ctx, accounts[0])
}

// Watch reloads on every accountsChanged event until ctx ends. Reloads run
// concurrently; the loader keeps only the newest result.
func (s *Session) Watch(ctx context.Context, src EventSource) error {
	events, unsubscribe := src.Subscribe("accountsChanged")
	defer unsubscribe()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-events:
			if !ok {
				return nil
			}
			var accounts []string
			if err := json.Unmarshal(raw, &accounts); err != nil {
				s.logger.Warn("malformed accountsChanged payload", "error", err)
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.HandleAccountsChanged(ctx, accounts)
				if err != nil && !errors.Is(err, activity.ErrSuperseded) && !errors.Is(err, context.Canceled) {
					s.logger.Warn("reload after account change failed", "error", err)
				}
			}()
		}
	}
}

func (s *Session) load(ctx context.Context, address string) (model.WalletActivitySummary, error) {
	summary, err := s.loader.Load(ctx, address)
	if err != nil {
		return model.WalletActivitySummary{}, fmt.Errorf("load %s: %w", address, err)
	}
	return summary, nil
}
