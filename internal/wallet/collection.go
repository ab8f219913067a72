package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emperorhan/base-score/internal/domain/model"
)

// Collection is the bounded set of connected wallets.
type Collection struct {
	mu      sync.RWMutex
	wallets []model.ConnectedWallet
	limit   int
	nowFn   func() time.Time
}

func NewCollection() *Collection {
	return &Collection{limit: model.MaxConnectedWallets, nowFn: time.Now}
}

// Add inserts w. A full collection or an address already present
// (case-insensitive) is rejected and leaves the collection unchanged.
func (c *Collection) Add(w model.ConnectedWallet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.wallets {
		if existing.Address.Equal(w.Address.String()) {
			return fmt.Errorf("%w: %s", ErrWalletExists, w.Address)
		}
	}
	if len(c.wallets) >= c.limit {
		return fmt.Errorf("%w: %d", ErrWalletLimitReached, c.limit)
	}
	c.wallets = append(c.wallets, w)
	return nil
}

func (c *Collection) Remove(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.wallets {
		if w.ID == id {
			c.wallets = append(c.wallets[:i], c.wallets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWalletNotFound, id)
}

func (c *Collection) Get(id uuid.UUID) (model.ConnectedWallet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.wallets {
		if w.ID == id {
			return w, nil
		}
	}
	return model.ConnectedWallet{}, fmt.Errorf("%w: %s", ErrWalletNotFound, id)
}

// FindByAddress matches case-insensitively.
func (c *Collection) FindByAddress(addr string) (model.ConnectedWallet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.wallets {
		if w.Address.Equal(addr) {
			return w, true
		}
	}
	return model.ConnectedWallet{}, false
}

// List returns a copy in insertion order.
func (c *Collection) List() []model.ConnectedWallet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ConnectedWallet, len(c.wallets))
	copy(out, c.wallets)
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.wallets)
}

func (c *Collection) UpdateBalance(id uuid.UUID, balance string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.wallets {
		if c.wallets[i].ID == id {
			c.wallets[i].Balance = balance
			c.wallets[i].RefreshedAt = c.nowFn().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrWalletNotFound, id)
}

// RefreshBalance reads the wallet balance through p and stores it.
func (c *Collection) RefreshBalance(ctx context.Context, id uuid.UUID, p Provider) (string, error) {
	w, err := c.Get(id)
	if err != nil {
		return "", err
	}
	balance, err := FetchBalance(ctx, p, w.Address)
	if err != nil {
		return "", err
	}
	if err := c.UpdateBalance(id, balance); err != nil {
		return "", err
	}
	return balance, nil
}

// FetchBalance returns the latest balance of addr in ETH.
func FetchBalance(ctx context.Context, p Provider, addr model.WalletAddress) (string, error) {
	hexWei, err := requestString(ctx, p, "eth_getBalance", addr.String(), "latest")
	if err != nil {
		return "", fmt.Errorf("eth_getBalance %s: %w", addr, err)
	}
	return model.FormatEtherHex(hexWei), nil
}
