package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxConnectedWallets caps the connected wallet collection.
const MaxConnectedWallets = 5

type ConnectedWallet struct {
	ID          uuid.UUID     `json:"id"`
	Address     WalletAddress `json:"address"`
	Balance     string        `json:"balance"`
	ChainID     int64         `json:"chainId"`
	ProviderID  string        `json:"providerId"`
	ConnectedAt time.Time     `json:"connectedAt"`
	RefreshedAt time.Time     `json:"refreshedAt,omitempty"`
}

func NewConnectedWallet(addr WalletAddress, providerID string, chainID int64, balance string) ConnectedWallet {
	if balance == "" {
		balance = ZeroEther
	}
	return ConnectedWallet{
		ID:          uuid.New(),
		Address:     addr,
		Balance:     balance,
		ChainID:     chainID,
		ProviderID:  providerID,
		ConnectedAt: time.Now().UTC(),
	}
}
