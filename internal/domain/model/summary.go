package model

import "time"

// WalletActivitySummary is rebuilt from scratch on every fetch.
type WalletActivitySummary struct {
	Address            WalletAddress           `json:"address"`
	TxVolume           int                     `json:"txVolume"`
	NFTActivity        int                     `json:"nftActivity"`
	NewContracts       int                     `json:"newContracts"`
	ETHBalance         string                  `json:"ethBalance"`
	RecentTransactions []ClassifiedTransaction `json:"recentTransactions"`
	Name               string                  `json:"name,omitempty"`
	// Degraded lists the explorer calls that failed and were zeroed.
	Degraded  []string  `json:"degraded,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// EmptySummary is the zero-activity summary for addr.
func EmptySummary(addr WalletAddress) WalletActivitySummary {
	return WalletActivitySummary{
		Address:            addr,
		ETHBalance:         ZeroEther,
		RecentTransactions: []ClassifiedTransaction{},
	}
}

func (s WalletActivitySummary) HasName() bool {
	return s.Name != ""
}

func (s WalletActivitySummary) IsDegraded() bool {
	return len(s.Degraded) > 0
}

// SwapCount counts swap-classified transactions in the recent set.
func (s WalletActivitySummary) SwapCount() int {
	return s.countCategory(TxCategorySwap)
}

// DeployCount counts contract creations in the recent set.
func (s WalletActivitySummary) DeployCount() int {
	return s.countCategory(TxCategoryContractDeploy)
}

func (s WalletActivitySummary) countCategory(c TxCategory) int {
	n := 0
	for _, tx := range s.RecentTransactions {
		if tx.Category == c {
			n++
		}
	}
	return n
}
