// Package score reduces a wallet activity summary to the bounded Base Score.
package score

import (
	"math"

	"github.com/emperorhan/base-score/internal/domain/model"
)

const (
	MaxTotal = 100.0

	baseCap     = 35.0
	nftCap      = 25.0
	contractCap = 20.0
	swapCap     = 10.0
	nameBonus   = 10.0
	perTx       = 1.5
	perNFT      = 3.0
	perContract = 10.0
	perSwap     = 2.0
)

// Inputs are the counts the score depends on.
type Inputs struct {
	TxVolume     int
	NFTActivity  int
	NewContracts int
	SwapCount    int
	HasName      bool
}

func InputsFromSummary(s model.WalletActivitySummary) Inputs {
	return Inputs{
		TxVolume:     s.TxVolume,
		NFTActivity:  s.NFTActivity,
		NewContracts: s.NewContracts,
		SwapCount:    s.SwapCount(),
		HasName:      s.HasName(),
	}
}

type Breakdown struct {
	BaseScore     float64 `json:"baseScore"`
	NFTBonus      float64 `json:"nftBonus"`
	ContractBonus float64 `json:"contractBonus"`
	SwapBonus     float64 `json:"swapBonus"`
	NameBonus     float64 `json:"nameBonus"`
	Total         float64 `json:"total"`
}

// Rounded is the total rounded half away from zero, as shown on the leaderboard.
func (b Breakdown) Rounded() int {
	return int(math.Round(b.Total))
}

// Compute applies the per-component caps, then the total cap.
func Compute(in Inputs) Breakdown {
	b := Breakdown{
		BaseScore:     capped(in.TxVolume, perTx, baseCap),
		NFTBonus:      capped(in.NFTActivity, perNFT, nftCap),
		ContractBonus: capped(in.NewContracts, perContract, contractCap),
		SwapBonus:     capped(in.SwapCount, perSwap, swapCap),
	}
	if in.HasName {
		b.NameBonus = nameBonus
	}
	sum := b.BaseScore + b.NFTBonus + b.ContractBonus + b.SwapBonus + b.NameBonus
	b.Total = math.Min(MaxTotal, sum)
	return b
}

// ComputeScore scores a summary.
func ComputeScore(s model.WalletActivitySummary) Breakdown {
	return Compute(InputsFromSummary(s))
}

func capped(count int, weight, limit float64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(limit, float64(count)*weight)
}
