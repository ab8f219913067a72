package model

import "time"

type TxCategory string

const (
	TxCategoryTransfer       TxCategory = "transfer"
	TxCategoryNFT            TxCategory = "nft"
	TxCategorySwap           TxCategory = "swap"
	TxCategoryContractDeploy TxCategory = "contract_deploy"
)

func (c TxCategory) String() string {
	return string(c)
}

// Label is the human-readable name used in the activity feed.
func (c TxCategory) Label() string {
	switch c {
	case TxCategoryNFT:
		return "NFT"
	case TxCategorySwap:
		return "Swap"
	case TxCategoryContractDeploy:
		return "Contract Deploy"
	default:
		return "Transfer"
	}
}

// RawTransaction is the explorer's view of a normal transaction, reduced to
// the fields classification needs. To is empty for contract creations.
type RawTransaction struct {
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Value     string    `json:"value"`
	Input     string    `json:"input,omitempty"`
}

type ClassifiedTransaction struct {
	Hash      string     `json:"hash"`
	Timestamp time.Time  `json:"timestamp"`
	To        string     `json:"to,omitempty"`
	Value     string     `json:"value"`
	Category  TxCategory `json:"type"`
	Protocol  *Protocol  `json:"protocol,omitempty"`
}
