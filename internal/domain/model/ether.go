package model

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

const (
	etherDecimals   = 18
	displayDecimals = 4
)

// ZeroEther is what FormatEther yields for zero or unparseable input.
const ZeroEther = "0.0000"

// FormatEther converts a base-10 wei string to ether with four decimals.
func FormatEther(wei string) string {
	trimmed := strings.TrimSpace(wei)
	if trimmed == "" {
		return ZeroEther
	}
	v, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return ZeroEther
	}
	return FormatEtherBig(v)
}

// FormatEtherHex converts a 0x-prefixed wei quantity (eth_getBalance output).
func FormatEtherHex(hexWei string) string {
	v, err := hexutil.DecodeBig(strings.TrimSpace(hexWei))
	if err != nil {
		return ZeroEther
	}
	return FormatEtherBig(v)
}

func FormatEtherBig(wei *big.Int) string {
	if wei == nil || wei.Sign() < 0 {
		return ZeroEther
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).StringFixed(displayDecimals)
}
