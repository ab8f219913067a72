package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid wallet address")

// WalletAddress is a lowercased 0x-prefixed 20-byte hex address.
type WalletAddress string

// NormalizeAddress validates raw and returns its canonical lowercase form.
func NormalizeAddress(raw string) (WalletAddress, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return "", fmt.Errorf("%w: %q missing 0x prefix", ErrInvalidAddress, raw)
	}
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	return WalletAddress("0x" + strings.ToLower(trimmed[2:])), nil
}

func (a WalletAddress) String() string {
	return string(a)
}

// Short renders the address as 0x1234...abcd for display.
func (a WalletAddress) Short() string {
	s := string(a)
	if len(s) < 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

// Equal compares two addresses case-insensitively.
func (a WalletAddress) Equal(other string) bool {
	return strings.EqualFold(string(a), strings.TrimSpace(other))
}

// PaddedHex returns the address without prefix, left-padded to 32 bytes.
func (a WalletAddress) PaddedHex() string {
	return fmt.Sprintf("%064s", strings.TrimPrefix(string(a), "0x"))
}
