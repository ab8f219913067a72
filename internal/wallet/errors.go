package wallet

import (
	"errors"
	"fmt"
)

var (
	ErrProviderUnavailable = errors.New("wallet provider unavailable")
	ErrConnectionRejected  = errors.New("wallet connection rejected")
	ErrChainSwitchFailed   = errors.New("chain switch failed")
	ErrNoAccounts          = errors.New("wallet returned no accounts")
	ErrUnknownProvider     = errors.New("unknown wallet provider")

	ErrWalletLimitReached = errors.New("connected wallet limit reached")
	ErrWalletExists       = errors.New("wallet already connected")
	ErrWalletNotFound     = errors.New("wallet not found")
)

// EIP-1193 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupportedMethod = 4200
	CodeDisconnected      = 4900
	CodeChainDisconnected = 4901
	CodeUnrecognizedChain = 4902
)

// ProviderError is an error object returned by an injected provider.
type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ProviderErrorCode extracts the EIP-1193 code from err, if any.
func ProviderErrorCode(err error) (int, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return 0, false
}
