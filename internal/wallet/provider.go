// Package wallet discovers injected EIP-1193 wallet providers, connects
// accounts, negotiates the Base chain and keeps the connected wallet
// collection.
package wallet

import (
	"context"
	"encoding/json"
)

// Provider is the EIP-1193 request surface of an injected wallet.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// InjectedProvider is a provider object exposed by the host platform,
// with its boolean capability flags (isMetaMask, isCoinbaseWallet, ...).
type InjectedProvider interface {
	Provider
	Flag(name string) bool
}

// EventSource is implemented by providers that emit EIP-1193 events.
type EventSource interface {
	Subscribe(event string) (<-chan json.RawMessage, func())
}

// PlatformWalletAccess resolves injected provider objects by their global
// key ("ethereum", "okxwallet", ...). It replaces ambient global lookups.
type PlatformWalletAccess interface {
	Injected(key string) (InjectedProvider, bool)
}

func requestStrings(ctx context.Context, p Provider, method string, params ...any) ([]string, error) {
	raw, err := p.Request(ctx, method, params...)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func requestString(ctx context.Context, p Provider, method string, params ...any) (string, error) {
	raw, err := p.Request(ctx, method, params...)
	if err != nil {
		return "", err
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out, nil
}
