package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/emperorhan/base-score/internal/domain/model"
)

type Negotiator struct {
	logger *slog.Logger
}

func NewNegotiator(logger *slog.Logger) *Negotiator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Negotiator{logger: logger.With("component", "chain_negotiator")}
}

// CurrentChain returns the provider's active chain id.
func (n *Negotiator) CurrentChain(ctx context.Context, p Provider) (int64, error) {
	hexID, err := requestString(ctx, p, "eth_chainId")
	if err != nil {
		return 0, fmt.Errorf("eth_chainId: %w", err)
	}
	id, err := hexutil.DecodeUint64(hexID)
	if err != nil {
		return 0, fmt.Errorf("decode chain id %q: %w", hexID, err)
	}
	return int64(id), nil
}

// EnsureChain switches p to target. An unknown chain (4902) is added and the
// switch retried once. Every failure wraps ErrChainSwitchFailed.
func (n *Negotiator) EnsureChain(ctx context.Context, p Provider, target model.ChainDescriptor) error {
	current, err := n.CurrentChain(ctx, p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChainSwitchFailed, err)
	}
	if current == target.ChainID {
		return nil
	}

	log := n.logger.With("from_chain_id", current, "to_chain_id", target.ChainID)
	err = n.switchChain(ctx, p, target)
	if err == nil {
		log.Info("wallet switched chain")
		return nil
	}
	if code, ok := ProviderErrorCode(err); !ok || code != CodeUnrecognizedChain {
		return fmt.Errorf("%w: switch to %s: %w", ErrChainSwitchFailed, target.HexChainID(), err)
	}

	log.Info("wallet does not know chain, adding it")
	if _, err := p.Request(ctx, "wallet_addEthereumChain", target.AddChainParams()); err != nil {
		return fmt.Errorf("%w: add %s: %w", ErrChainSwitchFailed, target.HexChainID(), err)
	}
	if err := n.switchChain(ctx, p, target); err != nil {
		return fmt.Errorf("%w: switch to %s after add: %w", ErrChainSwitchFailed, target.HexChainID(), err)
	}
	log.Info("wallet switched chain after add")
	return nil
}

func (n *Negotiator) switchChain(ctx context.Context, p Provider, target model.ChainDescriptor) error {
	_, err := p.Request(ctx, "wallet_switchEthereumChain", map[string]string{"chainId": target.HexChainID()})
	return err
}
