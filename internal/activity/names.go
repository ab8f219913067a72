package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/emperorhan/base-score/internal/cache"
	"github.com/emperorhan/base-score/internal/chain/base/rpc"
	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/metrics"
)

// BaseL2Resolver is the Basenames L2 resolver on Base mainnet.
const BaseL2Resolver = "0xc6d566a56a1aff6508b41f6c90ff131615583bcd"

const (
	nameSelector  = "0x691f3431" // name(bytes32)
	reverseSuffix = "80002105.reverse"
	heuristicTLD  = ".base.eth"
)

var ErrAddressResolution = errors.New("address name resolution failed")

// nameRegistryContracts are Basenames registrar and resolver deployments.
// Any interaction with them marks the wallet as a likely name holder.
var nameRegistryContracts = map[string]struct{}{
	"0x4ccb0bb02fcaba27e82a56646e81d8c5bc4119a5": {},
	"0xc6d566a56a1aff6508b41f6c90ff131615583bcd": {},
	"0x03c4738ee98ae44591e1a4a4f3cab6641d95dd9a": {},
	"0x91eefd53e3e7c2e33a75dcaadd0c32c2f078e7e4": {},
}

// Caller is the read-only contract call the resolver needs.
type Caller interface {
	Call(ctx context.Context, msg rpc.CallMsg, block string) (string, error)
}

type NameResolver struct {
	caller   Caller
	resolver string
	timeout  time.Duration
	cache    *cache.LRU[model.WalletAddress, string]
	logger   *slog.Logger
}

type NameResolverConfig struct {
	Resolver  string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// NewNameResolver builds a resolver. A nil caller skips the on-chain lookup
// and relies on the history heuristic alone.
func NewNameResolver(caller Caller, cfg NameResolverConfig, logger *slog.Logger) *NameResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Resolver == "" {
		cfg.Resolver = BaseL2Resolver
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1024
	}
	return &NameResolver{
		caller:   caller,
		resolver: strings.ToLower(cfg.Resolver),
		timeout:  cfg.Timeout,
		cache:    cache.NewLRU[model.WalletAddress, string](cfg.CacheSize, cfg.CacheTTL),
		logger:   logger.With("component", "name_resolver"),
	}
}

// Cached returns a previously resolved result for addr, which may be "".
func (r *NameResolver) Cached(addr model.WalletAddress) (string, bool) {
	name, ok := r.cache.Get(addr)
	if ok {
		metrics.NameLookups.WithLabelValues("cache").Inc()
	}
	return name, ok
}

// Lookup asks the resolver contract for the primary name of addr.
// It returns "" with a wrapped ErrAddressResolution on failure.
func (r *NameResolver) Lookup(ctx context.Context, addr model.WalletAddress) (string, error) {
	if r.caller == nil {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	node := ReverseNode(addr)
	out, err := r.caller.Call(ctx, rpc.CallMsg{
		To:   r.resolver,
		Data: nameSelector + strings.TrimPrefix(node.Hex(), "0x"),
	}, rpc.BlockLatest)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrAddressResolution, addr, err)
	}
	name, err := decodeABIString(out)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrAddressResolution, addr, err)
	}
	return name, nil
}

// Settle picks the final name from the on-chain lookup result and the
// transaction history. The result is cached only when cacheable is set, so
// a failed lookup or an incomplete history is retried on the next fetch.
func (r *NameResolver) Settle(addr model.WalletAddress, onchain string, history []model.RawTransaction, cacheable bool) string {
	name := onchain
	source := "resolver"
	if name == "" {
		name = HeuristicName(addr, history)
		source = "heuristic"
	}
	if name == "" {
		source = "none"
	}
	metrics.NameLookups.WithLabelValues(source).Inc()
	if cacheable {
		r.cache.Put(addr, name)
	}
	return name
}

// HeuristicName returns a placeholder basename when history shows an
// interaction with a name registry contract.
func HeuristicName(addr model.WalletAddress, history []model.RawTransaction) string {
	for _, tx := range history {
		if _, ok := nameRegistryContracts[strings.ToLower(tx.To)]; ok {
			s := addr.String()
			if len(s) > 6 {
				s = s[:6]
			}
			return s + heuristicTLD
		}
	}
	return ""
}

// ReverseNode is the ENS namehash of "<addr>.80002105.reverse", the Base
// reverse record for addr.
func ReverseNode(addr model.WalletAddress) common.Hash {
	label := strings.TrimPrefix(addr.String(), "0x")
	return namehash(label + "." + reverseSuffix)
}

func namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node.Bytes(), labelHash)
	}
	return node
}

var stringArgs = func() abi.Arguments {
	t, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: t}}
}()

func decodeABIString(out string) (string, error) {
	if out == "" || out == "0x" {
		return "", nil
	}
	data, err := hexutil.Decode(out)
	if err != nil {
		return "", fmt.Errorf("decode hex: %w", err)
	}
	values, err := stringArgs.Unpack(data)
	if err != nil {
		return "", fmt.Errorf("unpack string: %w", err)
	}
	if len(values) == 0 {
		return "", nil
	}
	s, _ := values[0].(string)
	return strings.TrimRight(s, "\x00"), nil
}
