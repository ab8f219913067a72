// Package activity turns explorer data for one wallet into a
// WalletActivitySummary.
package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/emperorhan/base-score/internal/chain/base/rpc"
	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/explorer"
	"github.com/emperorhan/base-score/internal/metrics"
	"github.com/emperorhan/base-score/internal/tracing"
)

// Explorer sub-call names, as recorded in WalletActivitySummary.Degraded.
const (
	CallTxList   = "txlist"
	CallNFT      = "tokennfttx"
	CallInternal = "txlistinternal"
	CallBalance  = "balance"
)

const (
	defaultCallTimeout = 10 * time.Second
	defaultTxPageSize  = 100
	defaultRecentLimit = 20
)

var ErrFetchDegraded = errors.New("activity fetch degraded")

// Explorer is the subset of the explorer client the fetcher calls.
type Explorer interface {
	TransactionList(ctx context.Context, address string, page, offset int) ([]explorer.Transaction, error)
	NFTTransfers(ctx context.Context, address string, offset int) ([]explorer.TokenTransfer, error)
	InternalTransactions(ctx context.Context, address string, offset int) ([]explorer.InternalTransaction, error)
	Balance(ctx context.Context, address string) (string, error)
}

type Config struct {
	CallTimeout time.Duration
	TxPageSize  int
	RecentLimit int
}

// Node is the Base node surface used to back up explorer reads. Balance
// is read from the node when the explorer call fails, and the account nonce
// lifts txVolume when txlist stops at its page size.
type Node interface {
	GetBalance(ctx context.Context, address, block string) (string, error)
	GetTransactionCount(ctx context.Context, address, block string) (int64, error)
}

// HealthRecorder receives the outcome of every fetch.
type HealthRecorder interface {
	RecordFetch(latency time.Duration, degraded []string)
}

type Fetcher struct {
	explorer Explorer
	names    *NameResolver
	node     Node
	health   HealthRecorder
	cfg      Config
	logger   *slog.Logger
	nowFn    func() time.Time
}

type Option func(*Fetcher)

func WithNode(n Node) Option {
	return func(f *Fetcher) { f.node = n }
}

func WithHealth(h HealthRecorder) Option {
	return func(f *Fetcher) { f.health = h }
}

// NewFetcher wires the explorer and an optional name resolver.
func NewFetcher(exp Explorer, names *NameResolver, cfg Config, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.TxPageSize <= 0 {
		cfg.TxPageSize = defaultTxPageSize
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = defaultRecentLimit
	}
	f := &Fetcher{
		explorer: exp,
		names:    names,
		cfg:      cfg,
		logger:   logger.With("component", "activity_fetcher"),
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchActivity runs the four explorer calls concurrently and reduces them
// to a summary. Failed calls contribute zero and are listed in Degraded.
// It errors on a malformed address, or with ctx.Err() when the caller's
// context ends first; an abandoned fetch is not reported as degraded.
func (f *Fetcher) FetchActivity(ctx context.Context, rawAddress string) (model.WalletActivitySummary, error) {
	addr, err := model.NormalizeAddress(rawAddress)
	if err != nil {
		return model.WalletActivitySummary{}, err
	}

	ctx, span := tracing.Tracer("activity").Start(ctx, "activity.fetch",
		otelTrace.WithAttributes(attribute.String("address", addr.String())),
	)
	defer span.End()
	start := time.Now()
	log := f.logger.With("address", addr.String())

	var (
		txs       []explorer.Transaction
		nfts      []explorer.TokenTransfer
		internals []explorer.InternalTransaction
		wei       string
		nodeWei   string
		nonce     int64
		hasNonce  bool
		onchain   string
		lookupErr error
		cached    string
		hasCached bool

		mu       sync.Mutex
		degraded []string
	)
	markDegraded := func(call string, err error) {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		degraded = append(degraded, call)
		mu.Unlock()
		metrics.FetchDegradedCalls.WithLabelValues(call).Inc()
		log.Warn("explorer call degraded", "call", call, "error", err)
	}

	if f.names != nil {
		cached, hasCached = f.names.Cached(addr)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gCtx, f.cfg.CallTimeout)
		defer cancel()
		res, err := f.explorer.TransactionList(callCtx, addr.String(), 1, f.cfg.TxPageSize)
		if err != nil {
			markDegraded(CallTxList, err)
			return nil
		}
		txs = res
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gCtx, f.cfg.CallTimeout)
		defer cancel()
		res, err := f.explorer.NFTTransfers(callCtx, addr.String(), f.cfg.TxPageSize)
		if err != nil {
			markDegraded(CallNFT, err)
			return nil
		}
		nfts = res
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gCtx, f.cfg.CallTimeout)
		defer cancel()
		res, err := f.explorer.InternalTransactions(callCtx, addr.String(), f.cfg.TxPageSize)
		if err != nil {
			markDegraded(CallInternal, err)
			return nil
		}
		internals = res
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := context.WithTimeout(gCtx, f.cfg.CallTimeout)
		defer cancel()
		res, err := f.explorer.Balance(callCtx, addr.String())
		if err == nil {
			wei = res
			return nil
		}
		if hexWei, nodeErr := f.nodeBalance(gCtx, addr); nodeErr == nil {
			log.Warn("explorer balance failed; using node balance", "error", err)
			nodeWei = hexWei
			return nil
		}
		markDegraded(CallBalance, err)
		return nil
	})
	if f.node != nil {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gCtx, f.cfg.CallTimeout)
			defer cancel()
			n, err := f.node.GetTransactionCount(callCtx, addr.String(), rpc.BlockLatest)
			if err != nil {
				log.Debug("nonce lookup failed", "error", err)
				return nil
			}
			nonce, hasNonce = n, true
			return nil
		})
	}
	if f.names != nil && !hasCached {
		// Lookup bounds itself with the resolver timeout.
		g.Go(func() error {
			name, err := f.names.Lookup(gCtx, addr)
			if err != nil {
				log.Debug("name lookup failed", "error", err)
				lookupErr = err
				return nil
			}
			onchain = name
			return nil
		})
	}
	// Sub-calls never return errors; Wait is the fan-in barrier.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Debug("activity fetch abandoned", "error", err)
		tracing.Fail(span, err)
		return model.WalletActivitySummary{}, err
	}

	summary := f.reduce(addr, txs, nfts, internals, wei)
	sort.Strings(degraded)
	if len(degraded) > 0 {
		summary.Degraded = degraded
	}
	if nodeWei != "" {
		summary.ETHBalance = model.FormatEtherHex(nodeWei)
	}
	txlistOK := !slices.Contains(degraded, CallTxList)
	if hasNonce && txlistOK && int(nonce) > summary.TxVolume {
		summary.TxVolume = int(nonce)
	}

	switch {
	case hasCached:
		summary.Name = cached
	case f.names != nil:
		cacheable := lookupErr == nil && (onchain != "" || txlistOK)
		summary.Name = f.names.Settle(addr, onchain, rawHistory(txs), cacheable)
	}

	outcome := "complete"
	if summary.IsDegraded() {
		outcome = "degraded"
		span.SetAttributes(attribute.StringSlice("degraded", summary.Degraded))
		tracing.Fail(span, DegradedError(summary))
	}
	elapsed := time.Since(start)
	metrics.FetchesTotal.WithLabelValues(outcome).Inc()
	metrics.FetchLatency.Observe(elapsed.Seconds())
	if f.health != nil {
		f.health.RecordFetch(elapsed, summary.Degraded)
	}
	log.Debug("activity fetched",
		"tx_volume", summary.TxVolume,
		"nft_activity", summary.NFTActivity,
		"new_contracts", summary.NewContracts,
		"outcome", outcome,
		"duration_ms", elapsed.Milliseconds(),
	)
	return summary, nil
}

func (f *Fetcher) reduce(
	addr model.WalletAddress,
	txs []explorer.Transaction,
	nfts []explorer.TokenTransfer,
	internals []explorer.InternalTransaction,
	wei string,
) model.WalletActivitySummary {
	summary := model.EmptySummary(addr)
	summary.FetchedAt = f.nowFn().UTC()
	summary.TxVolume = len(txs)
	summary.NFTActivity = len(nfts)

	recent := txs
	if len(recent) > f.cfg.RecentLimit {
		recent = recent[:f.cfg.RecentLimit]
	}
	for _, tx := range recent {
		summary.RecentTransactions = append(summary.RecentTransactions, model.Classify(tx.Raw()))
	}

	created := 0
	for _, itx := range internals {
		if itx.IsContractCreation() {
			created++
		}
	}
	summary.NewContracts = created + summary.DeployCount()

	if wei != "" {
		summary.ETHBalance = model.FormatEther(wei)
	}
	return summary
}

func (f *Fetcher) nodeBalance(ctx context.Context, addr model.WalletAddress) (string, error) {
	if f.node == nil {
		return "", errors.New("no node configured")
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.CallTimeout)
	defer cancel()
	return f.node.GetBalance(ctx, addr.String(), rpc.BlockLatest)
}

func rawHistory(txs []explorer.Transaction) []model.RawTransaction {
	out := make([]model.RawTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.Raw())
	}
	return out
}

// DegradedError reports which explorer calls were zeroed in s, or nil.
func DegradedError(s model.WalletActivitySummary) error {
	if !s.IsDegraded() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFetchDegraded, strings.Join(s.Degraded, ","))
}
