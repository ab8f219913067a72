package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/emperorhan/base-score/internal/activity"
	"github.com/emperorhan/base-score/internal/alert"
	"github.com/emperorhan/base-score/internal/chain/base/rpc"
	"github.com/emperorhan/base-score/internal/circuitbreaker"
	"github.com/emperorhan/base-score/internal/config"
	"github.com/emperorhan/base-score/internal/dashboard"
	"github.com/emperorhan/base-score/internal/explorer"
	"github.com/emperorhan/base-score/internal/health"
	"github.com/emperorhan/base-score/internal/leaderboard"
	"github.com/emperorhan/base-score/internal/metrics"
	"github.com/emperorhan/base-score/internal/ratelimit"
	"github.com/emperorhan/base-score/internal/server"
	"github.com/emperorhan/base-score/internal/tasks"
)

// app holds the wired services shared by serve and check.
type app struct {
	node        *rpc.Client
	fetcher     *activity.Fetcher
	health      *health.Tracker
	leaderboard *leaderboard.Service
	views       *dashboard.Builder
	catalog     []tasks.Category
	manifest    server.Manifest
	limiter     *server.RateLimitMiddleware
	logger      *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	explorerClient := explorer.NewClient(explorer.Config{
		BaseURL:       cfg.Explorer.URL,
		APIKey:        cfg.Explorer.APIKey,
		ChainID:       cfg.RPC.ChainID,
		Timeout:       cfg.Explorer.Timeout,
		RetryAttempts: cfg.Explorer.RetryAttempts,
	}, logger, explorer.WithLimiter(ratelimit.NewLimiter(cfg.Explorer.RPS, cfg.Explorer.Burst, "basescan")))

	rpcBreaker := circuitbreaker.New(circuitbreaker.Config{
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues("base_rpc").Set(float64(to))
			logger.Warn("rpc circuit breaker state change", "from", from.String(), "to", to.String())
		},
	})
	rpcClient := rpc.NewClient(cfg.RPC.URL, logger,
		rpc.WithTimeout(cfg.Explorer.Timeout),
		rpc.WithBreaker(rpcBreaker),
	)
	names := activity.NewNameResolver(rpcClient, activity.NameResolverConfig{
		CacheSize: cfg.Names.CacheSize,
		CacheTTL:  cfg.Names.CacheTTL,
	}, logger)

	tracker := health.NewTracker()
	fetcher := activity.NewFetcher(explorerClient, names, activity.Config{
		CallTimeout: cfg.Explorer.Timeout,
		TxPageSize:  cfg.Fetch.TxPageSize,
		RecentLimit: cfg.Fetch.RecentLimit,
	}, logger, activity.WithHealth(tracker), activity.WithNode(rpcClient))

	manifest := server.DefaultManifest(cfg.Manifest.HomeURL)
	if cfg.Manifest.File != "" {
		m, err := server.LoadManifest(cfg.Manifest.File, manifest)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		manifest = m
	}

	catalog := tasks.DefaultCatalog()
	return &app{
		node:        rpcClient,
		fetcher:     fetcher,
		health:      tracker,
		leaderboard: leaderboard.NewService(fetcher, leaderboard.Config{MaxAddresses: cfg.Leaderboard.MaxAddresses}, logger),
		views:       dashboard.NewBuilder(tasks.NewEvaluator(catalog, logger)),
		catalog:     catalog,
		manifest:    manifest,
		logger:      logger,
	}, nil
}

var errChainMismatch = errors.New("rpc node chain mismatch")

// verifyChain checks that the node serves the configured chain.
func (a *app) verifyChain(ctx context.Context, want int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	got, err := a.node.ChainID(ctx)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: want %d, got %d", errChainMismatch, want, got)
	}
	return nil
}

func (a *app) handler() http.Handler {
	if a.limiter == nil {
		a.limiter = server.NewRateLimitMiddleware(a.logger)
	}
	srv := server.New(a.fetcher, a.leaderboard, a.views, a.catalog, a.logger,
		server.WithManifest(a.manifest),
		server.WithHealth(a.health),
		server.WithRateLimit(a.limiter),
	)
	return srv.Handler()
}

// watcher returns nil when no alert channel is configured.
func (a *app) watcher(cfg config.AlertConfig) *alert.Watcher {
	if !cfg.Enabled() {
		return nil
	}
	var channels []alert.Alerter
	if cfg.SlackWebhookURL != "" {
		channels = append(channels, alert.NewSlackAlerter(cfg.SlackWebhookURL))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, alert.NewWebhookAlerter(cfg.WebhookURL))
	}
	multi := alert.NewMultiAlerter(cfg.Cooldown, a.logger, channels...)
	return alert.NewWatcher(a.health, multi, "basescan", cfg.CheckInterval, a.logger)
}

func (a *app) close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
}

// check fetches one wallet and prints its score card.
func (a *app) check(ctx context.Context, address string, w io.Writer, asJSON bool) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	summary, err := a.fetcher.FetchActivity(ctx, address)
	if err != nil {
		return err
	}
	view := a.views.Build(summary)
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	renderView(w, view)
	return nil
}

func renderView(w io.Writer, v dashboard.View) {
	bold := color.New(color.Bold).SprintFunc()
	name := v.Summary.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "%s %s (%s)\n", bold("Wallet"), v.Summary.Address.String(), name)
	fmt.Fprintf(w, "%s %s\n", bold("Score"), scoreColor(v.Rounded).Sprintf("%d / 100", v.Rounded))
	if v.Summary.IsDegraded() {
		color.New(color.FgYellow).Fprintf(w, "partial data: %s failed\n", strings.Join(v.Summary.Degraded, ", "))
	}

	stats := tablewriter.NewWriter(w)
	stats.SetHeader([]string{"Metric", "Value", "Points"})
	stats.SetAlignment(tablewriter.ALIGN_LEFT)
	stats.Append([]string{"Transactions", strconv.Itoa(v.Summary.TxVolume), points(v.Score.BaseScore)})
	stats.Append([]string{"NFT transfers", strconv.Itoa(v.Summary.NFTActivity), points(v.Score.NFTBonus)})
	stats.Append([]string{"New contracts", strconv.Itoa(v.Summary.NewContracts), points(v.Score.ContractBonus)})
	stats.Append([]string{"Recent swaps", strconv.Itoa(v.Summary.SwapCount()), points(v.Score.SwapBonus)})
	stats.Append([]string{"Base name", name, points(v.Score.NameBonus)})
	stats.Append([]string{"ETH balance", v.Summary.ETHBalance, ""})
	stats.Render()

	progress := tablewriter.NewWriter(w)
	progress.SetHeader([]string{"Category", "Done"})
	progress.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range v.Tasks.Categories {
		progress.Append([]string{c.Label, fmt.Sprintf("%d/%d", c.Completed, c.Total)})
	}
	progress.SetFooter([]string{"Total", fmt.Sprintf("%d/%d", v.Tasks.Completed, v.Tasks.Total)})
	progress.Render()

	if len(v.Feed) == 0 {
		return
	}
	feed := tablewriter.NewWriter(w)
	feed.SetHeader([]string{"Type", "Description", "Value", "Protocol"})
	feed.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, item := range v.Feed {
		protocol := ""
		if item.Protocol != nil {
			protocol = item.Protocol.Name
		}
		feed.Append([]string{item.Type.Label(), item.Description, item.Value, protocol})
	}
	feed.Render()
}

func scoreColor(rounded int) *color.Color {
	switch {
	case rounded >= 70:
		return color.New(color.FgGreen, color.Bold)
	case rounded >= 30:
		return color.New(color.FgYellow, color.Bold)
	}
	return color.New(color.FgRed, color.Bold)
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
