package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emperorhan/base-score/internal/config"
	"github.com/emperorhan/base-score/internal/tracing"
)

const serviceName = "base-score"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(config.Load, nil).ExecuteContext(ctx); err != nil {
		slog.Error("base-score exited with error", "error", err)
		os.Exit(1)
	}
}

// cli defers config loading until cobra has parsed the command line, so
// help and usage errors work without a valid environment.
type cli struct {
	load   func() (*config.Config, error)
	cfg    *config.Config
	logger *slog.Logger
}

func (c *cli) setup(*cobra.Command, []string) error {
	cfg, err := c.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)}))
		slog.SetDefault(c.logger)
	}
	return nil
}

// newRootCommand builds the command tree. A nil logger is built from the
// loaded config.
func newRootCommand(load func() (*config.Config, error), logger *slog.Logger) *cobra.Command {
	c := &cli{load: load, logger: logger}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c.cfg, c.logger)
		},
	}

	root := &cobra.Command{
		Use:               "basescore",
		Short:             "Base wallet activity scoring",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              serveCmd.RunE,
	}
	root.AddCommand(serveCmd)
	root.AddCommand(newCheckCommand(c))
	return root
}

func newCheckCommand(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check <address>",
		Short: "Fetch one wallet and print its score card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(c.cfg, c.logger)
			if err != nil {
				return err
			}
			return a.check(cmd.Context(), args[0], cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the wallet view as JSON")
	return cmd
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting base-score",
		"explorer_url", cfg.Explorer.URL,
		"rpc_url", cfg.RPC.URL,
		"chain_id", cfg.RPC.ChainID,
		"port", cfg.Server.Port,
		"tracing", cfg.Tracing.Enabled,
	)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, tracing.Config{
			ServiceName: serviceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    cfg.Tracing.Insecure,
			SampleRatio: cfg.Tracing.SampleRatio,
			ChainID:     cfg.RPC.ChainID,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("tracing shutdown error", "error", err)
			}
		}()
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.verifyChain(ctx, cfg.RPC.ChainID); err != nil {
		logger.Warn("rpc node check failed", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if w := a.watcher(cfg.Alert); w != nil {
		g.Go(func() error {
			return w.Run(gCtx)
		})
	}
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("base-score shut down gracefully")
	return nil
}
