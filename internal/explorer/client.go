// Package explorer is a client for the Basescan (Etherscan-compatible)
// account API.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/emperorhan/base-score/internal/circuitbreaker"
	"github.com/emperorhan/base-score/internal/metrics"
	"github.com/emperorhan/base-score/internal/ratelimit"
	"github.com/emperorhan/base-score/internal/retry"
	"github.com/emperorhan/base-score/internal/tracing"
)

const (
	DefaultBaseURL = "https://api.basescan.org/api"

	maxResponseBytes = 10 << 20
	breakerTarget    = "basescan"
)

var ErrMalformedResult = errors.New("malformed explorer result")

type Config struct {
	BaseURL string
	APIKey  string
	// ChainID is sent as the chainid parameter for multichain (v2) endpoints.
	ChainID       int64
	Timeout       time.Duration
	RetryAttempts int
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	chainID    int64
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.Breaker
	retry      retry.Policy
	logger     *slog.Logger
}

type Option func(*Client)

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithBreaker(b *circuitbreaker.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithRetrySleep replaces the backoff sleep, mainly for tests.
func WithRetrySleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.retry.Sleep = sleep
	}
}

func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		chainID:    cfg.ChainID,
		logger:     logger.With("component", "explorer"),
	}
	c.breaker = circuitbreaker.New(circuitbreaker.Config{
		OnStateChange: func(from, to circuitbreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(breakerTarget).Set(float64(to))
			c.logger.Warn("explorer circuit breaker state change", "from", from.String(), "to", to.String())
		},
	})
	c.retry = retry.Policy{
		MaxAttempts: cfg.RetryAttempts,
		OnRetry: func(attempt int, d retry.Decision, err error) {
			c.logger.Warn("explorer call failed; retrying",
				"attempt", attempt,
				"classification_reason", d.Reason,
				"error", err,
			)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// get issues one account-module call and returns its result payload.
// A non-"1" status with a list result ("No transactions found") is an empty
// list, not an error.
func (c *Client) get(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	ctx, span := tracing.Tracer("explorer").Start(ctx, "explorer."+action,
		otelTrace.WithAttributes(
			attribute.String("action", action),
			attribute.String("address", params.Get("address")),
		),
	)
	defer span.End()

	start := time.Now()
	var result json.RawMessage
	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		if err := c.breaker.Allow(); err != nil {
			return err
		}
		raw, err := c.doGet(ctx, action, params)
		c.breaker.Record(err, countsAgainstBreaker)
		if err != nil {
			if ctx.Err() == nil && retry.Classify(err).IsTransient() {
				metrics.ExplorerRetries.WithLabelValues(action).Inc()
			}
			return err
		}
		result = raw
		return nil
	})

	metrics.ExplorerCallLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
	metrics.ExplorerCallsTotal.WithLabelValues(action, ratelimit.ClassifyError(err)).Inc()
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	return result, nil
}

func (c *Client) doGet(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("module", "account")
	q.Set("action", action)
	if c.chainID > 0 {
		q.Set("chainid", strconv.FormatInt(c.chainID, 10))
	}
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResult, action, err)
	}
	if env.Status == "1" {
		return env.Result, nil
	}
	if isList(env.Result) {
		return json.RawMessage("[]"), nil
	}

	var detail string
	_ = json.Unmarshal(env.Result, &detail)
	return nil, &StatusError{
		Action:  action,
		Status:  env.Status,
		Message: env.Message,
		Detail:  detail,
	}
}

// countsAgainstBreaker excludes application-level status responses; the
// upstream answered, so it is healthy.
func countsAgainstBreaker(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func isList(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
