package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "basescore"

var (
	// Explorer
	ExplorerCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "explorer",
		Name:      "calls_total",
		Help:      "Total explorer API calls by action and status",
	}, []string{"action", "status"})

	ExplorerCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "explorer",
		Name:      "call_duration_seconds",
		Help:      "Explorer API call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"action"})

	ExplorerRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "explorer",
		Name:      "rate_limit_waits_total",
		Help:      "Times an outbound call waited for a rate limit token",
	}, []string{"target"})

	ExplorerRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "explorer",
		Name:      "retries_total",
		Help:      "Transient explorer call failures",
	}, []string{"action"})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "explorer",
		Name:      "circuit_breaker_state",
		Help:      "Breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"target"})

	// RPC
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total Base JSON-RPC calls by method and status",
	}, []string{"method", "status"})

	// Fetcher
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "fetches_total",
		Help:      "Total activity fetches by outcome (complete, degraded)",
	}, []string{"outcome"})

	FetchDegradedCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "degraded_calls_total",
		Help:      "Explorer sub-calls that failed and were zeroed",
	}, []string{"call"})

	FetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "fetch_duration_seconds",
		Help:      "End-to-end activity fetch duration",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	StaleResultsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fetcher",
		Name:      "stale_results_discarded_total",
		Help:      "Fetch results dropped because a newer request superseded them",
	})

	// Names
	NameLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "names",
		Name:      "lookups_total",
		Help:      "Name resolutions by source (resolver, heuristic, cache, none)",
	}, []string{"source"})

	// Scoring
	ScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "score",
		Name:      "total",
		Help:      "Distribution of computed total scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	TaskPredicateErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "predicate_errors_total",
		Help:      "Task predicates that failed or panicked",
	}, []string{"task_id"})

	// Wallets
	WalletConnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "wallet",
		Name:      "connects_total",
		Help:      "Wallet connect attempts by provider and outcome",
	}, []string{"provider", "outcome"})

	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})

	HTTPRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-IP limiter",
	})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Alerts delivered by channel and type",
	}, []string{"channel", "type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Alerts suppressed by the cooldown window",
	}, []string{"channel", "type"})
)
