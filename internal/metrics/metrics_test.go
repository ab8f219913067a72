package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_AllVariablesNonNil(t *testing.T) {
	t.Parallel()

	vars := []struct {
		name string
		val  any
	}{
		{"ExplorerCallsTotal", ExplorerCallsTotal},
		{"ExplorerCallLatency", ExplorerCallLatency},
		{"ExplorerRateLimitWaits", ExplorerRateLimitWaits},
		{"ExplorerRetries", ExplorerRetries},
		{"CircuitBreakerState", CircuitBreakerState},
		{"RPCCallsTotal", RPCCallsTotal},
		{"FetchesTotal", FetchesTotal},
		{"FetchDegradedCalls", FetchDegradedCalls},
		{"FetchLatency", FetchLatency},
		{"StaleResultsDiscarded", StaleResultsDiscarded},
		{"NameLookups", NameLookups},
		{"ScoreDistribution", ScoreDistribution},
		{"TaskPredicateErrors", TaskPredicateErrors},
		{"WalletConnects", WalletConnects},
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRateLimited", HTTPRateLimited},
		{"AlertsSentTotal", AlertsSentTotal},
		{"AlertsCooldownSkipped", AlertsCooldownSkipped},
	}

	for _, v := range vars {
		t.Run(v.name, func(t *testing.T) {
			assert.NotNil(t, v.val, "%s should not be nil", v.name)
		})
	}
}

func TestMetrics_LabelsAccepted(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		ExplorerCallsTotal.WithLabelValues("txlist", "ok").Inc()
		FetchDegradedCalls.WithLabelValues("balance").Inc()
		TaskPredicateErrors.WithLabelValues("42").Inc()
		HTTPRequestsTotal.WithLabelValues("/api/leaderboard", "200").Inc()
		ScoreDistribution.Observe(35)
	})
}
