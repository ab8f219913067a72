package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	baserpc "github.com/emperorhan/base-score/internal/chain/base/rpc"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify_RepresentativeRuntimeErrors(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectedClass Class
		reason        string
	}{
		{"nil terminal", nil, ClassTerminal, "nil_error"},
		{"context canceled terminal", context.Canceled, ClassTerminal, "context_canceled"},
		{"context deadline transient", fmt.Errorf("txlist: %w", context.DeadlineExceeded), ClassTransient, "context_deadline_exceeded"},
		{"net timeout transient", timeoutErr{}, ClassTransient, "net_timeout"},
		{"jsonrpc server range transient", &baserpc.RPCError{Code: -32001, Message: "busy"}, ClassTransient, "jsonrpc_server_range"},
		{"jsonrpc internal transient", fmt.Errorf("eth_call: %w", &baserpc.RPCError{Code: -32603}), ClassTransient, "jsonrpc_server_transient"},
		{"jsonrpc invalid params terminal", &baserpc.RPCError{Code: -32602, Message: "invalid params"}, ClassTerminal, "jsonrpc_terminal"},
		{"explorer 429 transient", errors.New("http status 429"), ClassTransient, "message_transient"},
		{"explorer rate limit transient", errors.New("explorer status 0: Max calls per sec rate limit reached (5/sec)"), ClassTransient, "message_transient"},
		{"invalid api key terminal", errors.New("explorer status 0: Invalid API Key"), ClassTerminal, "message_terminal"},
		{"breaker open terminal", errors.New("circuit breaker is open"), ClassTerminal, "message_terminal"},
		{"unknown defaults terminal", errors.New("unexpected failure"), ClassTerminal, "unknown_terminal_default"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			decision := Classify(tc.err)
			assert.Equal(t, tc.expectedClass, decision.Class)
			assert.Equal(t, tc.reason, decision.Reason)
		})
	}
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestDo_RetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	var retried []int
	err := Do(context.Background(), Policy{
		MaxAttempts: 4,
		Sleep:       noSleep,
		OnRetry:     func(attempt int, _ Decision, _ error) { retried = append(retried, attempt) },
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("http status 503")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsOnTerminal(t *testing.T) {
	calls := 0
	terminal := errors.New("invalid address format")
	err := Do(context.Background(), Policy{MaxAttempts: 5, Sleep: noSleep}, func(context.Context) error {
		calls++
		return terminal
	})
	assert.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	cause := errors.New("connection reset by peer")
	err := Do(context.Background(), Policy{MaxAttempts: 3, Sleep: noSleep}, func(context.Context) error {
		calls++
		return cause
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "retries exhausted attempts=3")
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	err := Do(ctx, Policy{
		MaxAttempts: 3,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}, func(context.Context) error {
		return errors.New("timeout")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicyDelay(t *testing.T) {
	p := Policy{InitialBackoff: 100 * time.Millisecond, MaxBackoff: 350 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, p.delay(1))
	assert.Equal(t, 200*time.Millisecond, p.delay(2))
	assert.Equal(t, 350*time.Millisecond, p.delay(3))
	assert.Equal(t, 350*time.Millisecond, p.delay(40))

	assert.Equal(t, defaultInitialBackoff, Policy{}.delay(1))
}
