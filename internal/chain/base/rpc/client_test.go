package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emperorhan/base-score/internal/circuitbreaker"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(handler func(*http.Request) (*http.Response, error)) *Client {
	client := NewClient("http://rpc.local", slog.Default())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(handler),
	}
	return client
}

func jsonHTTPResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

// resultHandler decodes the request, hands it to check, and replies with result.
func resultHandler(t *testing.T, result string, check func(Request)) func(*http.Request) (*http.Response, error) {
	return func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req Request
		require.NoError(t, json.Unmarshal(body, &req))
		if check != nil {
			check(req)
		}
		raw, err := json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(result)})
		require.NoError(t, err)
		return jsonHTTPResponse(http.StatusOK, string(raw)), nil
	}
}

func TestCall_Success(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req Request
		require.NoError(t, json.Unmarshal(body, &req))

		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "eth_testMethod", req.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)

		raw, err := json.Marshal(Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"0x2a"`)})
		require.NoError(t, err)
		return jsonHTTPResponse(http.StatusOK, string(raw)), nil
	})

	result, err := client.call(context.Background(), "eth_testMethod", []any{"p1"})
	require.NoError(t, err)

	var value string
	require.NoError(t, json.Unmarshal(result, &value))
	assert.Equal(t, "0x2a", value)
}

func TestCall_RequestIDsIncrease(t *testing.T) {
	var ids []int
	client := newTestClient(resultHandler(t, `"0x1"`, func(req Request) { ids = append(ids, req.ID) }))

	for i := 0; i < 3; i++ {
		_, err := client.call(context.Background(), "eth_chainId", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestCall_NilParamsEncodeAsEmptyArray(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"params":[]`)
		return jsonHTTPResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`), nil
	})
	_, err := client.call(context.Background(), "eth_chainId", nil)
	require.NoError(t, err)
}

func TestCall_RPCError(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"upstream unavailable"}}`), nil
	})

	_, err := client.call(context.Background(), "eth_testMethod", nil)
	require.Error(t, err)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestCall_HTTPError(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusBadGateway, "bad gateway"), nil
	})

	_, err := client.call(context.Background(), "eth_testMethod", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http status 502")
}

func TestCall_TransportError(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.call(context.Background(), "eth_testMethod", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http request")
}

func TestCall_InvalidJSON(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return jsonHTTPResponse(http.StatusOK, "{not-json"), nil
	})

	_, err := client.call(context.Background(), "eth_testMethod", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
}

func TestChainID(t *testing.T) {
	client := newTestClient(resultHandler(t, `"0x2105"`, func(req Request) {
		assert.Equal(t, "eth_chainId", req.Method)
	}))
	id, err := client.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8453), id)
}

func TestGetBalance(t *testing.T) {
	client := newTestClient(resultHandler(t, `"0xde0b6b3a7640000"`, func(req Request) {
		assert.Equal(t, "eth_getBalance", req.Method)
		assert.Equal(t, []any{"0xabc", "latest"}, req.Params)
	}))
	bal, err := client.GetBalance(context.Background(), "0xabc", "")
	require.NoError(t, err)
	assert.Equal(t, "0xde0b6b3a7640000", bal)
}

func TestGetTransactionCount(t *testing.T) {
	client := newTestClient(resultHandler(t, `"0x17"`, func(req Request) {
		assert.Equal(t, "eth_getTransactionCount", req.Method)
		assert.Equal(t, []any{"0xabc", "pending"}, req.Params)
	}))
	n, err := client.GetTransactionCount(context.Background(), "0xabc", "pending")
	require.NoError(t, err)
	assert.Equal(t, int64(23), n)
}

func TestCall_EthCall(t *testing.T) {
	client := newTestClient(resultHandler(t, `"0x00ff"`, func(req Request) {
		assert.Equal(t, "eth_call", req.Method)
		require.Len(t, req.Params, 2)
		msg, ok := req.Params[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "0xresolver", msg["to"])
		assert.Equal(t, "0x691f3431", msg["data"])
		_, hasFrom := msg["from"]
		assert.False(t, hasFrom)
	}))
	out, err := client.Call(context.Background(), CallMsg{To: "0xresolver", Data: "0x691f3431"}, "")
	require.NoError(t, err)
	assert.Equal(t, "0x00ff", out)
}

func TestCallString_NonStringResult(t *testing.T) {
	client := newTestClient(resultHandler(t, `{"x":1}`, nil))
	_, err := client.ChainID(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal eth_chainId result")
}

func TestParseHexInt64(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0x0", 0, false},
		{"0x2105", 8453, false},
		{"0X1A", 26, false},
		{" 0x10 ", 16, false},
		{"0x", 0, false},
		{"", 0, true},
		{"0xzz", 0, true},
		{"0xffffffffffffffff", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseHexInt64(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCall_BreakerIgnoresRPCErrors(t *testing.T) {
	breaker := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 2, OpenTimeout: time.Minute})
	var hits int
	reply := `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		hits++
		return jsonHTTPResponse(http.StatusOK, reply), nil
	})
	WithBreaker(breaker)(client)

	for i := 0; i < 3; i++ {
		_, err := client.call(context.Background(), "eth_call", nil)
		var rpcErr *RPCError
		require.ErrorAs(t, err, &rpcErr)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.GetState())

	reply = "bad gateway"
	client.httpClient.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		hits++
		return jsonHTTPResponse(http.StatusBadGateway, reply), nil
	})
	for i := 0; i < 2; i++ {
		_, err := client.call(context.Background(), "eth_call", nil)
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, breaker.GetState())

	before := hits
	_, err := client.call(context.Background(), "eth_call", nil)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, before, hits, "open breaker skips the request")
}
