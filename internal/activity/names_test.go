package activity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emperorhan/base-score/internal/chain/base/rpc"
	"github.com/emperorhan/base-score/internal/domain/model"
)

const testAddr = "0x1234567890abcdef1234567890abcdef12345678"

type fakeCaller struct {
	mu    sync.Mutex
	calls []rpc.CallMsg
	out   string
	err   error
}

func (f *fakeCaller) Call(_ context.Context, msg rpc.CallMsg, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	return f.out, f.err
}

func (f *fakeCaller) respond(out string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out, f.err = out, err
}

func (f *fakeCaller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func encodeName(t *testing.T, name string) string {
	t.Helper()
	data, err := stringArgs.Pack(name)
	require.NoError(t, err)
	return hexutil.Encode(data)
}

func mustAddr(t *testing.T, raw string) model.WalletAddress {
	t.Helper()
	addr, err := model.NormalizeAddress(raw)
	require.NoError(t, err)
	return addr
}

func TestNamehash_KnownVectors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000000", namehash("").Hex())
	assert.Equal(t, "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae", namehash("eth").Hex())
	assert.Equal(t, "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f", namehash("foo.eth").Hex())
}

func TestReverseNode_CaseInsensitive(t *testing.T) {
	t.Parallel()

	lower := ReverseNode(mustAddr(t, testAddr))
	upper := ReverseNode(mustAddr(t, "0x1234567890ABCDEF1234567890ABCDEF12345678"))
	assert.Equal(t, lower, upper)
	assert.NotEqual(t, namehash(""), lower)
}

func TestLookup_DecodesResolverName(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{out: encodeName(t, "alice.base.eth")}
	r := NewNameResolver(caller, NameResolverConfig{}, nil)
	addr := mustAddr(t, testAddr)

	name, err := r.Lookup(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "alice.base.eth", name)

	require.Len(t, caller.calls, 1)
	msg := caller.calls[0]
	assert.Equal(t, BaseL2Resolver, msg.To)
	assert.True(t, strings.HasPrefix(msg.Data, nameSelector))
	assert.Len(t, msg.Data, len(nameSelector)+64)
	assert.Equal(t, strings.TrimPrefix(ReverseNode(addr).Hex(), "0x"), msg.Data[len(nameSelector):])
}

func TestLookup_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		caller *fakeCaller
	}{
		{name: "call fails", caller: &fakeCaller{err: errors.New("execution reverted")}},
		{name: "bad hex", caller: &fakeCaller{out: "0xzz"}},
		{name: "short payload", caller: &fakeCaller{out: "0x0102"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := NewNameResolver(tc.caller, NameResolverConfig{}, nil)
			name, err := r.Lookup(context.Background(), mustAddr(t, testAddr))
			assert.ErrorIs(t, err, ErrAddressResolution)
			assert.Empty(t, name)
		})
	}
}

func TestLookup_EmptyResultAndNilCaller(t *testing.T) {
	t.Parallel()

	r := NewNameResolver(&fakeCaller{out: "0x"}, NameResolverConfig{}, nil)
	name, err := r.Lookup(context.Background(), mustAddr(t, testAddr))
	require.NoError(t, err)
	assert.Empty(t, name)

	r = NewNameResolver(nil, NameResolverConfig{}, nil)
	name, err = r.Lookup(context.Background(), mustAddr(t, testAddr))
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestHeuristicName(t *testing.T) {
	t.Parallel()

	addr := mustAddr(t, testAddr)
	tests := []struct {
		name    string
		history []model.RawTransaction
		want    string
	}{
		{name: "no history"},
		{name: "unrelated", history: []model.RawTransaction{{To: "0xdeadbeef00000000000000000000000000000000"}}},
		{
			name:    "registrar interaction",
			history: []model.RawTransaction{{To: "0x4CCB0BB02FCABA27E82A56646E81D8C5BC4119A5"}},
			want:    "0x1234.base.eth",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HeuristicName(addr, tc.history))
		})
	}
}

func TestSettle_PrefersOnchainAndCaches(t *testing.T) {
	t.Parallel()

	r := NewNameResolver(nil, NameResolverConfig{}, nil)
	addr := mustAddr(t, testAddr)
	history := []model.RawTransaction{{To: BaseL2Resolver}}

	_, ok := r.Cached(addr)
	assert.False(t, ok)

	assert.Equal(t, "alice.base.eth", r.Settle(addr, "alice.base.eth", history, true))
	name, ok := r.Cached(addr)
	require.True(t, ok)
	assert.Equal(t, "alice.base.eth", name)

	other := mustAddr(t, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	assert.Equal(t, "0xabcd.base.eth", r.Settle(other, "", history, true))

	none := mustAddr(t, "0x0000000000000000000000000000000000000001")
	assert.Empty(t, r.Settle(none, "", nil, true))
	name, ok = r.Cached(none)
	assert.True(t, ok, "negative results are cached")
	assert.Empty(t, name)

	skipped := mustAddr(t, "0x0000000000000000000000000000000000000002")
	assert.Empty(t, r.Settle(skipped, "", nil, false))
	_, ok = r.Cached(skipped)
	assert.False(t, ok)
}
