package leaderboard

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emperorhan/base-score/internal/domain/model"
)

type fetcherFunc func(ctx context.Context, address string) (model.WalletActivitySummary, error)

func (f fetcherFunc) FetchActivity(ctx context.Context, address string) (model.WalletActivitySummary, error) {
	return f(ctx, address)
}

// byVolume serves summaries whose tx volume is looked up per address.
func byVolume(volumes map[string]int) fetcherFunc {
	return func(_ context.Context, address string) (model.WalletActivitySummary, error) {
		addr, err := model.NormalizeAddress(address)
		if err != nil {
			return model.WalletActivitySummary{}, err
		}
		s := model.EmptySummary(addr)
		v, ok := volumes[addr.String()]
		if !ok {
			s.Degraded = []string{"balance", "tokennfttx", "txlist", "txlistinternal"}
			return s, nil
		}
		s.TxVolume = v
		return s, nil
	}
}

const (
	a = "0x000000000000000000000000000000000000000a"
	b = "0x000000000000000000000000000000000000000b"
	c = "0x000000000000000000000000000000000000000c"
	d = "0x000000000000000000000000000000000000000d"
)

func TestBuild_RanksDescendingStable(t *testing.T) {
	t.Parallel()

	svc := NewService(byVolume(map[string]int{a: 2, b: 10, c: 10, d: 30}), Config{}, nil)
	board, err := svc.Build(context.Background(), a, []string{b, c, d})
	require.NoError(t, err)

	require.Len(t, board.Leaderboard, 4)
	var order []string
	for _, e := range board.Leaderboard {
		order = append(order, e.Address)
	}
	// b and c tie at 15 and keep request order.
	assert.Equal(t, []string{d, b, c, a}, order)
	assert.Equal(t, 35, board.Leaderboard[0].Score)
	assert.Equal(t, 1, board.Leaderboard[0].Rank)
	assert.Equal(t, 4, board.UserRank)
	assert.Equal(t, 4, board.TotalUsers)
	assert.Equal(t, MessageOK, board.Message)
	assert.Empty(t, board.Error)
}

func TestBuild_SingleUser(t *testing.T) {
	t.Parallel()

	svc := NewService(byVolume(map[string]int{a: 10}), Config{}, nil)
	board, err := svc.Build(context.Background(), a[2:], nil)
	require.NoError(t, err)
	assert.Empty(t, board.Leaderboard, "non-prefixed addresses are invalid")
	assert.Equal(t, MessageUnavailable, board.Error)

	board, err = svc.Build(context.Background(), "0x"+strings.ToUpper(a[2:]), nil)
	require.NoError(t, err)
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, Entry{Rank: 1, Address: a, Volume: 10, ETHAmount: model.ZeroEther, Score: 15}, board.Leaderboard[0])
	assert.Equal(t, 1, board.UserRank)
}

func TestBuild_MissingUser(t *testing.T) {
	t.Parallel()
	_, err := NewService(byVolume(nil), Config{}, nil).Build(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrUserAddressRequired)
}

func TestBuild_AllFail(t *testing.T) {
	t.Parallel()

	board, err := NewService(byVolume(nil), Config{}, nil).Build(context.Background(), a, []string{b})
	require.NoError(t, err)
	assert.NotNil(t, board.Leaderboard)
	assert.Empty(t, board.Leaderboard)
	assert.Zero(t, board.UserRank)
	assert.Zero(t, board.TotalUsers)
	assert.Equal(t, MessageUnavailable, board.Error)
}

func TestBuild_FailedUserStillRanksOthers(t *testing.T) {
	t.Parallel()

	board, err := NewService(byVolume(map[string]int{b: 1}), Config{}, nil).Build(context.Background(), a, []string{b})
	require.NoError(t, err)
	require.Len(t, board.Leaderboard, 1)
	assert.Zero(t, board.UserRank)
	assert.Equal(t, b, board.Leaderboard[0].Address)
}

func TestBuild_DedupesAndCaps(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	inner := byVolume(map[string]int{a: 1, b: 1, c: 1, d: 1})
	counting := fetcherFunc(func(ctx context.Context, address string) (model.WalletActivitySummary, error) {
		calls.Add(1)
		return inner(ctx, address)
	})

	svc := NewService(counting, Config{MaxAddresses: 3, Concurrency: 2}, nil)
	board, err := svc.Build(context.Background(), a, []string{strings.ToUpper(a), "", b, b, c, d})
	require.NoError(t, err)
	assert.Len(t, board.Leaderboard, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSplitAddresses(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SplitAddresses(""))
	assert.Equal(t, []string{a, b}, SplitAddresses(" "+a+" ,,"+b+","))
}
