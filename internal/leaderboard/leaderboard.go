// Package leaderboard ranks a set of wallets by Base Score.
package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/emperorhan/base-score/internal/activity"
	"github.com/emperorhan/base-score/internal/score"
)

const (
	MessageOK          = "Showing real wallet data from blockchain"
	MessageUnavailable = "Unable to fetch wallet data"

	defaultMaxAddresses = 25
	defaultConcurrency  = 4
	allCalls            = 4
)

var ErrUserAddressRequired = errors.New("userAddress is required")

type Entry struct {
	Rank         int    `json:"rank"`
	Address      string `json:"address"`
	Name         string `json:"name,omitempty"`
	Volume       int    `json:"volume"`
	NFTActivity  int    `json:"nftActivity"`
	NewContracts int    `json:"newContracts"`
	ETHAmount    string `json:"ethAmount"`
	Score        int    `json:"score"`
}

type Board struct {
	Leaderboard []Entry `json:"leaderboard"`
	UserRank    int     `json:"userRank"`
	TotalUsers  int     `json:"totalUsers"`
	Message     string  `json:"message,omitempty"`
	Error       string  `json:"error,omitempty"`
}

type Config struct {
	MaxAddresses int
	Concurrency  int
}

type Service struct {
	fetcher activity.SummaryFetcher
	cfg     Config
	logger  *slog.Logger
}

func NewService(fetcher activity.SummaryFetcher, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAddresses <= 0 {
		cfg.MaxAddresses = defaultMaxAddresses
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Service{fetcher: fetcher, cfg: cfg, logger: logger.With("component", "leaderboard")}
}

type scored struct {
	entry Entry
	total float64
	ok    bool
}

// Build fetches and scores user plus others concurrently. Entries are ranked
// by descending total; ties keep request order. A wallet whose fetch failed,
// or whose every explorer call degraded, is left off the board.
func (s *Service) Build(ctx context.Context, user string, others []string) (Board, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return Board{}, ErrUserAddressRequired
	}
	addrs := s.candidates(user, others)

	results := make([]scored, len(addrs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, addr := range addrs {
		g.Go(func() error {
			summary, err := s.fetcher.FetchActivity(gCtx, addr)
			if err != nil {
				s.logger.Warn("leaderboard fetch failed", "address", addr, "error", err)
				return nil
			}
			if len(summary.Degraded) >= allCalls {
				s.logger.Warn("leaderboard fetch fully degraded", "address", addr)
				return nil
			}
			b := score.ComputeScore(summary)
			results[i] = scored{
				entry: Entry{
					Address:      summary.Address.String(),
					Name:         summary.Name,
					Volume:       summary.TxVolume,
					NFTActivity:  summary.NFTActivity,
					NewContracts: summary.NewContracts,
					ETHAmount:    summary.ETHBalance,
					Score:        b.Rounded(),
				},
				total: b.Total,
				ok:    true,
			}
			return nil
		})
	}
	_ = g.Wait()

	ranked := make([]scored, 0, len(results))
	for _, r := range results {
		if r.ok {
			ranked = append(ranked, r)
		}
	}
	if len(ranked) == 0 {
		return Board{Leaderboard: []Entry{}, Error: MessageUnavailable}, nil
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].total > ranked[j].total })

	board := Board{
		Leaderboard: make([]Entry, 0, len(ranked)),
		TotalUsers:  len(ranked),
		Message:     MessageOK,
	}
	for i, r := range ranked {
		r.entry.Rank = i + 1
		if strings.EqualFold(r.entry.Address, user) {
			board.UserRank = r.entry.Rank
		}
		board.Leaderboard = append(board.Leaderboard, r.entry)
	}
	return board, nil
}

// candidates is user followed by the distinct others, capped.
func (s *Service) candidates(user string, others []string) []string {
	seen := map[string]struct{}{strings.ToLower(user): {}}
	out := []string{user}
	for _, o := range others {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		key := strings.ToLower(o)
		if _, dup := seen[key]; dup {
			continue
		}
		if len(out) >= s.cfg.MaxAddresses {
			s.logger.Debug("leaderboard address list truncated", "max", s.cfg.MaxAddresses)
			break
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}

// SplitAddresses parses a comma-separated address list.
func SplitAddresses(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
