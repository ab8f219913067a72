package dashboard

import (
	"time"

	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/metrics"
	"github.com/emperorhan/base-score/internal/score"
	"github.com/emperorhan/base-score/internal/tasks"
)

// View is everything the wallet page renders for one summary.
type View struct {
	Summary  model.WalletActivitySummary `json:"summary"`
	Score    score.Breakdown             `json:"score"`
	Rounded  int                         `json:"roundedScore"`
	Tasks    tasks.Progress              `json:"tasks"`
	Feed     []FeedItem                  `json:"feed"`
	Activity []ActivityPoint             `json:"activity"`
}

type Builder struct {
	evaluator *tasks.Evaluator
	nowFn     func() time.Time
}

func NewBuilder(evaluator *tasks.Evaluator) *Builder {
	return &Builder{evaluator: evaluator, nowFn: time.Now}
}

func (b *Builder) Build(s model.WalletActivitySummary) View {
	breakdown := score.ComputeScore(s)
	metrics.ScoreDistribution.Observe(breakdown.Total)
	v := View{
		Summary:  s,
		Score:    breakdown,
		Rounded:  breakdown.Rounded(),
		Feed:     BuildFeed(s.RecentTransactions, FeedLimit),
		Activity: HourlyActivity(s.RecentTransactions, b.nowFn()),
	}
	if b.evaluator != nil {
		v.Tasks = b.evaluator.Progress(s)
	}
	return v
}
