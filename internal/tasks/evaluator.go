// Package tasks evaluates the static eligibility checklist against a wallet
// activity summary.
package tasks

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/emperorhan/base-score/internal/domain/model"
	"github.com/emperorhan/base-score/internal/metrics"
)

var ErrTaskPredicate = errors.New("task predicate failed")

// CompletionSet holds the ids of completed tasks.
type CompletionSet map[int]struct{}

func (c CompletionSet) Has(id int) bool {
	_, ok := c[id]
	return ok
}

// IDs returns the completed ids in ascending order.
func (c CompletionSet) IDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type CategoryProgress struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type Progress struct {
	CompletedIDs []int              `json:"completedIds"`
	Categories   []CategoryProgress `json:"categories"`
	Completed    int                `json:"completed"`
	Total        int                `json:"total"`
}

// Ratio is completed/total, zero for an empty catalog.
func (p Progress) Ratio() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total)
}

type Evaluator struct {
	catalog []Category
	logger  *slog.Logger
}

func NewEvaluator(catalog []Category, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		catalog: catalog,
		logger:  logger.With("component", "task_evaluator"),
	}
}

func (e *Evaluator) Catalog() []Category {
	return e.catalog
}

// Evaluate runs every predicate against summary. A predicate that errors or
// panics counts as incomplete and does not affect the others.
func (e *Evaluator) Evaluate(summary model.WalletActivitySummary) CompletionSet {
	done := make(CompletionSet)
	for _, c := range e.catalog {
		for _, t := range c.Tasks {
			if t.Predicate == nil {
				continue
			}
			ok, err := runPredicate(t, summary)
			if err != nil {
				metrics.TaskPredicateErrors.WithLabelValues(strconv.Itoa(t.ID)).Inc()
				e.logger.Warn("task predicate failed",
					"task_id", t.ID,
					"address", summary.Address.String(),
					"error", err,
				)
				continue
			}
			if ok {
				done[t.ID] = struct{}{}
			}
		}
	}
	return done
}

// Progress evaluates summary and aggregates per-category counts.
func (e *Evaluator) Progress(summary model.WalletActivitySummary) Progress {
	done := e.Evaluate(summary)
	p := Progress{CompletedIDs: done.IDs()}
	for _, c := range e.catalog {
		cp := CategoryProgress{ID: c.ID, Label: c.Label, Total: len(c.Tasks)}
		for _, t := range c.Tasks {
			if done.Has(t.ID) {
				cp.Completed++
			}
		}
		p.Categories = append(p.Categories, cp)
		p.Completed += cp.Completed
		p.Total += cp.Total
	}
	return p
}

func runPredicate(t Task, summary model.WalletActivitySummary) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w: task %d panicked: %v", ErrTaskPredicate, t.ID, r)
		}
	}()
	ok, err = t.Predicate(summary)
	if err != nil {
		return false, fmt.Errorf("%w: task %d: %w", ErrTaskPredicate, t.ID, err)
	}
	return ok, nil
}
