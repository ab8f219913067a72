package tasks

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emperorhan/base-score/internal/domain/model"
)

func TestDefaultCatalog_Shape(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	require.Len(t, catalog, 8)

	wantCounts := []int{5, 6, 8, 6, 7, 6, 3, 5}
	seen := make(map[int]bool)
	for i, c := range catalog {
		assert.Equal(t, i+1, c.ID)
		assert.Len(t, c.Tasks, wantCounts[i], c.Label)
		assert.Equal(t, len(c.Tasks), c.Points, c.Label)
		for _, task := range c.Tasks {
			assert.False(t, seen[task.ID], "duplicate task id %d", task.ID)
			seen[task.ID] = true
			assert.NotNil(t, task.Predicate, "task %d", task.ID)
			assert.NotEmpty(t, task.Title)
		}
	}
	assert.Len(t, TaskIDs(catalog), 46)
	assert.False(t, seen[12])
	assert.False(t, seen[27])
}

func TestEvaluate_EmptySummaryCompletesNothing(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(DefaultCatalog(), slog.Default())
	done := e.Evaluate(model.EmptySummary("0xabc"))
	assert.Empty(t, done)
}

func TestEvaluate_Thresholds(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(DefaultCatalog(), nil)

	summary := model.WalletActivitySummary{
		TxVolume:     10,
		NFTActivity:  2,
		NewContracts: 1,
		Name:         "alice.base.eth",
		RecentTransactions: []model.ClassifiedTransaction{
			{Category: model.TxCategorySwap},
			{Category: model.TxCategorySwap},
		},
	}
	done := e.Evaluate(summary)

	for _, id := range []int{1, 2, 4, 5, 6, 7, 8, 9, 10, 11, 13, 14, 16, 21, 22, 28, 35, 36, 37, 41, 42, 44, 45, 46, 47} {
		assert.True(t, done.Has(id), "task %d should be complete", id)
	}
	for _, id := range []int{3, 15, 17, 23, 29, 38, 43, 48} {
		assert.False(t, done.Has(id), "task %d should be incomplete", id)
	}
	assert.ElementsMatch(t, done.IDs(), keys(done))
}

func TestEvaluate_FailingPredicatesAreIsolated(t *testing.T) {
	t.Parallel()

	catalog := []Category{{
		ID: 1, Label: "mixed",
		Tasks: []Task{
			{ID: 1, Predicate: txAtLeast(1)},
			{ID: 2, Predicate: func(model.WalletActivitySummary) (bool, error) { panic("boom") }},
			{ID: 3, Predicate: func(model.WalletActivitySummary) (bool, error) { return true, errors.New("bad data") }},
			{ID: 4, Predicate: nftAtLeast(1)},
			{ID: 5},
		},
	}}

	e := NewEvaluator(catalog, nil)
	done := e.Evaluate(model.WalletActivitySummary{TxVolume: 3, NFTActivity: 1})
	assert.Equal(t, []int{1, 4}, done.IDs())
}

func TestRunPredicate_WrapsErrors(t *testing.T) {
	t.Parallel()

	_, err := runPredicate(Task{ID: 9, Predicate: func(model.WalletActivitySummary) (bool, error) { panic("x") }}, model.WalletActivitySummary{})
	assert.ErrorIs(t, err, ErrTaskPredicate)

	cause := errors.New("cause")
	_, err = runPredicate(Task{ID: 9, Predicate: func(model.WalletActivitySummary) (bool, error) { return true, cause }}, model.WalletActivitySummary{})
	assert.ErrorIs(t, err, ErrTaskPredicate)
	assert.ErrorIs(t, err, cause)
}

func TestProgress_Aggregates(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(DefaultCatalog(), nil)
	p := e.Progress(model.WalletActivitySummary{TxVolume: 1})

	assert.Equal(t, 46, p.Total)
	// tx>=1 completes tasks 1, 6, 8 and 46.
	assert.Equal(t, 4, p.Completed)
	assert.Equal(t, []int{1, 6, 8, 46}, p.CompletedIDs)
	require.Len(t, p.Categories, 8)
	assert.Equal(t, CategoryProgress{ID: 1, Label: "Setup & Bridging", Completed: 1, Total: 5}, p.Categories[0])
	assert.Equal(t, CategoryProgress{ID: 2, Label: "Guild Roles & Social", Completed: 2, Total: 6}, p.Categories[1])
	assert.InDelta(t, 4.0/46.0, p.Ratio(), 1e-9)

	assert.Zero(t, Progress{}.Ratio())
}

func TestCompletionSet_SubsetOfCatalog(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	all := make(map[int]bool)
	for _, id := range TaskIDs(catalog) {
		all[id] = true
	}

	e := NewEvaluator(catalog, nil)
	done := e.Evaluate(model.WalletActivitySummary{TxVolume: 100, NFTActivity: 100, NewContracts: 100, Name: "x"})
	for id := range done {
		assert.True(t, all[id], "completed id %d not in catalog", id)
	}
	// Task 3 never completes and swap tasks need recent swaps.
	assert.False(t, done.Has(3))
	assert.False(t, done.Has(21))
}

func keys(c CompletionSet) []int {
	out := make([]int, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}
