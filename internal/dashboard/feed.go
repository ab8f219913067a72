// Package dashboard assembles the per-wallet view: score, task progress,
// recent activity feed and the hourly activity histogram.
package dashboard

import (
	"fmt"
	"time"

	"github.com/emperorhan/base-score/internal/domain/model"
)

const (
	FeedLimit     = 10
	hashPrefixLen = 10
)

type FeedItem struct {
	Hash        string           `json:"hash"`
	Type        model.TxCategory `json:"type"`
	Description string           `json:"description"`
	Value       string           `json:"value,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Protocol    *model.Protocol  `json:"protocol,omitempty"`
}

// BuildFeed renders at most limit of the most recent transactions.
func BuildFeed(recent []model.ClassifiedTransaction, limit int) []FeedItem {
	if limit <= 0 || limit > len(recent) {
		limit = len(recent)
	}
	items := make([]FeedItem, 0, limit)
	for _, tx := range recent[:limit] {
		item := FeedItem{
			Hash:        tx.Hash,
			Type:        tx.Category,
			Description: describe(tx),
			Timestamp:   tx.Timestamp,
			Protocol:    tx.Protocol,
		}
		if tx.Value != "" && tx.Value != model.ZeroEther {
			item.Value = tx.Value
		}
		items = append(items, item)
	}
	return items
}

func describe(tx model.ClassifiedTransaction) string {
	h := tx.Hash
	if len(h) > hashPrefixLen {
		h = h[:hashPrefixLen]
	}
	return fmt.Sprintf("%s - %s...", tx.Category.Label(), h)
}
