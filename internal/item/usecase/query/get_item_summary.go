// Package query implements the read operations of the item ledger.
package query

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/storage"
)

// GetItemSummaryQuery asks for one item's flattened snapshot.
type GetItemSummaryQuery struct {
	ID string
}

// GetItemSummaryHandler handles the summary query.
type GetItemSummaryHandler struct {
	store storage.Store
}

// NewGetItemSummaryHandler creates a new summary handler.
func NewGetItemSummaryHandler(store storage.Store) *GetItemSummaryHandler {
	return &GetItemSummaryHandler{store: store}
}

// Handle returns the item's summary map, suitable for direct serialization.
func (h *GetItemSummaryHandler) Handle(ctx context.Context, q GetItemSummaryQuery) (map[string]any, error) {
	item := domain.Attach(h.store, q.ID)
	exists, err := item.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("item %s: %w", q.ID, storage.ErrNotFound)
	}
	return item.Summary(ctx)
}
