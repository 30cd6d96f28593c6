package query

import (
	"context"

	"github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/storage"
)

// ListItemsQuery asks for the summaries of all items.
type ListItemsQuery struct{}

// ListItemsHandler handles the list query.
type ListItemsHandler struct {
	store storage.Store
}

// NewListItemsHandler creates a new list handler.
func NewListItemsHandler(store storage.Store) *ListItemsHandler {
	return &ListItemsHandler{store: store}
}

// Handle returns one summary per stored item. Summaries are computed one by
// one; the list is not a consistent snapshot under concurrent writers.
func (h *ListItemsHandler) Handle(ctx context.Context, _ ListItemsQuery) ([]map[string]any, error) {
	recs, err := h.store.Find(ctx, storage.KindItem, nil)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		summary, err := domain.Attach(h.store, rec.ID).Summary(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}
