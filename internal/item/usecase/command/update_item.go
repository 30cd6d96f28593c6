package command

import (
	"context"
	"fmt"

	"github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/storage"
)

// UpdateItemCommand changes fields of an existing item. Nil pointers leave
// the field untouched.
type UpdateItemCommand struct {
	ID         string
	Name       *string
	TotalCount *int64
}

// UpdateItemHandler handles item updates.
type UpdateItemHandler struct {
	store storage.Store
}

// NewUpdateItemHandler creates a new update handler.
func NewUpdateItemHandler(store storage.Store) *UpdateItemHandler {
	return &UpdateItemHandler{store: store}
}

// Handle stages the requested changes and saves them. Lowering totalCount
// below the currently reserved quantity is allowed; availability simply goes
// negative until reservations are released, which mirrors what physically
// happened to the stock.
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*domain.Item, error) {
	item := domain.Attach(h.store, cmd.ID)
	exists, err := item.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("item %s: %w", cmd.ID, storage.ErrNotFound)
	}

	if cmd.Name != nil {
		if err := item.SetName(*cmd.Name); err != nil {
			return nil, err
		}
	}
	if cmd.TotalCount != nil {
		if err := item.SetTotalCount(*cmd.TotalCount); err != nil {
			return nil, err
		}
	}

	if err := item.Save(ctx); err != nil {
		return nil, err
	}
	return item, nil
}
