// Package command implements the write operations of the item lifecycle.
package command

import (
	"context"

	"github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/storage"
)

// CreateItemCommand creates a named, counted inventory item.
type CreateItemCommand struct {
	Name       string
	TotalCount int64
}

// CreateItemHandler handles item creation.
type CreateItemHandler struct {
	store storage.Store
}

// NewCreateItemHandler creates a new create handler.
func NewCreateItemHandler(store storage.Store) *CreateItemHandler {
	return &CreateItemHandler{store: store}
}

// Handle validates and persists the item. Validation failures write nothing.
func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*domain.Item, error) {
	item := domain.New(h.store)
	if err := item.SetName(cmd.Name); err != nil {
		return nil, err
	}
	if err := item.SetTotalCount(cmd.TotalCount); err != nil {
		return nil, err
	}
	if err := item.Save(ctx); err != nil {
		return nil, err
	}
	return item, nil
}
