// Package command implements the write operations of the restock workflow.
package command

import (
	"context"
	"fmt"
	"time"

	itemdomain "github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/restock/domain"
	"github.com/tair/stockroom/internal/storage"
)

// CreateRequestCommand files a restock request for an item. Requests are
// bookkeeping only; they never touch the item's capacity.
type CreateRequestCommand struct {
	ItemRef      string
	RequesterRef string
	Quantity     int64
	ETA          *time.Time
}

// CreateRequestHandler handles request creation.
type CreateRequestHandler struct {
	store storage.Store
}

// NewCreateRequestHandler creates a new create handler.
func NewCreateRequestHandler(store storage.Store) *CreateRequestHandler {
	return &CreateRequestHandler{store: store}
}

// Handle validates and persists the request with the waiting label.
func (h *CreateRequestHandler) Handle(ctx context.Context, cmd CreateRequestCommand) (*domain.Request, error) {
	req := domain.New(h.store)
	if err := req.SetItemRef(cmd.ItemRef); err != nil {
		return nil, err
	}
	if err := req.SetRequesterRef(cmd.RequesterRef); err != nil {
		return nil, err
	}
	if err := req.SetQuantity(cmd.Quantity); err != nil {
		return nil, err
	}
	if err := req.SetStatus(domain.StatusWaiting); err != nil {
		return nil, err
	}
	if cmd.ETA != nil {
		if err := req.SetETA(*cmd.ETA); err != nil {
			return nil, err
		}
	}

	item := itemdomain.Attach(h.store, cmd.ItemRef)
	exists, err := item.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("item %s: %w", cmd.ItemRef, storage.ErrNotFound)
	}

	if err := req.Save(ctx); err != nil {
		return nil, err
	}
	return req, nil
}
