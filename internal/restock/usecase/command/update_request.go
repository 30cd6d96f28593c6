package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/stockroom/internal/restock/domain"
	"github.com/tair/stockroom/internal/storage"
)

// UpdateRequestCommand changes fields of an existing request. Nil pointers
// leave the field untouched. Any status label may replace any other.
type UpdateRequestCommand struct {
	ID       string
	Quantity *int64
	Status   *string
	ETA      *time.Time
}

// UpdateRequestHandler handles request updates.
type UpdateRequestHandler struct {
	store storage.Store
}

// NewUpdateRequestHandler creates a new update handler.
func NewUpdateRequestHandler(store storage.Store) *UpdateRequestHandler {
	return &UpdateRequestHandler{store: store}
}

// Handle stages the requested changes and saves them.
func (h *UpdateRequestHandler) Handle(ctx context.Context, cmd UpdateRequestCommand) (*domain.Request, error) {
	req := domain.Attach(h.store, cmd.ID)
	exists, err := req.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("request %s: %w", cmd.ID, storage.ErrNotFound)
	}

	if cmd.Quantity != nil {
		if err := req.SetQuantity(*cmd.Quantity); err != nil {
			return nil, err
		}
	}
	if cmd.Status != nil {
		if err := req.SetStatus(*cmd.Status); err != nil {
			return nil, err
		}
	}
	if cmd.ETA != nil {
		if err := req.SetETA(*cmd.ETA); err != nil {
			return nil, err
		}
	}

	if err := req.Save(ctx); err != nil {
		return nil, err
	}
	return req, nil
}
