package command

import (
	"context"
	"fmt"

	itemdomain "github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
)

// UpdateReservationCommand changes fields of an existing reservation. Nil
// pointers leave the field untouched.
type UpdateReservationCommand struct {
	ID           string
	ItemRef      *string
	RequesterRef *string
	Quantity     *int64
}

// UpdateReservationHandler handles reservation updates.
type UpdateReservationHandler struct {
	store  storage.Store
	events *kafka.Publisher
}

// NewUpdateReservationHandler creates a new update handler. events may be
// nil.
func NewUpdateReservationHandler(store storage.Store, events *kafka.Publisher) *UpdateReservationHandler {
	return &UpdateReservationHandler{store: store, events: events}
}

// Handle re-checks capacity before committing. When the item reference is
// unchanged the budget is the item's available quantity plus this
// reservation's previous quantity, because the previous quantity is still
// part of the current reserved sum. When the reservation moves to another
// item the new item's plain available quantity is the budget.
func (h *UpdateReservationHandler) Handle(ctx context.Context, cmd UpdateReservationCommand) (*domain.Reservation, error) {
	res := domain.Attach(h.store, cmd.ID)
	exists, err := res.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("reservation %s: %w", cmd.ID, storage.ErrNotFound)
	}

	oldItemRef, err := res.ItemRef(ctx)
	if err != nil {
		return nil, err
	}
	oldQuantity, err := res.Quantity(ctx)
	if err != nil {
		return nil, err
	}

	newItemRef := oldItemRef
	if cmd.ItemRef != nil {
		newItemRef = *cmd.ItemRef
	}
	newQuantity := oldQuantity
	if cmd.Quantity != nil {
		newQuantity = *cmd.Quantity
	}

	item := itemdomain.Attach(h.store, newItemRef)
	itemExists, err := item.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !itemExists {
		return nil, fmt.Errorf("item %s: %w", newItemRef, storage.ErrNotFound)
	}

	budget, err := item.AvailableQuantity(ctx)
	if err != nil {
		return nil, err
	}
	if newItemRef == oldItemRef {
		budget += oldQuantity
	}
	if newQuantity > budget {
		return nil, fmt.Errorf("update reservation %s to %d of item %s with budget %d: %w",
			cmd.ID, newQuantity, newItemRef, budget, ErrCapacityExceeded)
	}

	if cmd.ItemRef != nil {
		if err := res.SetItemRef(*cmd.ItemRef); err != nil {
			return nil, err
		}
	}
	if cmd.RequesterRef != nil {
		if err := res.SetRequesterRef(*cmd.RequesterRef); err != nil {
			return nil, err
		}
	}
	if cmd.Quantity != nil {
		if err := res.SetQuantity(*cmd.Quantity); err != nil {
			return nil, err
		}
	}

	if err := res.Save(ctx); err != nil {
		return nil, err
	}
	return res, nil
}
