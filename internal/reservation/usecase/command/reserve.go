// Package command implements the write operations of the reservation
// lifecycle. Capacity is enforced here, by the caller of the entity, with a
// plain check-then-act read: two concurrent reservations can both pass the
// check and jointly overcommit an item. The store offers no transactions, so
// this window is accepted and documented rather than patched over.
package command

import (
	"context"
	"errors"
	"fmt"

	itemdomain "github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/logger"
)

// ErrCapacityExceeded is returned when a requested quantity would exceed the
// item's currently computed available quantity.
var ErrCapacityExceeded = errors.New("requested quantity exceeds available quantity")

// ReserveCommand allocates a quantity of one item to a requester.
type ReserveCommand struct {
	ItemRef      string
	RequesterRef string
	Quantity     int64
	AssemblyRef  string
}

// ReserveHandler handles reservation creation.
type ReserveHandler struct {
	store  storage.Store
	events *kafka.Publisher
}

// NewReserveHandler creates a new reserve handler. events may be nil.
func NewReserveHandler(store storage.Store, events *kafka.Publisher) *ReserveHandler {
	return &ReserveHandler{store: store, events: events}
}

// Handle validates the command, checks capacity against the referenced item
// and persists the reservation. Nothing is written when any check fails.
func (h *ReserveHandler) Handle(ctx context.Context, cmd ReserveCommand) (*domain.Reservation, error) {
	res := domain.New(h.store)
	if err := res.SetItemRef(cmd.ItemRef); err != nil {
		return nil, err
	}
	if err := res.SetRequesterRef(cmd.RequesterRef); err != nil {
		return nil, err
	}
	if err := res.SetQuantity(cmd.Quantity); err != nil {
		return nil, err
	}
	if cmd.AssemblyRef != "" {
		if err := res.SetAssemblyRef(cmd.AssemblyRef); err != nil {
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

	quantity, err := res.Quantity(ctx)
	if err != nil {
		return nil, err
	}
	available, err := item.AvailableQuantity(ctx)
	if err != nil {
		return nil, err
	}
	if quantity > available {
		return nil, fmt.Errorf("reserve %d of item %s with %d available: %w",
			quantity, cmd.ItemRef, available, ErrCapacityExceeded)
	}

	if err := res.Save(ctx); err != nil {
		return nil, err
	}

	publishErr := h.events.PublishReservation(ctx, kafka.EventTypeReservationCommitted, kafka.ReservationEvent{
		ReservationID: res.ID(),
		ItemID:        cmd.ItemRef,
		RequesterID:   cmd.RequesterRef,
		Quantity:      quantity,
	})
	if publishErr != nil {
		logger.Warn(ctx).Err(publishErr).
			Str("reservation_id", res.ID()).
			Msg("Reservation committed but event not published")
	}

	return res, nil
}
