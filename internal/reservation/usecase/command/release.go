package command

import (
	"context"

	"github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/logger"
)

// ReleaseCommand removes a reservation. Capacity frees up purely because the
// aggregate sum over the remaining reservations shrinks; there is no other
// side effect.
type ReleaseCommand struct {
	ID string
}

// ReleaseHandler handles reservation deletion.
type ReleaseHandler struct {
	store  storage.Store
	events *kafka.Publisher
}

// NewReleaseHandler creates a new release handler. events may be nil.
func NewReleaseHandler(store storage.Store, events *kafka.Publisher) *ReleaseHandler {
	return &ReleaseHandler{store: store, events: events}
}

// Handle deletes the reservation, failing with the store's not-found error
// when no backing record exists.
func (h *ReleaseHandler) Handle(ctx context.Context, cmd ReleaseCommand) error {
	res := domain.Attach(h.store, cmd.ID)

	// Read the event payload before the record goes away.
	itemRef, err := res.ItemRef(ctx)
	if err != nil {
		return err
	}
	requesterRef, err := res.RequesterRef(ctx)
	if err != nil {
		return err
	}
	quantity, err := res.Quantity(ctx)
	if err != nil {
		return err
	}

	if err := res.Delete(ctx); err != nil {
		return err
	}

	publishErr := h.events.PublishReservation(ctx, kafka.EventTypeReservationReleased, kafka.ReservationEvent{
		ReservationID: cmd.ID,
		ItemID:        itemRef,
		RequesterID:   requesterRef,
		Quantity:      quantity,
	})
	if publishErr != nil {
		logger.Warn(ctx).Err(publishErr).
			Str("reservation_id", cmd.ID).
			Msg("Reservation released but event not published")
	}
	return nil
}
