package command

import (
	"context"

	"github.com/tair/stockroom/internal/item/domain"
	reservationdomain "github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/logger"
)

// DeleteItemCommand removes an item and cascades to its reservations.
type DeleteItemCommand struct {
	ID string
}

// DeleteItemHandler handles item deletion.
type DeleteItemHandler struct {
	store  storage.Store
	events *kafka.Publisher
}

// NewDeleteItemHandler creates a new delete handler. events may be nil.
func NewDeleteItemHandler(store storage.Store, events *kafka.Publisher) *DeleteItemHandler {
	return &DeleteItemHandler{store: store, events: events}
}

// Handle removes the item and every reservation referencing it. Restock
// requests are left in place.
func (h *DeleteItemHandler) Handle(ctx context.Context, cmd DeleteItemCommand) error {
	item := domain.Attach(h.store, cmd.ID)

	cascaded, err := h.store.Count(ctx, storage.KindReservation,
		storage.Filter{reservationdomain.FieldItemRef: cmd.ID})
	if err != nil {
		return err
	}
	if err := item.Delete(ctx); err != nil {
		return err
	}

	publishErr := h.events.PublishDeletion(ctx, kafka.EventTypeItemDeleted, kafka.DeletionEvent{
		RecordID: cmd.ID,
		Cascaded: cascaded,
	})
	if publishErr != nil {
		logger.Warn(ctx).Err(publishErr).
			Str("item_id", cmd.ID).
			Msg("Item deleted but event not published")
	}
	return nil
}
