package command

import (
	"context"

	"github.com/tair/stockroom/internal/assembly/domain"
	reservationdomain "github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/logger"
)

// DeleteAssemblyCommand removes an assembly with its full cascade.
type DeleteAssemblyCommand struct {
	ID string
}

// DeleteAssemblyHandler handles assembly deletion.
type DeleteAssemblyHandler struct {
	store  storage.Store
	events *kafka.Publisher
}

// NewDeleteAssemblyHandler creates a new delete handler. events may be nil.
func NewDeleteAssemblyHandler(store storage.Store, events *kafka.Publisher) *DeleteAssemblyHandler {
	return &DeleteAssemblyHandler{store: store, events: events}
}

// Handle runs the assembly's delete cascade and announces the deletion.
func (h *DeleteAssemblyHandler) Handle(ctx context.Context, cmd DeleteAssemblyCommand) error {
	taggedReservations, err := h.store.Count(ctx, storage.KindReservation,
		storage.Filter{reservationdomain.FieldAssemblyRef: cmd.ID})
	if err != nil {
		return err
	}
	parentLinks, err := h.store.Count(ctx, storage.KindLink,
		storage.Filter{domain.FieldParentRef: cmd.ID})
	if err != nil {
		return err
	}
	childLinks, err := h.store.Count(ctx, storage.KindLink,
		storage.Filter{domain.FieldChildRef: cmd.ID})
	if err != nil {
		return err
	}

	if err := domain.Attach(h.store, cmd.ID).Delete(ctx); err != nil {
		return err
	}

	publishErr := h.events.PublishDeletion(ctx, kafka.EventTypeAssemblyDeleted, kafka.DeletionEvent{
		RecordID: cmd.ID,
		Cascaded: taggedReservations + parentLinks + childLinks,
	})
	if publishErr != nil {
		logger.Warn(ctx).Err(publishErr).
			Str("assembly_id", cmd.ID).
			Msg("Assembly deleted but event not published")
	}
	return nil
}
