// Package command implements the write operations of the assembly graph.
package command

import (
	"context"

	"github.com/tair/stockroom/internal/assembly/domain"
	"github.com/tair/stockroom/internal/storage"
)

// CreateAssemblyCommand creates an assembly with an optional requirement
// list. Requirement entries referencing nonexistent items are dropped
// before the write.
type CreateAssemblyCommand struct {
	Name         string
	AssignedList []string
	Requirements []domain.Requirement
}

// CreateAssemblyHandler handles assembly creation.
type CreateAssemblyHandler struct {
	store storage.Store
}

// NewCreateAssemblyHandler creates a new create handler.
func NewCreateAssemblyHandler(store storage.Store) *CreateAssemblyHandler {
	return &CreateAssemblyHandler{store: store}
}

// Handle validates and persists the assembly.
func (h *CreateAssemblyHandler) Handle(ctx context.Context, cmd CreateAssemblyCommand) (*domain.Assembly, error) {
	asm := domain.New(h.store)
	if err := asm.SetName(cmd.Name); err != nil {
		return nil, err
	}
	if len(cmd.AssignedList) > 0 {
		asm.SetAssignedList(cmd.AssignedList)
	}
	if err := asm.SetRequirements(ctx, cmd.Requirements); err != nil {
		return nil, err
	}
	if err := asm.Save(ctx); err != nil {
		return nil, err
	}
	return asm, nil
}
