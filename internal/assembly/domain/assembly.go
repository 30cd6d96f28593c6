// Package domain implements the assembly graph: named collections of item
// requirements plus a parent/child tree materialized as independently
// persisted link records.
package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stockroom/internal/record"
	reservationdomain "github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
)

// Stored field names.
const (
	FieldName         = "name"
	FieldAssignedList = "assignedList"
	FieldRequirements = "requirements"
)

// ErrNameNotString is returned when the name setter receives a non-string
// value.
var ErrNameNotString = errors.New("assembly name must be a string")

// Assembly is backed by one record in the assembly collection.
type Assembly struct {
	*record.Base
}

// New creates an unsaved assembly with a fresh identifier.
func New(store storage.Store) *Assembly {
	return &Assembly{record.New(store, storage.KindAssembly)}
}

// Attach binds to an existing assembly identifier without loading it.
func Attach(store storage.Store, id string) *Assembly {
	return &Assembly{record.Attach(store, storage.KindAssembly, id)}
}

// SetName validates and stages the assembly name.
func (a *Assembly) SetName(v any) error {
	s, ok := record.StringValue(v)
	if !ok {
		return ErrNameNotString
	}
	a.Set(FieldName, s)
	return nil
}

// Name returns the stored name, empty if unset.
func (a *Assembly) Name(ctx context.Context) (string, error) {
	v, err := a.Get(ctx, FieldName)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetAssignedList stages the opaque assignment tags.
func (a *Assembly) SetAssignedList(tags []string) {
	encoded := make([]any, 0, len(tags))
	for _, t := range tags {
		encoded = append(encoded, t)
	}
	a.Set(FieldAssignedList, encoded)
}

// AssignedList returns the stored assignment tags.
func (a *Assembly) AssignedList(ctx context.Context) ([]string, error) {
	v, err := a.Get(ctx, FieldAssignedList)
	if err != nil {
		return nil, err
	}
	entries, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if s, ok := record.StringValue(e); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Requirements returns the requirement list with entries whose item no
// longer exists silently dropped. The filtering is lazy and non-destructive:
// the stored document keeps the dangling entries.
func (a *Assembly) Requirements(ctx context.Context) ([]Requirement, error) {
	v, err := a.Get(ctx, FieldRequirements)
	if err != nil {
		return nil, err
	}
	reqs := decodeRequirements(v)
	out := make([]Requirement, 0, len(reqs))
	for _, req := range reqs {
		ok, err := req.valid(ctx, a.Store())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, req)
		}
	}
	return out, nil
}

// SetRequirements stages a new requirement list. Entries referencing a
// nonexistent item are dropped before the write, through the same check the
// read path uses. Entries with no item reference or a non-positive quantity
// are rejected outright.
func (a *Assembly) SetRequirements(ctx context.Context, reqs []Requirement) error {
	kept := make([]Requirement, 0, len(reqs))
	for _, req := range reqs {
		if req.ItemRef == "" || req.Quantity <= 0 {
			return fmt.Errorf("requirement for item %q: %w", req.ItemRef, ErrInvalidRequirement)
		}
		ok, err := req.valid(ctx, a.Store())
		if err != nil {
			return err
		}
		if ok {
			kept = append(kept, req)
		}
	}
	a.Set(FieldRequirements, encodeRequirements(kept))
	return nil
}

// Children returns the identifiers of the assemblies linked under this one.
func (a *Assembly) Children(ctx context.Context) ([]string, error) {
	edges, err := childEdges(ctx, a.Store(), a.ID())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(edges))
	for child := range edges {
		out = append(out, child)
	}
	return out, nil
}

// SetChildren reconciles the edge set against the given children: edges for
// children no longer present are removed, edges for new children are added,
// edges for children in both sets are left alone. Each edge operation is an
// independent single-record write.
func (a *Assembly) SetChildren(ctx context.Context, children []string) error {
	current, err := childEdges(ctx, a.Store(), a.ID())
	if err != nil {
		return err
	}

	want := make(map[string]bool, len(children))
	for _, child := range children {
		want[child] = true
	}

	for child, edgeID := range current {
		if want[child] {
			continue
		}
		if _, err := a.Store().Remove(ctx, storage.KindLink,
			storage.Filter{storage.FilterID: edgeID}); err != nil {
			return fmt.Errorf("remove edge %s -> %s: %w", a.ID(), child, err)
		}
	}
	for _, child := range children {
		if _, ok := current[child]; ok {
			continue
		}
		if err := NewLink(a.Store(), a.ID(), child).Save(ctx); err != nil {
			return fmt.Errorf("add edge %s -> %s: %w", a.ID(), child, err)
		}
	}
	return nil
}

// Parent returns the identifier of the assembly this one is linked under,
// empty if it is a root.
func (a *Assembly) Parent(ctx context.Context) (string, error) {
	parent, _, err := parentEdge(ctx, a.Store(), a.ID())
	return parent, err
}

// SetParent replaces the single parent edge. An empty parent removes the
// existing edge. Setting the same parent again is a no-op.
func (a *Assembly) SetParent(ctx context.Context, parent string) error {
	current, edgeID, err := parentEdge(ctx, a.Store(), a.ID())
	if err != nil {
		return err
	}
	if current == parent {
		return nil
	}
	if edgeID != "" {
		if _, err := a.Store().Remove(ctx, storage.KindLink,
			storage.Filter{storage.FilterID: edgeID}); err != nil {
			return fmt.Errorf("remove parent edge of %s: %w", a.ID(), err)
		}
	}
	if parent == "" {
		return nil
	}
	return NewLink(a.Store(), parent, a.ID()).Save(ctx)
}

// Delete runs the four-step cascade: reservations tagged to this assembly,
// links where it is the parent, links where it is the child, then the
// assembly record itself. The steps are independent single-record
// operations with no rollback; a failure partway through leaves the partial
// state it produced.
func (a *Assembly) Delete(ctx context.Context) error {
	if _, err := a.Store().Remove(ctx, storage.KindReservation,
		storage.Filter{reservationdomain.FieldAssemblyRef: a.ID()}); err != nil {
		return fmt.Errorf("cascade reservations of assembly %s: %w", a.ID(), err)
	}
	if _, err := a.Store().Remove(ctx, storage.KindLink,
		storage.Filter{FieldParentRef: a.ID()}); err != nil {
		return fmt.Errorf("cascade child links of assembly %s: %w", a.ID(), err)
	}
	if _, err := a.Store().Remove(ctx, storage.KindLink,
		storage.Filter{FieldChildRef: a.ID()}); err != nil {
		return fmt.Errorf("cascade parent link of assembly %s: %w", a.ID(), err)
	}
	return a.Base.Delete(ctx)
}
