// Package domain implements the inventory item entity: a named, counted
// resource whose available quantity is derived from the reservations held
// against it.
package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/stockroom/internal/record"
	"github.com/tair/stockroom/internal/storage"
)

// Stored field names.
const (
	FieldName       = "name"
	FieldTotalCount = "totalCount"
)

// Field names of the reservation and request documents this entity
// aggregates over. Only identifiers and field names cross the entity
// boundary, never concrete types.
const (
	refField      = "itemRef"
	quantityField = "quantity"
)

var (
	// ErrNameNotString is returned when the name setter receives a
	// non-string value.
	ErrNameNotString = errors.New("item name must be a string")

	// ErrInvalidTotalCount is returned when the count setter receives a
	// value that is not a non-negative integer (numeric strings are
	// accepted and coerced).
	ErrInvalidTotalCount = errors.New("item totalCount must be a non-negative integer")
)

// Item is an inventory item backed by one record in the item collection.
type Item struct {
	*record.Base
}

// New creates an unsaved item with a fresh identifier.
func New(store storage.Store) *Item {
	return &Item{record.New(store, storage.KindItem)}
}

// Attach binds to an existing item identifier without loading it.
func Attach(store storage.Store, id string) *Item {
	return &Item{record.Attach(store, storage.KindItem, id)}
}

// SetName validates and stages the item name.
func (i *Item) SetName(v any) error {
	s, ok := record.StringValue(v)
	if !ok {
		return ErrNameNotString
	}
	i.Set(FieldName, s)
	return nil
}

// Name returns the stored name, empty if unset.
func (i *Item) Name(ctx context.Context) (string, error) {
	v, err := i.Get(ctx, FieldName)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetTotalCount validates and stages the total count. Numeric strings are
// coerced; negative or fractional values are rejected.
func (i *Item) SetTotalCount(v any) error {
	n, ok := record.IntValue(v)
	if !ok || n < 0 {
		return ErrInvalidTotalCount
	}
	i.Set(FieldTotalCount, n)
	return nil
}

// TotalCount returns the stored total count, 0 if unset.
func (i *Item) TotalCount(ctx context.Context) (int64, error) {
	v, err := i.Get(ctx, FieldTotalCount)
	if err != nil {
		return 0, err
	}
	n, _ := record.IntValue(v)
	return n, nil
}

// ReservedQuantity sums the quantities of every reservation referencing this
// item. Resolves to 0 when none exist.
func (i *Item) ReservedQuantity(ctx context.Context) (int64, error) {
	total, err := i.Store().Sum(ctx, storage.KindReservation,
		storage.Filter{refField: i.ID()}, quantityField)
	if err != nil {
		return 0, fmt.Errorf("sum reservations for item %s: %w", i.ID(), err)
	}
	return int64(total), nil
}

// RequestedQuantity sums the quantities of every restock request referencing
// this item. Purely informational; it never affects availability.
func (i *Item) RequestedQuantity(ctx context.Context) (int64, error) {
	total, err := i.Store().Sum(ctx, storage.KindRequest,
		storage.Filter{refField: i.ID()}, quantityField)
	if err != nil {
		return 0, fmt.Errorf("sum requests for item %s: %w", i.ID(), err)
	}
	return int64(total), nil
}

// AvailableQuantity is totalCount minus the reserved quantity, computed
// fresh on every call and never cached.
func (i *Item) AvailableQuantity(ctx context.Context) (int64, error) {
	total, err := i.TotalCount(ctx)
	if err != nil {
		return 0, err
	}
	reserved, err := i.ReservedQuantity(ctx)
	if err != nil {
		return 0, err
	}
	return total - reserved, nil
}

// Delete removes the item and every reservation referencing it. Restock
// requests referencing the item are kept: they represent demand that
// outlives the current stock. The two steps are independent single-record
// operations; a failure in between leaves whatever the first step produced.
func (i *Item) Delete(ctx context.Context) error {
	if _, err := i.Store().Remove(ctx, storage.KindReservation,
		storage.Filter{refField: i.ID()}); err != nil {
		return fmt.Errorf("cascade reservations of item %s: %w", i.ID(), err)
	}
	return i.Base.Delete(ctx)
}

// Summary returns a flat snapshot of the item with its derived quantities.
// Each quantity is computed independently, so the snapshot is not a
// consistent point-in-time view under concurrent writers.
func (i *Item) Summary(ctx context.Context) (map[string]any, error) {
	name, err := i.Name(ctx)
	if err != nil {
		return nil, err
	}
	total, err := i.TotalCount(ctx)
	if err != nil {
		return nil, err
	}
	reserved, err := i.ReservedQuantity(ctx)
	if err != nil {
		return nil, err
	}
	requested, err := i.RequestedQuantity(ctx)
	if err != nil {
		return nil, err
	}
	created, err := i.CreatedAt(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := i.UpdatedAt(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":                i.ID(),
		"name":              name,
		"totalCount":        total,
		"reservedQuantity":  reserved,
		"requestedQuantity": requested,
		"availableQuantity": total - reserved,
		"createdAt":         created,
		"updatedAt":         updated,
	}, nil
}
