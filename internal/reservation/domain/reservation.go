// Package domain implements the reservation entity: an allocation of some
// quantity of one item to a requester, counted against that item's capacity.
package domain

import (
	"context"
	"errors"

	itemdomain "github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/record"
	"github.com/tair/stockroom/internal/storage"
)

// Stored field names.
const (
	FieldItemRef      = "itemRef"
	FieldRequesterRef = "requesterRef"
	FieldQuantity     = "quantity"

	// FieldAssemblyRef tags a reservation with the assembly it fulfills;
	// assembly deletion cascades over this tag.
	FieldAssemblyRef = "assemblyRef"
)

var (
	// ErrInvalidQuantity is returned when the quantity setter receives a
	// value that is not a positive integer.
	ErrInvalidQuantity = errors.New("reservation quantity must be a positive integer")

	// ErrEmptyRef is returned when a reference setter receives an empty or
	// non-string identifier.
	ErrEmptyRef = errors.New("reference must be a non-empty string")
)

// Reservation is backed by one record in the reservation collection.
type Reservation struct {
	*record.Base
}

// New creates an unsaved reservation with a fresh identifier.
func New(store storage.Store) *Reservation {
	return &Reservation{record.New(store, storage.KindReservation)}
}

// Attach binds to an existing reservation identifier without loading it.
func Attach(store storage.Store, id string) *Reservation {
	return &Reservation{record.Attach(store, storage.KindReservation, id)}
}

// SetItemRef stages the referenced item identifier.
func (r *Reservation) SetItemRef(v any) error {
	s, ok := record.StringValue(v)
	if !ok || s == "" {
		return ErrEmptyRef
	}
	r.Set(FieldItemRef, s)
	return nil
}

// ItemRef returns the referenced item identifier, empty if unset.
func (r *Reservation) ItemRef(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, FieldItemRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetRequesterRef stages the requesting party identifier.
func (r *Reservation) SetRequesterRef(v any) error {
	s, ok := record.StringValue(v)
	if !ok || s == "" {
		return ErrEmptyRef
	}
	r.Set(FieldRequesterRef, s)
	return nil
}

// RequesterRef returns the requesting party identifier, empty if unset.
func (r *Reservation) RequesterRef(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, FieldRequesterRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetQuantity validates and stages the reserved quantity. Numeric strings
// are coerced; zero, negative and fractional values are rejected.
func (r *Reservation) SetQuantity(v any) error {
	n, ok := record.IntValue(v)
	if !ok || n <= 0 {
		return ErrInvalidQuantity
	}
	r.Set(FieldQuantity, n)
	return nil
}

// Quantity returns the reserved quantity, 0 if unset.
func (r *Reservation) Quantity(ctx context.Context) (int64, error) {
	v, err := r.Get(ctx, FieldQuantity)
	if err != nil {
		return 0, err
	}
	n, _ := record.IntValue(v)
	return n, nil
}

// SetAssemblyRef tags the reservation with an assembly identifier.
func (r *Reservation) SetAssemblyRef(v any) error {
	s, ok := record.StringValue(v)
	if !ok || s == "" {
		return ErrEmptyRef
	}
	r.Set(FieldAssemblyRef, s)
	return nil
}

// AssemblyRef returns the assembly tag, empty if the reservation is not tied
// to an assembly.
func (r *Reservation) AssemblyRef(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, FieldAssemblyRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// Item resolves the referenced item, or nil when no reference is set. The
// returned handle is lazy; it may point at an item that no longer exists.
func (r *Reservation) Item(ctx context.Context) (*itemdomain.Item, error) {
	ref, err := r.ItemRef(ctx)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, nil
	}
	return itemdomain.Attach(r.Store(), ref), nil
}
