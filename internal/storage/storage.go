// Package storage defines the minimal record store the ledger entities are
// built on: insert, update, remove, find, count and sum over schemaless
// documents. Implementations guarantee single-record atomicity and nothing
// more; there are no multi-record transactions.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Collection kinds for every entity family backed by the store.
const (
	KindItem        = "inventory_items"
	KindReservation = "reservations"
	KindRequest     = "inventory_requests"
	KindAssembly    = "assemblies"
	KindLink        = "assembly_links"
)

// ErrNotFound is returned when an operation targets an identifier with no
// backing record.
var ErrNotFound = errors.New("record not found")

// Filter matches records by equality on document fields. The reserved key
// "id" matches the record identifier instead of a document field.
type Filter map[string]any

// FilterID is the reserved filter key matching the record identifier.
const FilterID = "id"

// Record is one stored document. CreatedAt and UpdatedAt are maintained by
// the store itself: set on insert, UpdatedAt refreshed on every update.
type Record struct {
	ID        string
	Kind      string
	Doc       map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence boundary shared by all entities.
type Store interface {
	// Insert persists a new record. Timestamps are set by the store.
	Insert(ctx context.Context, rec Record) error

	// Update merges fields into the record's document and refreshes
	// UpdatedAt. Returns ErrNotFound if the record does not exist.
	Update(ctx context.Context, kind, id string, fields map[string]any) error

	// Remove deletes every record matching the filter and reports how many
	// were removed.
	Remove(ctx context.Context, kind string, f Filter) (int64, error)

	// FindOne loads a record by identifier. Returns ErrNotFound if absent.
	FindOne(ctx context.Context, kind, id string) (Record, error)

	// Find returns all records matching the filter.
	Find(ctx context.Context, kind string, f Filter) ([]Record, error)

	// Count reports how many records match the filter.
	Count(ctx context.Context, kind string, f Filter) (int64, error)

	// Sum adds up a numeric document field across all records matching the
	// filter. Records where the field is absent or non-numeric contribute
	// nothing.
	Sum(ctx context.Context, kind string, f Filter, field string) (float64, error)
}

// AsNumber reports v as a float64 if it holds any numeric type produced by
// JSON decoding or by Go callers.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// matches reports whether a record satisfies the filter under JSON value
// semantics (numbers compare numerically regardless of concrete type).
func matches(rec Record, f Filter) bool {
	for field, want := range f {
		if field == FilterID {
			s, ok := want.(string)
			if !ok || rec.ID != s {
				return false
			}
			continue
		}
		got, ok := rec.Doc[field]
		if !ok {
			return false
		}
		if !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if na, ok := AsNumber(a); ok {
		nb, okb := AsNumber(b)
		return okb && na == nb
	}
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case nil:
		return b == nil
	default:
		ra, era := json.Marshal(a)
		rb, erb := json.Marshal(b)
		return era == nil && erb == nil && string(ra) == string(rb)
	}
}
