package domain

import (
	"context"
	"errors"

	itemdomain "github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/record"
	"github.com/tair/stockroom/internal/storage"
)

// ErrInvalidRequirement is returned when a requirement entry carries a
// non-positive quantity or no item reference.
var ErrInvalidRequirement = errors.New("requirement needs an item reference and a positive quantity")

// Requirement is a value object embedded in an assembly's record: how much
// of which item the assembly needs, optionally linked to a fulfilling
// reservation. Requirements are never persisted on their own.
type Requirement struct {
	ItemRef        string `json:"itemRef"`
	Quantity       int64  `json:"quantity"`
	ReservationRef string `json:"reservationRef,omitempty"`
}

// valid reports whether the referenced item still exists. This single check
// backs both the lazy read-time filter and the eager write-time filter.
func (r Requirement) valid(ctx context.Context, store storage.Store) (bool, error) {
	if r.ItemRef == "" {
		return false, nil
	}
	return itemdomain.Attach(store, r.ItemRef).Exists(ctx)
}

// Reservable reports whether the requirement can still be backed by a new
// reservation: it has none yet and the item's available quantity exceeds the
// required quantity.
func (r Requirement) Reservable(ctx context.Context, store storage.Store) (bool, error) {
	if r.ReservationRef != "" {
		return false, nil
	}
	item := itemdomain.Attach(store, r.ItemRef)
	exists, err := item.Exists(ctx)
	if err != nil || !exists {
		return false, err
	}
	available, err := item.AvailableQuantity(ctx)
	if err != nil {
		return false, err
	}
	return available > r.Quantity, nil
}

func decodeRequirements(v any) []Requirement {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Requirement, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		var req Requirement
		req.ItemRef, _ = record.StringValue(m["itemRef"])
		req.Quantity, _ = record.IntValue(m["quantity"])
		req.ReservationRef, _ = record.StringValue(m["reservationRef"])
		out = append(out, req)
	}
	return out
}

func encodeRequirements(reqs []Requirement) []any {
	out := make([]any, 0, len(reqs))
	for _, r := range reqs {
		m := map[string]any{
			"itemRef":  r.ItemRef,
			"quantity": r.Quantity,
		}
		if r.ReservationRef != "" {
			m["reservationRef"] = r.ReservationRef
		}
		out = append(out, m)
	}
	return out
}
