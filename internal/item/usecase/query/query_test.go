package query

import (
	"context"
	"errors"
	"testing"

	"github.com/tair/stockroom/internal/storage"
)

func seed(t *testing.T, store storage.Store, id, name string, total int64) {
	t.Helper()
	err := store.Insert(context.Background(), storage.Record{
		ID:   id,
		Kind: storage.KindItem,
		Doc:  map[string]any{"name": name, "totalCount": total},
	})
	if err != nil {
		t.Fatalf("seed item %s: %v", id, err)
	}
}

func TestGetItemSummary(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seed(t, store, "item-1", "bolt", 10)
	if err := store.Insert(ctx, storage.Record{
		ID:   "res-a",
		Kind: storage.KindReservation,
		Doc:  map[string]any{"itemRef": "item-1", "quantity": 4},
	}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	summary, err := NewGetItemSummaryHandler(store).Handle(ctx, GetItemSummaryQuery{ID: "item-1"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if summary["name"] != "bolt" {
		t.Errorf("name = %v, want bolt", summary["name"])
	}
	if summary["availableQuantity"] != int64(6) {
		t.Errorf("availableQuantity = %v, want 6", summary["availableQuantity"])
	}
}

func TestGetItemSummaryMissing(t *testing.T) {
	_, err := NewGetItemSummaryHandler(storage.NewMemoryStore()).Handle(context.Background(), GetItemSummaryQuery{ID: "absent"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Handle = %v, want ErrNotFound", err)
	}
}

func TestListItems(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	summaries, err := NewListItemsHandler(store).Handle(ctx, ListItemsQuery{})
	if err != nil {
		t.Fatalf("Handle empty: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("summaries = %v, want empty", summaries)
	}

	seed(t, store, "item-1", "bolt", 10)
	seed(t, store, "item-2", "nut", 5)

	summaries, err = NewListItemsHandler(store).Handle(ctx, ListItemsQuery{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	names := map[any]bool{}
	for _, s := range summaries {
		names[s["name"]] = true
	}
	if !names["bolt"] || !names["nut"] {
		t.Errorf("names = %v, want bolt and nut", names)
	}
}
