package command

import (
	"context"
	"errors"
	"testing"

	"github.com/tair/stockroom/internal/item/domain"
	"github.com/tair/stockroom/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func TestCreateItem(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	item, err := NewCreateItemHandler(store).Handle(ctx, CreateItemCommand{
		Name:       "bolt",
		TotalCount: 10,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	rec, err := store.FindOne(ctx, storage.KindItem, item.ID())
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if rec.Doc["name"] != "bolt" {
		t.Errorf("name = %v, want bolt", rec.Doc["name"])
	}
	if n, _ := storage.AsNumber(rec.Doc["totalCount"]); n != 10 {
		t.Errorf("totalCount = %v, want 10", rec.Doc["totalCount"])
	}
}

func TestCreateItemInvalid(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := NewCreateItemHandler(store)

	_, err := handler.Handle(context.Background(), CreateItemCommand{Name: "bolt", TotalCount: -1})
	if !errors.Is(err, domain.ErrInvalidTotalCount) {
		t.Fatalf("Handle = %v, want ErrInvalidTotalCount", err)
	}

	n, _ := store.Count(context.Background(), storage.KindItem, storage.Filter{})
	if n != 0 {
		t.Errorf("items persisted after rejection: %d", n)
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	item, err := NewCreateItemHandler(store).Handle(ctx, CreateItemCommand{Name: "bolt", TotalCount: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	handler := NewUpdateItemHandler(store)
	if _, err := handler.Handle(ctx, UpdateItemCommand{
		ID:         item.ID(),
		TotalCount: ptr(int64(25)),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, _ := store.FindOne(ctx, storage.KindItem, item.ID())
	if n, _ := storage.AsNumber(rec.Doc["totalCount"]); n != 25 {
		t.Errorf("totalCount = %v, want 25", rec.Doc["totalCount"])
	}
	if rec.Doc["name"] != "bolt" {
		t.Errorf("name = %v, untouched field must survive", rec.Doc["name"])
	}

	if _, err := handler.Handle(ctx, UpdateItemCommand{ID: "absent", Name: ptr("x")}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update absent = %v, want ErrNotFound", err)
	}
}

func TestDeleteItemCascades(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	item, err := NewCreateItemHandler(store).Handle(ctx, CreateItemCommand{Name: "bolt", TotalCount: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Insert(ctx, storage.Record{
		ID:   "res-a",
		Kind: storage.KindReservation,
		Doc:  map[string]any{"itemRef": item.ID(), "quantity": 4},
	}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	if err := NewDeleteItemHandler(store, nil).Handle(ctx, DeleteItemCommand{ID: item.ID()}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.FindOne(ctx, storage.KindItem, item.ID()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("item lookup = %v, want ErrNotFound", err)
	}
	n, _ := store.Count(ctx, storage.KindReservation, storage.Filter{})
	if n != 0 {
		t.Errorf("reservations = %d, want 0 after cascade", n)
	}
}

func TestDeleteItemMissing(t *testing.T) {
	err := NewDeleteItemHandler(storage.NewMemoryStore(), nil).Handle(context.Background(), DeleteItemCommand{ID: "absent"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Handle = %v, want ErrNotFound", err)
	}
}
