package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/tair/stockroom/internal/storage"
)

func TestSetters(t *testing.T) {
	res := New(storage.NewMemoryStore())

	if err := res.SetItemRef(""); !errors.Is(err, ErrEmptyRef) {
		t.Errorf("SetItemRef(\"\") = %v, want ErrEmptyRef", err)
	}
	if err := res.SetRequesterRef(7); !errors.Is(err, ErrEmptyRef) {
		t.Errorf("SetRequesterRef(7) = %v, want ErrEmptyRef", err)
	}
	if err := res.SetQuantity(0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("SetQuantity(0) = %v, want ErrInvalidQuantity", err)
	}
	if err := res.SetQuantity(-2); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("SetQuantity(-2) = %v, want ErrInvalidQuantity", err)
	}
	if err := res.SetQuantity(1.5); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("SetQuantity(1.5) = %v, want ErrInvalidQuantity", err)
	}
	if err := res.SetQuantity("3"); err != nil {
		t.Errorf("SetQuantity(\"3\") = %v, numeric strings must coerce", err)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	res := New(store)
	if err := res.SetItemRef("item-1"); err != nil {
		t.Fatalf("SetItemRef: %v", err)
	}
	if err := res.SetRequesterRef("user-1"); err != nil {
		t.Fatalf("SetRequesterRef: %v", err)
	}
	if err := res.SetQuantity(int64(4)); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if err := res.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again := Attach(store, res.ID())
	qty, err := again.Quantity(ctx)
	if err != nil {
		t.Fatalf("Quantity: %v", err)
	}
	if qty != 4 {
		t.Errorf("quantity = %d, want 4", qty)
	}
	ref, _ := again.ItemRef(ctx)
	if ref != "item-1" {
		t.Errorf("itemRef = %q, want item-1", ref)
	}
}

func TestItemResolver(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	res := New(store)
	item, err := res.Item(ctx)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if item != nil {
		t.Errorf("Item with no reference = %v, want nil", item)
	}

	if err := res.SetItemRef("item-1"); err != nil {
		t.Fatalf("SetItemRef: %v", err)
	}
	item, err = res.Item(ctx)
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if item == nil || item.ID() != "item-1" {
		t.Errorf("Item = %v, want handle on item-1", item)
	}
}
