package record

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tair/stockroom/internal/storage"
)

func TestNewSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	if b.ID() == "" {
		t.Fatal("New must assign an identifier")
	}
	b.Set("name", "bolt")
	b.Set("totalCount", int64(10))

	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other := Attach(store, storage.KindItem, b.ID())
	name, err := other.Get(ctx, "name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if name != "bolt" {
		t.Errorf("name = %v, want bolt", name)
	}
	if n, ok := IntValue(mustGet(t, other, "totalCount")); !ok || n != 10 {
		t.Errorf("totalCount = %v, want 10", mustGet(t, other, "totalCount"))
	}
}

func TestGetUnsavedReturnsNil(t *testing.T) {
	ctx := context.Background()
	b := Attach(storage.NewMemoryStore(), storage.KindItem, "absent")

	v, err := b.Get(ctx, "name")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Errorf("Get on absent record = %v, want nil", v)
	}

	// Absence is cached; the dirty value is still readable afterwards.
	b.Set("name", "pending")
	v, _ = b.Get(ctx, "name")
	if v != "pending" {
		t.Errorf("pending value = %v, want pending", v)
	}
}

func TestGetPrefersDirtyOverStored(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	b.Set("name", "bolt")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b.Set("name", "nut")
	if v := mustGet(t, b, "name"); v != "nut" {
		t.Errorf("Get = %v, want pending value nut", v)
	}

	// The store still holds the old value until the next Save.
	rec, _ := store.FindOne(ctx, storage.KindItem, b.ID())
	if rec.Doc["name"] != "bolt" {
		t.Errorf("stored name = %v, want bolt", rec.Doc["name"])
	}
}

func TestSetTimestampFieldsIgnored(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	b.Set("name", "bolt")
	b.Set(FieldCreatedAt, "1999-01-01T00:00:00Z")
	b.Set(FieldUpdatedAt, "1999-01-01T00:00:00Z")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, _ := store.FindOne(ctx, storage.KindItem, b.ID())
	if _, ok := rec.Doc[FieldCreatedAt]; ok {
		t.Error("createdAt leaked into the document")
	}
	if _, ok := rec.Doc[FieldUpdatedAt]; ok {
		t.Error("updatedAt leaked into the document")
	}
}

func TestTimestampsFollowSaves(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)

	created, err := b.CreatedAt(ctx)
	if err != nil {
		t.Fatalf("CreatedAt: %v", err)
	}
	if created != nil {
		t.Errorf("CreatedAt before save = %v, want nil", created)
	}

	b.Set("name", "bolt")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	created1 := mustTime(t, b.CreatedAt)
	updated1 := mustTime(t, b.UpdatedAt)

	time.Sleep(5 * time.Millisecond)
	b.Set("name", "nut")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	created2 := mustTime(t, b.CreatedAt)
	updated2 := mustTime(t, b.UpdatedAt)

	if !created2.Equal(created1) {
		t.Errorf("createdAt changed across saves: %v then %v", created1, created2)
	}
	if !updated2.After(updated1) {
		t.Errorf("updatedAt did not advance: %v then %v", updated1, updated2)
	}
}

func TestGetRoutesTimestampFields(t *testing.T) {
	ctx := context.Background()
	b := New(storage.NewMemoryStore(), storage.KindItem)
	b.Set("name", "bolt")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	v, err := b.Get(ctx, FieldCreatedAt)
	if err != nil {
		t.Fatalf("Get createdAt: %v", err)
	}
	if _, ok := v.(time.Time); !ok {
		t.Errorf("Get(createdAt) = %T, want time.Time", v)
	}
}

func TestFetchKeepsPendingChanges(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	b.Set("name", "bolt")
	b.Set("totalCount", 10)
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Another writer changes the stored document.
	if err := store.Update(ctx, storage.KindItem, b.ID(), map[string]any{"totalCount": 99}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	b.Set("name", "nut")
	if err := b.Fetch(ctx); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if n, _ := IntValue(mustGet(t, b, "totalCount")); n != 99 {
		t.Errorf("totalCount after Fetch = %v, want 99", n)
	}
	// The pending change survives the reload and commits on the next Save.
	if v := mustGet(t, b, "name"); v != "nut" {
		t.Errorf("pending name after Fetch = %v, want nut", v)
	}
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save after Fetch: %v", err)
	}
	rec, _ := store.FindOne(ctx, storage.KindItem, b.ID())
	if rec.Doc["name"] != "nut" {
		t.Errorf("stored name = %v, want nut", rec.Doc["name"])
	}
}

func TestFetchMissing(t *testing.T) {
	b := Attach(storage.NewMemoryStore(), storage.KindItem, "absent")
	if err := b.Fetch(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Fetch err = %v, want ErrNotFound", err)
	}
}

func TestGetAfterSaveOnAttached(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	b.Set("name", "bolt")
	b.Set("totalCount", int64(10))
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// An attached instance that saves one field without ever reading must
	// still serve the other stored fields from the store afterwards.
	other := Attach(store, storage.KindItem, b.ID())
	other.Set("name", "nut")
	if err := other.Save(ctx); err != nil {
		t.Fatalf("Save on attached: %v", err)
	}

	if n, ok := IntValue(mustGet(t, other, "totalCount")); !ok || n != 10 {
		t.Errorf("totalCount after Save = %v, want 10", mustGet(t, other, "totalCount"))
	}
	if v := mustGet(t, other, "name"); v != "nut" {
		t.Errorf("name after Save = %v, want nut", v)
	}
}

func TestSaveUpdatesOnlyDirtyFields(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	b.Set("name", "bolt")
	b.Set("totalCount", 10)
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A concurrent write to an untouched field must not be clobbered.
	if err := store.Update(ctx, storage.KindItem, b.ID(), map[string]any{"totalCount": 50}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	b.Set("name", "nut")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	rec, _ := store.FindOne(ctx, storage.KindItem, b.ID())
	if rec.Doc["name"] != "nut" {
		t.Errorf("name = %v, want nut", rec.Doc["name"])
	}
	if n, _ := storage.AsNumber(rec.Doc["totalCount"]); n != 50 {
		t.Errorf("totalCount = %v, want 50 (clean field overwritten)", rec.Doc["totalCount"])
	}
}

func TestDeleteOrphansInstance(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	b := New(store, storage.KindItem)
	b.Set("name", "bolt")
	if err := b.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v := mustGet(t, b, "name"); v != "bolt" {
		t.Fatalf("name = %v, want bolt", v)
	}

	if err := b.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	exists, err := b.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("record still exists after Delete")
	}
	// The cache stays readable; the instance is orphaned, not cleared.
	if v := mustGet(t, b, "name"); v != "bolt" {
		t.Errorf("cached name after Delete = %v, want bolt", v)
	}

	if err := b.Delete(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestIntValue(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int64(7), 7, true},
		{float64(7), 7, true},
		{"42", 42, true},
		{" 8 ", 8, true},
		{"-3", -3, true},
		{float64(2.5), 0, false},
		{"2.5", 0, false},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := IntValue(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("IntValue(%v) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func mustGet(t *testing.T, b *Base, field string) any {
	t.Helper()
	v, err := b.Get(context.Background(), field)
	if err != nil {
		t.Fatalf("Get %s: %v", field, err)
	}
	return v
}

func mustTime(t *testing.T, accessor func(context.Context) (any, error)) time.Time {
	t.Helper()
	v, err := accessor(context.Background())
	if err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	ts, ok := v.(time.Time)
	if !ok {
		t.Fatalf("timestamp = %T, want time.Time", v)
	}
	return ts
}
