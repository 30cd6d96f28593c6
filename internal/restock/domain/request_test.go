package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tair/stockroom/internal/storage"
)

func TestStatusLabels(t *testing.T) {
	req := New(storage.NewMemoryStore())

	for _, s := range []string{StatusWaiting, StatusInProgress, StatusDelayed, StatusFulfilled} {
		if err := req.SetStatus(s); err != nil {
			t.Errorf("SetStatus(%s) = %v", s, err)
		}
	}
	if err := req.SetStatus("shipped"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus(shipped) = %v, want ErrInvalidStatus", err)
	}
	if err := req.SetStatus(3); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus(3) = %v, want ErrInvalidStatus", err)
	}
}

func TestStatusTransitionsUnconstrained(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	req := New(store)
	if err := req.SetItemRef("item-1"); err != nil {
		t.Fatalf("SetItemRef: %v", err)
	}
	if err := req.SetStatus(StatusFulfilled); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := req.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Any label may replace any other, fulfilled back to waiting included.
	if err := req.SetStatus(StatusWaiting); err != nil {
		t.Fatalf("SetStatus back to waiting: %v", err)
	}
	if err := req.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	status, err := req.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != StatusWaiting {
		t.Errorf("status = %s, want waiting", status)
	}
}

func TestETA(t *testing.T) {
	ctx := context.Background()
	req := New(storage.NewMemoryStore())

	eta, err := req.ETA(ctx)
	if err != nil {
		t.Fatalf("ETA unset: %v", err)
	}
	if !eta.IsZero() {
		t.Errorf("unset eta = %v, want zero time", eta)
	}

	want := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	if err := req.SetETA(want); err != nil {
		t.Fatalf("SetETA(time.Time): %v", err)
	}
	eta, err = req.ETA(ctx)
	if err != nil {
		t.Fatalf("ETA: %v", err)
	}
	if !eta.Equal(want) {
		t.Errorf("eta = %v, want %v", eta, want)
	}

	if err := req.SetETA("2026-10-01T08:30:00Z"); err != nil {
		t.Fatalf("SetETA(string): %v", err)
	}
	if err := req.SetETA("next tuesday"); !errors.Is(err, ErrInvalidETA) {
		t.Errorf("SetETA(garbage) = %v, want ErrInvalidETA", err)
	}
	if err := req.SetETA(12345); !errors.Is(err, ErrInvalidETA) {
		t.Errorf("SetETA(12345) = %v, want ErrInvalidETA", err)
	}
}
