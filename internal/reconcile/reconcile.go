// Package reconcile implements the compensating sweep for the store's lack
// of multi-record transactions. Cascading deletes are sequences of
// independent single-record operations, so a crash between steps can leave
// reservations pointing at deleted items and links pointing at deleted
// assemblies. The sweeper removes such orphans after the fact; it runs
// periodically and every run starts from scratch.
package reconcile

import (
	"context"
	"fmt"

	assemblydomain "github.com/tair/stockroom/internal/assembly/domain"
	"github.com/tair/stockroom/internal/record"
	reservationdomain "github.com/tair/stockroom/internal/reservation/domain"
	"github.com/tair/stockroom/internal/storage"
	"github.com/tair/stockroom/pkg/logger"
)

// Report summarizes one sweep.
type Report struct {
	OrphanReservations int64
	OrphanLinks        int64
}

// Sweeper removes records whose referenced entities no longer exist.
type Sweeper struct {
	store storage.Store
}

// New creates a sweeper over the given store.
func New(store storage.Store) *Sweeper {
	return &Sweeper{store: store}
}

// Run performs one full sweep. The first store error aborts the run; the
// next scheduled run starts over.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	var report Report

	orphanReservations, err := s.sweepReservations(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep reservations: %w", err)
	}
	report.OrphanReservations = orphanReservations

	orphanLinks, err := s.sweepLinks(ctx)
	if err != nil {
		return report, fmt.Errorf("sweep links: %w", err)
	}
	report.OrphanLinks = orphanLinks

	if report.OrphanReservations > 0 || report.OrphanLinks > 0 {
		logger.Info(ctx).
			Int64("orphan_reservations", report.OrphanReservations).
			Int64("orphan_links", report.OrphanLinks).
			Msg("Reconciliation removed orphaned records")
	}
	return report, nil
}

// sweepReservations removes reservations whose item no longer exists.
func (s *Sweeper) sweepReservations(ctx context.Context) (int64, error) {
	recs, err := s.store.Find(ctx, storage.KindReservation, nil)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, rec := range recs {
		itemRef, _ := record.StringValue(rec.Doc[reservationdomain.FieldItemRef])
		ok, err := s.exists(ctx, storage.KindItem, itemRef)
		if err != nil {
			return removed, err
		}
		if ok {
			continue
		}
		n, err := s.store.Remove(ctx, storage.KindReservation,
			storage.Filter{storage.FilterID: rec.ID})
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

// sweepLinks removes edges whose parent or child assembly no longer exists.
func (s *Sweeper) sweepLinks(ctx context.Context) (int64, error) {
	recs, err := s.store.Find(ctx, storage.KindLink, nil)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, rec := range recs {
		parentRef, _ := record.StringValue(rec.Doc[assemblydomain.FieldParentRef])
		childRef, _ := record.StringValue(rec.Doc[assemblydomain.FieldChildRef])

		parentOK, err := s.exists(ctx, storage.KindAssembly, parentRef)
		if err != nil {
			return removed, err
		}
		childOK, err := s.exists(ctx, storage.KindAssembly, childRef)
		if err != nil {
			return removed, err
		}
		if parentOK && childOK {
			continue
		}
		n, err := s.store.Remove(ctx, storage.KindLink,
			storage.Filter{storage.FilterID: rec.ID})
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

func (s *Sweeper) exists(ctx context.Context, kind, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := s.store.Count(ctx, kind, storage.Filter{storage.FilterID: id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
