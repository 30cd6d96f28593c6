package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_store_operations_total",
		Help: "Record store operations by kind and outcome",
	}, []string{"op", "kind", "status"})

	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockroom_store_operation_duration_seconds",
		Help:    "Record store operation latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "kind"})
)

var _ Store = (*InstrumentedStore)(nil)

// InstrumentedStore wraps a Store with prometheus counters and latency
// histograms.
type InstrumentedStore struct {
	next Store
}

// NewInstrumentedStore decorates the given store with metrics.
func NewInstrumentedStore(next Store) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func observe(op, kind string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}
	storeOps.WithLabelValues(op, kind, status).Inc()
	storeLatency.WithLabelValues(op, kind).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Insert(ctx context.Context, rec Record) error {
	start := time.Now()
	err := s.next.Insert(ctx, rec)
	observe("insert", rec.Kind, start, err)
	return err
}

func (s *InstrumentedStore) Update(ctx context.Context, kind, id string, fields map[string]any) error {
	start := time.Now()
	err := s.next.Update(ctx, kind, id, fields)
	observe("update", kind, start, err)
	return err
}

func (s *InstrumentedStore) Remove(ctx context.Context, kind string, f Filter) (int64, error) {
	start := time.Now()
	n, err := s.next.Remove(ctx, kind, f)
	observe("remove", kind, start, err)
	return n, err
}

func (s *InstrumentedStore) FindOne(ctx context.Context, kind, id string) (Record, error) {
	start := time.Now()
	rec, err := s.next.FindOne(ctx, kind, id)
	observe("find_one", kind, start, err)
	return rec, err
}

func (s *InstrumentedStore) Find(ctx context.Context, kind string, f Filter) ([]Record, error) {
	start := time.Now()
	recs, err := s.next.Find(ctx, kind, f)
	observe("find", kind, start, err)
	return recs, err
}

func (s *InstrumentedStore) Count(ctx context.Context, kind string, f Filter) (int64, error) {
	start := time.Now()
	n, err := s.next.Count(ctx, kind, f)
	observe("count", kind, start, err)
	return n, err
}

func (s *InstrumentedStore) Sum(ctx context.Context, kind string, f Filter, field string) (float64, error) {
	start := time.Now()
	total, err := s.next.Sum(ctx, kind, f, field)
	observe("sum", kind, start, err)
	return total, err
}
