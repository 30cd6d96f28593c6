package storage

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("record-store")

var _ Store = (*TracedStore)(nil)

// TracedStore wraps a Store with an otel span per operation.
type TracedStore struct {
	next Store
}

// NewTracedStore decorates the given store with tracing.
func NewTracedStore(next Store) *TracedStore {
	return &TracedStore{next: next}
}

func (s *TracedStore) Insert(ctx context.Context, rec Record) error {
	ctx, span := tracer.Start(ctx, "store.Insert",
		trace.WithAttributes(
			attribute.String("record.kind", rec.Kind),
			attribute.String("record.id", rec.ID),
		),
	)
	defer span.End()

	err := s.next.Insert(ctx, rec)
	recordSpanError(span, err)
	return err
}

func (s *TracedStore) Update(ctx context.Context, kind, id string, fields map[string]any) error {
	ctx, span := tracer.Start(ctx, "store.Update",
		trace.WithAttributes(
			attribute.String("record.kind", kind),
			attribute.String("record.id", id),
			attribute.Int("fields.count", len(fields)),
		),
	)
	defer span.End()

	err := s.next.Update(ctx, kind, id, fields)
	recordSpanError(span, err)
	return err
}

func (s *TracedStore) Remove(ctx context.Context, kind string, f Filter) (int64, error) {
	ctx, span := tracer.Start(ctx, "store.Remove",
		trace.WithAttributes(attribute.String("record.kind", kind)),
	)
	defer span.End()

	n, err := s.next.Remove(ctx, kind, f)
	recordSpanError(span, err)
	span.SetAttributes(attribute.Int64("records.removed", n))
	return n, err
}

func (s *TracedStore) FindOne(ctx context.Context, kind, id string) (Record, error) {
	ctx, span := tracer.Start(ctx, "store.FindOne",
		trace.WithAttributes(
			attribute.String("record.kind", kind),
			attribute.String("record.id", id),
		),
	)
	defer span.End()

	rec, err := s.next.FindOne(ctx, kind, id)
	recordSpanError(span, err)
	return rec, err
}

func (s *TracedStore) Find(ctx context.Context, kind string, f Filter) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "store.Find",
		trace.WithAttributes(attribute.String("record.kind", kind)),
	)
	defer span.End()

	recs, err := s.next.Find(ctx, kind, f)
	recordSpanError(span, err)
	span.SetAttributes(attribute.Int("records.found", len(recs)))
	return recs, err
}

func (s *TracedStore) Count(ctx context.Context, kind string, f Filter) (int64, error) {
	ctx, span := tracer.Start(ctx, "store.Count",
		trace.WithAttributes(attribute.String("record.kind", kind)),
	)
	defer span.End()

	n, err := s.next.Count(ctx, kind, f)
	recordSpanError(span, err)
	return n, err
}

func (s *TracedStore) Sum(ctx context.Context, kind string, f Filter, field string) (float64, error) {
	ctx, span := tracer.Start(ctx, "store.Sum",
		trace.WithAttributes(
			attribute.String("record.kind", kind),
			attribute.String("sum.field", field),
		),
	)
	defer span.End()

	total, err := s.next.Sum(ctx, kind, f, field)
	recordSpanError(span, err)
	return total, err
}

func recordSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
