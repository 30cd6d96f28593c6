package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded in-memory Store used by tests and
// ephemeral setups. Documents are normalized through a JSON round trip on
// the way in so readers see the same value shapes the SQL store produces
// (numbers as float64, times as RFC 3339 strings).
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string]Record)}
}

func (s *MemoryStore) Insert(_ context.Context, rec Record) error {
	doc, err := normalizeDoc(rec.Doc)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kind := s.records[rec.Kind]
	if kind == nil {
		kind = make(map[string]Record)
		s.records[rec.Kind] = kind
	}
	if _, ok := kind[rec.ID]; ok {
		return fmt.Errorf("record %s/%s already exists", rec.Kind, rec.ID)
	}

	now := time.Now().UTC()
	rec.Doc = doc
	rec.CreatedAt = now
	rec.UpdatedAt = now
	kind[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Update(_ context.Context, kind, id string, fields map[string]any) error {
	doc, err := normalizeDoc(fields)
	if err != nil {
		return fmt.Errorf("normalize fields: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[kind][id]
	if !ok {
		return ErrNotFound
	}

	merged := make(map[string]any, len(rec.Doc)+len(doc))
	for k, v := range rec.Doc {
		merged[k] = v
	}
	for k, v := range doc {
		merged[k] = v
	}
	rec.Doc = merged
	rec.UpdatedAt = time.Now().UTC()
	s.records[kind][id] = rec
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, kind string, f Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, rec := range s.records[kind] {
		if matches(rec, f) {
			delete(s.records[kind], id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) FindOne(_ context.Context, kind, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[kind][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *MemoryStore) Find(_ context.Context, kind string, f Filter) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, rec := range s.records[kind] {
		if matches(rec, f) {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context, kind string, f Filter) (int64, error) {
	recs, err := s.Find(ctx, kind, f)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

func (s *MemoryStore) Sum(ctx context.Context, kind string, f Filter, field string) (float64, error) {
	recs, err := s.Find(ctx, kind, f)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, rec := range recs {
		if n, ok := AsNumber(rec.Doc[field]); ok {
			total += n
		}
	}
	return total, nil
}

func normalizeDoc(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(doc))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneRecord(rec Record) Record {
	doc := make(map[string]any, len(rec.Doc))
	for k, v := range rec.Doc {
		doc[k] = v
	}
	rec.Doc = doc
	return rec
}
