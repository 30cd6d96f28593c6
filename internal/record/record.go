// Package record implements the persistence base shared by every ledger
// entity: identity, a lazily loaded field cache, dirty-field tracking and
// upsert-style save/delete against the record store.
package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tair/stockroom/internal/storage"
)

// Timestamp field names. Both are managed by the store and cannot be set
// through Set.
const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Base binds one document to a store collection. A Base is not safe for
// concurrent use; each logical flow of control works on its own instance and
// the cache is never shared across instances.
type Base struct {
	store storage.Store
	kind  string
	id    string

	loaded  bool
	cache   map[string]any
	dirty   map[string]any
	tsValid bool
	created any
	updated any
}

// New allocates a fresh identity with no backing record and no store round
// trip.
func New(store storage.Store, kind string) *Base {
	return &Base{
		store:  store,
		kind:   kind,
		id:     uuid.NewString(),
		loaded: true,
		cache:  map[string]any{},
		dirty:  map[string]any{},
	}
}

// Attach binds to an existing identifier. No fields are loaded until the
// first access.
func Attach(store storage.Store, kind, id string) *Base {
	return &Base{
		store: store,
		kind:  kind,
		id:    id,
		cache: map[string]any{},
		dirty: map[string]any{},
	}
}

// ID returns the record identifier.
func (b *Base) ID() string {
	return b.id
}

// Kind returns the backing collection kind.
func (b *Base) Kind() string {
	return b.kind
}

// Store exposes the underlying store for cross-entity aggregate queries.
func (b *Base) Store() storage.Store {
	return b.store
}

// Get returns the field value: a pending local change if one exists, else
// the cached value, else the value loaded from the store. Returns nil when
// the field or the backing record is absent; the absence is cached too.
func (b *Base) Get(ctx context.Context, field string) (any, error) {
	switch field {
	case FieldCreatedAt:
		return b.CreatedAt(ctx)
	case FieldUpdatedAt:
		return b.UpdatedAt(ctx)
	}
	if v, ok := b.dirty[field]; ok {
		return v, nil
	}
	if !b.loaded {
		if err := b.load(ctx); err != nil {
			return nil, err
		}
	}
	return b.cache[field], nil
}

// Set records an in-memory change committed by the next Save. The
// store-managed timestamp fields are silently ignored.
func (b *Base) Set(field string, value any) {
	if field == FieldCreatedAt || field == FieldUpdatedAt {
		return
	}
	b.dirty[field] = value
}

// CreatedAt returns the store-managed creation time, nil if the record was
// never saved.
func (b *Base) CreatedAt(ctx context.Context) (any, error) {
	if !b.tsValid {
		if err := b.loadTimestamps(ctx); err != nil {
			return nil, err
		}
	}
	return b.created, nil
}

// UpdatedAt returns the store-managed last-save time, nil if the record was
// never saved.
func (b *Base) UpdatedAt(ctx context.Context) (any, error) {
	if !b.tsValid {
		if err := b.loadTimestamps(ctx); err != nil {
			return nil, err
		}
	}
	return b.updated, nil
}

// Fetch reloads every stored field, overwriting the cache. Pending local
// changes that were never part of the stored document survive the reload;
// Save will still commit them.
func (b *Base) Fetch(ctx context.Context) error {
	rec, err := b.store.FindOne(ctx, b.kind, b.id)
	if err != nil {
		return err
	}
	b.applyRecord(rec)
	return nil
}

// Exists reports whether a backing record currently exists.
func (b *Base) Exists(ctx context.Context) (bool, error) {
	n, err := b.store.Count(ctx, b.kind, storage.Filter{storage.FilterID: b.id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Save inserts the record if it has no backing record yet, otherwise writes
// the dirty fields. The store sets createdAt on insert and refreshes
// updatedAt on every save.
func (b *Base) Save(ctx context.Context) error {
	exists, err := b.Exists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		doc := make(map[string]any, len(b.cache)+len(b.dirty))
		for k, v := range b.cache {
			doc[k] = v
		}
		for k, v := range b.dirty {
			doc[k] = v
		}
		err = b.store.Insert(ctx, storage.Record{ID: b.id, Kind: b.kind, Doc: doc})
	} else {
		err = b.store.Update(ctx, b.kind, b.id, b.dirty)
	}
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", b.kind, b.id, err)
	}

	for k, v := range b.dirty {
		b.cache[k] = v
	}
	b.dirty = map[string]any{}
	if !exists {
		// Only an insert makes the cache the complete document. After an
		// update on a never-loaded instance, unread stored fields must
		// still come from the store.
		b.loaded = true
	}
	b.tsValid = false
	return nil
}

// Delete removes the backing record. The in-memory cache stays readable; the
// instance is simply orphaned.
func (b *Base) Delete(ctx context.Context) error {
	n, err := b.store.Remove(ctx, b.kind, storage.Filter{storage.FilterID: b.id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", b.kind, b.id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	b.tsValid = false
	b.created = nil
	b.updated = nil
	return nil
}

func (b *Base) load(ctx context.Context) error {
	rec, err := b.store.FindOne(ctx, b.kind, b.id)
	if errors.Is(err, storage.ErrNotFound) {
		// Cache the absence so repeated reads stay local.
		b.loaded = true
		b.tsValid = true
		return nil
	}
	if err != nil {
		return err
	}
	b.applyRecord(rec)
	return nil
}

func (b *Base) loadTimestamps(ctx context.Context) error {
	rec, err := b.store.FindOne(ctx, b.kind, b.id)
	if errors.Is(err, storage.ErrNotFound) {
		b.tsValid = true
		b.created = nil
		b.updated = nil
		return nil
	}
	if err != nil {
		return err
	}
	b.tsValid = true
	b.created = rec.CreatedAt
	b.updated = rec.UpdatedAt
	return nil
}

func (b *Base) applyRecord(rec storage.Record) {
	cache := make(map[string]any, len(rec.Doc))
	for k, v := range rec.Doc {
		cache[k] = v
	}
	b.cache = cache
	b.loaded = true
	b.tsValid = true
	b.created = rec.CreatedAt
	b.updated = rec.UpdatedAt
}
