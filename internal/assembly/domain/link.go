package domain

import (
	"context"

	"github.com/tair/stockroom/internal/record"
	"github.com/tair/stockroom/internal/storage"
)

// Link field names.
const (
	FieldParentRef = "parentRef"
	FieldChildRef  = "childRef"
)

// Link is one independently persisted parent-to-child edge of the assembly
// tree. An assembly's children and parent are always derived from these
// edges, never stored on the assembly itself.
type Link struct {
	*record.Base
}

// NewLink creates an unsaved edge.
func NewLink(store storage.Store, parentRef, childRef string) *Link {
	l := &Link{record.New(store, storage.KindLink)}
	l.Set(FieldParentRef, parentRef)
	l.Set(FieldChildRef, childRef)
	return l
}

// AttachLink binds to an existing edge identifier.
func AttachLink(store storage.Store, id string) *Link {
	return &Link{record.Attach(store, storage.KindLink, id)}
}

// ParentRef returns the parent assembly identifier.
func (l *Link) ParentRef(ctx context.Context) (string, error) {
	v, err := l.Get(ctx, FieldParentRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// ChildRef returns the child assembly identifier.
func (l *Link) ChildRef(ctx context.Context) (string, error) {
	v, err := l.Get(ctx, FieldChildRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// childEdges returns the current edges under a parent as childRef to edge id.
func childEdges(ctx context.Context, store storage.Store, parentID string) (map[string]string, error) {
	recs, err := store.Find(ctx, storage.KindLink, storage.Filter{FieldParentRef: parentID})
	if err != nil {
		return nil, err
	}
	edges := make(map[string]string, len(recs))
	for _, rec := range recs {
		child, _ := record.StringValue(rec.Doc[FieldChildRef])
		if child != "" {
			edges[child] = rec.ID
		}
	}
	return edges, nil
}

// parentEdge returns the single parent edge of a child, if any, as parentRef
// and edge id.
func parentEdge(ctx context.Context, store storage.Store, childID string) (string, string, error) {
	recs, err := store.Find(ctx, storage.KindLink, storage.Filter{FieldChildRef: childID})
	if err != nil {
		return "", "", err
	}
	if len(recs) == 0 {
		return "", "", nil
	}
	parent, _ := record.StringValue(recs[0].Doc[FieldParentRef])
	return parent, recs[0].ID, nil
}
