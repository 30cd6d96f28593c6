// Package domain implements the restock request entity. Requests record
// demand for an item; they never affect its availability.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/tair/stockroom/internal/record"
	"github.com/tair/stockroom/internal/storage"
)

// Stored field names.
const (
	FieldItemRef      = "itemRef"
	FieldRequesterRef = "requesterRef"
	FieldQuantity     = "quantity"
	FieldStatus       = "status"
	FieldETA          = "eta"
)

// Status labels. These are labels only, not a state machine: any label may
// be set from any other at any time.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusDelayed    = "delayed"
	StatusFulfilled  = "fulfilled"
)

var (
	// ErrInvalidQuantity is returned when the quantity setter receives a
	// value that is not a positive integer.
	ErrInvalidQuantity = errors.New("request quantity must be a positive integer")

	// ErrInvalidStatus is returned for any status outside the four labels.
	ErrInvalidStatus = errors.New("request status must be one of waiting, in_progress, delayed, fulfilled")

	// ErrInvalidETA is returned when the eta setter receives a value that
	// does not parse as a timestamp.
	ErrInvalidETA = errors.New("request eta must be a timestamp")

	// ErrEmptyRef is returned when a reference setter receives an empty or
	// non-string identifier.
	ErrEmptyRef = errors.New("reference must be a non-empty string")
)

var validStatus = map[string]bool{
	StatusWaiting:    true,
	StatusInProgress: true,
	StatusDelayed:    true,
	StatusFulfilled:  true,
}

// Request is backed by one record in the request collection.
type Request struct {
	*record.Base
}

// New creates an unsaved request with a fresh identifier.
func New(store storage.Store) *Request {
	return &Request{record.New(store, storage.KindRequest)}
}

// Attach binds to an existing request identifier without loading it.
func Attach(store storage.Store, id string) *Request {
	return &Request{record.Attach(store, storage.KindRequest, id)}
}

// SetItemRef stages the referenced item identifier.
func (r *Request) SetItemRef(v any) error {
	s, ok := record.StringValue(v)
	if !ok || s == "" {
		return ErrEmptyRef
	}
	r.Set(FieldItemRef, s)
	return nil
}

// ItemRef returns the referenced item identifier, empty if unset.
func (r *Request) ItemRef(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, FieldItemRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetRequesterRef stages the requesting party identifier.
func (r *Request) SetRequesterRef(v any) error {
	s, ok := record.StringValue(v)
	if !ok || s == "" {
		return ErrEmptyRef
	}
	r.Set(FieldRequesterRef, s)
	return nil
}

// RequesterRef returns the requesting party identifier, empty if unset.
func (r *Request) RequesterRef(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, FieldRequesterRef)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetQuantity validates and stages the requested quantity.
func (r *Request) SetQuantity(v any) error {
	n, ok := record.IntValue(v)
	if !ok || n <= 0 {
		return ErrInvalidQuantity
	}
	r.Set(FieldQuantity, n)
	return nil
}

// Quantity returns the requested quantity, 0 if unset.
func (r *Request) Quantity(ctx context.Context) (int64, error) {
	v, err := r.Get(ctx, FieldQuantity)
	if err != nil {
		return 0, err
	}
	n, _ := record.IntValue(v)
	return n, nil
}

// SetStatus validates the label and stages it. Transitions are deliberately
// unconstrained.
func (r *Request) SetStatus(v any) error {
	s, ok := record.StringValue(v)
	if !ok || !validStatus[s] {
		return ErrInvalidStatus
	}
	r.Set(FieldStatus, s)
	return nil
}

// Status returns the current label, empty if unset.
func (r *Request) Status(ctx context.Context) (string, error) {
	v, err := r.Get(ctx, FieldStatus)
	if err != nil {
		return "", err
	}
	s, _ := record.StringValue(v)
	return s, nil
}

// SetETA parses and stages the expected arrival time. Accepts a time.Time
// or an RFC 3339 string.
func (r *Request) SetETA(v any) error {
	switch t := v.(type) {
	case time.Time:
		r.Set(FieldETA, t.UTC().Format(time.RFC3339))
		return nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return ErrInvalidETA
		}
		r.Set(FieldETA, parsed.UTC().Format(time.RFC3339))
		return nil
	default:
		return ErrInvalidETA
	}
}

// ETA returns the expected arrival time; the zero time means unset.
func (r *Request) ETA(ctx context.Context) (time.Time, error) {
	v, err := r.Get(ctx, FieldETA)
	if err != nil {
		return time.Time{}, err
	}
	s, ok := record.StringValue(v)
	if !ok || s == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, ErrInvalidETA
	}
	return parsed, nil
}
