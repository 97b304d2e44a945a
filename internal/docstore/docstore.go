// Package docstore holds the persistence pattern every domain module
// uses: load one JSON document from the kvstore at construction, keep it
// in memory, write it back after every mutation.
//
// Storage is best-effort. A document that fails to parse falls back to
// its defaults, and a write that fails (including on quota) is logged
// while the in-memory state keeps the mutation. Callers never see
// storage errors from these types.
package docstore

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"go.uber.org/zap"
)

// ErrNotFound is returned when an id does not match any record.
var ErrNotFound = errors.New("not found")

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Toucher is implemented by documents that carry an UpdatedAt stamp.
type Toucher interface {
	Touch(t time.Time)
}

// Document is a single JSON object persisted under one key.
type Document[T any] struct {
	mu       sync.RWMutex
	store    kvstore.Store
	key      string
	defaults func() T
	value    T
	log      *zap.Logger
}

// NewDocument loads key from store. The stored JSON is decoded over a
// fresh copy of the defaults, so fields missing from older documents
// keep their default values.
func NewDocument[T any](store kvstore.Store, key string, defaults func() T, log *zap.Logger) *Document[T] {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Document[T]{store: store, key: key, defaults: defaults, log: log}
	d.value = d.load()
	return d
}

func (d *Document[T]) load() T {
	v := d.defaults()
	raw, ok, err := d.store.Get(d.key)
	if err != nil {
		d.log.Warn("docstore: read", zap.String("key", d.key), zap.Error(err))
		return v
	}
	if !ok {
		return v
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		d.log.Warn("docstore: parse, using defaults", zap.String("key", d.key), zap.Error(err))
		return d.defaults()
	}
	return v
}

// Key returns the storage key.
func (d *Document[T]) Key() string { return d.key }

// Get returns the current value.
func (d *Document[T]) Get() T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.value
}

// Update applies fn to a copy of the value, stamps it if it implements
// Toucher, stores it and returns the result.
func (d *Document[T]) Update(fn func(*T)) T {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := d.value
	fn(&next)
	touch(&next)
	d.value = next
	d.persist()
	return next
}

// Reset restores the defaults and persists them.
func (d *Document[T]) Reset() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = d.defaults()
	d.persist()
	return d.value
}

// Encode returns the JSON v would be stored as. Used to batch several
// documents into one kvstore.SetMany.
func (d *Document[T]) Encode(v T) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}

// Commit runs fn with the document locked. fn gets the current value,
// writes what it returns itself, and the document installs that result.
// If fn fails nothing changes. Update calls made meanwhile wait.
func (d *Document[T]) Commit(fn func(v T) (T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := fn(d.value)
	if err != nil {
		return err
	}
	d.value = next
	return nil
}

func (d *Document[T]) persist() {
	b, err := json.Marshal(d.value)
	if err != nil {
		d.log.Warn("docstore: encode", zap.String("key", d.key), zap.Error(err))
		return
	}
	if err := d.store.Set(d.key, string(b)); err != nil {
		d.log.Warn("docstore: write", zap.String("key", d.key), zap.Error(err))
	}
}

func touch(v any) {
	if t, ok := v.(Toucher); ok {
		t.Touch(timeNow().UTC())
	}
}
