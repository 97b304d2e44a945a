package docstore

import (
	"encoding/json"
	"sync"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"go.uber.org/zap"
)

// Item is a record with a stable id.
type Item interface {
	GetID() string
}

// Collection is a JSON array of records persisted under one key.
// Records keep insertion order.
type Collection[T Item] struct {
	mu    sync.RWMutex
	store kvstore.Store
	key   string
	items []T
	log   *zap.Logger
}

// NewCollection loads key from store. A missing or unparseable array
// starts empty.
func NewCollection[T Item](store kvstore.Store, key string, log *zap.Logger) *Collection[T] {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Collection[T]{store: store, key: key, log: log}
	c.items = c.load()
	return c
}

func (c *Collection[T]) load() []T {
	raw, ok, err := c.store.Get(c.key)
	if err != nil {
		c.log.Warn("docstore: read", zap.String("key", c.key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.log.Warn("docstore: parse, starting empty", zap.String("key", c.key), zap.Error(err))
		return nil
	}
	return items
}

// Key returns the storage key.
func (c *Collection[T]) Key() string { return c.key }

// List returns a copy of all records.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of records.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Find returns the record with the given id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the records keep accepts.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []T
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Add appends item and persists.
func (c *Collection[T]) Add(item T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	c.persist()
	return item
}

// Update applies fn to the record with id and persists.
func (c *Collection[T]) Update(id string, fn func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].GetID() != id {
			continue
		}
		next := c.items[i]
		fn(&next)
		touch(&next)
		c.items[i] = next
		c.persist()
		return next, nil
	}
	var zero T
	return zero, ErrNotFound
}

// Delete removes the record with id and persists.
func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].GetID() == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			c.persist()
			return nil
		}
	}
	return ErrNotFound
}

// Replace swaps in a whole new set of records and persists.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	c.persist()
}

// Encode returns the JSON items would be stored as.
func (c *Collection[T]) Encode(items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	return string(b), err
}

// Mutate applies fn to a copy of the records and persists the result.
// The read and the write happen under one lock.
func (c *Collection[T]) Mutate(fn func(items []T) []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := fn(append([]T(nil), c.items...))
	c.items = append([]T(nil), next...)
	c.persist()
	return append([]T(nil), c.items...)
}

// Commit runs fn with the collection locked. fn gets a copy of the
// records, writes what it returns itself, and the collection installs
// that result. If fn fails nothing changes.
func (c *Collection[T]) Commit(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(append([]T(nil), c.items...))
	if err != nil {
		return err
	}
	c.items = append([]T(nil), next...)
	return nil
}

func (c *Collection[T]) persist() {
	items := c.items
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		c.log.Warn("docstore: encode", zap.String("key", c.key), zap.Error(err))
		return
	}
	if err := c.store.Set(c.key, string(b)); err != nil {
		c.log.Warn("docstore: write", zap.String("key", c.key), zap.Error(err))
	}
}
