package datacache

import (
	"context"
	"encoding/json"
	"time"
)

// Get decodes the valid entry under key into T. An entry that no longer
// decodes as T is deleted and reported as missing.
func Get[T any](c *Cache, key string) (T, bool) {
	var zero T
	raw, ok := c.GetRaw(key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.Delete(key)
		return zero, false
	}
	return v, true
}

// GetOrSet returns the cached value for key, or calls factory, caches its
// result and returns it. Concurrent callers that miss at the same time
// each call factory; there is no in-flight de-duplication.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, factory func(context.Context) (T, error), ttl time.Duration) (T, error) {
	if v, ok := Get[T](c, key); ok {
		return v, nil
	}

	v, err := factory(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := c.Set(key, v, ttl); err != nil {
		return v, err
	}
	return v, nil
}

// GetWithValidation returns the cached value only if valid accepts it.
// A rejected entry is deleted.
func GetWithValidation[T any](c *Cache, key string, valid func(T) bool) (T, bool) {
	v, ok := Get[T](c, key)
	if !ok {
		var zero T
		return zero, false
	}
	if !valid(v) {
		c.Delete(key)
		var zero T
		return zero, false
	}
	return v, true
}
