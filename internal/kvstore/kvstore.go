// Package kvstore is the durability layer for Moodmate.
//
// Every module persists its state as a single JSON document under one
// string key, the same way a browser app would use local storage. The
// store is synchronous and has no notion of transactions beyond SetMany,
// which applies a batch of keys as one unit.
package kvstore

import (
	"errors"
	"strings"
)

// ErrQuotaExceeded is returned when a write would push the total stored
// bytes above the configured quota. Nothing is written in that case.
var ErrQuotaExceeded = errors.New("kvstore: quota exceeded")

// Store is the contract every persistence backend implements.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// SetMany stores all entries atomically: either every key is
	// written or none is.
	SetMany(entries map[string]string) error

	// Keys lists stored keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// entrySize is what one key counts against the quota.
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// usageAfter computes the byte total once entries replace their current
// values. old maps each key to its current entrySize (absent = 0).
func usageAfter(current int64, old map[string]int64, entries map[string]string) int64 {
	total := current
	for k, v := range entries {
		total += entrySize(k, v) - old[k]
	}
	return total
}

func hasPrefix(key, prefix string) bool {
	return prefix == "" || strings.HasPrefix(key, prefix)
}
