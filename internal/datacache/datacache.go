// Package datacache implements DataCache: a bounded, versioned, TTL-based
// in-memory cache whose full contents are snapshotted to the kvstore on
// every mutation, so cached values survive a restart.
//
// Entries are valid while their version tag matches the cache's current
// version and their age does not exceed their TTL. Stale entries are
// removed lazily on read, by the eviction sweep when the cache is full,
// and by a background sweep on a fixed interval.
//
// Values are stored as JSON. Use the typed helpers Get, GetOrSet and
// GetWithValidation to decode them.
package datacache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"go.uber.org/zap"
)

// evictFraction is the share of entries dropped by the capacity pass.
const evictFraction = 0.2

// Config holds cache configuration.
type Config struct {
	// Version tags every entry; entries with another version are stale.
	Version string `mapstructure:"version" yaml:"version"`
	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration `mapstructure:"default_ttl" yaml:"default_ttl"`
	// MaxSize bounds the number of entries.
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`
	// StorageKey is the kvstore key holding the snapshot.
	StorageKey string `mapstructure:"storage_key" yaml:"storage_key"`
	// SweepInterval is the background sweep period. <= 0 disables it.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		Version:       "1.0.0",
		DefaultTTL:    5 * time.Minute,
		MaxSize:       100,
		StorageKey:    "adhd-cache",
		SweepInterval: 10 * time.Minute,
	}
}

// Entry is one cached value as it appears in the persisted snapshot.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch ms
	Version   string          `json:"version"`
	TTL       int64           `json:"ttl"` // ms

	seq uint64 // insertion order, breaks timestamp ties
}

// Stats is a snapshot of cache activity counters.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Size        int    `json:"size"`
}

// Clock provides the current time. Tests substitute a fake.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(cache *Cache) { cache.log = l }
}

// Cache is a DataCache instance. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	store   kvstore.Store
	cfg     Config
	clock   Clock
	log     *zap.Logger
	entries map[string]*Entry
	seq     uint64
	stats   Stats

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache over store, loading any persisted snapshot, and
// starts the background sweep. Call Close to stop it.
func New(store kvstore.Store, cfg Config, opts ...Option) *Cache {
	def := DefaultConfig()
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = def.MaxSize
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = def.DefaultTTL
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = def.StorageKey
	}

	c := &Cache{
		store:   store,
		cfg:     cfg,
		clock:   realClock{},
		log:     zap.NewNop(),
		entries: make(map[string]*Entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.load()

	if cfg.SweepInterval > 0 {
		go c.sweepLoop(cfg.SweepInterval)
	} else {
		close(c.done)
	}
	return c
}

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
	})
}

// Set stores v under key, tagged with the current time and version.
// ttl <= 0 uses the configured default. When key is new and the cache is
// full, the eviction sweep runs first. Only serialization errors are
// returned; storage failures are logged.
func (c *Cache) Set(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("datacache: encode %q: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxSize {
		c.evict(now)
	}

	c.seq++
	c.entries[key] = &Entry{
		Data:      data,
		Timestamp: now.UnixMilli(),
		Version:   c.cfg.Version,
		TTL:       ttl.Milliseconds(),
		seq:       c.seq,
	}
	c.persist()
	return nil
}

// GetRaw returns the JSON stored under key if the entry is still valid.
// An invalid entry is deleted.
func (c *Cache) GetRaw(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.stale(ent, c.clock.Now()) {
		delete(c.entries, key)
		c.stats.Expirations++
		c.stats.Misses++
		c.persist()
		return nil, false
	}
	c.stats.Hits++
	return ent.Data, true
}

// Has reports whether key holds a valid entry. Like GetRaw it deletes an
// invalid one.
func (c *Cache) Has(key string) bool {
	_, ok := c.GetRaw(key)
	return ok
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.persist()
}

// Clear drops every entry and the persisted snapshot.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	if err := c.store.Remove(c.cfg.StorageKey); err != nil {
		c.log.Warn("datacache: remove snapshot", zap.Error(err))
	}
}

// Size returns the number of entries, including ones not yet found stale.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the cached keys, sorted.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns a snapshot of the activity counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}

// Version returns the version new entries are tagged with.
func (c *Cache) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Version
}

// SetVersion changes the current version. Entries tagged with the old
// version become invalid and are dropped on their next access or sweep.
func (c *Cache) SetVersion(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Version = v
}

// Cleanup removes every expired or stale-version entry and returns how
// many were removed. The background sweep calls it on each tick.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.removeStale(c.clock.Now())
	if n > 0 {
		c.persist()
	}
	return n
}

func (c *Cache) sweepLoop(every time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := c.Cleanup(); n > 0 {
				c.log.Debug("datacache: sweep", zap.Int("removed", n))
			}
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) stale(ent *Entry, now time.Time) bool {
	if ent.Version != c.cfg.Version {
		return true
	}
	return now.UnixMilli()-ent.Timestamp > ent.TTL
}

// removeStale is the first eviction pass. Caller holds mu.
func (c *Cache) removeStale(now time.Time) int {
	removed := 0
	for k, ent := range c.entries {
		if c.stale(ent, now) {
			delete(c.entries, k)
			c.stats.Expirations++
			removed++
		}
	}
	return removed
}

// evict makes room for one more entry. Stale entries go first; only if
// none were stale are the oldest entries dropped. Caller holds mu.
func (c *Cache) evict(now time.Time) {
	if c.removeStale(now) > 0 || len(c.entries) < c.cfg.MaxSize {
		return
	}

	type aged struct {
		key string
		ent *Entry
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].ent.Timestamp != all[j].ent.Timestamp {
			return all[i].ent.Timestamp < all[j].ent.Timestamp
		}
		return all[i].ent.seq < all[j].ent.seq
	})

	n := max(1, int(float64(len(all))*evictFraction))
	for _, a := range all[:n] {
		delete(c.entries, a.key)
		c.stats.Evictions++
	}
}

// persist writes the whole cache to the store. A quota failure empties
// the cache rather than leaving a partial snapshot. Caller holds mu.
func (c *Cache) persist() {
	data, err := json.Marshal(c.entries)
	if err != nil {
		c.log.Warn("datacache: encode snapshot", zap.Error(err))
		return
	}
	err = c.store.Set(c.cfg.StorageKey, string(data))
	if err == nil {
		return
	}
	if errors.Is(err, kvstore.ErrQuotaExceeded) {
		c.log.Warn("datacache: storage quota exceeded, clearing cache", zap.Int("entries", len(c.entries)))
		c.entries = make(map[string]*Entry)
		if rmErr := c.store.Remove(c.cfg.StorageKey); rmErr != nil {
			c.log.Warn("datacache: remove snapshot", zap.Error(rmErr))
		}
		return
	}
	c.log.Warn("datacache: persist snapshot", zap.Error(err))
}

// load restores the persisted snapshot. Anything unreadable means an
// empty cache.
func (c *Cache) load() {
	raw, ok, err := c.store.Get(c.cfg.StorageKey)
	if err != nil {
		c.log.Warn("datacache: read snapshot", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var snap map[string]*Entry
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		c.log.Debug("datacache: discarding unreadable snapshot", zap.Error(err))
		return
	}

	keys := make([]string, 0, len(snap))
	for k, e := range snap {
		if e != nil {
			keys = append(keys, k)
		}
	}
	// Same-millisecond entries reload in key order.
	sort.SliceStable(keys, func(i, j int) bool {
		ti, tj := snap[keys[i]].Timestamp, snap[keys[j]].Timestamp
		if ti != tj {
			return ti < tj
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		c.seq++
		snap[k].seq = c.seq
		c.entries[k] = snap[k]
	}
}
