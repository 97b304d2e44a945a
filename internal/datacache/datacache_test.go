package datacache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type point struct {
	X int `json:"x"`
}

type CacheSuite struct {
	suite.Suite
	clock *mockClock
	store *kvstore.MemoryStore
	cfg   Config
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.clock = &mockClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	s.store = kvstore.NewMemoryStore(0)
	s.cfg = Config{
		Version:    "1.0.0",
		DefaultTTL: time.Minute,
		MaxSize:    100,
		StorageKey: "adhd-cache",
	}
}

func (s *CacheSuite) newCache() *Cache {
	c := New(s.store, s.cfg, WithClock(s.clock))
	s.T().Cleanup(c.Close)
	return c
}

func (s *CacheSuite) TestSetThenGet() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", point{X: 1}, time.Second))

	v, ok := Get[point](c, "a")
	s.True(ok)
	s.Equal(point{X: 1}, v)
}

func (s *CacheSuite) TestGet_ExpiresAfterTTL() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", point{X: 1}, 1000*time.Millisecond))

	v, ok := Get[point](c, "a")
	s.Require().True(ok)
	s.Equal(1, v.X)

	s.clock.Advance(1001 * time.Millisecond)
	_, ok = Get[point](c, "a")
	s.False(ok)
	s.Equal(0, c.Size())
}

func (s *CacheSuite) TestGet_ValidAtExactTTL() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Second))
	s.clock.Advance(time.Second)
	s.True(c.Has("a"))
}

func (s *CacheSuite) TestSet_DefaultTTLWhenZero() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, 0))
	s.clock.Advance(59 * time.Second)
	s.True(c.Has("a"))
	s.clock.Advance(2 * time.Second)
	s.False(c.Has("a"))
}

func (s *CacheSuite) TestEviction_OldestTwentyPercent() {
	s.cfg.MaxSize = 5
	c := s.newCache()
	keys := []string{"k1", "k2", "k3", "k4", "k5", "k6"}
	for _, k := range keys {
		s.Require().NoError(c.Set(k, k, time.Hour))
		s.clock.Advance(time.Millisecond)
	}

	s.LessOrEqual(c.Size(), 5)
	s.False(c.Has("k1"), "first-inserted key should be evicted")
	for _, k := range keys[1:] {
		s.True(c.Has(k), "key %s should survive", k)
	}
	s.Equal(uint64(1), c.Stats().Evictions)
}

func (s *CacheSuite) TestEviction_SmallCacheEvictsAtLeastOne() {
	s.cfg.MaxSize = 3
	c := s.newCache()
	for i, k := range []string{"a", "b", "c", "d"} {
		s.Require().NoError(c.Set(k, i+1, time.Hour))
	}

	s.Equal(3, c.Size())
	s.Equal([]string{"b", "c", "d"}, c.Keys())
}

func (s *CacheSuite) TestEviction_TiesAfterRestartAreStable() {
	s.cfg.MaxSize = 5
	c := s.newCache()
	for _, k := range []string{"e", "d", "c", "b", "a"} {
		s.Require().NoError(c.Set(k, k, time.Hour))
	}

	first := s.newCache()
	second := s.newCache()
	s.Require().NoError(first.Set("f", "f", time.Hour))
	s.Require().NoError(second.Set("f", "f", time.Hour))

	want := []string{"b", "c", "d", "e", "f"}
	s.Equal(want, first.Keys())
	s.Equal(want, second.Keys())
}

func (s *CacheSuite) TestEviction_StaleEntriesGoFirst() {
	s.cfg.MaxSize = 3
	c := s.newCache()
	s.Require().NoError(c.Set("short", 1, 10*time.Millisecond))
	s.Require().NoError(c.Set("b", 2, time.Hour))
	s.Require().NoError(c.Set("c", 3, time.Hour))
	s.clock.Advance(20 * time.Millisecond)

	s.Require().NoError(c.Set("d", 4, time.Hour))

	s.Equal([]string{"b", "c", "d"}, c.Keys())
	st := c.Stats()
	s.Equal(uint64(0), st.Evictions)
	s.Equal(uint64(1), st.Expirations)
}

func (s *CacheSuite) TestSet_OverwriteWhenFullDoesNotEvict() {
	s.cfg.MaxSize = 2
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))
	s.Require().NoError(c.Set("b", 2, time.Hour))
	s.Require().NoError(c.Set("a", 3, time.Hour))

	s.Equal([]string{"a", "b"}, c.Keys())
	v, _ := Get[int](c, "a")
	s.Equal(3, v)
}

func (s *CacheSuite) TestVersionChange_InvalidatesEntries() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))

	c.SetVersion("2.0.0")
	_, ok := Get[int](c, "a")
	s.False(ok)
	s.Equal(0, c.Size())
}

func (s *CacheSuite) TestVersionChange_AcrossRestart() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))

	s.cfg.Version = "2.0.0"
	c2 := s.newCache()
	s.Equal(1, c2.Size(), "snapshot loads old entries")
	s.False(c2.Has("a"))
	s.Equal(0, c2.Size())
}

func (s *CacheSuite) TestSnapshot_SurvivesRestart() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", point{X: 7}, time.Hour))

	c2 := s.newCache()
	v, ok := Get[point](c2, "a")
	s.True(ok)
	s.Equal(7, v.X)
}

func (s *CacheSuite) TestClear_DropsSnapshot() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))
	s.Require().NoError(c.Set("b", 2, time.Hour))

	c.Clear()
	s.Equal(0, c.Size())
	_, ok, err := s.store.Get("adhd-cache")
	s.NoError(err)
	s.False(ok)
}

func (s *CacheSuite) TestDelete() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))
	c.Delete("a")
	c.Delete("missing")
	s.False(c.Has("a"))
}

func (s *CacheSuite) TestGetOrSet_FactoryCalls() {
	c := s.newCache()
	calls := 0
	factory := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := GetOrSet(context.Background(), c, "answer", factory, time.Second)
	s.Require().NoError(err)
	s.Equal(42, v)
	s.Equal(1, calls)

	v, err = GetOrSet(context.Background(), c, "answer", factory, time.Second)
	s.Require().NoError(err)
	s.Equal(42, v)
	s.Equal(1, calls, "valid entry must not call factory")

	s.clock.Advance(2 * time.Second)
	_, err = GetOrSet(context.Background(), c, "answer", factory, time.Second)
	s.Require().NoError(err)
	s.Equal(2, calls, "expired entry calls factory again")
}

func (s *CacheSuite) TestGetOrSet_FactoryError() {
	c := s.newCache()
	boom := errors.New("boom")
	_, err := GetOrSet(context.Background(), c, "k", func(context.Context) (string, error) {
		return "", boom
	}, time.Second)
	s.ErrorIs(err, boom)
	s.Equal(0, c.Size())
}

func (s *CacheSuite) TestGetWithValidation() {
	c := s.newCache()
	s.Require().NoError(c.Set("p", point{X: 5}, time.Hour))

	v, ok := GetWithValidation(c, "p", func(p point) bool { return p.X == 5 })
	s.True(ok)
	s.Equal(5, v.X)

	_, ok = GetWithValidation(c, "p", func(p point) bool { return p.X > 10 })
	s.False(ok)
	s.Equal(0, c.Size(), "rejected entry is deleted")
}

func (s *CacheSuite) TestGet_WrongTypeIsMiss() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", "text", time.Hour))
	_, ok := Get[point](c, "a")
	s.False(ok)
	s.Equal(0, c.Size())
}

func (s *CacheSuite) TestSet_EncodeError() {
	c := s.newCache()
	err := c.Set("ch", make(chan int), time.Hour)
	s.Error(err)
	s.Equal(0, c.Size())
}

func (s *CacheSuite) TestQuotaExceeded_ClearsCache() {
	s.store = kvstore.NewMemoryStore(200)
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))
	s.Equal(1, c.Size())

	big := make([]byte, 200)
	s.Require().NoError(c.Set("big", big, time.Hour))

	s.Equal(0, c.Size())
	_, ok, _ := s.store.Get("adhd-cache")
	s.False(ok)
}

func (s *CacheSuite) TestLoad_UnreadableSnapshotIsEmpty() {
	s.Require().NoError(s.store.Set("adhd-cache", "{not json"))
	c := s.newCache()
	s.Equal(0, c.Size())
	s.Require().NoError(c.Set("a", 1, time.Hour))
	s.True(c.Has("a"))
}

func (s *CacheSuite) TestCleanup_RemovesExpiredOnly() {
	c := s.newCache()
	s.Require().NoError(c.Set("short", 1, time.Second))
	s.Require().NoError(c.Set("long", 2, time.Hour))
	s.clock.Advance(2 * time.Second)

	s.Equal(1, c.Cleanup())
	s.Equal([]string{"long"}, c.Keys())
}

func (s *CacheSuite) TestStats_HitsAndMisses() {
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Hour))
	c.Has("a")
	c.Has("b")
	st := c.Stats()
	s.Equal(uint64(1), st.Hits)
	s.Equal(uint64(1), st.Misses)
	s.Equal(1, st.Size)
}

func (s *CacheSuite) TestBackgroundSweep() {
	s.cfg.SweepInterval = 5 * time.Millisecond
	c := s.newCache()
	s.Require().NoError(c.Set("a", 1, time.Second))
	s.clock.Advance(2 * time.Second)

	s.Eventually(func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *CacheSuite) TestConcurrentUseUnderSweeper() {
	s.cfg.SweepInterval = time.Millisecond
	s.cfg.MaxSize = 50
	c := s.newCache()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d-%d", w, i%20)
				_ = c.Set(key, point{X: i}, time.Duration(i%5+1)*time.Millisecond)
				_, _ = Get[point](c, key)
				if i%10 == 0 {
					c.Cleanup()
					s.clock.Advance(time.Millisecond)
				}
				if i%25 == 0 {
					c.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	s.LessOrEqual(c.Size(), 50)
	s.clock.Advance(time.Hour)
	s.Eventually(func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func (s *CacheSuite) TestClose_Idempotent() {
	s.cfg.SweepInterval = time.Millisecond
	c := New(s.store, s.cfg, WithClock(s.clock))
	c.Close()
	c.Close()
}
