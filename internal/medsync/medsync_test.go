package medsync

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/health"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	kv      *kvstore.MemoryStore
	health  *health.Store
	profile *profile.Store
	sync    *Syncer
}

func newFixture(quota int64) *fixture {
	kv := kvstore.NewMemoryStore(quota)
	h := health.NewStore(kv, zap.NewNop())
	p := profile.NewStore(kv, zap.NewNop())
	return &fixture{kv: kv, health: h, profile: p, sync: New(kv, h, p, zap.NewNop())}
}

func storedProfileMeds(t *testing.T, kv kvstore.Store) []profile.Medication {
	t.Helper()
	raw, ok, err := kv.Get(profile.Key)
	require.NoError(t, err)
	require.True(t, ok)
	var p profile.UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p.Medications
}

func storedHealthMeds(t *testing.T, kv kvstore.Store) []health.Medication {
	t.Helper()
	raw, ok, err := kv.Get(health.MedicationsKey)
	require.NoError(t, err)
	require.True(t, ok)
	var meds []health.Medication
	require.NoError(t, json.Unmarshal([]byte(raw), &meds))
	return meds
}

func TestAdd_WritesBothDocuments(t *testing.T) {
	f := newFixture(0)
	m, err := f.sync.Add(health.Medication{Name: "Atomoxétine", Dosage: "40mg"})
	require.NoError(t, err)

	require.Len(t, storedHealthMeds(t, f.kv), 1)
	pm := storedProfileMeds(t, f.kv)
	require.Len(t, pm, 1)
	assert.Equal(t, m.ID, pm[0].ID)
	assert.Equal(t, "40mg", pm[0].Dosage)

	assert.Len(t, f.health.Medications(), 1)
	assert.Len(t, f.profile.Get().Medications, 1)
	assert.True(t, f.sync.InSync())
}

func TestAdd_Invalid(t *testing.T) {
	f := newFixture(0)
	_, err := f.sync.Add(health.Medication{})
	assert.ErrorIs(t, err, health.ErrEmptyName)
}

func TestUpdate_DeactivateDropsFromProfile(t *testing.T) {
	f := newFixture(0)
	m, err := f.sync.Add(health.Medication{Name: "A"})
	require.NoError(t, err)

	got, err := f.sync.Update(m.ID, func(x *health.Medication) { x.Active = false; x.ID = "other" })
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.False(t, got.Active)

	assert.Empty(t, storedProfileMeds(t, f.kv))
	assert.Len(t, storedHealthMeds(t, f.kv), 1)

	_, err = f.sync.Update("missing", func(*health.Medication) {})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture(0)
	a, _ := f.sync.Add(health.Medication{Name: "A"})
	b, _ := f.sync.Add(health.Medication{Name: "B"})

	require.NoError(t, f.sync.Delete(a.ID))
	pm := storedProfileMeds(t, f.kv)
	require.Len(t, pm, 1)
	assert.Equal(t, b.ID, pm[0].ID)
	assert.ErrorIs(t, f.sync.Delete(a.ID), docstore.ErrNotFound)
}

func TestQuotaFailure_LeavesBothUnchanged(t *testing.T) {
	f := newFixture(1000)
	_, err := f.sync.Add(health.Medication{Name: "A"})
	require.NoError(t, err)
	beforeHealth := storedHealthMeds(t, f.kv)
	beforeProfile := storedProfileMeds(t, f.kv)

	_, err = f.sync.Add(health.Medication{Name: strings.Repeat("x", 1200)})
	require.ErrorIs(t, err, kvstore.ErrQuotaExceeded)

	assert.Equal(t, beforeHealth, storedHealthMeds(t, f.kv))
	assert.Equal(t, beforeProfile, storedProfileMeds(t, f.kv))
	assert.Len(t, f.health.Medications(), 1)
	assert.Len(t, f.profile.Get().Medications, 1)
}

func TestResync_RepairsDivergence(t *testing.T) {
	kv := kvstore.NewMemoryStore(0)
	require.NoError(t, kv.Set(health.MedicationsKey, `[{"id":"m1","name":"Written alone","schedule":[],"active":true}]`))
	h := health.NewStore(kv, zap.NewNop())
	p := profile.NewStore(kv, zap.NewNop())
	s := New(kv, h, p, zap.NewNop())
	assert.False(t, s.InSync())

	require.NoError(t, s.Resync())
	assert.True(t, s.InSync())
	assert.Len(t, storedProfileMeds(t, kv), 1)
}

func TestDelete_KeepsDoseEntries(t *testing.T) {
	f := newFixture(0)
	m, err := f.sync.Add(health.Medication{Name: "A"})
	require.NoError(t, err)
	f.health.LogDose(m.ID, false, "")

	require.NoError(t, f.sync.Delete(m.ID))
	assert.Empty(t, f.health.Medications())
	assert.Len(t, f.health.Entries(time.Time{}), 1)
}

// slowKV stretches SetMany so concurrent writers overlap.
type slowKV struct {
	*kvstore.MemoryStore
}

func (s slowKV) SetMany(entries map[string]string) error {
	time.Sleep(2 * time.Millisecond)
	return s.MemoryStore.SetMany(entries)
}

func TestAdd_Concurrent(t *testing.T) {
	kv := slowKV{kvstore.NewMemoryStore(0)}
	h := health.NewStore(kv, zap.NewNop())
	p := profile.NewStore(kv, zap.NewNop())
	s := New(kv, h, p, zap.NewNop())

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Add(health.Medication{Name: fmt.Sprintf("med-%d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, h.Medications(), n)
	assert.Len(t, p.Get().Medications, n)
	assert.Len(t, storedHealthMeds(t, kv), n)
	assert.Len(t, storedProfileMeds(t, kv), n)
	assert.True(t, s.InSync())
}

func TestAdd_ConcurrentWithProfileUpdate(t *testing.T) {
	f := newFixture(0)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = f.sync.Add(health.Medication{Name: fmt.Sprintf("med-%d", i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			f.profile.Update(func(p *profile.UserProfile) {
				p.Goals = append(append([]string(nil), p.Goals...), fmt.Sprintf("goal-%d", i))
			})
		}(i)
	}
	wg.Wait()

	got := f.profile.Get()
	assert.Len(t, got.Medications, n)
	assert.Len(t, got.Goals, n)
	assert.True(t, f.sync.InSync())
}
