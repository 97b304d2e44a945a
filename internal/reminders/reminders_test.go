package reminders

import (
	"testing"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now0 = time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now0 }
	t.Cleanup(func() { timeNow = orig })
	return NewStore(kvstore.NewMemoryStore(0), zap.NewNop())
}

func titles(rs []Reminder) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestAdd_Validation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(Reminder{DueAt: now0})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	_, err = s.Add(Reminder{Title: "x"})
	assert.ErrorIs(t, err, ErrNoDueTime)

	r, err := s.Add(Reminder{Title: "RDV", DueAt: now0, Completed: true})
	require.NoError(t, err)
	assert.Equal(t, None, r.Repeat)
	assert.False(t, r.Completed)
}

func TestParseRepeat(t *testing.T) {
	r, err := ParseRepeat("Weekly")
	require.NoError(t, err)
	assert.Equal(t, Weekly, r)
	_, err = ParseRepeat("yearly")
	assert.Error(t, err)
}

func TestComplete_OneOff(t *testing.T) {
	s := newTestStore(t)
	r, _ := s.Add(Reminder{Title: "Pharmacie", DueAt: now0.Add(-time.Hour)})
	done, err := s.Complete(r.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Empty(t, s.Due(now0))
}

func TestComplete_RepeatingRollsForward(t *testing.T) {
	s := newTestStore(t)
	r, _ := s.Add(Reminder{Title: "Médicament", DueAt: now0.Add(-50 * time.Hour), Repeat: Daily})

	next, err := s.Complete(r.ID)
	require.NoError(t, err)
	assert.False(t, next.Completed)
	assert.Equal(t, now0.Add(22*time.Hour), next.DueAt)
	assert.True(t, next.DueAt.After(now0))

	_, err = s.Complete("missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDueAndUpcoming(t *testing.T) {
	s := newTestStore(t)
	for _, r := range []Reminder{
		{Title: "late", DueAt: now0.Add(-2 * time.Hour)},
		{Title: "now", DueAt: now0},
		{Title: "soon", DueAt: now0.Add(30 * time.Minute)},
		{Title: "tomorrow", DueAt: now0.Add(26 * time.Hour)},
	} {
		_, err := s.Add(r)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"late", "now"}, titles(s.Due(now0)))
	assert.Equal(t, []string{"soon"}, titles(s.Upcoming(now0, 24*time.Hour)))
	assert.Equal(t, []string{"late", "now", "soon", "tomorrow"}, titles(s.List()))
}

func TestUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	r, _ := s.Add(Reminder{Title: "a", DueAt: now0})
	got, err := s.Update(r.ID, func(x *Reminder) { x.Title = "b" })
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
	require.NoError(t, s.Delete(r.ID))
	assert.ErrorIs(t, s.Delete(r.ID), docstore.ErrNotFound)
}
