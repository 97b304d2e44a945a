package mood

import (
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CurrentKey = "adhd-current-mood"
	HistoryKey = "adhd-mood-history"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Entry is one mood check-in.
type Entry struct {
	ID        string    `json:"id"`
	Mood      Mood      `json:"mood"`
	Energy    int       `json:"energy"` // 1..5, 0 = not given
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Entry) GetID() string { return e.ID }

type current struct {
	Mood      Mood      `json:"mood"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *current) Touch(t time.Time) { c.UpdatedAt = t }

// Store tracks the current mood and the check-in history.
type Store struct {
	current *docstore.Document[current]
	history *docstore.Collection[Entry]
}

// NewStore loads mood state from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{
		current: docstore.NewDocument(kv, CurrentKey, func() current { return current{Mood: Normal} }, log),
		history: docstore.NewCollection[Entry](kv, HistoryKey, log),
	}
}

// Current returns the latest mood, Normal if none was ever set.
func (s *Store) Current() Mood {
	m := s.current.Get().Mood
	if !m.Valid() {
		return Normal
	}
	return m
}

// Set records a check-in and makes m the current mood. energy is
// clamped to 0..5.
func (s *Store) Set(m Mood, energy int, note string) Entry {
	energy = max(0, min(5, energy))
	e := s.history.Add(Entry{
		ID:        uuid.NewString(),
		Mood:      m,
		Energy:    energy,
		Note:      note,
		Timestamp: timeNow().UTC(),
	})
	s.current.Update(func(c *current) { c.Mood = m })
	return e
}

// History returns the most recent check-ins, newest first. limit <= 0
// returns all of them.
func (s *Store) History(limit int) []Entry {
	all := s.history.List()
	out := make([]Entry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Since returns check-ins at or after t, oldest first.
func (s *Store) Since(t time.Time) []Entry {
	return s.history.Filter(func(e Entry) bool { return !e.Timestamp.Before(t) })
}

// Delete removes a check-in. The current mood is left alone.
func (s *Store) Delete(id string) error {
	return s.history.Delete(id)
}
