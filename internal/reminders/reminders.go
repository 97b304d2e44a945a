// Package reminders stores one-off and repeating reminders.
package reminders

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Key = "adhd-reminders"

// Repeat is how a reminder recurs.
type Repeat string

const (
	None   Repeat = "none"
	Daily  Repeat = "daily"
	Weekly Repeat = "weekly"
)

// ParseRepeat validates s. Empty input means None.
func ParseRepeat(s string) (Repeat, error) {
	switch r := Repeat(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return None, nil
	case None, Daily, Weekly:
		return r, nil
	default:
		return "", fmt.Errorf("invalid repeat %q: must be one of: none, daily, weekly", s)
	}
}

func (r Repeat) step() time.Duration {
	switch r {
	case Daily:
		return 24 * time.Hour
	case Weekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

var (
	ErrEmptyTitle = errors.New("reminders: title is required")
	ErrNoDueTime  = errors.New("reminders: due time is required")
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Reminder is a titled alert at DueAt.
type Reminder struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Note      string    `json:"note,omitempty"`
	DueAt     time.Time `json:"dueAt"`
	Repeat    Repeat    `json:"repeat"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r Reminder) GetID() string      { return r.ID }
func (r *Reminder) Touch(t time.Time) { r.UpdatedAt = t }

// Store owns the reminders.
type Store struct {
	items *docstore.Collection[Reminder]
}

// NewStore loads reminders from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{items: docstore.NewCollection[Reminder](kv, Key, log)}
}

// Add stores a new reminder.
func (s *Store) Add(r Reminder) (Reminder, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return Reminder{}, ErrEmptyTitle
	}
	if r.DueAt.IsZero() {
		return Reminder{}, ErrNoDueTime
	}
	if r.Repeat == "" {
		r.Repeat = None
	}
	now := timeNow().UTC()
	r.ID = uuid.NewString()
	r.Completed = false
	r.CreatedAt = now
	r.UpdatedAt = now
	return s.items.Add(r), nil
}

// Update applies fn to the reminder with id.
func (s *Store) Update(id string, fn func(*Reminder)) (Reminder, error) {
	r, err := s.items.Update(id, func(r *Reminder) {
		keep := r.ID
		fn(r)
		r.ID = keep
	})
	if err != nil {
		return Reminder{}, fmt.Errorf("reminders: update %s: %w", id, err)
	}
	return r, nil
}

// Delete removes the reminder with id.
func (s *Store) Delete(id string) error {
	if err := s.items.Delete(id); err != nil {
		return fmt.Errorf("reminders: delete %s: %w", id, err)
	}
	return nil
}

// Complete marks a one-off reminder done. A repeating reminder instead
// moves to its next occurrence after now and stays active.
func (s *Store) Complete(id string) (Reminder, error) {
	now := timeNow().UTC()
	return s.Update(id, func(r *Reminder) {
		step := r.Repeat.step()
		if step == 0 {
			r.Completed = true
			return
		}
		for !r.DueAt.After(now) {
			r.DueAt = r.DueAt.Add(step)
		}
	})
}

// List returns every reminder sorted by due time.
func (s *Store) List() []Reminder {
	out := s.items.List()
	sortByDue(out)
	return out
}

// Due returns active reminders whose time has come.
func (s *Store) Due(now time.Time) []Reminder {
	out := s.items.Filter(func(r Reminder) bool {
		return !r.Completed && !r.DueAt.After(now)
	})
	sortByDue(out)
	return out
}

// Upcoming returns active reminders due after now and within window.
func (s *Store) Upcoming(now time.Time, window time.Duration) []Reminder {
	end := now.Add(window)
	out := s.items.Filter(func(r Reminder) bool {
		return !r.Completed && r.DueAt.After(now) && !r.DueAt.After(end)
	})
	sortByDue(out)
	return out
}

func sortByDue(rs []Reminder) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].DueAt.Before(rs[j].DueAt) })
}
