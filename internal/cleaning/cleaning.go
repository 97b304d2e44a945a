// Package cleaning keeps recurring household tasks and suggests the ones
// that fit today's energy.
package cleaning

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Key = "adhd-cleaning-tasks"

// Frequency is how often a task comes back.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// ParseFrequency validates s. Empty input means Weekly.
func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Weekly, nil
	case Daily, Weekly, Monthly:
		return f, nil
	default:
		return "", fmt.Errorf("invalid frequency %q: must be one of: daily, weekly, monthly", s)
	}
}

func (f Frequency) interval() time.Duration {
	switch f {
	case Daily:
		return 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// ErrEmptyName is returned when a task has no name.
var ErrEmptyName = errors.New("cleaning: task name is required")

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Task is a recurring chore. A zero LastDone means never done, so the
// task is due.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Room      string    `json:"room,omitempty"`
	Frequency Frequency `json:"frequency"`
	Minutes   int       `json:"minutes"`
	LastDone  time.Time `json:"lastDone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t Task) GetID() string        { return t.ID }
func (t *Task) Touch(now time.Time) { t.UpdatedAt = now }

// DueAt is when the task next becomes due.
func (t Task) DueAt() time.Time {
	if t.LastDone.IsZero() {
		return time.Time{}
	}
	return t.LastDone.Add(t.Frequency.interval())
}

// IsDue reports whether the task is due at now.
func (t Task) IsDue(now time.Time) bool {
	return !now.Before(t.DueAt())
}

// Store owns the cleaning tasks.
type Store struct {
	tasks *docstore.Collection[Task]
}

// NewStore loads tasks from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{tasks: docstore.NewCollection[Task](kv, Key, log)}
}

// Add stores a new task. Minutes defaults to 10.
func (s *Store) Add(t Task) (Task, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return Task{}, ErrEmptyName
	}
	if t.Frequency == "" {
		t.Frequency = Weekly
	}
	if t.Minutes <= 0 {
		t.Minutes = 10
	}
	now := timeNow().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.tasks.Add(t), nil
}

// Update applies fn to the task with id.
func (s *Store) Update(id string, fn func(*Task)) (Task, error) {
	t, err := s.tasks.Update(id, func(t *Task) {
		keep := t.ID
		fn(t)
		t.ID = keep
	})
	if err != nil {
		return Task{}, fmt.Errorf("cleaning: update %s: %w", id, err)
	}
	return t, nil
}

// Delete removes the task with id.
func (s *Store) Delete(id string) error {
	if err := s.tasks.Delete(id); err != nil {
		return fmt.Errorf("cleaning: delete %s: %w", id, err)
	}
	return nil
}

// MarkDone stamps the task as done now.
func (s *Store) MarkDone(id string) (Task, error) {
	now := timeNow().UTC()
	return s.Update(id, func(t *Task) { t.LastDone = now })
}

// List returns every task in insertion order.
func (s *Store) List() []Task { return s.tasks.List() }

// Due returns the tasks due at now, most overdue first.
func (s *Store) Due(now time.Time) []Task {
	due := s.tasks.Filter(func(t Task) bool { return t.IsDue(now) })
	sort.SliceStable(due, func(i, j int) bool { return due[i].DueAt().Before(due[j].DueAt()) })
	return due
}

// Suggest picks due tasks that fit the mood's effort budget, shortest
// first, until the budget is spent. When nothing fits, the single
// shortest due task is offered.
func (s *Store) Suggest(m mood.Mood, now time.Time) []Task {
	due := s.Due(now)
	if len(due) == 0 {
		return nil
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].Minutes < due[j].Minutes })

	budget := rules.EffortBudget(m)
	var out []Task
	for _, t := range due {
		if t.Minutes > budget {
			break
		}
		out = append(out, t)
		budget -= t.Minutes
	}
	if len(out) == 0 {
		out = due[:1]
	}
	return out
}
