// Package health tracks medications, doses taken and daily wellbeing
// check-ins.
package health

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

const (
	MedicationsKey = "adhd-medications"
	EntriesKey     = "adhd-medication-entries"
	WellbeingKey   = "adhd-wellbeing"
)

// ErrEmptyName is returned when a medication has no name.
var ErrEmptyName = errors.New("health: medication name is required")

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Medication is a prescribed medication. Schedule holds "HH:MM" times.
type Medication struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage,omitempty"`
	Schedule  []string  `json:"schedule"`
	Notes     string    `json:"notes,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m Medication) GetID() string      { return m.ID }
func (m *Medication) Touch(t time.Time) { m.UpdatedAt = t }

// MedicationEntry records one dose taken or skipped. MedicationID is a
// loose reference: deleting the medication leaves its entries in place.
type MedicationEntry struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medicationId"`
	TakenAt      time.Time `json:"takenAt"`
	Skipped      bool      `json:"skipped"`
	Note         string    `json:"note,omitempty"`
}

func (e MedicationEntry) GetID() string { return e.ID }

// WellbeingEntry is a daily check-in. Scores are 1..5, 0 = not given.
type WellbeingEntry struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	SleepHours float64   `json:"sleepHours"`
	Energy     int       `json:"energy"`
	Anxiety    int       `json:"anxiety"`
	Focus      int       `json:"focus"`
	Note       string    `json:"note,omitempty"`
}

func (w WellbeingEntry) GetID() string { return w.ID }

// Adherence is doses taken against doses scheduled over a window.
type Adherence struct {
	MedicationID string  `json:"medicationId"`
	Expected     int     `json:"expected"`
	Taken        int     `json:"taken"`
	Skipped      int     `json:"skipped"`
	Rate         float64 `json:"rate"` // 0..1
}

// Store owns the three health collections.
type Store struct {
	meds      *docstore.Collection[Medication]
	entries   *docstore.Collection[MedicationEntry]
	wellbeing *docstore.Collection[WellbeingEntry]
}

// NewStore loads health state from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{
		meds:      docstore.NewCollection[Medication](kv, MedicationsKey, log),
		entries:   docstore.NewCollection[MedicationEntry](kv, EntriesKey, log),
		wellbeing: docstore.NewCollection[WellbeingEntry](kv, WellbeingKey, log),
	}
}

// ─── Medications ────────────────────────────────────────────────────────────

// Prepare validates m and fills its id and timestamps without storing
// it. Medications are written through medsync, which keeps the profile
// copy in step.
func Prepare(m Medication) (Medication, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return Medication{}, ErrEmptyName
	}
	if m.Schedule == nil {
		m.Schedule = []string{}
	}
	now := timeNow().UTC()
	m.ID = uuid.NewString()
	m.Active = true
	m.CreatedAt = now
	m.UpdatedAt = now
	return m, nil
}

// Medications returns every medication in insertion order.
func (s *Store) Medications() []Medication { return s.meds.List() }

// Medication returns the medication with id.
func (s *Store) Medication(id string) (Medication, bool) { return s.meds.Find(id) }

// MedicationCollection exposes the underlying collection to medsync,
// the only writer of medications.
func (s *Store) MedicationCollection() *docstore.Collection[Medication] { return s.meds }

// ─── Doses ──────────────────────────────────────────────────────────────────

// LogDose records a dose for medicationID at now. The id is not checked
// against the medication list.
func (s *Store) LogDose(medicationID string, skipped bool, note string) MedicationEntry {
	return s.entries.Add(MedicationEntry{
		ID:           uuid.NewString(),
		MedicationID: medicationID,
		TakenAt:      timeNow().UTC(),
		Skipped:      skipped,
		Note:         note,
	})
}

// DeleteEntry removes a dose entry.
func (s *Store) DeleteEntry(id string) error {
	if err := s.entries.Delete(id); err != nil {
		return fmt.Errorf("health: delete entry %s: %w", id, err)
	}
	return nil
}

// Entries returns dose entries at or after since, oldest first.
func (s *Store) Entries(since time.Time) []MedicationEntry {
	out := s.entries.Filter(func(e MedicationEntry) bool { return !e.TakenAt.Before(since) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.Before(out[j].TakenAt) })
	return out
}

// Adherence compares logged doses with the schedule between since and
// now. Every started day in the window counts as a full day of doses.
func (s *Store) Adherence(medicationID string, since, now time.Time) Adherence {
	a := Adherence{MedicationID: medicationID}
	m, ok := s.meds.Find(medicationID)
	if !ok || !now.After(since) {
		return a
	}
	perDay := max(1, len(m.Schedule))
	days := int(now.Sub(since) / (24 * time.Hour))
	if now.Sub(since)%(24*time.Hour) != 0 {
		days++
	}
	a.Expected = days * perDay

	for _, e := range s.entries.Filter(func(e MedicationEntry) bool {
		return e.MedicationID == medicationID && !e.TakenAt.Before(since) && !e.TakenAt.After(now)
	}) {
		if e.Skipped {
			a.Skipped++
		} else {
			a.Taken++
		}
	}
	if a.Expected > 0 {
		a.Rate = min(1, float64(a.Taken)/float64(a.Expected))
	}
	return a
}

// ─── Wellbeing ──────────────────────────────────────────────────────────────

// AddWellbeing stores a check-in. Scores are clamped to 0..5.
func (s *Store) AddWellbeing(w WellbeingEntry) WellbeingEntry {
	w.ID = uuid.NewString()
	if w.Date.IsZero() {
		w.Date = timeNow().UTC()
	}
	w.SleepHours = max(0, min(24, w.SleepHours))
	w.Energy = clampScore(w.Energy)
	w.Anxiety = clampScore(w.Anxiety)
	w.Focus = clampScore(w.Focus)
	return s.wellbeing.Add(w)
}

// DeleteWellbeing removes a check-in.
func (s *Store) DeleteWellbeing(id string) error {
	if err := s.wellbeing.Delete(id); err != nil {
		return fmt.Errorf("health: delete wellbeing %s: %w", id, err)
	}
	return nil
}

// Wellbeing returns check-ins at or after since, oldest first.
func (s *Store) Wellbeing(since time.Time) []WellbeingEntry {
	out := s.wellbeing.Filter(func(w WellbeingEntry) bool { return !w.Date.Before(since) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func clampScore(v int) int { return max(0, min(5, v)) }
