// Package medsync keeps the health module's medication list and the
// profile's copy of it in step. Both documents are written with a
// single kvstore.SetMany, so the stored copies never diverge.
package medsync

import (
	"fmt"
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/health"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/profile"
	"go.uber.org/zap"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Syncer writes medication changes to both stores atomically.
type Syncer struct {
	kv      kvstore.Store
	health  *health.Store
	profile *profile.Store
	log     *zap.Logger
}

// New wires a Syncer over the two stores sharing kv.
func New(kv kvstore.Store, h *health.Store, p *profile.Store, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{kv: kv, health: h, profile: p, log: log}
}

// Add stores a new medication in both places.
func (s *Syncer) Add(m health.Medication) (health.Medication, error) {
	m, err := health.Prepare(m)
	if err != nil {
		return health.Medication{}, err
	}
	err = s.apply(func(meds []health.Medication) ([]health.Medication, error) {
		return append(meds, m), nil
	})
	if err != nil {
		return health.Medication{}, err
	}
	return m, nil
}

// Update applies fn to the medication with id in both places.
func (s *Syncer) Update(id string, fn func(*health.Medication)) (health.Medication, error) {
	var next health.Medication
	err := s.apply(func(meds []health.Medication) ([]health.Medication, error) {
		for i := range meds {
			if meds[i].ID != id {
				continue
			}
			next = meds[i]
			fn(&next)
			next.ID = id
			next.Touch(timeNow().UTC())
			meds[i] = next
			return meds, nil
		}
		return nil, fmt.Errorf("medsync: update %s: %w", id, docstore.ErrNotFound)
	})
	if err != nil {
		return health.Medication{}, err
	}
	return next, nil
}

// Delete removes the medication from both places. Dose entries stay.
func (s *Syncer) Delete(id string) error {
	return s.apply(func(meds []health.Medication) ([]health.Medication, error) {
		for i := range meds {
			if meds[i].ID == id {
				return append(meds[:i:i], meds[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("medsync: delete %s: %w", id, docstore.ErrNotFound)
	})
}

// Resync rewrites the profile's list from the health list. It repairs
// data written before the two documents were batched together.
func (s *Syncer) Resync() error {
	return s.apply(func(meds []health.Medication) ([]health.Medication, error) {
		return meds, nil
	})
}

// InSync reports whether the profile's list matches the health list.
func (s *Syncer) InSync() bool {
	want := toProfile(s.health.Medications())
	got := s.profile.Get().Medications
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i].ID != got[i].ID || want[i].Name != got[i].Name || want[i].Dosage != got[i].Dosage {
			return false
		}
	}
	return true
}

// apply runs change over the current medication list and writes the
// result with the matching profile in one SetMany. Both documents stay
// locked from the read to the install, medications first, so concurrent
// syncs and profile updates are serialized. On any failure nothing
// changes.
func (s *Syncer) apply(change func([]health.Medication) ([]health.Medication, error)) error {
	medsDoc := s.health.MedicationCollection()
	profDoc := s.profile.Document()

	return medsDoc.Commit(func(meds []health.Medication) ([]health.Medication, error) {
		next, err := change(meds)
		if err != nil {
			return nil, err
		}
		err = profDoc.Commit(func(prof profile.UserProfile) (profile.UserProfile, error) {
			prof.Medications = toProfile(next)
			prof.Touch(timeNow().UTC())

			medsJSON, err := medsDoc.Encode(next)
			if err != nil {
				return prof, fmt.Errorf("medsync: encode medications: %w", err)
			}
			profJSON, err := profDoc.Encode(prof)
			if err != nil {
				return prof, fmt.Errorf("medsync: encode profile: %w", err)
			}
			if err := s.kv.SetMany(map[string]string{
				medsDoc.Key(): medsJSON,
				profDoc.Key(): profJSON,
			}); err != nil {
				s.log.Warn("medsync: write", zap.Error(err))
				return prof, fmt.Errorf("medsync: write: %w", err)
			}
			return prof, nil
		})
		if err != nil {
			return nil, err
		}
		return next, nil
	})
}

func toProfile(meds []health.Medication) []profile.Medication {
	out := make([]profile.Medication, 0, len(meds))
	for _, m := range meds {
		if !m.Active {
			continue
		}
		out = append(out, profile.Medication{
			ID:       m.ID,
			Name:     m.Name,
			Dosage:   m.Dosage,
			Schedule: m.Schedule,
		})
	}
	return out
}
