// Package profile stores the user profile: who the user is, their
// chronotype and the challenges the assistant adapts to.
package profile

import (
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"go.uber.org/zap"
)

const Key = "adhd-user-profile"

// Known challenge tags. Free-form tags are accepted too; these are the
// ones the rule tables have copy for.
const (
	ChallengeFocus         = "focus"
	ChallengeTimeBlindness = "time-blindness"
	ChallengeImpulsivity   = "impulsivity"
	ChallengeOrganization  = "organization"
	ChallengeEmotions      = "emotional-regulation"
	ChallengeSleep         = "sleep"
	ChallengeMotivation    = "motivation"
)

// Medication is the profile's view of a medication, kept in sync with
// the health module.
type Medication struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Dosage   string   `json:"dosage,omitempty"`
	Schedule []string `json:"schedule,omitempty"`
}

// UserProfile is the single profile document.
type UserProfile struct {
	Name        string          `json:"name"`
	Chronotype  mood.Chronotype `json:"chronotype"`
	Challenges  []string        `json:"challenges"`
	Goals       []string        `json:"goals"`
	Medications []Medication    `json:"medications"`
	Onboarded   bool            `json:"onboarded"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *UserProfile) Touch(t time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t
	}
	p.UpdatedAt = t
}

// Defaults returns an empty profile.
func Defaults() UserProfile {
	return UserProfile{Chronotype: mood.Flexible}
}

// HasChallenge reports whether the profile lists tag.
func (p UserProfile) HasChallenge(tag string) bool {
	for _, c := range p.Challenges {
		if c == tag {
			return true
		}
	}
	return false
}

// Store wraps the profile document.
type Store struct {
	doc *docstore.Document[UserProfile]
}

// NewStore loads the profile from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{doc: docstore.NewDocument(kv, Key, Defaults, log)}
}

func (s *Store) Get() UserProfile                        { return s.doc.Get() }
func (s *Store) Update(fn func(*UserProfile)) UserProfile { return s.doc.Update(fn) }
func (s *Store) Reset() UserProfile                      { return s.doc.Reset() }

// Document exposes the underlying document for cross-module writes.
func (s *Store) Document() *docstore.Document[UserProfile] { return s.doc }
