package profile

import (
	"testing"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/stretchr/testify/assert"
)

func TestStore_UpdateSetsTimestamps(t *testing.T) {
	kv := kvstore.NewMemoryStore(0)
	s := NewStore(kv, nil)
	assert.Equal(t, mood.Flexible, s.Get().Chronotype)

	p := s.Update(func(p *UserProfile) {
		p.Name = "Léa"
		p.Challenges = []string{ChallengeFocus, ChallengeSleep}
	})
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.True(t, p.HasChallenge(ChallengeSleep))
	assert.False(t, p.HasChallenge(ChallengeImpulsivity))

	reloaded := NewStore(kv, nil).Get()
	assert.Equal(t, "Léa", reloaded.Name)
}

func TestStore_OldDocumentKeepsNewDefaults(t *testing.T) {
	kv := kvstore.NewMemoryStore(0)
	_ = kv.Set(Key, `{"name":"Sam"}`)
	p := NewStore(kv, nil).Get()
	assert.Equal(t, "Sam", p.Name)
	assert.Equal(t, mood.Flexible, p.Chronotype)
}
