package mood

import (
	"testing"
	"time"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mood
		wantErr bool
	}{
		{"energetic", Energetic, false},
		{"  TIRED ", Tired, false},
		{"", Normal, false},
		{"grumpy", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChronotype(t *testing.T) {
	c, err := ParseChronotype("Evening")
	require.NoError(t, err)
	assert.Equal(t, Evening, c)

	c, err = ParseChronotype("")
	require.NoError(t, err)
	assert.Equal(t, Flexible, c)

	_, err = ParseChronotype("noon")
	assert.Error(t, err)
}

func TestStore_DefaultIsNormal(t *testing.T) {
	s := NewStore(kvstore.NewMemoryStore(0), nil)
	assert.Equal(t, Normal, s.Current())
	assert.Empty(t, s.History(0))
}

func TestStore_SetAndHistory(t *testing.T) {
	kv := kvstore.NewMemoryStore(0)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	orig := timeNow
	timeNow = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Hour) }
	t.Cleanup(func() { timeNow = orig })

	s := NewStore(kv, nil)
	s.Set(Tired, 2, "slept badly")
	s.Set(Stressed, 9, "")
	last := s.Set(Energetic, -3, "coffee")

	assert.Equal(t, Energetic, s.Current())
	assert.Equal(t, 0, last.Energy, "energy clamps to 0..5")

	h := s.History(2)
	require.Len(t, h, 2)
	assert.Equal(t, Energetic, h[0].Mood)
	assert.Equal(t, Stressed, h[1].Mood)
	assert.Equal(t, 5, h[1].Energy)

	since := s.Since(base.Add(2 * time.Hour))
	assert.Len(t, since, 2)

	reloaded := NewStore(kv, nil)
	assert.Equal(t, Energetic, reloaded.Current())
	assert.Len(t, reloaded.History(0), 3)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(kvstore.NewMemoryStore(0), nil)
	e := s.Set(Sad, 1, "")
	require.NoError(t, s.Delete(e.ID))
	assert.Empty(t, s.History(0))
	assert.Equal(t, Sad, s.Current())
	assert.Error(t, s.Delete(e.ID))
}
