package cooking

import (
	"testing"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore() *Store {
	return NewStore(kvstore.NewMemoryStore(0), zap.NewNop())
}

func recipeNames(rs []Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func TestAdd(t *testing.T) {
	s := newTestStore()
	_, err := s.Add(Recipe{})
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = s.Add(Recipe{Name: "x", Effort: "extreme"})
	assert.ErrorIs(t, err, ErrInvalidEffort)

	r, err := s.Add(Recipe{Name: "Pâtes au beurre"})
	require.NoError(t, err)
	assert.Equal(t, rules.EffortLow, r.Effort)
	assert.NotNil(t, r.Ingredients)
}

func TestSuggest_ByMood(t *testing.T) {
	s := newTestStore()
	for _, r := range []Recipe{
		{Name: "Lasagnes", Minutes: 90, Effort: rules.EffortHigh},
		{Name: "Omelette", Minutes: 10, Effort: rules.EffortLow},
		{Name: "Curry", Minutes: 40, Effort: rules.EffortMedium},
		{Name: "Tartine", Minutes: 5, Effort: rules.EffortLow},
	} {
		_, err := s.Add(r)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Tartine", "Omelette"}, recipeNames(s.Suggest(mood.Tired)))
	assert.Equal(t, []string{"Tartine", "Omelette", "Curry"}, recipeNames(s.Suggest(mood.Normal)))
	assert.Len(t, s.Suggest(mood.Energetic), 4)
}

func TestSuggest_FavoritesFirst(t *testing.T) {
	s := newTestStore()
	_, _ = s.Add(Recipe{Name: "Tartine", Minutes: 5})
	soup, _ := s.Add(Recipe{Name: "Soupe", Minutes: 20})

	fav, err := s.ToggleFavorite(soup.ID)
	require.NoError(t, err)
	assert.True(t, fav.Favorite)

	assert.Equal(t, []string{"Soupe", "Tartine"}, recipeNames(s.Suggest(mood.Sad)))
	assert.Equal(t, []string{"Soupe"}, recipeNames(s.List(true)))
	assert.Len(t, s.List(false), 2)
}

func TestDelete(t *testing.T) {
	s := newTestStore()
	r, _ := s.Add(Recipe{Name: "x"})
	require.NoError(t, s.Delete(r.ID))
	assert.ErrorIs(t, s.Delete(r.ID), docstore.ErrNotFound)
	_, err := s.ToggleFavorite(r.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
