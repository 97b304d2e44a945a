// Package cooking keeps a small recipe book and suggests what to cook
// for the current mood.
package cooking

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

const Key = "adhd-recipes"

var (
	ErrEmptyName     = errors.New("cooking: recipe name is required")
	ErrInvalidEffort = errors.New("cooking: effort must be one of: low, medium, high")
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Recipe is one stored recipe.
type Recipe struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Minutes     int       `json:"minutes"`
	Effort      string    `json:"effort"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r Recipe) GetID() string      { return r.ID }
func (r *Recipe) Touch(t time.Time) { r.UpdatedAt = t }

// Store owns the recipes.
type Store struct {
	recipes *docstore.Collection[Recipe]
}

// NewStore loads recipes from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{recipes: docstore.NewCollection[Recipe](kv, Key, log)}
}

// Add stores a recipe. Effort defaults to low.
func (s *Store) Add(r Recipe) (Recipe, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return Recipe{}, ErrEmptyName
	}
	switch r.Effort {
	case "":
		r.Effort = rules.EffortLow
	case rules.EffortLow, rules.EffortMedium, rules.EffortHigh:
	default:
		return Recipe{}, ErrInvalidEffort
	}
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	now := timeNow().UTC()
	r.ID = uuid.NewString()
	r.CreatedAt = now
	r.UpdatedAt = now
	return s.recipes.Add(r), nil
}

// Delete removes a recipe.
func (s *Store) Delete(id string) error {
	if err := s.recipes.Delete(id); err != nil {
		return fmt.Errorf("cooking: delete %s: %w", id, err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(id string) (Recipe, error) {
	r, err := s.recipes.Update(id, func(r *Recipe) { r.Favorite = !r.Favorite })
	if err != nil {
		return Recipe{}, fmt.Errorf("cooking: favorite %s: %w", id, err)
	}
	return r, nil
}

// List returns recipes in insertion order, only favorites when
// favoritesOnly is set.
func (s *Store) List(favoritesOnly bool) []Recipe {
	if !favoritesOnly {
		return s.recipes.List()
	}
	return s.recipes.Filter(func(r Recipe) bool { return r.Favorite })
}

// Suggest returns recipes whose effort suits m, favorites first, then
// quickest first.
func (s *Store) Suggest(m mood.Mood) []Recipe {
	out := s.recipes.Filter(func(r Recipe) bool { return rules.AllowedEffort(m, r.Effort) })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return out[i].Minutes < out[j].Minutes
	})
	return out
}
