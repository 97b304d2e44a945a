// Package settings stores the app-wide preferences document.
package settings

import (
	"time"

	"github.com/HendryAvila/moodmate/internal/docstore"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"go.uber.org/zap"
)

const Key = "adhd-app-settings"

// AppSettings are the user's app preferences.
type AppSettings struct {
	Theme                string    `json:"theme"` // auto, light, dark, or a mood name
	Language             string    `json:"language"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	AIProvider           string    `json:"aiProvider"`
	AIModel              string    `json:"aiModel"`
	AIPersonality        string    `json:"aiPersonality"` // gentle, direct, playful
	SyncEnabled          bool      `json:"syncEnabled"`
	ReducedMotion        bool      `json:"reducedMotion"`
	FontScale            float64   `json:"fontScale"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (a *AppSettings) Touch(t time.Time) { a.UpdatedAt = t }

// Defaults returns the settings a new install starts with.
func Defaults() AppSettings {
	return AppSettings{
		Theme:                "auto",
		Language:             "fr",
		NotificationsEnabled: true,
		AIProvider:           "gemini",
		AIModel:              "gemini-2.5-flash",
		AIPersonality:        "gentle",
		FontScale:            1,
	}
}

// Store wraps the settings document.
type Store struct {
	doc *docstore.Document[AppSettings]
}

// NewStore loads settings from kv.
func NewStore(kv kvstore.Store, log *zap.Logger) *Store {
	return &Store{doc: docstore.NewDocument(kv, Key, Defaults, log)}
}

func (s *Store) Get() AppSettings                        { return s.doc.Get() }
func (s *Store) Update(fn func(*AppSettings)) AppSettings { return s.doc.Update(fn) }
func (s *Store) Reset() AppSettings                      { return s.doc.Reset() }
