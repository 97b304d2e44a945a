package settings

import (
	"testing"

	"github.com/HendryAvila/moodmate/internal/kvstore"
)

func TestStore_UpdateAndReset(t *testing.T) {
	kv := kvstore.NewMemoryStore(0)
	s := NewStore(kv, nil)

	if s.Get().Language != "fr" {
		t.Errorf("default Language = %q, want fr", s.Get().Language)
	}

	got := s.Update(func(a *AppSettings) { a.Theme = "dark"; a.ReducedMotion = true })
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be stamped")
	}
	if r := NewStore(kv, nil).Get(); r.Theme != "dark" || !r.ReducedMotion {
		t.Errorf("reloaded = %+v", r)
	}

	if s.Reset().Theme != "auto" {
		t.Error("Reset should restore defaults")
	}
}
