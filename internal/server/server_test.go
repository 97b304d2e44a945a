package server

import (
	"context"
	"testing"

	"github.com/HendryAvila/moodmate/internal/app"
	"github.com/HendryAvila/moodmate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Ephemeral = true
	cfg.Cache.SweepInterval = 0
	a, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew(t *testing.T) {
	a := newTestApp(t)
	require.NotNil(t, New(a))
}

func TestTools_UniqueNames(t *testing.T) {
	a := newTestApp(t)
	seen := map[string]bool{}
	for _, tl := range Tools(a) {
		def := tl.Definition()
		assert.NotEmpty(t, def.Description, def.Name)
		assert.False(t, seen[def.Name], "duplicate tool %s", def.Name)
		seen[def.Name] = true
	}
	for _, name := range []string{"mood_checkin", "expense_add", "budget", "reminder_add", "medication", "insights", "chat", "settings_update"} {
		assert.True(t, seen[name], "missing tool %s", name)
	}
}
