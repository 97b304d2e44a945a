// Package resources implements MCP resource handlers for Moodmate.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (moodmate://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/reminders"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/HendryAvila/moodmate/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

var timeNow = time.Now

// Deps are the stores the resources read from.
type Deps struct {
	Moods     *mood.Store
	Profile   *profile.Store
	Settings  *settings.Store
	Reminders *reminders.Store
}

// Handler manages Moodmate resource endpoints.
type Handler struct {
	deps Deps
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// ProfileResource returns the MCP resource definition for the user profile.
func (h *Handler) ProfileResource() mcp.Resource {
	return mcp.NewResource(
		"moodmate://profile",
		"User profile",
		mcp.WithResourceDescription("Name, chronotype, challenges, goals and active medications"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleProfile returns the profile as JSON.
func (h *Handler) HandleProfile(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.deps.Profile.Get())
}

// SettingsResource returns the MCP resource definition for app settings.
func (h *Handler) SettingsResource() mcp.Resource {
	return mcp.NewResource(
		"moodmate://settings",
		"App settings",
		mcp.WithResourceDescription("Language, theme, assistant personality and accessibility options"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSettings returns the settings as JSON.
func (h *Handler) HandleSettings(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, h.deps.Settings.Get())
}

// TodayResource returns the MCP resource definition for the day summary.
func (h *Handler) TodayResource() mcp.Resource {
	return mcp.NewResource(
		"moodmate://today",
		"Today",
		mcp.WithResourceDescription("Current mood with its priorities and effort budget, plus overdue reminders and those due within 24 hours"),
		mcp.WithMIMEType("application/json"),
	)
}

// Today is the payload of moodmate://today.
type Today struct {
	Mood         mood.Mood            `json:"mood"`
	Greeting     string               `json:"greeting"`
	Priorities   []rules.Priority     `json:"priorities"`
	EffortBudget int                  `json:"effort_budget_minutes"`
	Reminders    []reminders.Reminder `json:"reminders"`
}

// HandleToday returns the day summary as JSON.
func (h *Handler) HandleToday(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	now := timeNow()
	m := h.deps.Moods.Current()
	p := h.deps.Profile.Get()
	due := append([]reminders.Reminder{}, h.deps.Reminders.Due(now.UTC())...)
	due = append(due, h.deps.Reminders.Upcoming(now.UTC(), 24*time.Hour)...)
	return jsonResource(req.Params.URI, Today{
		Mood:         m,
		Greeting:     rules.Greeting(m, p.Chronotype, p.Name, now.Hour()),
		Priorities:   rules.Priorities(m),
		EffortBudget: rules.EffortBudget(m),
		Reminders:    due,
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
