package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/settings"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── ProfileTool ────────────────────────────────────────────────────────────

// ProfileTool handles the profile_update MCP tool. Medications are not
// edited here; they follow the medication tool.
type ProfileTool struct {
	profile *profile.Store
}

// NewProfileTool creates a ProfileTool.
func NewProfileTool(p *profile.Store) *ProfileTool {
	return &ProfileTool{profile: p}
}

// Definition returns the MCP tool definition for registration.
func (t *ProfileTool) Definition() mcp.Tool {
	return mcp.NewTool("profile_update",
		mcp.WithDescription(
			"Update the user profile. Only the given fields change. Challenges drive "+
				"templates, tips and the assistant's advice; known tags are focus, "+
				"time-blindness, impulsivity, organization, emotional-regulation, sleep, motivation.",
		),
		mcp.WithString("name",
			mcp.Description("First name or nickname"),
		),
		mcp.WithString("chronotype",
			mcp.Enum("morning", "evening", "flexible"),
			mcp.Description("When the user has the most energy"),
		),
		mcp.WithArray("challenges",
			mcp.Description("Challenge tags, replacing the current list"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("goals",
			mcp.Description("Current goals, replacing the current list"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("reset",
			mcp.Description("If true, erase the profile instead"),
		),
	)
}

// Handle processes the profile_update tool call.
func (t *ProfileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "reset", false) {
		return jsonResult(t.profile.Reset())
	}

	args := req.GetArguments()
	var chrono mood.Chronotype
	if _, ok := args["chronotype"]; ok {
		c, err := mood.ParseChronotype(req.GetString("chronotype", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		chrono = c
	}

	p := t.profile.Update(func(p *profile.UserProfile) {
		if _, ok := args["name"]; ok {
			p.Name = req.GetString("name", "")
		}
		if chrono != "" {
			p.Chronotype = chrono
		}
		if _, ok := args["challenges"]; ok {
			p.Challenges = listArg(req, "challenges")
		}
		if _, ok := args["goals"]; ok {
			p.Goals = listArg(req, "goals")
		}
		p.Onboarded = true
	})
	return jsonResult(p)
}

// ─── SettingsTool ───────────────────────────────────────────────────────────

// SettingsTool handles the settings_update MCP tool.
type SettingsTool struct {
	settings *settings.Store
}

// NewSettingsTool creates a SettingsTool.
func NewSettingsTool(s *settings.Store) *SettingsTool {
	return &SettingsTool{settings: s}
}

// Definition returns the MCP tool definition for registration.
func (t *SettingsTool) Definition() mcp.Tool {
	return mcp.NewTool("settings_update",
		mcp.WithDescription("Update app settings. Only the given fields change."),
		mcp.WithString("language",
			mcp.Description("Answer language, e.g. fr or en"),
		),
		mcp.WithString("theme",
			mcp.Description("auto, light, dark, or a mood name"),
		),
		mcp.WithString("ai_personality",
			mcp.Enum("gentle", "direct", "playful"),
			mcp.Description("Assistant tone"),
		),
		mcp.WithString("ai_model",
			mcp.Description("Model name used by the chat"),
		),
		mcp.WithBoolean("notifications",
			mcp.Description("Enable reminders notifications"),
		),
		mcp.WithBoolean("reduced_motion",
			mcp.Description("Reduce animations"),
		),
		mcp.WithNumber("font_scale",
			mcp.Description("Font scale, 0.8 to 1.6"),
		),
		mcp.WithBoolean("reset",
			mcp.Description("If true, restore the defaults instead"),
		),
	)
}

// Handle processes the settings_update tool call.
func (t *SettingsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "reset", false) {
		return jsonResult(t.settings.Reset())
	}
	if fs := floatArg(req, "font_scale", 1); fs < 0.8 || fs > 1.6 {
		return mcp.NewToolResultError("'font_scale' must be between 0.8 and 1.6"), nil
	}

	args := req.GetArguments()
	st := t.settings.Update(func(s *settings.AppSettings) {
		if v := req.GetString("language", ""); v != "" {
			s.Language = v
		}
		if v := req.GetString("theme", ""); v != "" {
			s.Theme = v
		}
		if v := req.GetString("ai_personality", ""); v != "" {
			s.AIPersonality = v
		}
		if v := req.GetString("ai_model", ""); v != "" {
			s.AIModel = v
		}
		s.NotificationsEnabled = boolArg(req, "notifications", s.NotificationsEnabled)
		s.ReducedMotion = boolArg(req, "reduced_motion", s.ReducedMotion)
		if _, ok := args["font_scale"]; ok {
			s.FontScale = floatArg(req, "font_scale", s.FontScale)
		}
	})
	return jsonResult(st)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
