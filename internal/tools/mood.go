package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/analytics"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── MoodCheckinTool ────────────────────────────────────────────────────────

// MoodCheckinTool handles the mood_checkin MCP tool.
// It records how the user feels and answers with the day's plan.
type MoodCheckinTool struct {
	moods    *mood.Store
	profile  *profile.Store
	insights *analytics.Service
}

// NewMoodCheckinTool creates a MoodCheckinTool. insights may be nil.
func NewMoodCheckinTool(moods *mood.Store, p *profile.Store, insights *analytics.Service) *MoodCheckinTool {
	return &MoodCheckinTool{moods: moods, profile: p, insights: insights}
}

// Definition returns the MCP tool definition for registration.
func (t *MoodCheckinTool) Definition() mcp.Tool {
	return mcp.NewTool("mood_checkin",
		mcp.WithDescription(
			"Record the user's current mood. Every other tool adapts to it: "+
				"suggestions, effort budgets and the assistant's tone. "+
				"Returns a greeting and the priorities for this mood.",
		),
		mcp.WithString("mood",
			mcp.Required(),
			mcp.Enum("energetic", "normal", "tired", "stressed", "sad"),
			mcp.Description("How the user feels right now"),
		),
		mcp.WithNumber("energy",
			mcp.Description("Energy level from 1 (empty) to 5 (full). Optional."),
		),
		mcp.WithString("note",
			mcp.Description("Optional free-form note about the day"),
		),
	)
}

// Handle processes the mood_checkin tool call.
func (t *MoodCheckinTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("mood", "")
	if strings.TrimSpace(raw) == "" {
		return mcp.NewToolResultError("'mood' is required"), nil
	}
	m, err := mood.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entry := t.moods.Set(m, intArg(req, "energy", 0), req.GetString("note", ""))
	now := timeNow()
	invalidateInsights(t.insights)

	p := t.profile.Get()
	var sb strings.Builder
	sb.WriteString(rules.Greeting(m, p.Chronotype, p.Name, now.Hour()))
	sb.WriteString("\n\n## Priorities\n\n")
	for _, pr := range rules.Priorities(m) {
		fmt.Fprintf(&sb, "- **%s** (%d/10): %s\n", pr.Area, pr.Weight, pr.Tip)
	}
	fmt.Fprintf(&sb, "\nEffort budget: %d minutes per task.\n", rules.EffortBudget(m))
	fmt.Fprintf(&sb, "\nCheck-in `%s` saved.", entry.ID)
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── MoodHistoryTool ────────────────────────────────────────────────────────

// MoodHistoryTool handles the mood_history MCP tool.
type MoodHistoryTool struct {
	moods *mood.Store
}

// NewMoodHistoryTool creates a MoodHistoryTool.
func NewMoodHistoryTool(moods *mood.Store) *MoodHistoryTool {
	return &MoodHistoryTool{moods: moods}
}

// Definition returns the MCP tool definition for registration.
func (t *MoodHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("mood_history",
		mcp.WithDescription("List recent mood check-ins, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of check-ins to return (default 10)"),
		),
	)
}

// Handle processes the mood_history tool call.
func (t *MoodHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := t.moods.History(intArg(req, "limit", 10))
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No check-ins yet. Current mood: %s", t.moods.Current())), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current mood: **%s**\n\n", t.moods.Current())
	for _, e := range entries {
		fmt.Fprintf(&sb, "- %s: %s", stamp(e.Timestamp), e.Mood)
		if e.Energy > 0 {
			fmt.Fprintf(&sb, " (energy %d/5)", e.Energy)
		}
		if e.Note != "" {
			fmt.Fprintf(&sb, " · %s", e.Note)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
