// Package server wires all MCP components and creates the server instance.
//
// This is the composition root for the MCP surface: it takes the
// application container and injects its stores into the tools, prompts
// and resources. No business logic lives here, only wiring.
package server

import (
	"context"

	"github.com/HendryAvila/moodmate/internal/app"
	"github.com/HendryAvila/moodmate/internal/prompts"
	"github.com/HendryAvila/moodmate/internal/resources"
	"github.com/HendryAvila/moodmate/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Tool is what every handler in internal/tools provides.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. The caller owns a and closes it.
func New(a *app.App) *server.MCPServer {
	s := server.NewMCPServer(
		"moodmate",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	for _, t := range Tools(a) {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	checkin := prompts.NewCheckinPrompt(a.Moods)
	s.AddPrompt(checkin.Definition(), checkin.Handle)

	review := prompts.NewReviewPrompt()
	s.AddPrompt(review.Definition(), review.Handle)

	// --- Register resources ---

	rh := resources.NewHandler(resources.Deps{
		Moods:     a.Moods,
		Profile:   a.Profile,
		Settings:  a.Settings,
		Reminders: a.Reminders,
	})
	s.AddResource(rh.ProfileResource(), rh.HandleProfile)
	s.AddResource(rh.SettingsResource(), rh.HandleSettings)
	s.AddResource(rh.TodayResource(), rh.HandleToday)

	return s
}

// Tools builds every MCP tool over the stores of a, grouped by domain.
func Tools(a *app.App) []Tool {
	return []Tool{
		// --- Mood ---
		tools.NewMoodCheckinTool(a.Moods, a.Profile, a.Analytics),
		tools.NewMoodHistoryTool(a.Moods),

		// --- Finance ---
		tools.NewExpenseAddTool(a.Finance, a.Moods, a.Analytics),
		tools.NewExpenseListTool(a.Finance),
		tools.NewExpenseDeleteTool(a.Finance, a.Analytics),
		tools.NewBudgetTool(a.Finance),

		// --- Reminders & checklists ---
		tools.NewReminderAddTool(a.Reminders),
		tools.NewReminderListTool(a.Reminders),
		tools.NewReminderCompleteTool(a.Reminders),
		tools.NewReminderDeleteTool(a.Reminders),
		tools.NewChecklistCreateTool(a.Checklists, a.Profile),
		tools.NewChecklistListTool(a.Checklists, a.Profile),
		tools.NewChecklistItemTool(a.Checklists),

		// --- Home ---
		tools.NewCleaningTaskTool(a.Cleaning),
		tools.NewCleaningSuggestTool(a.Cleaning, a.Moods),
		tools.NewRecipeTool(a.Cooking),
		tools.NewRecipeSuggestTool(a.Cooking, a.Moods),

		// --- Health ---
		tools.NewMedicationTool(a.Meds, a.Analytics),
		tools.NewMedicationListTool(a.Health),
		tools.NewDoseLogTool(a.Health, a.Analytics),
		tools.NewWellbeingLogTool(a.Health, a.Analytics),

		// --- Insights & assistant ---
		tools.NewInsightsTool(a.Analytics, a.Health),
		tools.NewCacheTool(a.Cache),
		tools.NewChatTool(a.Chat),
		tools.NewChatHistoryTool(a.Chat.History()),

		// --- Profile ---
		tools.NewProfileTool(a.Profile),
		tools.NewSettingsTool(a.Settings),
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use Moodmate.
func serverInstructions() string {
	return `You have access to Moodmate, a daily companion for adults with ADHD.
It keeps mood check-ins, expenses, reminders, checklists, chores, recipes,
medications and wellbeing notes, and adapts every suggestion to the
current mood.

## HOW TO USE IT

- Start a conversation with the moodmate://today resource, or run
  mood_checkin when the user says how they feel.
- Size every plan to the effort budget of the current mood. A tired or
  sad user gets one small step, not a list.
- When the user mentions a purchase, offer expense_add. Never judge
  spending; mark impulse buys only when the user says so.
- Medications go through the medication tool only. Never invent doses
  or schedules; ask.
- insights figures marked "estimated" are hints, not findings. Never
  present them as medical or statistical facts.
- chat asks Moodmate's own assistant; you do not need it to answer the
  user yourself.

## TONE

Short sentences, one idea at a time, warm and concrete. Celebrate what
got done before mentioning what did not.`
}
