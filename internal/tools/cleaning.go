package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/cleaning"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── CleaningTaskTool ───────────────────────────────────────────────────────

// CleaningTaskTool handles the cleaning_task MCP tool.
type CleaningTaskTool struct {
	store *cleaning.Store
}

// NewCleaningTaskTool creates a CleaningTaskTool.
func NewCleaningTaskTool(store *cleaning.Store) *CleaningTaskTool {
	return &CleaningTaskTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CleaningTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("cleaning_task",
		mcp.WithDescription(
			"Manage recurring household tasks: add one, mark one done, or delete one. "+
				"Small tasks (5-15 minutes) work best.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("add", "done", "delete"),
			mcp.Description("What to do"),
		),
		mcp.WithString("id",
			mcp.Description("Task id for done and delete"),
		),
		mcp.WithString("name",
			mcp.Description("Task name for add"),
		),
		mcp.WithString("room",
			mcp.Description("Room, e.g. cuisine"),
		),
		mcp.WithString("frequency",
			mcp.Enum("daily", "weekly", "monthly"),
			mcp.Description("How often it comes back (default: weekly)"),
		),
		mcp.WithNumber("minutes",
			mcp.Description("Estimated duration in minutes (default 10)"),
		),
	)
}

// Handle processes the cleaning_task tool call.
func (t *CleaningTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	switch action := req.GetString("action", ""); action {
	case "add":
		freq, err := cleaning.ParseFrequency(req.GetString("frequency", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		task, err := t.store.Add(cleaning.Task{
			Name:      req.GetString("name", ""),
			Room:      req.GetString("room", ""),
			Frequency: freq,
			Minutes:   intArg(req, "minutes", 0),
		})
		if errors.Is(err, cleaning.ErrEmptyName) {
			return mcp.NewToolResultError("'name' is required for add"), nil
		}
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task `%s` added: %s, %s, %d min.", task.ID, task.Name, task.Frequency, task.Minutes)), nil
	case "done":
		if id == "" {
			return mcp.NewToolResultError("'id' is required for done"), nil
		}
		task, err := t.store.MarkDone(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s done. Next time: %s.", task.Name, stamp(task.DueAt()))), nil
	case "delete":
		if id == "" {
			return mcp.NewToolResultError("'id' is required for delete"), nil
		}
		if err := t.store.Delete(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted.", id)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of: add, done, delete", action)), nil
	}
}

// ─── CleaningSuggestTool ────────────────────────────────────────────────────

// CleaningSuggestTool handles the cleaning_suggest MCP tool.
type CleaningSuggestTool struct {
	store *cleaning.Store
	moods *mood.Store
}

// NewCleaningSuggestTool creates a CleaningSuggestTool.
func NewCleaningSuggestTool(store *cleaning.Store, moods *mood.Store) *CleaningSuggestTool {
	return &CleaningSuggestTool{store: store, moods: moods}
}

// Definition returns the MCP tool definition for registration.
func (t *CleaningSuggestTool) Definition() mcp.Tool {
	return mcp.NewTool("cleaning_suggest",
		mcp.WithDescription(
			"Suggest due household tasks that fit the mood's effort budget, shortest first. "+
				"Also lists every due task.",
		),
		mcp.WithString("mood",
			mcp.Enum("energetic", "normal", "tired", "stressed", "sad"),
			mcp.Description("Mood to plan for (default: current mood)"),
		),
	)
}

// Handle processes the cleaning_suggest tool call.
func (t *CleaningSuggestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := moodArg(req, t.moods.Current())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	now := timeNow()
	due := t.store.Due(now)
	if len(due) == 0 {
		return mcp.NewToolResultText("Nothing due around the house."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Suggested (%s, budget %d min)\n\n", m, rules.EffortBudget(m))
	for _, task := range t.store.Suggest(m, now) {
		fmt.Fprintf(&sb, "- `%s` %s (%d min)\n", task.ID, label(task), task.Minutes)
	}
	sb.WriteString("\n# All due\n\n")
	for _, task := range due {
		if task.LastDone.IsZero() {
			fmt.Fprintf(&sb, "- `%s` %s, never done\n", task.ID, label(task))
			continue
		}
		fmt.Fprintf(&sb, "- `%s` %s, due since %s\n", task.ID, label(task), stamp(task.DueAt()))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func label(task cleaning.Task) string {
	if task.Room == "" {
		return task.Name
	}
	return task.Name + " (" + task.Room + ")"
}
