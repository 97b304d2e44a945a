package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/reminders"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── ReminderAddTool ────────────────────────────────────────────────────────

// ReminderAddTool handles the reminder_add MCP tool.
type ReminderAddTool struct {
	store *reminders.Store
}

// NewReminderAddTool creates a ReminderAddTool.
func NewReminderAddTool(store *reminders.Store) *ReminderAddTool {
	return &ReminderAddTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ReminderAddTool) Definition() mcp.Tool {
	return mcp.NewTool("reminder_add",
		mcp.WithDescription(
			"Create a reminder. Keep titles short and concrete: 'Appeler le dentiste', not 'santé'.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("What to remember"),
		),
		mcp.WithString("due",
			mcp.Required(),
			mcp.Description("When: YYYY-MM-DD HH:MM, YYYY-MM-DD, HH:MM (next occurrence) or RFC 3339"),
		),
		mcp.WithString("repeat",
			mcp.Enum("none", "daily", "weekly"),
			mcp.Description("Repetition (default: none)"),
		),
		mcp.WithString("note",
			mcp.Description("Optional details"),
		),
	)
}

// Handle processes the reminder_add tool call.
func (t *ReminderAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	due := req.GetString("due", "")
	if strings.TrimSpace(due) == "" {
		return mcp.NewToolResultError("'due' is required"), nil
	}
	when, err := parseWhen(due, timeNow())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repeat, err := reminders.ParseRepeat(req.GetString("repeat", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := t.store.Add(reminders.Reminder{
		Title:  req.GetString("title", ""),
		Note:   req.GetString("note", ""),
		DueAt:  when.UTC(),
		Repeat: repeat,
	})
	if errors.Is(err, reminders.ErrEmptyTitle) {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder `%s` set for %s (%s).", r.ID, stamp(r.DueAt), r.Repeat)), nil
}

// ─── ReminderListTool ───────────────────────────────────────────────────────

// ReminderListTool handles the reminder_list MCP tool.
type ReminderListTool struct {
	store *reminders.Store
}

// NewReminderListTool creates a ReminderListTool.
func NewReminderListTool(store *reminders.Store) *ReminderListTool {
	return &ReminderListTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ReminderListTool) Definition() mcp.Tool {
	return mcp.NewTool("reminder_list",
		mcp.WithDescription(
			"List reminders. scope=due shows what is due now, scope=upcoming what comes "+
				"within the next 'hours', scope=all everything including completed ones.",
		),
		mcp.WithString("scope",
			mcp.Enum("due", "upcoming", "all"),
			mcp.Description("Which reminders (default: due)"),
		),
		mcp.WithNumber("hours",
			mcp.Description("Window for scope=upcoming (default 24)"),
		),
	)
}

// Handle processes the reminder_list tool call.
func (t *ReminderListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := timeNow()
	var (
		list  []reminders.Reminder
		title string
	)
	switch scope := req.GetString("scope", "due"); scope {
	case "due", "":
		list, title = t.store.Due(now), "Due now"
	case "upcoming":
		hours := intArg(req, "hours", 24)
		if hours <= 0 {
			return mcp.NewToolResultError("'hours' must be positive"), nil
		}
		list = t.store.Upcoming(now, time.Duration(hours)*time.Hour)
		title = fmt.Sprintf("Next %dh", hours)
	case "all":
		list, title = t.store.List(), "All reminders"
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid scope %q: must be one of: due, upcoming, all", scope)), nil
	}

	if len(list) == 0 {
		return mcp.NewToolResultText(title + ": nothing."), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	for _, r := range list {
		box := "[ ]"
		if r.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&sb, "- %s `%s` %s: %s", box, r.ID, stamp(r.DueAt), r.Title)
		if r.Repeat != reminders.None {
			fmt.Fprintf(&sb, " (%s)", r.Repeat)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── ReminderCompleteTool ───────────────────────────────────────────────────

// ReminderCompleteTool handles the reminder_complete MCP tool.
type ReminderCompleteTool struct {
	store *reminders.Store
}

// NewReminderCompleteTool creates a ReminderCompleteTool.
func NewReminderCompleteTool(store *reminders.Store) *ReminderCompleteTool {
	return &ReminderCompleteTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ReminderCompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("reminder_complete",
		mcp.WithDescription(
			"Mark a reminder done. A repeating reminder moves to its next occurrence instead.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Reminder id"),
		),
	)
}

// Handle processes the reminder_complete tool call.
func (t *ReminderCompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	r, err := t.store.Complete(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if r.Completed {
		return mcp.NewToolResultText(fmt.Sprintf("Done: %s.", r.Title)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Done: %s. Next time: %s.", r.Title, stamp(r.DueAt))), nil
}

// ─── ReminderDeleteTool ─────────────────────────────────────────────────────

// ReminderDeleteTool handles the reminder_delete MCP tool.
type ReminderDeleteTool struct {
	store *reminders.Store
}

// NewReminderDeleteTool creates a ReminderDeleteTool.
func NewReminderDeleteTool(store *reminders.Store) *ReminderDeleteTool {
	return &ReminderDeleteTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ReminderDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("reminder_delete",
		mcp.WithDescription("Delete a reminder by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Reminder id"),
		),
	)
}

// Handle processes the reminder_delete tool call.
func (t *ReminderDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.store.Delete(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}
