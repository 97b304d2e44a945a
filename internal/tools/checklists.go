package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/checklists"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/mark3labs/mcp-go/mcp"
)

// writeChecklist renders one checklist with its progress.
func writeChecklist(sb *strings.Builder, c checklists.Checklist) {
	p := c.Progress()
	fmt.Fprintf(sb, "## %s `%s` (%d/%d)\n\n", c.Title, c.ID, p.Done, p.Total)
	for _, it := range c.Items {
		box := "[ ]"
		if it.Done {
			box = "[x]"
		}
		fmt.Fprintf(sb, "- %s %s `%s`\n", box, it.Text, it.ID)
	}
}

// ─── ChecklistCreateTool ────────────────────────────────────────────────────

// ChecklistCreateTool handles the checklist_create MCP tool.
type ChecklistCreateTool struct {
	store   *checklists.Store
	profile *profile.Store
}

// NewChecklistCreateTool creates a ChecklistCreateTool.
func NewChecklistCreateTool(store *checklists.Store, p *profile.Store) *ChecklistCreateTool {
	return &ChecklistCreateTool{store: store, profile: p}
}

// Definition returns the MCP tool definition for registration.
func (t *ChecklistCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("checklist_create",
		mcp.WithDescription(
			"Create a checklist, either from scratch (title + items) or from a template "+
				"name returned by checklist_list. Templates follow the user's challenges.",
		),
		mcp.WithString("title",
			mcp.Description("Checklist title, required unless 'template' is given"),
		),
		mcp.WithString("category",
			mcp.Description("Optional category"),
		),
		mcp.WithArray("items",
			mcp.Description("Items, one short action each"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("template",
			mcp.Description("Template name to start from"),
		),
	)
}

// Handle processes the checklist_create tool call.
func (t *ChecklistCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		c   checklists.Checklist
		err error
	)
	if name := strings.TrimSpace(req.GetString("template", "")); name != "" {
		tpl, ok := rules.FindTemplate(name, t.profile.Get().Challenges)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("template %q not found: call checklist_list to see the available ones", name)), nil
		}
		c, err = t.store.FromTemplate(tpl)
	} else {
		c, err = t.store.Create(req.GetString("title", ""), req.GetString("category", ""), listArg(req, "items"))
	}
	if errors.Is(err, checklists.ErrEmptyTitle) {
		return mcp.NewToolResultError("'title' or 'template' is required"), nil
	}
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("Checklist created.\n\n")
	writeChecklist(&sb, c)
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── ChecklistListTool ──────────────────────────────────────────────────────

// ChecklistListTool handles the checklist_list MCP tool.
type ChecklistListTool struct {
	store   *checklists.Store
	profile *profile.Store
}

// NewChecklistListTool creates a ChecklistListTool.
func NewChecklistListTool(store *checklists.Store, p *profile.Store) *ChecklistListTool {
	return &ChecklistListTool{store: store, profile: p}
}

// Definition returns the MCP tool definition for registration.
func (t *ChecklistListTool) Definition() mcp.Tool {
	return mcp.NewTool("checklist_list",
		mcp.WithDescription("List checklists with their items, and the templates available to the user."),
	)
}

// Handle processes the checklist_list tool call.
func (t *ChecklistListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	lists := t.store.List()
	if len(lists) == 0 {
		sb.WriteString("No checklists yet.\n\n")
	}
	for _, c := range lists {
		writeChecklist(&sb, c)
		sb.WriteString("\n")
	}

	sb.WriteString("# Templates\n\n")
	for _, tpl := range rules.ChecklistTemplates(t.profile.Get().Challenges) {
		fmt.Fprintf(&sb, "- **%s** (%s, %d items)\n", tpl.Name, tpl.Category, len(tpl.Items))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── ChecklistItemTool ──────────────────────────────────────────────────────

// ChecklistItemTool handles the checklist_item MCP tool.
type ChecklistItemTool struct {
	store *checklists.Store
}

// NewChecklistItemTool creates a ChecklistItemTool.
func NewChecklistItemTool(store *checklists.Store) *ChecklistItemTool {
	return &ChecklistItemTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ChecklistItemTool) Definition() mcp.Tool {
	return mcp.NewTool("checklist_item",
		mcp.WithDescription(
			"Change a checklist: add an item, toggle or remove one, reset all items, "+
				"rename the checklist or delete it.",
		),
		mcp.WithString("checklist_id",
			mcp.Required(),
			mcp.Description("Checklist id"),
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("add", "toggle", "remove", "reset", "rename", "delete"),
			mcp.Description("What to do"),
		),
		mcp.WithString("item_id",
			mcp.Description("Item id for toggle and remove"),
		),
		mcp.WithString("text",
			mcp.Description("Item text for add, new title for rename"),
		),
	)
}

// Handle processes the checklist_item tool call.
func (t *ChecklistItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("checklist_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'checklist_id' is required"), nil
	}
	itemID := strings.TrimSpace(req.GetString("item_id", ""))
	text := req.GetString("text", "")

	var (
		c   checklists.Checklist
		err error
	)
	switch action := req.GetString("action", ""); action {
	case "add":
		c, err = t.store.AddItem(id, text)
	case "toggle", "remove":
		if itemID == "" {
			return mcp.NewToolResultError(fmt.Sprintf("'item_id' is required for %s", action)), nil
		}
		if action == "toggle" {
			c, err = t.store.ToggleItem(id, itemID)
		} else {
			c, err = t.store.RemoveItem(id, itemID)
		}
	case "reset":
		c, err = t.store.ResetItems(id)
	case "rename":
		c, err = t.store.Rename(id, text)
	case "delete":
		if err := t.store.Delete(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Checklist %s deleted.", id)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of: add, toggle, remove, reset, rename, delete", action)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	writeChecklist(&sb, c)
	if p := c.Progress(); p.Total > 0 && p.Done == p.Total {
		sb.WriteString("\nEverything is checked.\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
