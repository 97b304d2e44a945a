package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/cooking"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── RecipeTool ─────────────────────────────────────────────────────────────

// RecipeTool handles the recipe MCP tool.
type RecipeTool struct {
	store *cooking.Store
}

// NewRecipeTool creates a RecipeTool.
func NewRecipeTool(store *cooking.Store) *RecipeTool {
	return &RecipeTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *RecipeTool) Definition() mcp.Tool {
	return mcp.NewTool("recipe",
		mcp.WithDescription("Save a recipe, toggle it as favorite, or delete it."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("add", "favorite", "delete"),
			mcp.Description("What to do"),
		),
		mcp.WithString("id",
			mcp.Description("Recipe id for favorite and delete"),
		),
		mcp.WithString("name",
			mcp.Description("Recipe name for add"),
		),
		mcp.WithNumber("minutes",
			mcp.Description("Total time in minutes"),
		),
		mcp.WithString("effort",
			mcp.Enum("low", "medium", "high"),
			mcp.Description("Effort level (default: low)"),
		),
		mcp.WithArray("ingredients",
			mcp.Description("Ingredients"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("steps",
			mcp.Description("Steps, in order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// Handle processes the recipe tool call.
func (t *RecipeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	switch action := req.GetString("action", ""); action {
	case "add":
		r, err := t.store.Add(cooking.Recipe{
			Name:        req.GetString("name", ""),
			Minutes:     intArg(req, "minutes", 0),
			Effort:      req.GetString("effort", ""),
			Ingredients: listArg(req, "ingredients"),
			Steps:       listArg(req, "steps"),
		})
		switch {
		case errors.Is(err, cooking.ErrEmptyName):
			return mcp.NewToolResultError("'name' is required for add"), nil
		case errors.Is(err, cooking.ErrInvalidEffort):
			return mcp.NewToolResultError(err.Error()), nil
		case err != nil:
			return nil, err
		}
		return mcp.NewToolResultText(fmt.Sprintf("Recipe `%s` saved: %s (%d min, effort %s).", r.ID, r.Name, r.Minutes, r.Effort)), nil
	case "favorite":
		if id == "" {
			return mcp.NewToolResultError("'id' is required for favorite"), nil
		}
		r, err := t.store.ToggleFavorite(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if r.Favorite {
			return mcp.NewToolResultText(fmt.Sprintf("%s added to favorites.", r.Name)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s removed from favorites.", r.Name)), nil
	case "delete":
		if id == "" {
			return mcp.NewToolResultError("'id' is required for delete"), nil
		}
		if err := t.store.Delete(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Recipe %s deleted.", id)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of: add, favorite, delete", action)), nil
	}
}

// ─── RecipeSuggestTool ──────────────────────────────────────────────────────

// RecipeSuggestTool handles the recipe_suggest MCP tool.
type RecipeSuggestTool struct {
	store *cooking.Store
	moods *mood.Store
}

// NewRecipeSuggestTool creates a RecipeSuggestTool.
func NewRecipeSuggestTool(store *cooking.Store, moods *mood.Store) *RecipeSuggestTool {
	return &RecipeSuggestTool{store: store, moods: moods}
}

// Definition returns the MCP tool definition for registration.
func (t *RecipeSuggestTool) Definition() mcp.Tool {
	return mcp.NewTool("recipe_suggest",
		mcp.WithDescription(
			"Suggest saved recipes whose effort suits the mood, favorites first, then quickest.",
		),
		mcp.WithString("mood",
			mcp.Enum("energetic", "normal", "tired", "stressed", "sad"),
			mcp.Description("Mood to cook for (default: current mood)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of recipes (default 5)"),
		),
	)
}

// Handle processes the recipe_suggest tool call.
func (t *RecipeSuggestTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := moodArg(req, t.moods.Current())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list := t.store.Suggest(m)
	if len(list) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No saved recipe fits a %s day. Something simple will do.", m)), nil
	}
	if limit := intArg(req, "limit", 5); limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Recipes for a %s day\n\n", m)
	for _, r := range list {
		star := ""
		if r.Favorite {
			star = " ★"
		}
		fmt.Fprintf(&sb, "## %s%s `%s`\n\n%d min, effort %s\n", r.Name, star, r.ID, r.Minutes, r.Effort)
		if len(r.Ingredients) > 0 {
			fmt.Fprintf(&sb, "\nIngredients: %s\n", strings.Join(r.Ingredients, ", "))
		}
		for i, s := range r.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}
