package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/analytics"
	"github.com/HendryAvila/moodmate/internal/finance"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── ExpenseAddTool ─────────────────────────────────────────────────────────

// ExpenseAddTool handles the expense_add MCP tool. The expense is tagged
// with the current mood so spending can be read against it later.
type ExpenseAddTool struct {
	finance  *finance.Store
	moods    *mood.Store
	insights *analytics.Service
}

// NewExpenseAddTool creates an ExpenseAddTool.
func NewExpenseAddTool(f *finance.Store, moods *mood.Store, insights *analytics.Service) *ExpenseAddTool {
	return &ExpenseAddTool{finance: f, moods: moods, insights: insights}
}

// Definition returns the MCP tool definition for registration.
func (t *ExpenseAddTool) Definition() mcp.Tool {
	return mcp.NewTool("expense_add",
		mcp.WithDescription(
			"Record an expense. The current mood is attached automatically. "+
				"Flag impulse purchases so the insights can show the pattern without judgment.",
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Amount spent, positive"),
		),
		mcp.WithString("category",
			mcp.Description("Category such as courses, loisirs, transport (default: autre)"),
		),
		mcp.WithString("description",
			mcp.Description("What it was"),
		),
		mcp.WithBoolean("impulsive",
			mcp.Description("True for an unplanned purchase"),
		),
		mcp.WithString("date",
			mcp.Description("When it happened: YYYY-MM-DD or YYYY-MM-DD HH:MM (default: now)"),
		),
	)
}

// Handle processes the expense_add tool call.
func (t *ExpenseAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	e := finance.Expense{
		Amount:      floatArg(req, "amount", 0),
		Category:    req.GetString("category", ""),
		Description: req.GetString("description", ""),
		Impulsive:   boolArg(req, "impulsive", false),
		Mood:        t.moods.Current(),
	}
	if d := req.GetString("date", ""); d != "" {
		when, err := parseWhen(d, timeNow())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		e.Date = when.UTC()
	}

	saved, err := t.finance.AddExpense(e)
	if errors.Is(err, finance.ErrInvalidAmount) {
		return mcp.NewToolResultError("'amount' must be a positive number"), nil
	}
	if err != nil {
		return nil, err
	}
	invalidateInsights(t.insights)

	st := t.finance.Status(saved.Date)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Saved %s in %s (id `%s`).\n", money(saved.Amount), saved.Category, saved.ID)
	fmt.Fprintf(&sb, "Spent in %s: %s", st.Month, money(st.Spent))
	if st.Budget > 0 {
		fmt.Fprintf(&sb, " of %s", money(st.Budget))
		if st.OverBudget {
			sb.WriteString(" (over budget)")
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── ExpenseListTool ────────────────────────────────────────────────────────

// ExpenseListTool handles the expense_list MCP tool.
type ExpenseListTool struct {
	finance *finance.Store
}

// NewExpenseListTool creates an ExpenseListTool.
func NewExpenseListTool(f *finance.Store) *ExpenseListTool {
	return &ExpenseListTool{finance: f}
}

// Definition returns the MCP tool definition for registration.
func (t *ExpenseListTool) Definition() mcp.Tool {
	return mcp.NewTool("expense_list",
		mcp.WithDescription("List a month's expenses, newest first, with per-category totals."),
		mcp.WithString("month",
			mcp.Description("Month as YYYY-MM (default: current month)"),
		),
	)
}

// Handle processes the expense_list tool call.
func (t *ExpenseListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	month, err := monthArg(req, timeNow())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list := t.finance.List(month)
	label := month.Format("2006-01")
	if len(list) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No expenses in %s.", label)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Expenses %s\n\n", label)
	for _, e := range list {
		fmt.Fprintf(&sb, "- `%s` %s %s, %s", e.ID, e.Date.Local().Format("2006-01-02"), money(e.Amount), e.Category)
		if e.Description != "" {
			fmt.Fprintf(&sb, ": %s", e.Description)
		}
		if e.Impulsive {
			sb.WriteString(" (impulsive)")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nTotal: %s\n", money(t.finance.MonthTotal(month)))
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── ExpenseDeleteTool ──────────────────────────────────────────────────────

// ExpenseDeleteTool handles the expense_delete MCP tool.
type ExpenseDeleteTool struct {
	finance  *finance.Store
	insights *analytics.Service
}

// NewExpenseDeleteTool creates an ExpenseDeleteTool.
func NewExpenseDeleteTool(f *finance.Store, insights *analytics.Service) *ExpenseDeleteTool {
	return &ExpenseDeleteTool{finance: f, insights: insights}
}

// Definition returns the MCP tool definition for registration.
func (t *ExpenseDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("expense_delete",
		mcp.WithDescription("Delete an expense by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Expense id"),
		),
	)
}

// Handle processes the expense_delete tool call.
func (t *ExpenseDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}
	if err := t.finance.DeleteExpense(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	invalidateInsights(t.insights)
	return mcp.NewToolResultText(fmt.Sprintf("Expense %s deleted.", id)), nil
}

// ─── BudgetTool ─────────────────────────────────────────────────────────────

// BudgetTool handles the budget MCP tool: set the budget or read the
// month's status against it.
type BudgetTool struct {
	finance *finance.Store
}

// NewBudgetTool creates a BudgetTool.
func NewBudgetTool(f *finance.Store) *BudgetTool {
	return &BudgetTool{finance: f}
}

// Definition returns the MCP tool definition for registration.
func (t *BudgetTool) Definition() mcp.Tool {
	return mcp.NewTool("budget",
		mcp.WithDescription(
			"Read or set the monthly budget. action=status (default) compares a month's "+
				"spending with the budget; action=set replaces the monthly amount and, "+
				"when given, the per-category limits.",
		),
		mcp.WithString("action",
			mcp.Enum("status", "set"),
			mcp.Description("status or set"),
		),
		mcp.WithString("month",
			mcp.Description("Month as YYYY-MM for status (default: current month)"),
		),
		mcp.WithNumber("monthly",
			mcp.Description("Monthly budget for action=set"),
		),
		mcp.WithObject("categories",
			mcp.Description("Per-category limits for action=set, e.g. {\"courses\": 300}"),
		),
	)
}

// Handle processes the budget tool call.
func (t *BudgetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.GetString("action", "status") {
	case "set":
		monthly := floatArg(req, "monthly", -1)
		if monthly < 0 {
			return mcp.NewToolResultError("'monthly' is required for action=set and must not be negative"), nil
		}
		t.finance.SetBudget(monthly, amountMapArg(req, "categories"))
		return t.status(timeNow().UTC())
	case "status", "":
		month, err := monthArg(req, timeNow())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return t.status(month)
	default:
		return mcp.NewToolResultError("'action' must be status or set"), nil
	}
}

func (t *BudgetTool) status(month time.Time) (*mcp.CallToolResult, error) {
	st := t.finance.Status(month)
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Budget %s\n\n", st.Month)
	if st.Budget == 0 {
		fmt.Fprintf(&sb, "No monthly budget set. Spent: %s\n", money(st.Spent))
	} else {
		fmt.Fprintf(&sb, "Spent %s of %s, remaining %s", money(st.Spent), money(st.Budget), money(st.Remaining))
		if st.OverBudget {
			sb.WriteString(" (over budget)")
		}
		sb.WriteString("\n")
	}
	if len(st.Categories) > 0 {
		sb.WriteString("\n| Category | Spent | Limit |\n|---|---|---|\n")
		for _, c := range st.Categories {
			flag := ""
			if c.Over {
				flag = " ⚠"
			}
			fmt.Fprintf(&sb, "| %s | %s%s | %s |\n", c.Category, money(c.Spent), flag, money(c.Limit))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}
