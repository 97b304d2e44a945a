package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/analytics"
	"github.com/HendryAvila/moodmate/internal/health"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/medsync"
	"github.com/mark3labs/mcp-go/mcp"
)

// adherenceWindow is the period medication_list reports adherence over.
const adherenceWindow = 7 * 24 * time.Hour

// ─── MedicationTool ─────────────────────────────────────────────────────────

// MedicationTool handles the medication MCP tool. Writes go through the
// syncer so the profile's medication list follows.
type MedicationTool struct {
	meds     *medsync.Syncer
	insights *analytics.Service
}

// NewMedicationTool creates a MedicationTool.
func NewMedicationTool(meds *medsync.Syncer, insights *analytics.Service) *MedicationTool {
	return &MedicationTool{meds: meds, insights: insights}
}

// Definition returns the MCP tool definition for registration.
func (t *MedicationTool) Definition() mcp.Tool {
	return mcp.NewTool("medication",
		mcp.WithDescription(
			"Add, update or delete a medication. The user profile is updated in the same write.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("add", "update", "delete"),
			mcp.Description("What to do"),
		),
		mcp.WithString("id",
			mcp.Description("Medication id, required for update and delete"),
		),
		mcp.WithString("name",
			mcp.Description("Medication name, required for add"),
		),
		mcp.WithString("dosage",
			mcp.Description("Dosage, e.g. '10 mg'"),
		),
		mcp.WithArray("schedule",
			mcp.Description("Intake times as HH:MM"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form notes"),
		),
		mcp.WithBoolean("active",
			mcp.Description("For update: false pauses the medication"),
		),
	)
}

// Handle processes the medication tool call.
func (t *MedicationTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))

	var (
		m   health.Medication
		err error
	)
	switch action := req.GetString("action", ""); action {
	case "add":
		m, err = t.meds.Add(health.Medication{
			Name:     req.GetString("name", ""),
			Dosage:   req.GetString("dosage", ""),
			Schedule: listArg(req, "schedule"),
			Notes:    req.GetString("notes", ""),
		})
	case "update":
		if id == "" {
			return mcp.NewToolResultError("'id' is required for update"), nil
		}
		args := req.GetArguments()
		m, err = t.meds.Update(id, func(m *health.Medication) {
			if v := req.GetString("name", ""); v != "" {
				m.Name = v
			}
			if _, ok := args["dosage"]; ok {
				m.Dosage = req.GetString("dosage", "")
			}
			if _, ok := args["schedule"]; ok {
				m.Schedule = listArg(req, "schedule")
			}
			if _, ok := args["notes"]; ok {
				m.Notes = req.GetString("notes", "")
			}
			m.Active = boolArg(req, "active", m.Active)
		})
	case "delete":
		if id == "" {
			return mcp.NewToolResultError("'id' is required for delete"), nil
		}
		if err := t.meds.Delete(id); err != nil {
			return medicationError(err)
		}
		invalidateInsights(t.insights)
		return mcp.NewToolResultText(fmt.Sprintf("Medication %s deleted. Past doses are kept.", id)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of: add, update, delete", action)), nil
	}
	if err != nil {
		return medicationError(err)
	}
	invalidateInsights(t.insights)

	state := "active"
	if !m.Active {
		state = "paused"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Medication `%s` %s (%s), schedule %s, %s.",
		m.ID, m.Name, m.Dosage, strings.Join(m.Schedule, ", "), state)), nil
}

// medicationError turns a storage failure into a tool error. Quota
// failures mean nothing was written.
func medicationError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, kvstore.ErrQuotaExceeded) {
		return mcp.NewToolResultError("storage is full: the medication was not saved"), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

// ─── MedicationListTool ─────────────────────────────────────────────────────

// MedicationListTool handles the medication_list MCP tool.
type MedicationListTool struct {
	health *health.Store
}

// NewMedicationListTool creates a MedicationListTool.
func NewMedicationListTool(h *health.Store) *MedicationListTool {
	return &MedicationListTool{health: h}
}

// Definition returns the MCP tool definition for registration.
func (t *MedicationListTool) Definition() mcp.Tool {
	return mcp.NewTool("medication_list",
		mcp.WithDescription("List medications with their adherence over the last 7 days."),
	)
}

// Handle processes the medication_list tool call.
func (t *MedicationListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meds := t.health.Medications()
	if len(meds) == 0 {
		return mcp.NewToolResultText("No medications recorded."), nil
	}
	now := timeNow().UTC()
	since := now.Add(-adherenceWindow)

	var sb strings.Builder
	sb.WriteString("# Medications\n\n")
	for _, m := range meds {
		fmt.Fprintf(&sb, "- `%s` **%s**", m.ID, m.Name)
		if m.Dosage != "" {
			fmt.Fprintf(&sb, " %s", m.Dosage)
		}
		if len(m.Schedule) > 0 {
			fmt.Fprintf(&sb, " at %s", strings.Join(m.Schedule, ", "))
		}
		if !m.Active {
			sb.WriteString(" (paused)")
			sb.WriteString("\n")
			continue
		}
		a := t.health.Adherence(m.ID, since, now)
		fmt.Fprintf(&sb, ", 7-day adherence %d/%d (%.0f%%)\n", a.Taken, a.Expected, a.Rate*100)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// ─── DoseLogTool ────────────────────────────────────────────────────────────

// DoseLogTool handles the dose_log MCP tool.
type DoseLogTool struct {
	health   *health.Store
	insights *analytics.Service
}

// NewDoseLogTool creates a DoseLogTool.
func NewDoseLogTool(h *health.Store, insights *analytics.Service) *DoseLogTool {
	return &DoseLogTool{health: h, insights: insights}
}

// Definition returns the MCP tool definition for registration.
func (t *DoseLogTool) Definition() mcp.Tool {
	return mcp.NewTool("dose_log",
		mcp.WithDescription("Record that a dose was taken now, or deliberately skipped."),
		mcp.WithString("medication_id",
			mcp.Required(),
			mcp.Description("Medication id"),
		),
		mcp.WithBoolean("skipped",
			mcp.Description("True when the dose was skipped"),
		),
		mcp.WithString("note",
			mcp.Description("Optional note, e.g. side effects"),
		),
	)
}

// Handle processes the dose_log tool call.
func (t *DoseLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("medication_id", ""))
	if id == "" {
		return mcp.NewToolResultError("'medication_id' is required"), nil
	}
	m, ok := t.health.Medication(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("medication %q not found", id)), nil
	}
	skipped := boolArg(req, "skipped", false)
	e := t.health.LogDose(id, skipped, req.GetString("note", ""))
	invalidateInsights(t.insights)

	verb := "taken"
	if skipped {
		verb = "skipped"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s at %s (entry `%s`).", m.Name, verb, stamp(e.TakenAt), e.ID)), nil
}

// ─── WellbeingLogTool ───────────────────────────────────────────────────────

// WellbeingLogTool handles the wellbeing_log MCP tool.
type WellbeingLogTool struct {
	health   *health.Store
	insights *analytics.Service
}

// NewWellbeingLogTool creates a WellbeingLogTool.
func NewWellbeingLogTool(h *health.Store, insights *analytics.Service) *WellbeingLogTool {
	return &WellbeingLogTool{health: h, insights: insights}
}

// Definition returns the MCP tool definition for registration.
func (t *WellbeingLogTool) Definition() mcp.Tool {
	return mcp.NewTool("wellbeing_log",
		mcp.WithDescription("Record a wellbeing check-in. Scores go from 0 to 5."),
		mcp.WithNumber("sleep_hours",
			mcp.Description("Hours slept last night"),
		),
		mcp.WithNumber("energy",
			mcp.Description("Energy 0-5"),
		),
		mcp.WithNumber("anxiety",
			mcp.Description("Anxiety 0-5"),
		),
		mcp.WithNumber("focus",
			mcp.Description("Focus 0-5"),
		),
		mcp.WithString("note",
			mcp.Description("Optional note"),
		),
	)
}

// Handle processes the wellbeing_log tool call.
func (t *WellbeingLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w := t.health.AddWellbeing(health.WellbeingEntry{
		SleepHours: floatArg(req, "sleep_hours", 0),
		Energy:     intArg(req, "energy", 0),
		Anxiety:    intArg(req, "anxiety", 0),
		Focus:      intArg(req, "focus", 0),
		Note:       req.GetString("note", ""),
	})
	invalidateInsights(t.insights)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Wellbeing saved (`%s`): sleep %.1fh, energy %d/5, anxiety %d/5, focus %d/5.",
		w.ID, w.SleepHours, w.Energy, w.Anxiety, w.Focus,
	)), nil
}
