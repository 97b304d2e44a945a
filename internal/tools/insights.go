package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/HendryAvila/moodmate/internal/analytics"
	"github.com/HendryAvila/moodmate/internal/datacache"
	"github.com/HendryAvila/moodmate/internal/health"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── InsightsTool ───────────────────────────────────────────────────────────

// InsightsTool handles the insights MCP tool.
type InsightsTool struct {
	service *analytics.Service
	health  *health.Store
}

// NewInsightsTool creates an InsightsTool. The health store is only used
// to name medications.
func NewInsightsTool(service *analytics.Service, h *health.Store) *InsightsTool {
	return &InsightsTool{service: service, health: h}
}

// Definition returns the MCP tool definition for registration.
func (t *InsightsTool) Definition() mcp.Tool {
	return mcp.NewTool("insights",
		mcp.WithDescription(
			"Summarize the last 30 days: moods, spending per mood, medication adherence, "+
				"wellbeing and personalized tips. Results are cached for 5 minutes. "+
				"Figures marked 'estimated' are indicative only; never present them as findings.",
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Recompute instead of using the cached result"),
		),
	)
}

// Handle processes the insights tool call.
func (t *InsightsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := timeNow()
	if boolArg(req, "refresh", false) {
		t.service.Invalidate(now)
	}
	in, err := t.service.Insights(ctx, now)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(renderInsights(in, t.medName)), nil
}

func (t *InsightsTool) medName(id string) string {
	if m, ok := t.health.Medication(id); ok {
		return m.Name
	}
	return id
}

func renderInsights(in analytics.Insights, medName func(string) string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Insights %s → %s\n\n", in.From.Local().Format("2006-01-02"), in.To.Local().Format("2006-01-02"))

	sb.WriteString("## Mood\n\n")
	if in.CheckIns == 0 {
		sb.WriteString("No check-ins in this period.\n")
	} else {
		fmt.Fprintf(&sb, "%d check-ins, mostly **%s**", in.CheckIns, in.DominantMood)
		if in.AverageEnergy > 0 {
			fmt.Fprintf(&sb, ", average energy %.1f/5", in.AverageEnergy)
		}
		sb.WriteString("\n\n")
		for _, m := range mood.All {
			if n := in.MoodCounts[m]; n > 0 {
				fmt.Fprintf(&sb, "- %s: %d\n", m, n)
			}
		}
	}

	sb.WriteString("\n## Spending\n\n")
	fmt.Fprintf(&sb, "Total %s, %.0f%% impulsive\n", money(in.TotalSpent), in.ImpulsiveRatio*100)
	moods := make([]mood.Mood, 0, len(in.SpendByMood))
	for m := range in.SpendByMood {
		moods = append(moods, m)
	}
	sort.Slice(moods, func(i, j int) bool { return in.SpendByMood[moods[i]] > in.SpendByMood[moods[j]] })
	for _, m := range moods {
		fmt.Fprintf(&sb, "- %s: %s\n", m, money(in.SpendByMood[m]))
	}

	if len(in.Adherence) > 0 {
		sb.WriteString("\n## Medication\n\n")
		for _, a := range in.Adherence {
			fmt.Fprintf(&sb, "- %s: %d/%d doses (%.0f%%)\n", medName(a.MedicationID), a.Taken, a.Expected, a.Rate*100)
		}
	}

	if w := in.Wellbeing; w.Count > 0 {
		sb.WriteString("\n## Wellbeing\n\n")
		fmt.Fprintf(&sb, "%d check-ins: sleep %.1fh, energy %.1f, anxiety %.1f, focus %.1f\n",
			w.Count, w.SleepHours, w.Energy, w.Anxiety, w.Focus)
	}

	if len(in.Tips) > 0 {
		sb.WriteString("\n## Tips\n\n")
		for _, tip := range in.Tips {
			fmt.Fprintf(&sb, "- %s\n", tip)
		}
	}

	if len(in.Correlations) > 0 {
		sb.WriteString("\n## Patterns (estimated)\n\n")
		for _, c := range in.Correlations {
			fmt.Fprintf(&sb, "- %s: %.2f (confidence %.0f%%, estimated)\n", c.Label, c.Value, c.Confidence)
		}
	}
	return sb.String()
}

// ─── CacheTool ──────────────────────────────────────────────────────────────

// CacheTool handles the cache MCP tool.
type CacheTool struct {
	cache *datacache.Cache
}

// NewCacheTool creates a CacheTool.
func NewCacheTool(cache *datacache.Cache) *CacheTool {
	return &CacheTool{cache: cache}
}

// Definition returns the MCP tool definition for registration.
func (t *CacheTool) Definition() mcp.Tool {
	return mcp.NewTool("cache",
		mcp.WithDescription(
			"Inspect or maintain the computed-data cache. action=stats (default) shows "+
				"counters and keys, cleanup drops expired entries, clear empties it.",
		),
		mcp.WithString("action",
			mcp.Enum("stats", "cleanup", "clear"),
			mcp.Description("What to do"),
		),
	)
}

// Handle processes the cache tool call.
func (t *CacheTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch action := req.GetString("action", "stats"); action {
	case "stats", "":
		st := t.cache.Stats()
		var sb strings.Builder
		fmt.Fprintf(&sb, "Cache version %s: %d entries, %d hits, %d misses, %d evictions, %d expirations\n",
			t.cache.Version(), st.Size, st.Hits, st.Misses, st.Evictions, st.Expirations)
		for _, k := range t.cache.Keys() {
			fmt.Fprintf(&sb, "- %s\n", k)
		}
		return mcp.NewToolResultText(sb.String()), nil
	case "cleanup":
		n := t.cache.Cleanup()
		return mcp.NewToolResultText(fmt.Sprintf("Removed %d stale entries.", n)), nil
	case "clear":
		t.cache.Clear()
		return mcp.NewToolResultText("Cache cleared."), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid action %q: must be one of: stats, cleanup, clear", action)), nil
	}
}
