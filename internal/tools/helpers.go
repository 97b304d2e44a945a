// Package tools implements the MCP tool handlers for Moodmate.
//
// Each tool is a struct that receives its stores through the constructor
// and exposes two methods:
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// User mistakes come back as tool errors (mcp.NewToolResultError) so the
// assistant can correct itself; only broken invariants are Go errors.
package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/analytics"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
)

var timeNow = time.Now

// invalidateInsights drops today's memoized insights after a write that
// feeds them.
func invalidateInsights(s *analytics.Service) {
	if s != nil {
		s.Invalidate(timeNow())
	}
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// floatArg extracts a number argument.
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// listArg accepts either a JSON array of strings or a single string with
// one entry per line or comma. Empty entries are dropped.
func listArg(req mcp.CallToolRequest, key string) []string {
	var raw []string
	switch v := req.GetArguments()[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	case string:
		raw = strings.FieldsFunc(v, func(r rune) bool { return r == '\n' || r == ',' })
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// amountMapArg reads an object of name → number.
func amountMapArg(req mcp.CallToolRequest, key string) map[string]float64 {
	obj, ok := req.GetArguments()[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(obj))
	for k, v := range obj {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				out[k] = f
			}
		}
	}
	return out
}

// moodArg parses the "mood" argument, falling back to current when the
// argument is absent.
func moodArg(req mcp.CallToolRequest, current mood.Mood) (mood.Mood, error) {
	s := req.GetString("mood", "")
	if strings.TrimSpace(s) == "" {
		return current, nil
	}
	return mood.Parse(s)
}

// whenLayouts are the local-time formats accepted for dates.
var whenLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseWhen reads an RFC 3339 timestamp, a local "YYYY-MM-DD HH:MM" or
// "YYYY-MM-DD", or a bare "HH:MM" meaning the next such time after now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	if hm, err := time.ParseInLocation("15:04", s, now.Location()); err == nil {
		t := time.Date(now.Year(), now.Month(), now.Day(), hm.Hour(), hm.Minute(), 0, 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD HH:MM, YYYY-MM-DD, HH:MM or RFC 3339", s)
}

// monthArg parses "YYYY-MM", defaulting to the month of now.
func monthArg(req mcp.CallToolRequest, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(req.GetString("month", ""))
	if s == "" {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: use YYYY-MM", s)
	}
	return t, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " €"
}

func stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
