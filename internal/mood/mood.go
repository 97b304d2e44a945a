// Package mood defines the mood and chronotype enums that drive copy and
// theme selection across the app, and the mood-tracking store.
package mood

import (
	"fmt"
	"strings"
)

// Mood is the user's self-reported state.
type Mood string

const (
	Energetic Mood = "energetic"
	Normal    Mood = "normal"
	Tired     Mood = "tired"
	Stressed  Mood = "stressed"
	Sad       Mood = "sad"
)

// All lists every mood in display order.
var All = []Mood{Energetic, Normal, Tired, Stressed, Sad}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	for _, v := range All {
		if m == v {
			return true
		}
	}
	return false
}

// Parse validates s as a mood. Empty input means Normal.
func Parse(s string) (Mood, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Normal, nil
	}
	m := Mood(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid mood %q: must be one of: energetic, normal, tired, stressed, sad", s)
	}
	return m, nil
}

// Chronotype is the user's declared daily energy pattern.
type Chronotype string

const (
	Morning  Chronotype = "morning"
	Evening  Chronotype = "evening"
	Flexible Chronotype = "flexible"
)

// ParseChronotype validates s. Empty input means Flexible.
func ParseChronotype(s string) (Chronotype, error) {
	switch c := Chronotype(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return Flexible, nil
	case Morning, Evening, Flexible:
		return c, nil
	default:
		return "", fmt.Errorf("invalid chronotype %q: must be one of: morning, evening, flexible", s)
	}
}
