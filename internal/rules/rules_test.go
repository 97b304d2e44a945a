package rules

import (
	"strings"
	"testing"

	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorities_EveryMoodSortedByWeight(t *testing.T) {
	for _, m := range mood.All {
		t.Run(string(m), func(t *testing.T) {
			ps := Priorities(m)
			require.NotEmpty(t, ps)
			for i := 1; i < len(ps); i++ {
				assert.GreaterOrEqual(t, ps[i-1].Weight, ps[i].Weight)
			}
		})
	}
}

func TestPriorities_TiredPutsRestFirst(t *testing.T) {
	assert.Equal(t, AreaRest, Priorities(mood.Tired)[0].Area)
}

func TestPriorities_UnknownMoodFallsBack(t *testing.T) {
	assert.Equal(t, Priorities(mood.Normal), Priorities(mood.Mood("bored")))
}

func TestPriorities_ReturnsCopy(t *testing.T) {
	ps := Priorities(mood.Normal)
	ps[0].Tip = "changed"
	assert.NotEqual(t, "changed", Priorities(mood.Normal)[0].Tip)
}

func TestGreeting(t *testing.T) {
	tests := []struct {
		name string
		m    mood.Mood
		c    mood.Chronotype
		hour int
		want []string
	}{
		{"morning person at 8", mood.Energetic, mood.Morning, 8, []string{"Bonjour Alex", "meilleur moment"}},
		{"evening person at 19", mood.Tired, mood.Evening, 19, []string{"Bonsoir Alex", "Journée douce", "énergie arrive"}},
		{"afternoon", mood.Stressed, mood.Flexible, 14, []string{"Bon après-midi Alex", "respire"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Greeting(tt.m, tt.c, "Alex", tt.hour)
			for _, w := range tt.want {
				assert.Contains(t, g, w)
			}
		})
	}
}

func TestGreeting_NoName(t *testing.T) {
	assert.True(t, strings.HasPrefix(Greeting(mood.Normal, mood.Flexible, "", 9), "Bonjour !"))
}

func TestEffort(t *testing.T) {
	assert.Greater(t, EffortBudget(mood.Energetic), EffortBudget(mood.Tired))
	assert.True(t, AllowedEffort(mood.Energetic, EffortHigh))
	assert.False(t, AllowedEffort(mood.Normal, EffortHigh))
	assert.True(t, AllowedEffort(mood.Sad, EffortLow))
	assert.False(t, AllowedEffort(mood.Stressed, EffortMedium))
}

func TestFallbackMessage(t *testing.T) {
	for _, m := range mood.All {
		assert.NotEmpty(t, FallbackMessage(m))
	}
	assert.Equal(t, FallbackMessage(mood.Normal), FallbackMessage(""))
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt(PromptInput{
		Mood: mood.Stressed,
		Profile: profile.UserProfile{
			Name:       "Nour",
			Chronotype: mood.Evening,
			Challenges: []string{profile.ChallengeImpulsivity, "unknown"},
			Goals:      []string{"pay rent on time"},
		},
		Personality: "direct",
	})
	for _, want := range []string{"stressed", "Nour", "evening", "impulsivity", "pay rent on time", "direct", "(fr)"} {
		assert.Contains(t, p, want)
	}
}

func TestAnalyticsTips(t *testing.T) {
	tips := AnalyticsTips(mood.Morning, []string{profile.ChallengeFocus, "other", profile.ChallengeSleep})
	require.Len(t, tips, 3)
	assert.Contains(t, tips[0], "midi")

	assert.Len(t, AnalyticsTips("", nil), 1)
}

func TestChecklistTemplates(t *testing.T) {
	base := ChecklistTemplates(nil)
	withImp := ChecklistTemplates([]string{profile.ChallengeImpulsivity, profile.ChallengeImpulsivity})
	assert.Len(t, withImp, len(base)+1)

	tpl, ok := FindTemplate("Avant un achat", []string{profile.ChallengeImpulsivity})
	require.True(t, ok)
	assert.Equal(t, "finance", tpl.Category)

	_, ok = FindTemplate("Avant un achat", nil)
	assert.False(t, ok)
}
