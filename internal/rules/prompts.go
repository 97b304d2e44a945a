package rules

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
)

// PromptInput is everything the chat system prompt adapts to.
type PromptInput struct {
	Mood        mood.Mood
	Profile     profile.UserProfile
	Personality string // gentle, direct, playful
	Language    string
}

var moodTone = map[mood.Mood]string{
	mood.Energetic: "The user feels energetic. Match their energy, help them channel it into one or two concrete goals, and warn gently against overcommitting.",
	mood.Normal:    "The user feels okay. Be warm and practical; suggest small, clear next steps.",
	mood.Tired:     "The user is tired. Keep answers short, lower expectations, suggest the smallest possible step or rest.",
	mood.Stressed:  "The user is stressed. Start by acknowledging it, offer one grounding technique, then break problems into tiny steps.",
	mood.Sad:       "The user feels sad. Be gentle and validating, avoid productivity pressure, encourage reaching out to someone they trust.",
}

var personalityStyle = map[string]string{
	"gentle":  "Your tone is soft and encouraging.",
	"direct":  "Your tone is direct and concise, without being cold.",
	"playful": "Your tone is light and playful, with the occasional emoji.",
}

var challengeHints = map[string]string{
	profile.ChallengeFocus:         "They struggle to stay focused: suggest short timed sessions (e.g. 15 minutes).",
	profile.ChallengeTimeBlindness: "They experience time blindness: give explicit durations and suggest timers or reminders.",
	profile.ChallengeImpulsivity:   "They deal with impulsivity: suggest a pause before decisions, especially purchases.",
	profile.ChallengeOrganization:  "Organization is hard for them: offer checklists and one-step-at-a-time plans.",
	profile.ChallengeEmotions:      "Emotional regulation is a challenge: validate feelings before problem-solving.",
	profile.ChallengeSleep:         "They have sleep difficulties: avoid suggesting late-evening work.",
	profile.ChallengeMotivation:    "Motivation is a challenge: celebrate small wins and make starting easy.",
}

// SystemPrompt builds the LLM system instruction for the chat module.
func SystemPrompt(in PromptInput) string {
	var sb strings.Builder
	sb.WriteString("You are Moodmate, a kind assistant for adults with ADHD. ")
	sb.WriteString("You help with daily life: tasks, money, health routines, cleaning, cooking and emotions. ")
	sb.WriteString("Never diagnose or give medical advice; suggest a professional when it matters.\n\n")

	tone, ok := moodTone[in.Mood]
	if !ok {
		tone = moodTone[mood.Normal]
	}
	sb.WriteString(tone)
	sb.WriteString("\n")

	if style, ok := personalityStyle[in.Personality]; ok {
		sb.WriteString(style)
		sb.WriteString("\n")
	}

	p := in.Profile
	if p.Name != "" {
		fmt.Fprintf(&sb, "The user's name is %s.\n", p.Name)
	}
	switch p.Chronotype {
	case mood.Morning:
		sb.WriteString("They are most productive in the morning.\n")
	case mood.Evening:
		sb.WriteString("They are most productive in the evening.\n")
	}
	for _, c := range p.Challenges {
		if hint, ok := challengeHints[c]; ok {
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}
	if len(p.Goals) > 0 {
		fmt.Fprintf(&sb, "Their current goals: %s.\n", strings.Join(p.Goals, "; "))
	}

	lang := in.Language
	if lang == "" {
		lang = "fr"
	}
	fmt.Fprintf(&sb, "\nAlways answer in the user's language (%s). Keep paragraphs short and use lists for steps.", lang)
	return sb.String()
}
