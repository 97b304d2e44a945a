// Package prompts implements MCP prompt handlers for Moodmate.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to run a sequence of Moodmate tools. Unlike tools,
// which the AI calls, prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
)

// CheckinPrompt handles the daily-checkin MCP prompt.
// It walks the user through a mood check-in and plans the day around it.
type CheckinPrompt struct {
	moods *mood.Store
}

// NewCheckinPrompt creates a CheckinPrompt.
func NewCheckinPrompt(moods *mood.Store) *CheckinPrompt {
	return &CheckinPrompt{moods: moods}
}

// Definition returns the MCP prompt definition for registration.
func (p *CheckinPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("daily-checkin",
		mcp.WithPromptDescription(
			"Start the day: record how you feel, then get priorities, "+
				"due reminders and a small plan sized to your energy.",
		),
		mcp.WithArgument("mood",
			mcp.ArgumentDescription("energetic, normal, tired, stressed or sad. Asked for when omitted."),
		),
	)
}

// Handle processes the daily-checkin prompt request.
func (p *CheckinPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	var step1 string
	if s := strings.TrimSpace(req.Params.Arguments["mood"]); s != "" {
		m, err := mood.Parse(s)
		if err != nil {
			return nil, err
		}
		step1 = fmt.Sprintf("1. Run `mood_checkin` with mood='%s'\n", m)
	} else {
		step1 = fmt.Sprintf(
			"1. Ask me how I feel today (one of: %s), with an energy score from 1 to 5, then run `mood_checkin`\n",
			joinMoods(),
		)
	}

	return &mcp.GetPromptResult{
		Description: "Daily check-in",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I'd like to do my daily check-in.\n\n" +
						"Please:\n" +
						step1 +
						"2. Run `reminder_list` with scope='due' and tell me what can't wait\n" +
						"3. Run `cleaning_suggest` and `recipe_suggest` for my mood\n" +
						"4. Offer at most three things for today, starting with the smallest\n\n" +
						"Keep it short and kind. My current mood on record is " + string(p.moods.Current()) + ".",
				),
			},
		},
	}, nil
}

func joinMoods() string {
	names := make([]string, len(mood.All))
	for i, m := range mood.All {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
