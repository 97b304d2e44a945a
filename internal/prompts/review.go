package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ReviewPrompt handles the weekly-review MCP prompt.
// It asks the AI to read the insights and reflect on the week with the user.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("weekly-review",
		mcp.WithPromptDescription(
			"Look back on the week: moods, spending, medication and wellbeing, "+
				"with one or two gentle adjustments for next week.",
		),
	)
}

// Handle processes the weekly-review prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Weekly review",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Let's do my weekly review.\n\n" +
						"Please run `insights` with refresh=true, `mood_history` and `budget`.\n\n" +
						"Then:\n" +
						"1. Tell me what went well first\n" +
						"2. Point out at most two patterns worth watching, without judgment\n" +
						"3. Treat figures marked 'estimated' as hints only\n" +
						"4. Suggest one small change for next week and offer to set a reminder for it",
				),
			},
		},
	}, nil
}
