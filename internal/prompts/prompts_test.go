package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if len(r.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(r.Messages))
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", r.Messages[0].Content)
	}
	return tc.Text
}

func TestCheckinPrompt(t *testing.T) {
	moods := mood.NewStore(kvstore.NewMemoryStore(0), zap.NewNop())
	p := NewCheckinPrompt(moods)

	if got := p.Definition().Name; got != "daily-checkin" {
		t.Errorf("name = %q", got)
	}

	req := mcp.GetPromptRequest{}
	res, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if text := promptText(t, res); !strings.Contains(text, "Ask me how I feel") {
		t.Errorf("without a mood the prompt should ask:\n%s", text)
	}

	req.Params.Arguments = map[string]string{"mood": "Tired"}
	res, err = p.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if text := promptText(t, res); !strings.Contains(text, "mood='tired'") {
		t.Errorf("mood not passed through:\n%s", text)
	}

	req.Params.Arguments = map[string]string{"mood": "grumpy"}
	if _, err := p.Handle(context.Background(), req); err == nil {
		t.Error("expected error for unknown mood")
	}
}

func TestReviewPrompt(t *testing.T) {
	res, err := NewReviewPrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if text := promptText(t, res); !strings.Contains(text, "`insights`") {
		t.Errorf("review should read insights:\n%s", text)
	}
}
