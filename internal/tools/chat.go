package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendryAvila/moodmate/internal/chat"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── ChatTool ───────────────────────────────────────────────────────────────

// ChatTool handles the chat MCP tool: it forwards a message to the
// configured model with the user's mood and profile as context.
type ChatTool struct {
	service *chat.Service
}

// NewChatTool creates a ChatTool.
func NewChatTool(service *chat.Service) *ChatTool {
	return &ChatTool{service: service}
}

// Definition returns the MCP tool definition for registration.
func (t *ChatTool) Definition() mcp.Tool {
	return mcp.NewTool("chat",
		mcp.WithDescription(
			"Ask Moodmate's own assistant. The answer is tuned to the mood, the profile and "+
				"the settings, and the exchange is saved in the chat history. When the model "+
				"is unreachable a short supportive fallback is returned instead.",
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message"),
		),
		mcp.WithString("mood",
			mcp.Enum("energetic", "normal", "tired", "stressed", "sad"),
			mcp.Description("Mood override (default: current mood)"),
		),
	)
}

// Handle processes the chat tool call.
func (t *ChatTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var m mood.Mood
	if s := req.GetString("mood", ""); s != "" {
		parsed, err := mood.Parse(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		m = parsed
	}

	reply, err := t.service.Ask(ctx, chat.Request{Message: req.GetString("message", ""), Mood: m})
	if errors.Is(err, chat.ErrEmptyMessage) {
		return mcp.NewToolResultError("'message' is required"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	if reply.Fallback {
		return mcp.NewToolResultText(reply.Text + "\n\n(fallback: the model could not be reached)"), nil
	}
	return mcp.NewToolResultText(reply.Text), nil
}

// ─── ChatHistoryTool ────────────────────────────────────────────────────────

// ChatHistoryTool handles the chat_history MCP tool.
type ChatHistoryTool struct {
	history *chat.History
}

// NewChatHistoryTool creates a ChatHistoryTool.
func NewChatHistoryTool(history *chat.History) *ChatHistoryTool {
	return &ChatHistoryTool{history: history}
}

// Definition returns the MCP tool definition for registration.
func (t *ChatHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("chat_history",
		mcp.WithDescription("Show the last chat messages, or clear the history."),
		mcp.WithNumber("limit",
			mcp.Description("Number of messages (default 20)"),
		),
		mcp.WithBoolean("clear",
			mcp.Description("If true, delete the whole history"),
		),
	)
}

// Handle processes the chat_history tool call.
func (t *ChatHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if boolArg(req, "clear", false) {
		t.history.Clear()
		return mcp.NewToolResultText("Chat history cleared."), nil
	}
	msgs := t.history.Recent(intArg(req, "limit", 20))
	if len(msgs) == 0 {
		return mcp.NewToolResultText("No messages yet."), nil
	}
	var sb strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&sb, "**%s** (%s): %s\n\n", m.Role, stamp(m.Timestamp), m.Content)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
