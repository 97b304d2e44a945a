package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Turn is one prior exchange sent to the model as context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt is what a Provider is asked to complete.
type Prompt struct {
	Model   string
	System  string
	History []Turn
	Message string
}

// Provider streams a completion, calling emit for every text chunk.
// An error from emit stops the stream and is returned as is.
type Provider interface {
	Stream(ctx context.Context, p Prompt, emit func(string) error) error
}

// ErrNoAPIKey is returned when a provider is built without credentials.
var ErrNoAPIKey = errors.New("chat: API key is required")

// GenAIProvider streams from Gemini through google.golang.org/genai.
type GenAIProvider struct {
	client *genai.Client
	model  string
}

// NewGenAIProvider creates a Gemini provider. model is the default used
// when a Prompt does not name one.
func NewGenAIProvider(ctx context.Context, apiKey, model string) (*GenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: genai client: %w", err)
	}
	return &GenAIProvider{client: client, model: model}, nil
}

// Stream implements Provider.
func (g *GenAIProvider) Stream(ctx context.Context, p Prompt, emit func(string) error) error {
	model := p.Model
	if model == "" {
		model = g.model
	}

	contents := make([]*genai.Content, 0, len(p.History)+1)
	for _, t := range p.History {
		role := genai.Role(genai.RoleUser)
		if t.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(p.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if p.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	for resp, err := range g.client.Models.GenerateContentStream(ctx, model, contents, cfg) {
		if err != nil {
			return fmt.Errorf("chat: genai stream: %w", err)
		}
		if text := resp.Text(); text != "" {
			if err := emit(text); err != nil {
				return err
			}
		}
	}
	return nil
}
