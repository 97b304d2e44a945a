// Package chat runs the mood-aware assistant conversation: it builds the
// system prompt from the user's profile, settings and mood, streams the
// model's reply, and falls back to a canned message when the model is
// unreachable.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/HendryAvila/moodmate/internal/settings"
	"go.uber.org/zap"
)

// ContextTurns is how many stored messages are sent as history when the
// request carries none.
const ContextTurns = 10

// ErrEmptyMessage is returned for a blank user message.
var ErrEmptyMessage = errors.New("chat: message is required")

// Request is one user message. Zero-valued optional fields are filled
// from the stores.
type Request struct {
	Message  string
	Mood     mood.Mood
	History  []Turn
	Profile  *profile.UserProfile
	Settings *settings.AppSettings
}

// Reply is the assistant's complete answer.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// Deps are the collaborators a Service reads from.
type Deps struct {
	History  *History
	Moods    *mood.Store
	Profile  *profile.Store
	Settings *settings.Store
	Provider Provider // nil means always fall back
}

// Service answers chat requests.
type Service struct {
	deps Deps
	log  *zap.Logger
}

// NewService creates a Service.
func NewService(deps Deps, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{deps: deps, log: log}
}

// History returns the stored conversation.
func (s *Service) History() *History { return s.deps.History }

// Stream answers req, calling emit with each chunk. If the provider
// fails, the mood's fallback message is emitted instead and the reply is
// marked as a fallback. Errors from emit or a cancelled ctx are returned.
func (s *Service) Stream(ctx context.Context, req Request, emit func(string) error) (Reply, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Reply{}, ErrEmptyMessage
	}

	m := req.Mood
	if !m.Valid() {
		m = s.deps.Moods.Current()
	}
	p := s.deps.Profile.Get()
	if req.Profile != nil {
		p = *req.Profile
	}
	st := s.deps.Settings.Get()
	if req.Settings != nil {
		st = *req.Settings
	}

	history := req.History
	if history == nil {
		for _, h := range s.deps.History.Recent(ContextTurns) {
			history = append(history, Turn{Role: h.Role, Content: h.Content})
		}
	}

	prompt := Prompt{
		Model: st.AIModel,
		System: rules.SystemPrompt(rules.PromptInput{
			Mood:        m,
			Profile:     p,
			Personality: st.AIPersonality,
			Language:    st.Language,
		}),
		History: history,
		Message: msg,
	}

	var sb strings.Builder
	var emitErr error
	collect := func(chunk string) error {
		if err := emit(chunk); err != nil {
			emitErr = err
			return err
		}
		sb.WriteString(chunk)
		return nil
	}

	reply := Reply{}
	err := errors.New("chat: no provider configured")
	if s.deps.Provider != nil {
		err = s.deps.Provider.Stream(ctx, prompt, collect)
	}
	switch {
	case emitErr != nil:
		return Reply{}, emitErr
	case ctx.Err() != nil:
		return Reply{}, ctx.Err()
	case err != nil:
		s.log.Warn("chat: provider failed, using fallback", zap.Error(err))
		fb := rules.FallbackMessage(m)
		if sb.Len() > 0 {
			fb = "\n\n" + fb
		}
		if err := emit(fb); err != nil {
			return Reply{}, err
		}
		sb.WriteString(fb)
		reply.Fallback = true
	}
	reply.Text = sb.String()

	s.deps.History.Append(
		Message{Role: RoleUser, Content: msg, Mood: m},
		Message{Role: RoleAssistant, Content: reply.Text, Mood: m, Fallback: reply.Fallback},
	)
	return reply, nil
}

// Ask is Stream without a consumer, for callers that want the whole
// reply at once.
func (s *Service) Ask(ctx context.Context, req Request) (Reply, error) {
	return s.Stream(ctx, req, func(string) error { return nil })
}
