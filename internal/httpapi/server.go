// Package httpapi serves the browser-facing API: the streaming chat
// proxy, the Google OAuth exchanges and the AI key check.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/HendryAvila/moodmate/internal/aiconn"
	"github.com/HendryAvila/moodmate/internal/auth"
	"github.com/HendryAvila/moodmate/internal/chat"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/settings"
	"go.uber.org/zap"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

// Deps are the services the API fronts.
type Deps struct {
	Chat   *chat.Service
	Google *auth.Google
	AIConn *aiconn.Tester
}

// Server holds the HTTP handlers.
type Server struct {
	deps    Deps
	log     *zap.Logger
	origins []string
}

// New creates the API server. origins lists the allowed CORS origins.
func New(deps Deps, origins []string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{deps: deps, log: log, origins: origins}
}

// Handler returns the routed handler with logging, recovery and CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/auth/google/url", s.handleAuthURL)
	mux.HandleFunc("POST /api/auth/callback/google", s.handleAuthCallback)
	mux.HandleFunc("POST /api/auth/refresh/google", s.handleAuthRefresh)
	mux.HandleFunc("POST /api/test-ai-connection", s.handleTestAI)

	var h http.Handler = mux
	h = withCORS(s.origins, h)
	h = withRecovery(s.log, h)
	h = withLogging(s.log, h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Chat ───────────────────────────────────────────────────────────────────

type chatRequest struct {
	Message             string                `json:"message"`
	Mood                string                `json:"mood"`
	ConversationHistory []chat.Turn           `json:"conversationHistory"`
	UserProfile         *profile.UserProfile  `json:"userProfile,omitempty"`
	AppSettings         *settings.AppSettings `json:"appSettings,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}
	// An absent or unknown mood falls back to the stored current mood.
	m, err := mood.Parse(body.Mood)
	if err != nil || body.Mood == "" {
		m = ""
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming non supporté.")
		return
	}

	started := false
	emit := func(chunk string) error {
		if !started {
			h := w.Header()
			h.Set("Content-Type", "text/event-stream")
			h.Set("Cache-Control", "no-cache")
			h.Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		b, err := json.Marshal(map[string]string{"text": chunk})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	_, err = s.deps.Chat.Stream(r.Context(), chat.Request{
		Message:  body.Message,
		Mood:     m,
		History:  body.ConversationHistory,
		Profile:  body.UserProfile,
		Settings: body.AppSettings,
	}, emit)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage) && !started:
		writeError(w, http.StatusBadRequest, "Le message est requis.")
		return
	case err != nil:
		s.log.Info("chat: stream ended early", zap.Error(err))
		return
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// ─── Auth ───────────────────────────────────────────────────────────────────

func (s *Server) handleAuthURL(w http.ResponseWriter, _ *http.Request) {
	url, state, err := s.deps.Google.AuthURL()
	if err != nil {
		s.authError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url, "state": state})
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}
	res, err := s.deps.Google.Exchange(r.Context(), body.Code, body.State)
	if err != nil {
		s.authError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}
	res, err := s.deps.Google.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		s.authError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) authError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "La synchronisation Google n'est pas configurée.")
	case errors.Is(err, auth.ErrMissingCode):
		writeError(w, http.StatusBadRequest, "Code d'autorisation manquant.")
	case errors.Is(err, auth.ErrMissingToken):
		writeError(w, http.StatusBadRequest, "Jeton de rafraîchissement manquant.")
	case errors.Is(err, auth.ErrInvalidState):
		writeError(w, http.StatusBadRequest, "Session de connexion expirée, recommence.")
	default:
		s.log.Warn("auth: exchange failed", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "Échec de l'authentification Google.")
	}
}

// ─── AI connection test ─────────────────────────────────────────────────────

func (s *Server) handleTestAI(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider string `json:"provider"`
		APIKey   string `json:"apiKey"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Requête invalide.")
		return
	}
	res, err := s.deps.AIConn.Test(r.Context(), body.Provider, body.APIKey)
	if err != nil {
		if aiconn.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Erreur interne du serveur.")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
