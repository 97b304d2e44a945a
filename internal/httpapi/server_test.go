package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HendryAvila/moodmate/internal/aiconn"
	"github.com/HendryAvila/moodmate/internal/auth"
	"github.com/HendryAvila/moodmate/internal/chat"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/rules"
	"github.com/HendryAvila/moodmate/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedProvider struct {
	chunks []string
	err    error
	last   chat.Prompt
}

func (p *scriptedProvider) Stream(_ context.Context, pr chat.Prompt, emit func(string) error) error {
	p.last = pr
	for _, c := range p.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return p.err
}

func newTestHandler(t *testing.T, prov *scriptedProvider, google auth.Config) http.Handler {
	t.Helper()
	kv := kvstore.NewMemoryStore(0)
	log := zap.NewNop()
	svc := chat.NewService(chat.Deps{
		History:  chat.NewHistory(kv, log),
		Moods:    mood.NewStore(kv, log),
		Profile:  profile.NewStore(kv, log),
		Settings: settings.NewStore(kv, log),
		Provider: prov,
	}, log)
	tester := aiconn.New(aiconn.Config{}, log, aiconn.WithChecker(aiconn.OpenAI, func(_ context.Context, key string) error {
		if key != "sk-ok" {
			return errors.New("unauthorized")
		}
		return nil
	}))
	return New(Deps{
		Chat:   svc,
		Google: auth.NewGoogle(google, log),
		AIConn: tester,
	}, []string{"http://localhost:3000"}, log).Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func sseTexts(t *testing.T, raw string) ([]string, bool) {
	t.Helper()
	var texts []string
	done := false
	for _, line := range strings.Split(raw, "\n") {
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			done = true
			continue
		}
		var chunk struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.Unmarshal([]byte(data), &chunk))
		texts = append(texts, chunk.Text)
	}
	return texts, done
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &scriptedProvider{}, auth.Config{})
	rec := do(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChat_Streams(t *testing.T) {
	prov := &scriptedProvider{chunks: []string{"Salut", " toi"}}
	h := newTestHandler(t, prov, auth.Config{})

	rec := do(h, http.MethodPost, "/api/chat", `{
		"message": "coucou",
		"mood": "stressed",
		"conversationHistory": [{"role":"user","content":"avant"}],
		"userProfile": {"name":"Lou"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	texts, done := sseTexts(t, rec.Body.String())
	assert.Equal(t, []string{"Salut", " toi"}, texts)
	assert.True(t, done)
	assert.True(t, strings.HasSuffix(rec.Body.String(), "data: [DONE]\n\n"))

	assert.Contains(t, prov.last.System, "stressed")
	assert.Contains(t, prov.last.System, "Lou")
	require.Len(t, prov.last.History, 1)
}

func TestChat_FallbackIsStreamed(t *testing.T) {
	h := newTestHandler(t, &scriptedProvider{err: errors.New("quota")}, auth.Config{})
	rec := do(h, http.MethodPost, "/api/chat", `{"message":"x","mood":"sad"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	texts, done := sseTexts(t, rec.Body.String())
	assert.Equal(t, []string{rules.FallbackMessage(mood.Sad)}, texts)
	assert.True(t, done)
}

func TestChat_BadRequests(t *testing.T) {
	h := newTestHandler(t, &scriptedProvider{}, auth.Config{})

	rec := do(h, http.MethodPost, "/api/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Le message est requis.", decodeError(t, rec))

	rec = do(h, http.MethodPost, "/api/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodGet, "/api/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuth_NotConfigured(t *testing.T) {
	h := newTestHandler(t, &scriptedProvider{}, auth.Config{})
	rec := do(h, http.MethodGet, "/api/auth/google/url", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestAuth_Flow(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			_, _ = w.Write([]byte(`{"id":"1","email":"lou@example.com"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(google.Close)

	h := newTestHandler(t, &scriptedProvider{}, auth.Config{
		ClientID:    "cid",
		TokenURL:    google.URL + "/token",
		UserInfoURL: google.URL + "/userinfo",
	})

	rec := do(h, http.MethodGet, "/api/auth/google/url", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var start map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &start))
	require.NotEmpty(t, start["state"])
	assert.Contains(t, start["url"], "code_challenge=")

	rec = do(h, http.MethodPost, "/api/auth/callback/google", `{"code":"c","state":"`+start["state"]+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res auth.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "lou@example.com", res.User.Email)
	assert.Equal(t, "rt", res.RefreshToken)

	rec = do(h, http.MethodPost, "/api/auth/callback/google", `{"code":"c","state":"`+start["state"]+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "state reuse")

	rec = do(h, http.MethodPost, "/api/auth/refresh/google", `{"refresh_token":"rt"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/api/auth/refresh/google", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTestAIConnection(t *testing.T) {
	h := newTestHandler(t, &scriptedProvider{}, auth.Config{})

	rec := do(h, http.MethodPost, "/api/test-ai-connection", `{"provider":"cohere","apiKey":"k"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "Fournisseur non supporté")

	rec = do(h, http.MethodPost, "/api/test-ai-connection", `{"provider":"openai"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/test-ai-connection", `{"provider":"openai","apiKey":"sk-ok"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res aiconn.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)

	rec = do(h, http.MethodPost, "/api/test-ai-connection", `{"provider":"openai","apiKey":"sk-bad"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t, &scriptedProvider{}, auth.Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	h := withRecovery(zap.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
