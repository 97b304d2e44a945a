package aiconn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /openai/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	mux.HandleFunc("GET /anthropic/models", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "ak-good" || r.Header.Get("anthropic-version") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestTester(t *testing.T) *Tester {
	srv := newProviderServer(t)
	return New(Config{
		OpenAIBaseURL:    srv.URL + "/openai",
		AnthropicBaseURL: srv.URL + "/anthropic",
	}, nil,
		WithHTTPClient(srv.Client()),
		WithChecker(Gemini, func(_ context.Context, key string) error {
			if key != "g-good" {
				return errors.New("denied")
			}
			return nil
		}),
	)
}

func TestTest_Validation(t *testing.T) {
	tt := newTestTester(t)

	_, err := tt.Test(context.Background(), "mistral", "k")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "Fournisseur non supporté")

	_, err = tt.Test(context.Background(), "openai", "  ")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "clé API")
}

func TestTest_Providers(t *testing.T) {
	tt := newTestTester(t)
	cases := []struct {
		provider, key string
		ok            bool
	}{
		{"openai", "sk-good", true},
		{"OpenAI", "sk-bad", false},
		{"anthropic", "ak-good", true},
		{"anthropic", "nope", false},
		{"gemini", "g-good", true},
		{"gemini", "g-bad", false},
	}
	for _, c := range cases {
		t.Run(c.provider+"/"+c.key, func(t *testing.T) {
			res, err := tt.Test(context.Background(), c.provider, c.key)
			require.NoError(t, err)
			assert.Equal(t, c.ok, res.Success)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestIsValidation_Plain(t *testing.T) {
	assert.False(t, IsValidation(errors.New("x")))
}
