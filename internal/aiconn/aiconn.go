// Package aiconn checks a user-supplied API key against one of the
// supported LLM providers by listing its models.
package aiconn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Supported providers.
const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Gemini    = "gemini"
)

// ValidationError is a request the caller must fix. Message is shown to
// the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Result is the outcome of a connection test.
type Result struct {
	Success  bool   `json:"success"`
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

// Checker verifies apiKey against one provider.
type Checker func(ctx context.Context, apiKey string) error

// Config holds endpoint overrides and the per-check timeout.
type Config struct {
	OpenAIBaseURL    string        `mapstructure:"openai_base_url" yaml:"openai_base_url"`
	AnthropicBaseURL string        `mapstructure:"anthropic_base_url" yaml:"anthropic_base_url"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultConfig returns the public provider endpoints.
func DefaultConfig() Config {
	return Config{
		OpenAIBaseURL:    "https://api.openai.com/v1",
		AnthropicBaseURL: "https://api.anthropic.com/v1",
		Timeout:          10 * time.Second,
	}
}

// Option configures a Tester.
type Option func(*Tester)

// WithChecker replaces the checker for provider.
func WithChecker(provider string, c Checker) Option {
	return func(t *Tester) { t.checkers[provider] = c }
}

// WithHTTPClient sets the client used by the HTTP checkers.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Tester) { t.http = c }
}

// Tester runs connection tests.
type Tester struct {
	cfg      Config
	http     *http.Client
	checkers map[string]Checker
	log      *zap.Logger
}

// New creates a Tester for the three supported providers.
func New(cfg Config, log *zap.Logger, opts ...Option) *Tester {
	def := DefaultConfig()
	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = def.OpenAIBaseURL
	}
	if cfg.AnthropicBaseURL == "" {
		cfg.AnthropicBaseURL = def.AnthropicBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tester{cfg: cfg, http: http.DefaultClient, log: log, checkers: map[string]Checker{}}
	t.checkers[OpenAI] = t.checkOpenAI
	t.checkers[Anthropic] = t.checkAnthropic
	t.checkers[Gemini] = checkGemini
	for _, o := range opts {
		o(t)
	}
	return t
}

// Test validates the request and runs the provider's check. Only
// validation problems are returned as errors; a failed check is a
// Result with Success false.
func (t *Tester) Test(ctx context.Context, provider, apiKey string) (Result, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	apiKey = strings.TrimSpace(apiKey)

	check, ok := t.checkers[provider]
	if !ok {
		return Result{}, &ValidationError{Message: "Fournisseur non supporté. Choisis openai, anthropic ou gemini."}
	}
	if apiKey == "" {
		return Result{}, &ValidationError{Message: "La clé API est requise."}
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	if err := check(ctx, apiKey); err != nil {
		t.log.Info("aiconn: check failed", zap.String("provider", provider), zap.Error(err))
		return Result{
			Provider: provider,
			Message:  "Connexion impossible : vérifie ta clé API.",
		}, nil
	}
	return Result{Success: true, Provider: provider, Message: "Connexion réussie !"}, nil
}

func (t *Tester) checkOpenAI(ctx context.Context, key string) error {
	return t.get(ctx, t.cfg.OpenAIBaseURL+"/models", map[string]string{
		"Authorization": "Bearer " + key,
	})
}

func (t *Tester) checkAnthropic(ctx context.Context, key string) error {
	return t.get(ctx, t.cfg.AnthropicBaseURL+"/models", map[string]string{
		"x-api-key":         key,
		"anthropic-version": "2023-06-01",
	})
}

func (t *Tester) get(ctx context.Context, url string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("aiconn: request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("aiconn: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("aiconn: status %d", resp.StatusCode)
	}
	return nil
}

func checkGemini(ctx context.Context, key string) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return fmt.Errorf("aiconn: genai client: %w", err)
	}
	if _, err := client.Models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("aiconn: list models: %w", err)
	}
	return nil
}
