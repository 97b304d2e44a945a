// Package auth proxies the Google OAuth code and refresh-token exchanges
// used by optional cloud sync. The client secret never leaves the
// server; the browser only sees the authorization URL and the tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrNotConfigured = errors.New("auth: Google OAuth is not configured")
	ErrMissingCode   = errors.New("auth: authorization code is required")
	ErrMissingToken  = errors.New("auth: refresh token is required")
	ErrInvalidState  = errors.New("auth: unknown or expired state")
)

// Config holds the OAuth client settings.
type Config struct {
	ClientID     string        `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string        `mapstructure:"client_secret" yaml:"client_secret"`
	RedirectURL  string        `mapstructure:"redirect_url" yaml:"redirect_url"`
	Scopes       []string      `mapstructure:"scopes" yaml:"scopes"`
	StateTTL     time.Duration `mapstructure:"state_ttl" yaml:"state_ttl"`

	// Endpoint overrides, empty in production.
	AuthURL     string `mapstructure:"auth_url" yaml:"auth_url,omitempty"`
	TokenURL    string `mapstructure:"token_url" yaml:"token_url,omitempty"`
	UserInfoURL string `mapstructure:"userinfo_url" yaml:"userinfo_url,omitempty"`
}

// DefaultConfig returns the scopes and state lifetime used by sync.
func DefaultConfig() Config {
	return Config{
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/drive.appdata",
		},
		StateTTL: 10 * time.Minute,
	}
}

// User is the signed-in Google account.
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Result is the body returned to the browser after an exchange.
type Result struct {
	Success      bool   `json:"success"`
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Google performs the OAuth exchanges. Pending authorization states and
// their PKCE verifiers live in a TTL cache.
type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
	pending     *ttlcache.Cache[string, string]
	log         *zap.Logger
}

// NewGoogle builds the exchanger. It works without a client id, but
// every call then fails with ErrNotConfigured.
func NewGoogle(cfg Config, log *zap.Logger) *Google {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultConfig()
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = def.Scopes
	}
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = def.StateTTL
	}
	ep := endpoints.Google
	if cfg.AuthURL != "" {
		ep.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		ep.TokenURL = cfg.TokenURL
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = defaultUserInfoURL
	}

	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     ep,
		},
		userInfoURL: userInfo,
		pending: ttlcache.New(
			ttlcache.WithTTL[string, string](cfg.StateTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		),
		log: log,
	}
}

// Configured reports whether a client id is set.
func (g *Google) Configured() bool { return g.oauth.ClientID != "" }

// AuthURL starts a flow: it returns the consent-screen URL and the state
// the callback must echo back.
func (g *Google) AuthURL() (url, state string, err error) {
	if !g.Configured() {
		return "", "", ErrNotConfigured
	}
	g.pending.DeleteExpired()

	state = uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	g.pending.Set(state, verifier, ttlcache.DefaultTTL)

	url = g.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
	return url, state, nil
}

// Exchange trades an authorization code for tokens and the user's
// profile. A non-empty state must come from AuthURL and is single-use.
func (g *Google) Exchange(ctx context.Context, code, state string) (Result, error) {
	if !g.Configured() {
		return Result{}, ErrNotConfigured
	}
	if code == "" {
		return Result{}, ErrMissingCode
	}

	var opts []oauth2.AuthCodeOption
	if state != "" {
		item, ok := g.pending.GetAndDelete(state)
		if !ok {
			return Result{}, ErrInvalidState
		}
		opts = append(opts, oauth2.VerifierOption(item.Value()))
	}

	tok, err := g.oauth.Exchange(ctx, code, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("auth: exchange: %w", err)
	}

	user, err := g.fetchUser(ctx, tok)
	if err != nil {
		g.log.Warn("auth: userinfo", zap.Error(err))
		return Result{}, err
	}

	res := resultFrom(tok)
	res.User = user
	return res, nil
}

// Refresh trades a refresh token for a new access token. Google usually
// does not rotate the refresh token; the input one is echoed back then.
func (g *Google) Refresh(ctx context.Context, refreshToken string) (Result, error) {
	if !g.Configured() {
		return Result{}, ErrNotConfigured
	}
	if refreshToken == "" {
		return Result{}, ErrMissingToken
	}

	tok, err := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return Result{}, fmt.Errorf("auth: refresh: %w", err)
	}
	res := resultFrom(tok)
	if res.RefreshToken == "" {
		res.RefreshToken = refreshToken
	}
	return res, nil
}

// Pending returns how many flows are waiting for their callback.
func (g *Google) Pending() int {
	g.pending.DeleteExpired()
	return g.pending.Len()
}

func (g *Google) fetchUser(ctx context.Context, tok *oauth2.Token) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: userinfo request: %w", err)
	}
	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth: userinfo: status %d: %s", resp.StatusCode, body)
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("auth: userinfo decode: %w", err)
	}
	return &u, nil
}

func resultFrom(tok *oauth2.Token) Result {
	expires := tok.ExpiresIn
	if expires == 0 && !tok.Expiry.IsZero() {
		expires = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	return Result{
		Success:      true,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expires,
	}
}
