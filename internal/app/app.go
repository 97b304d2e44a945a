// Package app builds every Moodmate service once and hands them out by
// reference. It replaces process-wide singletons: whoever owns an *App
// owns the lifecycle of the stores behind it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/HendryAvila/moodmate/internal/aiconn"
	"github.com/HendryAvila/moodmate/internal/analytics"
	"github.com/HendryAvila/moodmate/internal/auth"
	"github.com/HendryAvila/moodmate/internal/chat"
	"github.com/HendryAvila/moodmate/internal/checklists"
	"github.com/HendryAvila/moodmate/internal/cleaning"
	"github.com/HendryAvila/moodmate/internal/config"
	"github.com/HendryAvila/moodmate/internal/cooking"
	"github.com/HendryAvila/moodmate/internal/datacache"
	"github.com/HendryAvila/moodmate/internal/finance"
	"github.com/HendryAvila/moodmate/internal/health"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/medsync"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/reminders"
	"github.com/HendryAvila/moodmate/internal/settings"
	"go.uber.org/zap"
)

// App is the dependency container.
type App struct {
	Config *config.Config
	Log    *zap.Logger

	KV    kvstore.Store
	Cache *datacache.Cache

	Moods      *mood.Store
	Settings   *settings.Store
	Profile    *profile.Store
	Finance    *finance.Store
	Cleaning   *cleaning.Store
	Health     *health.Store
	Meds       *medsync.Syncer
	Reminders  *reminders.Store
	Checklists *checklists.Store
	Cooking    *cooking.Store
	Analytics  *analytics.Service
	Chat       *chat.Service
	Google     *auth.Google
	AIConn     *aiconn.Tester

	closeKV func() error
}

// Option adjusts construction, mostly for tests.
type Option func(*options)

type options struct {
	provider chat.Provider
	random   analytics.Random
}

// WithProvider replaces the chat model. A nil provider makes every chat
// answer fall back to the canned mood message.
func WithProvider(p chat.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithRandom replaces the analytics estimate source.
func WithRandom(r analytics.Random) Option {
	return func(o *options) { o.random = r }
}

// New opens storage and constructs every service. The returned App must
// be closed.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	kv, closeKV, err := kvstore.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("app: storage: %w", err)
	}

	a := &App{Config: cfg, Log: log, KV: kv, closeKV: closeKV}
	a.Cache = datacache.New(kv, cfg.Cache, datacache.WithLogger(log.Named("cache")))

	// ─── Domain stores ───
	a.Moods = mood.NewStore(kv, log)
	a.Settings = settings.NewStore(kv, log)
	a.Profile = profile.NewStore(kv, log)
	a.Finance = finance.NewStore(kv, log)
	a.Cleaning = cleaning.NewStore(kv, log)
	a.Health = health.NewStore(kv, log)
	a.Meds = medsync.New(kv, a.Health, a.Profile, log)
	a.Reminders = reminders.NewStore(kv, log)
	a.Checklists = checklists.NewStore(kv, log)
	a.Cooking = cooking.NewStore(kv, log)

	aopts := []analytics.Option{analytics.WithLogger(log.Named("analytics"))}
	if o.random != nil {
		aopts = append(aopts, analytics.WithRandom(o.random))
	}
	a.Analytics = analytics.New(analytics.Deps{
		Moods:   a.Moods,
		Finance: a.Finance,
		Health:  a.Health,
		Profile: a.Profile,
		Cache:   a.Cache,
	}, aopts...)

	// ─── Outer services ───
	provider := o.provider
	if provider == nil && cfg.AI.GeminiAPIKey != "" {
		p, err := chat.NewGenAIProvider(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: chat provider: %w", err)
		}
		provider = p
	}
	if provider == nil {
		log.Warn("no AI key configured, chat answers will use fallback messages")
	}
	a.Chat = chat.NewService(chat.Deps{
		History:  chat.NewHistory(kv, log),
		Moods:    a.Moods,
		Profile:  a.Profile,
		Settings: a.Settings,
		Provider: provider,
	}, log.Named("chat"))

	a.Google = auth.NewGoogle(cfg.Google, log.Named("auth"))
	a.AIConn = aiconn.New(cfg.AIConn, log.Named("aiconn"))

	return a, nil
}

// Close stops the cache sweeper and releases storage. It is safe to call
// more than once.
func (a *App) Close() error {
	var errs []error
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.closeKV != nil {
		errs = append(errs, a.closeKV())
		a.closeKV = nil
	}
	return errors.Join(errs...)
}
