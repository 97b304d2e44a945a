// Package config loads Moodmate's configuration from an optional
// moodmate.yaml file and MOODMATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/HendryAvila/moodmate/internal/aiconn"
	"github.com/HendryAvila/moodmate/internal/auth"
	"github.com/HendryAvila/moodmate/internal/datacache"
	"github.com/HendryAvila/moodmate/internal/kvstore"
	"github.com/HendryAvila/moodmate/internal/logging"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// AIConfig configures the chat model.
type AIConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	Model        string `mapstructure:"model" yaml:"model"`
}

// Config aggregates configuration for the application. Each section is
// owned by its package.
type Config struct {
	Storage kvstore.Config   `mapstructure:"storage" yaml:"storage"`
	Cache   datacache.Config `mapstructure:"cache" yaml:"cache"`
	Logging logging.Config   `mapstructure:"logging" yaml:"logging"`
	HTTP    HTTPConfig       `mapstructure:"http" yaml:"http"`
	AI      AIConfig         `mapstructure:"ai" yaml:"ai"`
	Google  auth.Config      `mapstructure:"google" yaml:"google"`
	AIConn  aiconn.Config    `mapstructure:"aiconn" yaml:"aiconn"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Storage: kvstore.DefaultConfig(),
		Cache:   datacache.DefaultConfig(),
		Logging: logging.Config{Level: "info"},
		HTTP: HTTPConfig{
			Addr:              "127.0.0.1:8787",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		AI:     AIConfig{Model: "gemini-2.5-flash"},
		Google: auth.DefaultConfig(),
		AIConn: aiconn.DefaultConfig(),
	}
}

// Load reads configuration from file and environment variables.
// Environment variables use the prefix "MOODMATE" and the dot character
// in keys is replaced by an underscore. For example, "ai.gemini_api_key"
// becomes "MOODMATE_AI_GEMINI_API_KEY". An explicit path must exist;
// otherwise moodmate.yaml is looked up in "." and ~/.moodmate.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("moodmate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".moodmate"))
		}
	}
	v.SetEnvPrefix("MOODMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the app cannot start with.
func (c *Config) Validate() error {
	if !c.Storage.Ephemeral && c.Storage.DataDir == "" {
		return errors.New("config: storage.data_dir is required")
	}
	if c.Cache.MaxSize < 0 {
		return errors.New("config: cache.max_size must not be negative")
	}
	if c.HTTP.Addr == "" {
		return errors.New("config: http.addr is required")
	}
	return nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.AI.GeminiAPIKey = mask(c.AI.GeminiAPIKey)
	out.Google.ClientSecret = mask(c.Google.ClientSecret)
	return &out
}

// YAML renders the redacted configuration.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return b, nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(append([]string(nil), parts...), tag)
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Time{}) {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
