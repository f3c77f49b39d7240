// Package config loads bizdash settings from defaults, an optional YAML file
// and BIZDASH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/goliatone/go-bizdash/components/daterange"
)

// EnvPrefix prefixes every environment override. BIZDASH_DATA__BASE_URL
// overrides data.base_url.
const EnvPrefix = "BIZDASH_"

// Config is the top-level bizdash configuration.
type Config struct {
	Server    ServerConfig `koanf:"server"`
	Data      DataConfig   `koanf:"data"`
	Cache     CacheConfig  `koanf:"cache"`
	Charts    ChartsConfig `koanf:"charts"`
	Log       LogConfig    `koanf:"log"`
	Locale    LocaleConfig `koanf:"locale"`
	Manifests []string     `koanf:"manifests"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	Transport       string        `koanf:"transport" validate:"oneof=fiber chi"`
	BasePath        string        `koanf:"base_path"`
	AssetsDir       string        `koanf:"assets_dir"`
	ActionRateLimit int           `koanf:"action_rate_limit" validate:"gte=0"`
	RateWindow      time.Duration `koanf:"rate_window" validate:"gte=0"`
}

// DataConfig selects and configures the analytics collaborator.
type DataConfig struct {
	Source  string        `koanf:"source" validate:"oneof=mock http"`
	BaseURL string        `koanf:"base_url" validate:"omitempty,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

// CacheConfig configures the Redis bundle cache and event bus. An empty
// RedisAddr disables both.
type CacheConfig struct {
	RedisAddr    string        `koanf:"redis_addr"`
	Prefix       string        `koanf:"prefix"`
	TTL          time.Duration `koanf:"ttl" validate:"gte=0"`
	EventChannel string        `koanf:"event_channel"`
}

// ChartsConfig configures server-side chart rendering.
type ChartsConfig struct {
	Theme      string        `koanf:"theme"`
	AssetsHost string        `koanf:"assets_host" validate:"omitempty,url"`
	CacheTTL   time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// LocaleConfig holds viewer defaults.
type LocaleConfig struct {
	Default  string `koanf:"default" validate:"required"`
	Currency string `koanf:"currency" validate:"len=3"`
	Range    string `koanf:"range"`
}

// Defaults returns the built-in settings.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":              ":8080",
		"server.transport":         "fiber",
		"server.base_path":         "/admin",
		"server.assets_dir":        "",
		"server.action_rate_limit": 30,
		"server.rate_window":       "1m",
		"data.source":              "mock",
		"data.base_url":            "",
		"data.api_key":             "",
		"data.timeout":             "10s",
		"cache.redis_addr":         "",
		"cache.prefix":             "bizdash:bundle",
		"cache.ttl":                "5m",
		"cache.event_channel":      "bizdash.events",
		"charts.theme":             "westeros",
		"charts.assets_host":       "",
		"charts.cache_ttl":         "10m",
		"log.level":                "info",
		"log.format":               "json",
		"locale.default":           "en",
		"locale.currency":          "USD",
		"locale.range":             string(daterange.DefaultRange),
	}
}

// Load reads defaults, then path (when set), then the environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config: default %s: %w", key, err)
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func (c *Config) normalize() {
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	c.Data.Source = strings.ToLower(strings.TrimSpace(c.Data.Source))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Locale.Currency = strings.ToUpper(strings.TrimSpace(c.Locale.Currency))
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
}

var validate = validator.New()

// Validate checks field constraints and the default range.
func (c *Config) Validate() error {
	var err error
	if verr := validate.Struct(c); verr != nil {
		err = fmt.Errorf("config: %w", verr)
	}
	if c.Data.Source == "http" && c.Data.BaseURL == "" {
		err = errors.Join(err, errors.New("config: data.base_url is required for the http source"))
	}
	if c.Locale.Range != "" {
		if _, ok := daterange.Parse(c.Locale.Range); !ok {
			err = errors.Join(err, fmt.Errorf("config: unknown default range %q", c.Locale.Range))
		}
	}
	return err
}

// DefaultRange returns the configured default selector.
func (c *Config) DefaultRange() daterange.Selector {
	sel, _ := daterange.Parse(c.Locale.Range)
	return sel
}
