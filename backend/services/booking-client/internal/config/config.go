package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	libconfig "chargebook/backend/libs/config"
	libredis "chargebook/backend/libs/redis"
	"chargebook/backend/services/booking-client/internal/clients"
	"chargebook/backend/services/booking-client/internal/ws"
)

const defaultTimezone = "Asia/Ho_Chi_Minh"

// Config defines booking client configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	HTTPClient HTTPClientConfig `yaml:"httpClient"`
	Breaker    BreakerConfig    `yaml:"breaker"`
	Redis      RedisConfig      `yaml:"redis"`
	Timezone   string           `yaml:"timezone" env:"BOOKING_TIMEZONE"`
}

type ServerConfig struct {
	BaseURL      string `yaml:"baseUrl" env:"BOOKING_API_URL"`
	WebsocketURL string `yaml:"websocketUrl" env:"BOOKING_WS_URL"`
}

type AuthConfig struct {
	Token string `yaml:"token" env:"BOOKING_API_TOKEN"`
}

type HTTPClientConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds" env:"BOOKING_HTTP_TIMEOUT"`
}

type BreakerConfig struct {
	FailureThreshold uint32 `yaml:"failureThreshold" env:"BOOKING_BREAKER_FAILURES"`
	OpenSeconds      int    `yaml:"openSeconds" env:"BOOKING_BREAKER_OPEN_SECONDS"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"BOOKING_REDIS_ADDR"`
	Password string `yaml:"password" env:"BOOKING_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"BOOKING_REDIS_DB"`
	TTL      int    `yaml:"ttlSeconds" env:"BOOKING_REDIS_TTL"`
}

// Load reads configuration via shared helper. A non-empty path overrides CONFIG_FILE.
func Load(path string) (*Config, error) {
	breaker := clients.DefaultBreakerSettings()
	cfg := &Config{
		Breaker: BreakerConfig{
			FailureThreshold: breaker.FailureThreshold,
			OpenSeconds:      int(breaker.OpenTimeout / time.Second),
		},
		Redis:    RedisConfig{TTL: 30 * 24 * 3600},
		Timezone: defaultTimezone,
	}

	var err error
	if strings.TrimSpace(path) != "" {
		err = libconfig.LoadConfigFrom(path, cfg)
	} else {
		err = libconfig.LoadConfig(cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return errors.New("config: server baseUrl required")
	}
	if c.HTTPClient.TimeoutSeconds < 0 {
		return errors.New("config: httpClient timeoutSeconds must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// WebsocketURL returns the configured slot feed URL, derived from the API URL when unset.
func (c *Config) WebsocketURL() string {
	if u := strings.TrimSpace(c.Server.WebsocketURL); u != "" {
		return u
	}
	return ws.ToWebsocketURL(c.Server.BaseURL)
}

// HTTPTimeout returns the request timeout. Zero leaves the transport default in place.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPClient.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.HTTPClient.TimeoutSeconds) * time.Second
}

// BreakerSettings converts the breaker section.
func (c *Config) BreakerSettings() clients.BreakerSettings {
	s := clients.DefaultBreakerSettings()
	if c.Breaker.FailureThreshold > 0 {
		s.FailureThreshold = c.Breaker.FailureThreshold
	}
	if c.Breaker.OpenSeconds > 0 {
		s.OpenTimeout = time.Duration(c.Breaker.OpenSeconds) * time.Second
	}
	return s
}

// PreferencesEnabled reports whether a redis address was configured.
func (c *Config) PreferencesEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// RedisOptions returns connection settings for the preference store.
func (c *Config) RedisOptions() libredis.Options {
	return libredis.Options{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB}
}

// PreferenceTTL returns ttl as duration. Zero keeps entries forever.
func (c *Config) PreferenceTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 0
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// Location resolves the driver's timezone.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		name = defaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", name, err)
	}
	return loc, nil
}
