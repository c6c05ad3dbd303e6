package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	APIPrefix string
	GinMode   string

	LogLevel  string
	LogFormat string

	FixtureSource string
	FixtureDir    string
	PostgresURL   string

	TokenTTL         time.Duration
	SessionCountdown int
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("API_PREFIX", "")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("FIXTURE_SOURCE", "embedded")
	v.SetDefault("FIXTURE_DIR", "./fixtures")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("TOKEN_TTL", "30m")
	v.SetDefault("SESSION_COUNTDOWN", 5)
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real env vars win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:             v.GetString("PORT"),
		APIPrefix:        normalizePrefix(v.GetString("API_PREFIX")),
		GinMode:          v.GetString("GIN_MODE"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
		FixtureSource:    strings.ToLower(v.GetString("FIXTURE_SOURCE")),
		FixtureDir:       v.GetString("FIXTURE_DIR"),
		PostgresURL:      v.GetString("POSTGRES_URL"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		SessionCountdown: v.GetInt("SESSION_COUNTDOWN"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be a positive duration")
	}
	if c.SessionCountdown <= 0 {
		return fmt.Errorf("SESSION_COUNTDOWN must be positive, got %d", c.SessionCountdown)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func normalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	return "/" + strings.Trim(p, "/")
}
