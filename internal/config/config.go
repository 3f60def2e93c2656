// Package config loads gallery-server settings from a .env file and the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/Sternrassler/photo-gallery-client/pkg/client"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the gallery-server configuration.
type Config struct {
	Port string

	API APIConfig
	Log LogConfig
}

// APIConfig configures the photo API client and the list controller.
type APIConfig struct {
	BaseURL   string
	UserAgent string
	PageLimit int
	RateLimit int
	Timeout   time.Duration
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads .env (if present) into the process environment, then builds
// the configuration from environment variables with defaults applied.
func Load() (Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("GALLERY_PORT", "8080")
	v.SetDefault("GALLERY_API_BASE_URL", client.DefaultBaseURL)
	v.SetDefault("GALLERY_USER_AGENT", client.DefaultUserAgent)
	v.SetDefault("GALLERY_PAGE_LIMIT", client.DefaultPageLimit)
	v.SetDefault("GALLERY_RATE_LIMIT", 0)
	v.SetDefault("GALLERY_HTTP_TIMEOUT", "0s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port: v.GetString("GALLERY_PORT"),
		API: APIConfig{
			BaseURL:   v.GetString("GALLERY_API_BASE_URL"),
			UserAgent: v.GetString("GALLERY_USER_AGENT"),
			PageLimit: v.GetInt("GALLERY_PAGE_LIMIT"),
			RateLimit: v.GetInt("GALLERY_RATE_LIMIT"),
			Timeout:   v.GetDuration("GALLERY_HTTP_TIMEOUT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("GALLERY_PORT is required")
	}
	if c.API.PageLimit <= 0 {
		return fmt.Errorf("GALLERY_PAGE_LIMIT must be > 0 (got %d)", c.API.PageLimit)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("GALLERY_RATE_LIMIT must be >= 0 (got %d)", c.API.RateLimit)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("GALLERY_HTTP_TIMEOUT must be >= 0 (got %s)", c.API.Timeout)
	}
	return nil
}

// ClientConfig converts the API settings into a client.Config.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.API.BaseURL,
		UserAgent: c.API.UserAgent,
		Timeout:   c.API.Timeout,
		RateLimit: c.API.RateLimit,
	}
}
