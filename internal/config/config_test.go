package config

import (
	"testing"
	"time"

	"github.com/Sternrassler/photo-gallery-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, client.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, client.DefaultUserAgent, cfg.API.UserAgent)
	assert.Equal(t, client.DefaultPageLimit, cfg.API.PageLimit)
	assert.Equal(t, 0, cfg.API.RateLimit)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GALLERY_PORT", "9090")
	t.Setenv("GALLERY_API_BASE_URL", "https://photos.example.com")
	t.Setenv("GALLERY_PAGE_LIMIT", "12")
	t.Setenv("GALLERY_RATE_LIMIT", "5")
	t.Setenv("GALLERY_HTTP_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://photos.example.com", cfg.API.BaseURL)
	assert.Equal(t, 12, cfg.API.PageLimit)
	assert.Equal(t, 5, cfg.API.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)

	cc := cfg.ClientConfig()
	assert.Equal(t, "https://photos.example.com", cc.BaseURL)
	assert.Equal(t, 5, cc.RateLimit)
	assert.Equal(t, 3*time.Second, cc.Timeout)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "8080", API: APIConfig{PageLimit: 24}}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty port", func(c *Config) { c.Port = "" }, "GALLERY_PORT is required"},
		{"zero limit", func(c *Config) { c.API.PageLimit = 0 }, "GALLERY_PAGE_LIMIT must be > 0 (got 0)"},
		{"negative rate", func(c *Config) { c.API.RateLimit = -2 }, "GALLERY_RATE_LIMIT must be >= 0 (got -2)"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }, "GALLERY_HTTP_TIMEOUT must be >= 0 (got -1s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
