package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "SERVER_HOST", "MARKETPLACE_BASE_URL", "MARKETPLACE_COOKIE_DOMAIN",
		"SCRAPE_RENDER_WAIT", "SCRAPE_BODY_TIMEOUT", "SCRAPE_SETTLE_WAIT", "SCRAPE_MAX_CANDIDATES",
		"BROWSER_HEADLESS", "CORS_ALLOWED_ORIGINS")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:10000", cfg.Server.Addr())
	assert.Equal(t, "https://www.facebook.com", cfg.Marketplace.BaseURL)
	assert.Equal(t, ".facebook.com", cfg.Marketplace.CookieDomain)
	assert.Equal(t, 5*time.Second, cfg.Scrape.RenderWait)
	assert.Equal(t, 10*time.Second, cfg.Scrape.BodyTimeout)
	assert.Equal(t, 2*time.Second, cfg.Scrape.SettleWait)
	assert.Equal(t, 20, cfg.Scrape.MaxCandidates)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8085")
	t.Setenv("SCRAPE_BODY_TIMEOUT", "3s")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("MARKETPLACE_BASE_URL", "http://localhost:9000/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8085, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Scrape.BodyTimeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "http://localhost:9000", cfg.Marketplace.BaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SCRAPE_RENDER_WAIT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Scrape.RenderWait)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"Port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"Zero body timeout", func(c *Config) { c.Scrape.BodyTimeout = 0 }},
		{"Negative settle wait", func(c *Config) { c.Scrape.SettleWait = -time.Second }},
		{"No candidates", func(c *Config) { c.Scrape.MaxCandidates = 0 }},
		{"Empty base URL", func(c *Config) { c.Marketplace.BaseURL = "" }},
		{"Empty cookie domain", func(c *Config) { c.Marketplace.CookieDomain = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
