package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Browser     BrowserConfig
	Marketplace MarketplaceConfig
	Scrape      ScrapeConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type BrowserConfig struct {
	Headless          bool
	UserAgent         string
	ViewportWidth     int
	ViewportHeight    int
	ExecutablePath    string
	NavigationTimeout time.Duration
}

type MarketplaceConfig struct {
	BaseURL      string
	CookieDomain string
}

type ScrapeConfig struct {
	RenderWait    time.Duration
	BodyTimeout   time.Duration
	SettleWait    time.Duration
	MaxCandidates int
}

type LoggingConfig struct {
	Level  string
	Format string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("PORT", 10000),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Browser: BrowserConfig{
			Headless:          getEnvBool("BROWSER_HEADLESS", true),
			UserAgent:         getEnv("BROWSER_USER_AGENT", defaultUserAgent),
			ViewportWidth:     getEnvInt("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight:    getEnvInt("BROWSER_VIEWPORT_HEIGHT", 1080),
			ExecutablePath:    getEnv("BROWSER_EXECUTABLE_PATH", ""),
			NavigationTimeout: getEnvDuration("BROWSER_NAVIGATION_TIMEOUT", 30*time.Second),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:      strings.TrimRight(getEnv("MARKETPLACE_BASE_URL", "https://www.facebook.com"), "/"),
			CookieDomain: getEnv("MARKETPLACE_COOKIE_DOMAIN", ".facebook.com"),
		},
		Scrape: ScrapeConfig{
			RenderWait:    getEnvDuration("SCRAPE_RENDER_WAIT", 5*time.Second),
			BodyTimeout:   getEnvDuration("SCRAPE_BODY_TIMEOUT", 10*time.Second),
			SettleWait:    getEnvDuration("SCRAPE_SETTLE_WAIT", 2*time.Second),
			MaxCandidates: getEnvInt("SCRAPE_MAX_CANDIDATES", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Scrape.BodyTimeout <= 0 {
		return fmt.Errorf("SCRAPE_BODY_TIMEOUT must be positive")
	}

	if c.Scrape.RenderWait < 0 || c.Scrape.SettleWait < 0 {
		return fmt.Errorf("scrape waits cannot be negative")
	}

	if c.Scrape.MaxCandidates < 1 {
		return fmt.Errorf("SCRAPE_MAX_CANDIDATES must be at least 1")
	}

	if c.Marketplace.BaseURL == "" {
		return fmt.Errorf("marketplace base URL is required")
	}

	if c.Marketplace.CookieDomain == "" {
		return fmt.Errorf("marketplace cookie domain is required")
	}

	if c.Browser.ViewportWidth < 1 || c.Browser.ViewportHeight < 1 {
		return fmt.Errorf("invalid viewport: %dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
