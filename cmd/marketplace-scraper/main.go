package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/maltedev/marketplace-scraper/internal/browser"
	"github.com/maltedev/marketplace-scraper/internal/marketplace/api"
	"github.com/maltedev/marketplace-scraper/internal/marketplace/config"
	"github.com/maltedev/marketplace-scraper/internal/marketplace/scraper"
	"github.com/maltedev/marketplace-scraper/internal/parser"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Playwright runtime, shared; every scrape launches its own browser
	driver, err := browser.NewDriver(&browser.Options{
		Headless:          cfg.Browser.Headless,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		UserAgent:         cfg.Browser.UserAgent,
		ViewportWidth:     cfg.Browser.ViewportWidth,
		ViewportHeight:    cfg.Browser.ViewportHeight,
		ExecutablePath:    cfg.Browser.ExecutablePath,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize browser driver", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := driver.Stop(); err != nil {
			logger.Error("failed to stop browser driver", "error", err)
		}
	}()

	// Initialize services
	scraperService := scraper.NewService(
		driver,
		parser.NewMarketplaceParser(cfg.Scrape.MaxCandidates),
		scraper.Options{
			BaseURL:      cfg.Marketplace.BaseURL,
			CookieDomain: cfg.Marketplace.CookieDomain,
			RenderWait:   cfg.Scrape.RenderWait,
			BodyTimeout:  cfg.Scrape.BodyTimeout,
			SettleWait:   cfg.Scrape.SettleWait,
		},
		logger,
	)

	handlers := api.NewHandlers(scraperService, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handlers, cfg.Server.AllowedOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 4,
	}

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		defer close(idle)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		driver.Stop()
		os.Exit(1)
	}

	<-idle
	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
