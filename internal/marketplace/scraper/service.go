package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maltedev/marketplace-scraper/internal/browser"
	"github.com/maltedev/marketplace-scraper/internal/models"
	"github.com/maltedev/marketplace-scraper/internal/parser"
)

var (
	ErrSearchTermRequired = errors.New("search_term is required")
	ErrRenderTimeout      = errors.New("timeout waiting for page to load")
)

const NoProductsMessage = "No products found. Facebook may be blocking the request."

type Launcher interface {
	Launch(ctx context.Context) (browser.Session, error)
}

type Options struct {
	BaseURL      string
	CookieDomain string
	RenderWait   time.Duration
	BodyTimeout  time.Duration
	SettleWait   time.Duration
}

func DefaultOptions() Options {
	return Options{
		BaseURL:      "https://www.facebook.com",
		CookieDomain: ".facebook.com",
		RenderWait:   5 * time.Second,
		BodyTimeout:  10 * time.Second,
		SettleWait:   2 * time.Second,
	}
}

type Service struct {
	launcher Launcher
	parser   parser.Parser
	opts     Options
	logger   *slog.Logger
}

func NewService(launcher Launcher, p parser.Parser, opts Options, logger *slog.Logger) *Service {
	return &Service{
		launcher: launcher,
		parser:   p,
		opts:     opts,
		logger:   logger.With("component", "scraper"),
	}
}

// SearchURL builds the marketplace search URL. The term is inserted as given,
// without percent-encoding.
func (s *Service) SearchURL(searchTerm string) string {
	return s.opts.BaseURL + "/marketplace/search/?query=" + searchTerm
}

// Scrape renders one search page in a fresh browser session and extracts
// listings from it. The session is released on every return path.
func (s *Service) Scrape(ctx context.Context, req models.ScrapeRequest) (*models.ScrapeResult, error) {
	if strings.TrimSpace(req.SearchTerm) == "" {
		return nil, ErrSearchTermRequired
	}

	url := s.SearchURL(req.SearchTerm)

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	logger := s.logger.With("session_id", session.ID(), "search_term", req.SearchTerm)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to release browser session", "error", err)
		}
	}()

	logger.Info("scraping marketplace search", "url", url, "cookies", req.Cookies != "")

	if err := session.Navigate(ctx, url); err != nil {
		return nil, err
	}

	if req.Cookies != "" {
		s.applyCookies(ctx, session, url, req.Cookies, logger)
	}

	if err := sleep(ctx, s.opts.RenderWait); err != nil {
		return nil, err
	}

	if err := session.WaitForBody(ctx, s.opts.BodyTimeout); err != nil {
		if errors.Is(err, browser.ErrBodyTimeout) {
			logger.Warn("page body never appeared", "timeout", s.opts.BodyTimeout)
			return nil, fmt.Errorf("%w: %w", ErrRenderTimeout, err)
		}
		return nil, err
	}

	if err := session.ScrollToMiddle(); err != nil {
		return nil, err
	}

	if err := sleep(ctx, s.opts.SettleWait); err != nil {
		return nil, err
	}

	content, err := session.Content()
	if err != nil {
		return nil, err
	}

	ext, err := s.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to extract listings: %w", err)
	}

	if ext.Empty() {
		title, err := session.Title()
		if err != nil {
			return nil, err
		}

		logger.Warn("no listings extracted",
			"tier", ext.Tier,
			"candidates", ext.Candidates,
			"prices_found", ext.PriceTokens,
			"page_title", title,
		)

		return models.NewEmptyResult(NoProductsMessage, models.Debug{
			URL:         url,
			PricesFound: ext.PriceTokens,
			PageTitle:   title,
			CookiesUsed: req.Cookies != "",
		}), nil
	}

	logger.Info("extracted listings",
		"tier", ext.Tier,
		"candidates", ext.Candidates,
		"count", len(ext.Listings),
		"rejected", ext.Rejected,
	)

	return models.NewSuccessResult(req.SearchTerm, ext.Listings), nil
}

// applyCookies attaches the raw cookie string and reloads url so the cookies
// take effect. Failures here are logged and never fail the scrape.
func (s *Service) applyCookies(ctx context.Context, session browser.Session, url, raw string, logger *slog.Logger) {
	cookies := parser.ParseCookies(raw, s.opts.CookieDomain)

	if len(cookies) > 0 {
		if err := session.AddCookies(cookies); err != nil {
			logger.Warn("error adding cookies", "error", err)
			return
		}
	}

	if err := session.Navigate(ctx, url); err != nil {
		logger.Warn("error reloading page with cookies", "error", err)
		return
	}

	logger.Debug("cookies applied", "count", len(cookies))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
