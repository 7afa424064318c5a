package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/maltedev/marketplace-scraper/internal/models"
)

var (
	ErrBodyTimeout   = errors.New("timed out waiting for document body")
	ErrSessionClosed = errors.New("session already closed")
)

const hideWebdriverScript = `
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined
	})
`

const scrollToMiddleScript = `window.scrollTo(0, document.body.scrollHeight/2);`

// Session is a single browser instance with one page, owned by one caller.
// Close releases everything and is safe to call more than once.
type Session interface {
	ID() string
	Navigate(ctx context.Context, url string) error
	AddCookies(cookies []models.Cookie) error
	WaitForBody(ctx context.Context, timeout time.Duration) error
	ScrollToMiddle() error
	Content() (string, error)
	Title() (string, error)
	URL() string
	Close() error
}

type Options struct {
	Headless          bool
	NavigationTimeout time.Duration
	UserAgent         string
	ViewportWidth     int
	ViewportHeight    int
	ExecutablePath    string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:          true,
		NavigationTimeout: 30 * time.Second,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:     1920,
		ViewportHeight:    1080,
	}
}

// LaunchArgs are the Chromium flags every session starts with.
func (o *Options) LaunchArgs() []string {
	return []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--disable-blink-features=AutomationControlled",
		fmt.Sprintf("--window-size=%d,%d", o.ViewportWidth, o.ViewportHeight),
		"--user-agent=" + o.UserAgent,
	}
}

// Driver owns the playwright runtime. Each Launch starts a fresh browser.
type Driver struct {
	pw     *playwright.Playwright
	opts   *Options
	logger *slog.Logger
}

func NewDriver(opts *Options, logger *slog.Logger) (*Driver, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	return &Driver{
		pw:     pw,
		opts:   opts,
		logger: logger.With("component", "browser"),
	}, nil
}

func (d *Driver) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless:          playwright.Bool(d.opts.Headless),
		Args:              d.opts.LaunchArgs(),
		IgnoreDefaultArgs: []string{"--enable-automation"},
	}
	if d.opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(d.opts.ExecutablePath)
	}

	browser, err := d.pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(d.opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  d.opts.ViewportWidth,
			Height: d.opts.ViewportHeight,
		},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriverScript)}); err != nil {
		bctx.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create new page: %w", err)
	}
	page.SetDefaultNavigationTimeout(float64(d.opts.NavigationTimeout.Milliseconds()))

	id := uuid.NewString()
	d.logger.Debug("session launched", "session_id", id)

	return &session{
		id:      id,
		browser: browser,
		context: bctx,
		page:    page,
		logger:  d.logger.With("session_id", id),
	}, nil
}

// Stop shuts the playwright runtime down. Sessions must be closed first.
func (d *Driver) Stop() error {
	if d.pw == nil {
		return nil
	}
	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

type session struct {
	id      string
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

func (s *session) ID() string {
	return s.id
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	s.logger.Debug("navigating", "url", url)
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *session) AddCookies(cookies []models.Cookie) error {
	if err := s.checkOpen(context.Background()); err != nil {
		return err
	}

	optional := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		optional = append(optional, playwright.OptionalCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: playwright.String(c.Domain),
			Path:   playwright.String("/"),
		})
	}

	if err := s.context.AddCookies(optional); err != nil {
		return fmt.Errorf("failed to add cookies: %w", err)
	}
	return nil
}

func (s *session) WaitForBody(ctx context.Context, timeout time.Duration) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	_, err := s.page.WaitForSelector("body", playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return fmt.Errorf("%w after %s", ErrBodyTimeout, timeout)
		}
		return fmt.Errorf("failed waiting for body: %w", err)
	}
	return nil
}

func (s *session) ScrollToMiddle() error {
	if _, err := s.page.Evaluate(scrollToMiddleScript); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (s *session) Content() (string, error) {
	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}
	return content, nil
}

func (s *session) Title() (string, error) {
	title, err := s.page.Title()
	if err != nil {
		return "", fmt.Errorf("failed to get page title: %w", err)
	}
	return title, nil
}

func (s *session) URL() string {
	return s.page.URL()
}

func (s *session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		var errs []error

		if s.context != nil {
			if err := s.context.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close context: %w", err))
			}
		}

		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
			}
		}

		if len(errs) > 0 {
			s.closeErr = fmt.Errorf("errors during close: %w", errors.Join(errs...))
		}
		s.logger.Debug("session closed", "error", s.closeErr)
	})

	return s.closeErr
}

func (s *session) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}
