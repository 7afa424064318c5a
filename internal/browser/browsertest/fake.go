// Package browsertest provides an in-memory browser session for tests that
// need to drive the scrape flow without Chromium.
package browsertest

import (
	"context"
	"sync"
	"time"

	"github.com/maltedev/marketplace-scraper/internal/browser"
	"github.com/maltedev/marketplace-scraper/internal/models"
)

// Session records every call and returns the configured faults.
type Session struct {
	HTML      string
	PageTitle string

	// NavigateErrs is indexed by navigation attempt.
	NavigateErrs  []error
	AddCookiesErr error
	WaitErr       error
	ScrollErr     error
	ContentErr    error
	TitleErr      error
	CloseErr      error

	mu          sync.Mutex
	calls       []string
	navigations []string
	cookies     []models.Cookie
	closeCalls  int
}

var _ browser.Session = (*Session)(nil)

func (s *Session) ID() string {
	return "fake-session"
}

func (s *Session) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.navigations)
	s.navigations = append(s.navigations, url)
	s.calls = append(s.calls, "navigate")
	if n < len(s.NavigateErrs) {
		return s.NavigateErrs[n]
	}
	return nil
}

func (s *Session) AddCookies(cookies []models.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, "add_cookies")
	if s.AddCookiesErr != nil {
		return s.AddCookiesErr
	}
	s.cookies = append(s.cookies, cookies...)
	return nil
}

func (s *Session) WaitForBody(_ context.Context, _ time.Duration) error {
	return s.record("wait_for_body", s.WaitErr)
}

func (s *Session) ScrollToMiddle() error {
	return s.record("scroll", s.ScrollErr)
}

func (s *Session) Content() (string, error) {
	if err := s.record("content", s.ContentErr); err != nil {
		return "", err
	}
	return s.HTML, nil
}

func (s *Session) Title() (string, error) {
	if err := s.record("title", s.TitleErr); err != nil {
		return "", err
	}
	return s.PageTitle, nil
}

func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.navigations) == 0 {
		return "about:blank"
	}
	return s.navigations[len(s.navigations)-1]
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeCalls++
	s.calls = append(s.calls, "close")
	return s.CloseErr
}

func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

func (s *Session) Cookies() []models.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Cookie(nil), s.cookies...)
}

func (s *Session) CloseCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls
}

func (s *Session) record(call string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, call)
	return err
}

// Launcher hands out Session, or Err when set.
type Launcher struct {
	Session *Session
	Err     error

	mu       sync.Mutex
	launches int
}

func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.launches++
	if l.Err != nil {
		return nil, l.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.Session, nil
}

func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}
