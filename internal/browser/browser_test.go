package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/marketplace-scraper/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless, "Expected headless to be true by default")
	assert.Equal(t, 30*time.Second, opts.NavigationTimeout)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Contains(t, opts.UserAgent, "Chrome/120.0.0.0")
}

func TestLaunchArgs(t *testing.T) {
	opts := DefaultOptions()
	args := opts.LaunchArgs()

	assert.Contains(t, args, "--no-sandbox")
	assert.Contains(t, args, "--disable-dev-shm-usage")
	assert.Contains(t, args, "--disable-gpu")
	assert.Contains(t, args, "--disable-blink-features=AutomationControlled")
	assert.Contains(t, args, "--window-size=1920,1080")
	assert.Contains(t, args, "--user-agent="+opts.UserAgent)
}

func TestSessionAgainstLocalPage(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("c_user")
		value := "none"
		if err == nil {
			value = c.Value
		}
		fmt.Fprintf(w, `<html><head><title>Local marketplace</title></head>
			<body><div data-testid="marketplace-feed-item"><span>%s</span><span>$ 10</span></div>
			<script>document.title += navigator.webdriver === undefined ? " hidden" : " visible"</script></body></html>`, value)
	}))
	defer srv.Close()

	driver, err := NewDriver(DefaultOptions(), slog.Default())
	require.NoError(t, err)
	defer driver.Stop()

	ctx := context.Background()
	s, err := driver.Launch(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Navigate(ctx, srv.URL))
	require.NoError(t, s.AddCookies([]models.Cookie{{Name: "c_user", Value: "42", Domain: "127.0.0.1"}}))
	require.NoError(t, s.Navigate(ctx, srv.URL))
	require.NoError(t, s.WaitForBody(ctx, 10*time.Second))
	require.NoError(t, s.ScrollToMiddle())

	content, err := s.Content()
	require.NoError(t, err)
	assert.Contains(t, content, "<span>42</span>")

	title, err := s.Title()
	require.NoError(t, err)
	assert.Equal(t, "Local marketplace hidden", title)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Navigate(ctx, srv.URL), ErrSessionClosed)
}
