package parser

import (
	"strings"

	"github.com/maltedev/marketplace-scraper/internal/models"
)

// ParseCookies splits a "name1=value1; name2=value2" header-style string into
// cookies bound to domain. Pairs without "=" are skipped; only the first "="
// separates name from value.
func ParseCookies(raw, domain string) []models.Cookie {
	cookies := make([]models.Cookie, 0)

	for _, pair := range strings.Split(raw, ";") {
		if !strings.Contains(pair, "=") {
			continue
		}

		name, value, _ := strings.Cut(strings.TrimSpace(pair), "=")
		cookies = append(cookies, models.Cookie{
			Name:   name,
			Value:  value,
			Domain: domain,
		})
	}

	return cookies
}
