package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/marketplace-scraper/internal/models"
)

func TestParseCookies(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []models.Cookie
	}{
		{
			name: "Two pairs",
			raw:  "a=1; b=2",
			expected: []models.Cookie{
				{Name: "a", Value: "1", Domain: ".facebook.com"},
				{Name: "b", Value: "2", Domain: ".facebook.com"},
			},
		},
		{
			name: "Only first equals splits",
			raw:  "token=abc=def==",
			expected: []models.Cookie{
				{Name: "token", Value: "abc=def==", Domain: ".facebook.com"},
			},
		},
		{
			name: "Malformed pairs skipped",
			raw:  "garbage; c_user=42;; ; xs=",
			expected: []models.Cookie{
				{Name: "c_user", Value: "42", Domain: ".facebook.com"},
				{Name: "xs", Value: "", Domain: ".facebook.com"},
			},
		},
		{
			name:     "Empty",
			raw:      "",
			expected: []models.Cookie{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookies := ParseCookies(tt.raw, ".facebook.com")
			require.NotNil(t, cookies)
			assert.Equal(t, tt.expected, cookies)
		})
	}
}
