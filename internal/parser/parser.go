package parser

import (
	"github.com/maltedev/marketplace-scraper/internal/models"
)

type Parser interface {
	Parse(html string) (*Extraction, error)
}

// Extraction is the outcome of running the tier chain over one rendered page.
type Extraction struct {
	Tier         string
	Candidates   int
	Listings     []models.Listing
	Rejected     map[Rejection]int
	UsedFallback bool
	PriceTokens  int
}

func (e *Extraction) Empty() bool {
	return len(e.Listings) == 0
}

// Rejection explains why a candidate element did not become a listing.
type Rejection string

const (
	RejectNoName       Rejection = "no-name"
	RejectShortName    Rejection = "short-name"
	RejectNoPrice      Rejection = "no-price"
	RejectInvalidPrice Rejection = "invalid-price"
)

func (r Rejection) Error() string {
	return "candidate rejected: " + string(r)
}
