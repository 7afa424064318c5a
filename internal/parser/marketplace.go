package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/maltedev/marketplace-scraper/internal/models"
)

// Selectors for the listing containers, most specific first. These follow the
// live markup and drift whenever the site ships a redesign.
const (
	FeedItemSelector = `[data-testid="marketplace-feed-item"]`
	ArticleSelector  = `div[role="article"]`
	ItemLinkSelector = `a[href*="/marketplace/item/"]`
)

const DefaultMaxCandidates = 20

// Tier is one element-selection rule. Match returns the containers it found,
// possibly an empty selection.
type Tier struct {
	Name  string
	Match func(doc *goquery.Document) *goquery.Selection
}

func SelectorTier(name, selector string) Tier {
	return Tier{
		Name: name,
		Match: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find(selector)
		},
	}
}

func DefaultTiers() []Tier {
	return []Tier{
		SelectorTier("feed-item", FeedItemSelector),
		SelectorTier("article", ArticleSelector),
		SelectorTier("item-link", ItemLinkSelector),
	}
}

// SelectCandidates walks tiers in order and stops at the first one with at
// least one match. The returned name is empty when every tier came up dry.
func SelectCandidates(doc *goquery.Document, tiers []Tier) (string, *goquery.Selection) {
	for _, tier := range tiers {
		sel := tier.Match(doc)
		if sel != nil && sel.Length() > 0 {
			return tier.Name, sel
		}
	}
	return "", nil
}

type MarketplaceParser struct {
	tiers         []Tier
	maxCandidates int
}

func NewMarketplaceParser(maxCandidates int, tiers ...Tier) *MarketplaceParser {
	if maxCandidates < 1 {
		maxCandidates = DefaultMaxCandidates
	}
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}

	return &MarketplaceParser{
		tiers:         tiers,
		maxCandidates: maxCandidates,
	}
}

// Parse runs the chain over rendered page markup. When no listing survives,
// the raw markup is scanned for price tokens instead.
func (p *MarketplaceParser) Parse(rawHTML string) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	ext := p.Extract(doc)
	if ext.Empty() {
		ext.UsedFallback = true
		ext.PriceTokens = CountPriceTokens(rawHTML)
	}

	return ext, nil
}

// Extract inspects at most maxCandidates containers from the winning tier.
// The cap counts inspected elements, not accepted listings.
func (p *MarketplaceParser) Extract(doc *goquery.Document) *Extraction {
	ext := &Extraction{
		Listings: make([]models.Listing, 0),
		Rejected: make(map[Rejection]int),
	}

	tier, candidates := SelectCandidates(doc, p.tiers)
	if candidates == nil {
		return ext
	}
	ext.Tier = tier

	candidates.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= p.maxCandidates {
			return false
		}
		ext.Candidates++

		listing, err := ExtractListing(s)
		if err != nil {
			var rejection Rejection
			if errors.As(err, &rejection) {
				ext.Rejected[rejection]++
			}
			return true
		}

		ext.Listings = append(ext.Listings, listing)
		return true
	})

	return ext
}

// ExtractListing reads name and price from a single container element.
func ExtractListing(s *goquery.Selection) (models.Listing, error) {
	nameSpan := s.Find("span").First()
	if nameSpan.Length() == 0 {
		return models.Listing{}, RejectNoName
	}

	name := strings.TrimSpace(nameSpan.Text())

	priceText, ok := findPriceText(s)
	if !ok {
		return models.Listing{}, RejectNoPrice
	}

	listing := models.NewListing(name, ParsePrice(priceText))
	if !listing.IsValid() {
		if listing.Price <= 0 {
			return models.Listing{}, RejectInvalidPrice
		}
		return models.Listing{}, RejectShortName
	}

	return listing, nil
}

// findPriceText prefers a span whose own leading text carries the currency,
// then falls back to any span whose full text does.
func findPriceText(s *goquery.Selection) (string, bool) {
	spans := s.Find("span")

	if span := spans.FilterFunction(func(_ int, span *goquery.Selection) bool {
		return hasCurrency(firstTextNode(span))
	}).First(); span.Length() > 0 {
		return span.Text(), true
	}

	var text string
	spans.EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if t := span.Text(); hasCurrency(t) {
			text = t
			return false
		}
		return true
	})

	return text, text != ""
}

func firstTextNode(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			return c.Data
		}
	}
	return ""
}

func hasCurrency(text string) bool {
	return strings.Contains(text, "$") || strings.Contains(text, "ARS")
}
