package models

import (
	"strings"
	"unicode/utf8"
)

// MinNameLength is the exclusive lower bound on a trimmed listing name.
const MinNameLength = 3

type ScrapeRequest struct {
	SearchTerm string `json:"search_term"`
	Cookies    string `json:"cookies,omitempty"`
}

type Listing struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ScrapeResult struct {
	Success    bool      `json:"success"`
	SearchTerm string    `json:"search_term,omitempty"`
	Message    string    `json:"message,omitempty"`
	Products   []Listing `json:"products"`
	Count      *int      `json:"count,omitempty"`
	Debug      *Debug    `json:"debug,omitempty"`
}

// Debug is returned instead of listings when structured extraction found nothing.
type Debug struct {
	URL         string `json:"url"`
	PricesFound int    `json:"prices_found"`
	PageTitle   string `json:"page_title"`
	CookiesUsed bool   `json:"cookies_used"`
}

type Cookie struct {
	Name   string
	Value  string
	Domain string
}

func NewListing(name string, price float64) Listing {
	return Listing{
		Name:  strings.TrimSpace(name),
		Price: price,
	}
}

func (l Listing) IsValid() bool {
	return utf8.RuneCountInString(strings.TrimSpace(l.Name)) > MinNameLength && l.Price > 0
}

func NewSuccessResult(searchTerm string, products []Listing) *ScrapeResult {
	if products == nil {
		products = make([]Listing, 0)
	}
	count := len(products)
	return &ScrapeResult{
		Success:    true,
		SearchTerm: searchTerm,
		Products:   products,
		Count:      &count,
	}
}

func NewEmptyResult(message string, debug Debug) *ScrapeResult {
	return &ScrapeResult{
		Success:  false,
		Message:  message,
		Products: make([]Listing, 0),
		Debug:    &debug,
	}
}
