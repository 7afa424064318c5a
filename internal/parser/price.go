package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// priceStripper removes the currency symbol and both separators. Dropping "."
// as well as "," means fractional digits are folded into the integer part.
var priceStripper = strings.NewReplacer("$", "", ",", "", ".", "")

// priceTokenPattern matches "$ 1.234,56"-like tokens in raw markup.
var priceTokenPattern = regexp.MustCompile(`\$\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?)`)

// ParsePrice normalizes a currency string into a number. It never fails:
// anything that does not parse yields 0.
func ParsePrice(text string) float64 {
	clean := strings.TrimSpace(priceStripper.Replace(text))
	if clean == "" {
		return 0
	}

	value, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return value
}

// CountPriceTokens reports how many price-like tokens appear in html.
func CountPriceTokens(html string) int {
	return len(priceTokenPattern.FindAllStringIndex(html, -1))
}
