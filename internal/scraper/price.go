package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonPriceChars = regexp.MustCompile(`[^0-9,.]+`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// NormalizePrice extracts an integer PLN amount from free-form price text
// like "1 200 zł" or "PLN 2,345.67". The fractional part is truncated, not
// rounded. Returns false when no amount can be derived.
func NormalizePrice(text string) (int, bool) {
	if text == "" {
		return 0, false
	}

	cleaned := nonPriceChars.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0, false
	}

	// Comma is treated as a decimal separator alias
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	// With more than one period, everything but the last segment is a
	// thousands group
	parts := strings.Split(cleaned, ".")
	if len(parts) > 2 {
		cleaned = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	if value, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int(value), true
	}

	// Coarse fallback: all digit characters of the original text as a
	// plain integer, ignoring decimal semantics
	digits := nonDigits.ReplaceAllString(text, "")
	if digits != "" {
		if value, err := strconv.Atoi(digits); err == nil {
			return value, true
		}
	}

	return 0, false
}
