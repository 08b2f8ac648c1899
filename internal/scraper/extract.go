package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mkowalczyk/olxwatch/helpers"
	"mkowalczyk/olxwatch/logger"
)

const (
	cardSelector     = `[data-testid="listing-grid"] [data-cy="l-card"]`
	offerLinkPattern = `/d/oferta/|/oferta/`
)

var (
	offerLinkRegex = regexp.MustCompile(offerLinkPattern)
	idSuffixRegex  = regexp.MustCompile(`-([0-9]{6,})\b`)
)

// fieldStrategy extracts a single field from a candidate element. Strategies
// for each field are tried in order; the first non-empty result wins.
type fieldStrategy func(s *goquery.Selection) string

// selectorText returns a strategy that takes the trimmed text of the first
// element matching sel.
func selectorText(sel string) fieldStrategy {
	return func(s *goquery.Selection) string {
		return strings.TrimSpace(s.Find(sel).First().Text())
	}
}

// Extractor turns raw search-results markup into Offer records. Extraction is
// best-effort: a candidate missing any field other than a derivable id is
// still returned, and a candidate that fails outright is skipped without
// aborting the batch.
//
// Id derivation has three tiers (data-id attribute, numeric URL suffix,
// trailing path segment) with no cross-poll reconciliation; a listing whose
// URL slug changes between polls can be notified again. Known limitation.
type Extractor struct {
	baseURL string
	log     *logger.Logger

	titleStrategies    []fieldStrategy
	priceStrategies    []fieldStrategy
	locationStrategies []fieldStrategy
	excerptStrategies  []fieldStrategy
}

// NewExtractor creates an extractor that rewrites relative hrefs against
// baseURL, e.g. "https://www.olx.pl".
func NewExtractor(baseURL string) *Extractor {
	return &Extractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.ForScraper("extractor"),
		titleStrategies: []fieldStrategy{
			selectorText("h6"),
			selectorText("h4"),
			selectorText("h3"),
			selectorText(`[data-cy="ad-card-title"]`),
		},
		priceStrategies: []fieldStrategy{
			selectorText(`[data-testid="ad-price"]`),
			selectorText(".price"),
		},
		locationStrategies: []fieldStrategy{
			selectorText(`[data-testid="location-date"]`),
			selectorText(".css-19yf5ek"),
			selectorText(".css-nq3w9f"),
		},
		excerptStrategies: []fieldStrategy{
			selectorText(`[data-cy="ad-card-description"]`),
			selectorText(".css-6safw6"),
			selectorText(".css-1c9m2a9"),
		},
	}
}

// Extract parses search-results markup and returns offers in source order.
func (e *Extractor) Extract(markup io.Reader) ([]Offer, error) {
	doc, err := goquery.NewDocumentFromReader(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	candidates := doc.Find(cardSelector)
	if candidates.Length() == 0 {
		// Fallback: scan every hyperlink that targets an offer path
		candidates = doc.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			href, _ := s.Attr("href")
			return offerLinkRegex.MatchString(href)
		})
	}

	var offers []Offer
	candidates.Each(func(i int, s *goquery.Selection) {
		offer, err := e.safeProcess(s)
		if err != nil {
			e.log.Warn().Err(err).Int("candidate", i).Msg("Skipping malformed candidate element")
			return
		}
		if offer != nil {
			offers = append(offers, *offer)
		}
	})

	return offers, nil
}

// safeProcess isolates one candidate: a panic while processing it is turned
// into an error so the remaining candidates still get extracted.
func (e *Extractor) safeProcess(s *goquery.Selection) (offer *Offer, err error) {
	defer func() {
		if r := recover(); r != nil {
			offer = nil
			err = fmt.Errorf("panic while processing candidate: %v", r)
		}
	}()
	return e.processCandidate(s), nil
}

// processCandidate extracts one offer. Returns nil when no id can be derived.
func (e *Extractor) processCandidate(s *goquery.Selection) *Offer {
	anchor := s
	if goquery.NodeName(s) != "a" {
		anchor = s.Find("a[href]").First()
	}

	href, _ := anchor.Attr("href")
	if strings.HasPrefix(href, "/") {
		href = e.baseURL + href
	}

	id := e.deriveID(s, href)
	if id == "" {
		return nil
	}

	title := e.applyStrategies(s, e.titleStrategies)
	if title == "" {
		title = strings.TrimSpace(anchor.Text())
	}

	priceText := e.applyStrategies(s, e.priceStrategies)

	offer := &Offer{
		ID:        id,
		Title:     title,
		PriceText: priceText,
		URL:       href,
		Location:  e.applyStrategies(s, e.locationStrategies),
		Excerpt:   e.applyStrategies(s, e.excerptStrategies),
	}

	if price, ok := NormalizePrice(priceText); ok {
		offer.Price = &price
	}

	return offer
}

// deriveID resolves the offer id: structured attribute first, then a numeric
// URL suffix of at least six digits, then the last path segment of the URL.
func (e *Extractor) deriveID(s *goquery.Selection, href string) string {
	if id, exists := s.Attr("data-id"); exists && id != "" {
		return id
	}
	if href == "" {
		return ""
	}
	if m := idSuffixRegex.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	trimmed := strings.TrimRight(href, "/")
	segment, err := helpers.GetSplitPart(trimmed, "/", strings.Count(trimmed, "/"))
	if err != nil {
		return ""
	}
	return segment
}

// applyStrategies applies field strategies in order, first success wins
func (e *Extractor) applyStrategies(s *goquery.Selection, strategies []fieldStrategy) string {
	for _, strategy := range strategies {
		if result := strategy(s); result != "" {
			return result
		}
	}
	return ""
}
