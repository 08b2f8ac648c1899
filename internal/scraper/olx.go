package scraper

import (
	"context"
	"time"

	"mkowalczyk/olxwatch/helpers"
	"mkowalczyk/olxwatch/logger"
	"mkowalczyk/olxwatch/pkg/errors"
	"mkowalczyk/olxwatch/services/cache"
)

// OLXScraper fetches one OLX search-results page and extracts its offers
type OLXScraper struct {
	url       string
	fetcher   *helpers.Fetcher
	extractor *Extractor
	cacheSvc  cache.CacheService
	cacheKey  string
	blockTime time.Duration
	log       *logger.Logger
}

// NewOLXScraper creates a scraper for a single search URL
func NewOLXScraper(url, baseURL string, fetcher *helpers.Fetcher, cacheSvc cache.CacheService, blockTime time.Duration) *OLXScraper {
	return &OLXScraper{
		url:       url,
		fetcher:   fetcher,
		extractor: NewExtractor(baseURL),
		cacheSvc:  cacheSvc,
		cacheKey:  "blocked:" + url,
		blockTime: blockTime,
		log:       logger.ForScraper(url),
	}
}

// Source returns the search URL
func (s *OLXScraper) Source() string {
	return s.url
}

// FetchOffers fetches the search page and extracts offers. A source that was
// rate limited recently is skipped until its block window expires.
func (s *OLXScraper) FetchOffers(ctx context.Context) ([]Offer, error) {
	if s.cacheSvc != nil {
		if _, err := s.cacheSvc.Get(s.cacheKey); err == nil {
			return nil, errors.NewRateLimit(s.url, s.blockTime)
		}
	}

	body, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		if helpers.IsRateLimited(err) && s.cacheSvc != nil {
			if cacheErr := s.cacheSvc.Set(s.cacheKey, []byte("1"), s.blockTime); cacheErr != nil {
				s.log.Warn().Err(cacheErr).Msg("Failed to record rate-limit block")
			}
		}
		return nil, err
	}

	return s.extractor.Extract(body)
}
