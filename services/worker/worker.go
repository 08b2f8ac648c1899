// Package worker runs the poll cycle: fetch every configured search source,
// extract offers, filter them, deduplicate against the seen set, persist the
// batch and hand new matches to the notifier.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mkowalczyk/olxwatch/internal/filter"
	"mkowalczyk/olxwatch/internal/notify"
	"mkowalczyk/olxwatch/internal/scraper"
	"mkowalczyk/olxwatch/internal/store"
	"mkowalczyk/olxwatch/logger"
)

// ScraperFactory builds a scraper for a search URL added at runtime
type ScraperFactory func(url string) scraper.Scraper

// Worker orchestrates the fetch → extract → filter → dedup → notify cycle
type Worker struct {
	ctx      context.Context
	mu       sync.Mutex // guards scrapers
	scrapers []scraper.Scraper
	factory  ScraperFactory

	seen     *store.SeenStore
	filter   *filter.Filter
	notifier *notify.Notifier

	interval time.Duration
	cron     *cron.Cron
	log      *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	scrapers []scraper.Scraper,
	factory ScraperFactory,
	seen *store.SeenStore,
	filt *filter.Filter,
	notifier *notify.Notifier,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:      ctx,
		scrapers: scrapers,
		factory:  factory,
		seen:     seen,
		filter:   filt,
		notifier: notifier,
		interval: interval,
		log:      logger.ForWorker(),
	}
}

// Start schedules the poll cycle on the configured interval and kicks off
// the first cycle immediately. The immediate run and every tick go through
// the same SkipIfStillRunning chain, so cycles never overlap: a cycle that
// outlives the interval delays the next tick instead of racing it.
func (w *Worker) Start() {
	job := cron.NewChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	).Then(cron.FuncJob(w.RunCycle))

	w.cron = cron.New()
	w.cron.Schedule(cron.Every(w.interval), job)
	w.cron.Start()
	w.log.Info().Dur("interval", w.interval).Msg("Poll schedule started")

	// First cycle without waiting for the first tick
	go job.Run()
}

// Stop stops the schedule; an in-flight cycle finishes on its own
func (w *Worker) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
	w.log.Info().Msg("Poll schedule stopped")
}

// AddSource appends a search source at runtime, effective next cycle
func (w *Worker) AddSource(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scrapers = append(w.scrapers, w.factory(url))
	w.log.Info().Str("url", url).Int("sources", len(w.scrapers)).Msg("Search source added")
}

// Sources returns the URLs of the active search sources
func (w *Worker) Sources() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.scrapers))
	for i, s := range w.scrapers {
		out[i] = s.Source()
	}
	return out
}

type fetchResult struct {
	source string
	offers []scraper.Offer
	err    error
}

// RunCycle executes one full poll cycle. Any failure is logged and absorbed;
// the next cycle always runs on schedule.
func (w *Worker) RunCycle() {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().Interface("panic", r).Msg("Poll cycle panicked")
		}
	}()

	start := time.Now()

	w.mu.Lock()
	scrapers := make([]scraper.Scraper, len(w.scrapers))
	copy(scrapers, w.scrapers)
	w.mu.Unlock()

	// Fetching is the only concurrent stage; all results are joined before
	// filtering and persistence so the seen set has a single writer.
	results := make([]fetchResult, len(scrapers))
	var wg sync.WaitGroup
	for i, s := range scrapers {
		wg.Add(1)
		go func(i int, s scraper.Scraper) {
			defer wg.Done()
			offers, err := s.FetchOffers(w.ctx)
			results[i] = fetchResult{source: s.Source(), offers: offers, err: err}
		}(i, s)
	}
	wg.Wait()

	var newMatches []scraper.Offer
	for _, res := range results {
		if res.err != nil {
			// The source is skipped this cycle and retried next cycle
			w.log.Warn().Err(res.err).Str("source", res.source).Msg("Fetch failed, skipping source this cycle")
			continue
		}
		w.log.Debug().Str("source", res.source).Int("offers", len(res.offers)).Msg("Parsed offers")

		for _, offer := range res.offers {
			if w.seen.IsSeen(offer.ID) {
				continue
			}
			if !w.filter.Matches(offer.Title, offer.Price) {
				continue
			}
			// Keyword check runs against the excerpt when present, else
			// the title; never both
			target := offer.Excerpt
			if target == "" {
				target = offer.Title
			}
			if !w.filter.ContainsRequired(target) {
				continue
			}
			newMatches = append(newMatches, offer)
		}
	}

	if len(newMatches) == 0 {
		w.log.Info().Dur("elapsed", time.Since(start)).Msg("No new matching offers found this cycle")
		return
	}

	// Mark the whole batch seen in one persist before notifying, so a
	// delivery failure cannot re-notify the batch next cycle
	ids := make([]string, len(newMatches))
	for i, offer := range newMatches {
		ids[i] = offer.ID
	}
	if err := w.seen.MarkSeen(ids); err != nil {
		w.log.Error().Err(err).Msg("Failed to persist seen set")
	}

	w.notifier.NotifyAll(w.ctx, newMatches)

	w.log.Info().
		Int("new_matches", len(newMatches)).
		Dur("elapsed", time.Since(start)).
		Msg("Poll cycle complete")
}
