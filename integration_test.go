package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mkowalczyk/olxwatch/helpers"
	"mkowalczyk/olxwatch/internal/filter"
	"mkowalczyk/olxwatch/internal/notify"
	"mkowalczyk/olxwatch/internal/scraper"
	"mkowalczyk/olxwatch/internal/store"
	"mkowalczyk/olxwatch/services/cache"
	"mkowalczyk/olxwatch/services/worker"
)

// A search-results page in the shape the extractor's fallback handles
const testSearchHTML = `
<!DOCTYPE html>
<html>
<body>
  <a href="/d/oferta/iphone-11-dobry-stan-1200-123456/">
    <h3>iPhone 11 - dobry stan</h3>
    <span class="price">345 zł</span>
    <p class="css-6safw6">bez blokad</p>
  </a>
  <a href="/d/oferta/iphone-13-za-drogi-654321/">
    <h3>iPhone 13 idealny</h3>
    <span class="price">6 500 zł</span>
  </a>
</body>
</html>
`

type recordingSender struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (r *recordingSender) SendMessage(_ context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = make(map[int64][]string)
	}
	r.sent[chatID] = append(r.sent[chatID], text)
	return nil
}

func TestEndToEndPollCycle(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testSearchHTML))
	}))
	defer page.Close()

	dir := t.TempDir()
	seen := store.NewSeenStore(filepath.Join(dir, "seen_offers.json"))
	subs := store.NewSubscriberStore(filepath.Join(dir, "subscribers.json"))
	_, err := subs.Add(42)
	require.NoError(t, err)

	sender := &recordingSender{}
	notifier := notify.NewNotifier(sender, subs, nil)
	filt := filter.New(filter.DefaultRules(), nil)

	fetcher := helpers.NewFetcher(5 * time.Second)
	cacheSvc := cache.NewMemoryCache()
	factory := func(url string) scraper.Scraper {
		return scraper.NewOLXScraper(url, "https://www.olx.pl", fetcher, cacheSvc, time.Minute)
	}

	w := worker.NewWorker(
		context.Background(),
		[]scraper.Scraper{factory(page.URL)},
		factory,
		seen,
		filt,
		notifier,
		time.Minute,
	)

	w.RunCycle()

	// Only the under-threshold offer is notified
	require.Len(t, sender.sent[42], 1)
	assert.Contains(t, sender.sent[42][0], "iPhone 11 - dobry stan")
	assert.Contains(t, sender.sent[42][0], "ID: 123456")
	assert.True(t, seen.IsSeen("123456"))
	assert.False(t, seen.IsSeen("654321"))

	// A second cycle over the same page finds nothing new
	w.RunCycle()
	assert.Len(t, sender.sent[42], 1)

	// The seen set survives a restart
	reloaded := store.NewSeenStore(filepath.Join(dir, "seen_offers.json"))
	assert.True(t, reloaded.IsSeen("123456"))
}
