package helpers

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/net/html/charset"

	"mkowalczyk/olxwatch/pkg/errors"
)

// HTTP client and header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
	}

	referers = []string{
		"https://www.google.com/",
		"https://www.onet.pl/",
		"https://www.wp.pl/",
	}
)

// Fetcher performs GET requests with browser-like headers, a fixed per-call
// timeout and a bounded retry on transient failures. Response bodies are
// converted to UTF-8 when the page declares another charset.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher with the given per-call timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch sends an HTTP GET request with randomized headers, converts the
// response body to UTF-8 (if needed), and returns it as an io.Reader.
func (f *Fetcher) Fetch(ctx context.Context, url string) (io.Reader, error) {
	var body io.Reader

	err := retry.Do(
		func() error {
			var err error
			body, err = f.fetchOnce(ctx, url)
			return err
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var werr *errors.WatchError
			if stderrors.As(err, &werr) {
				return werr.IsRetryable()
			}
			return true
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (io.Reader, error) {
	// Create a new random number generator for header selection
	rnd := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set browser-like headers
	req.Header.Set("User-Agent", userAgents[rnd.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("referer", referers[rnd.Intn(len(referers))])
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("upgrade-insecure-requests", "1")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	req.Header.Set("Sec-Fetch-User", "?1")

	// Send the request
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewFetch(url, "failed to fetch URL", err)
	}

	// Check for rate limiting
	if slices.Contains([]int{http.StatusTooManyRequests, 430}, resp.StatusCode) {
		resp.Body.Close()
		retryAfter := resp.Header.Get("Retry-After")
		return nil, errors.NewRateLimit(url, parseRetryAfter(retryAfter))
	}

	// Check for other error status codes
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.NewFetch(url, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	defer resp.Body.Close()

	// Read the entire response body
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewFetch(url, "failed to read response body", err)
	}

	// Determine the encoding from Content-Type header and body content
	encoding, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	// Convert to UTF-8 if necessary
	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, errors.NewFetch(url, "failed to read converted UTF-8 body", err)
	}

	return &buf, nil
}

// parseRetryAfter accepts both header forms, delta-seconds and an HTTP-date.
// Unparseable or already-elapsed values yield 0.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// IsRateLimited reports whether err is a rate-limit error
func IsRateLimited(err error) bool {
	var werr *errors.WatchError
	if stderrors.As(err, &werr) {
		return werr.Type == errors.ErrorTypeRateLimit
	}
	return false
}
