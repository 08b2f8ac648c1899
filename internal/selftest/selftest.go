// Package selftest exercises the price normalizer, the offer extractor and
// the match filter against fixed sample inputs, with no network access.
// It backs the -test CLI mode.
package selftest

import (
	"fmt"
	"strings"

	"mkowalczyk/olxwatch/internal/filter"
	"mkowalczyk/olxwatch/internal/scraper"
)

const sampleHTML = `
<html>
  <body>
    <a href="/d/oferta/iphone-11-dobry-stan-1200-123456/">
      <h3>iPhone 11 - dobry stan</h3>
      <span class="price">1 200 zł</span>
      <p class="css-6safw6">bez blokad</p>
    </a>
  </body>
</html>
`

// Run returns an error describing the first failed check, nil when all pass
func Run() error {
	if err := checkNormalizer(); err != nil {
		return err
	}
	if err := checkExtractor(); err != nil {
		return err
	}
	return checkFilter()
}

func checkNormalizer() error {
	cases := []struct {
		input string
		want  int
	}{
		{"1 200 zł", 1200},
		{"PLN 2,345.67", 2345},
		{"~ 999", 999},
	}
	for _, c := range cases {
		got, ok := scraper.NormalizePrice(c.input)
		if !ok || got != c.want {
			return fmt.Errorf("normalize(%q) = %d (ok=%v), want %d", c.input, got, ok, c.want)
		}
	}
	if _, ok := scraper.NormalizePrice(""); ok {
		return fmt.Errorf("normalize(\"\") should fail")
	}
	return nil
}

func checkExtractor() error {
	offers, err := scraper.NewExtractor("https://www.olx.pl").Extract(strings.NewReader(sampleHTML))
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	if len(offers) != 1 {
		return fmt.Errorf("expected 1 offer, got %d", len(offers))
	}
	o := offers[0]
	if o.ID != "123456" {
		return fmt.Errorf("unexpected id parsed: %q", o.ID)
	}
	if !strings.Contains(strings.ToLower(o.Title), "iphone") {
		return fmt.Errorf("unexpected title parsed: %q", o.Title)
	}
	if o.Price == nil || *o.Price != 1200 {
		return fmt.Errorf("unexpected price parsed: %v", o.Price)
	}
	return nil
}

func checkFilter() error {
	f := filter.New(filter.DefaultRules(), nil)
	at := 350
	over := 351
	if !f.Matches("iPhone 11 super", &at) {
		return fmt.Errorf("price at threshold should match")
	}
	if f.Matches("iPhone 11 super", &over) {
		return fmt.Errorf("price over threshold should not match")
	}
	return nil
}
