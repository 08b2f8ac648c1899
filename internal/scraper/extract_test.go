package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFallbackHTML = `
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

const sampleGridHTML = `
<html>
  <body>
    <div data-testid="listing-grid">
      <div data-cy="l-card" data-id="111222333">
        <a href="/d/oferta/iphone-13-jak-nowy-987654321/"><h6>iPhone 13 jak nowy</h6></a>
        <p data-testid="ad-price">650 zł</p>
        <p data-testid="location-date">Warszawa - dzisiaj</p>
      </div>
      <div data-cy="l-card">
        <a href="/d/oferta/iphone-12-uszkodzony-555666777/"><h6>iPhone 12 uszkodzony</h6></a>
        <p data-testid="ad-price">do negocjacji</p>
      </div>
      <div data-cy="l-card">
        <span>brak odnośnika, brak identyfikatora</span>
      </div>
    </div>
  </body>
</html>
`

func TestExtractFallbackLinkScan(t *testing.T) {
	e := NewExtractor("https://www.olx.pl")

	offers, err := e.Extract(strings.NewReader(sampleFallbackHTML))
	require.NoError(t, err)
	require.Len(t, offers, 1)

	o := offers[0]
	// Id comes from the numeric URL suffix
	assert.Equal(t, "123456", o.ID)
	assert.Contains(t, strings.ToLower(o.Title), "iphone")
	require.NotNil(t, o.Price)
	assert.Equal(t, 1200, *o.Price)
	assert.Equal(t, "1 200 zł", o.PriceText)
	assert.Equal(t, "https://www.olx.pl/d/oferta/iphone-11-dobry-stan-1200-123456/", o.URL)
	assert.Equal(t, "bez blokad", o.Excerpt)
}

func TestExtractListingGrid(t *testing.T) {
	e := NewExtractor("https://www.olx.pl")

	offers, err := e.Extract(strings.NewReader(sampleGridHTML))
	require.NoError(t, err)
	// The card without any derivable id is discarded
	require.Len(t, offers, 2)

	// Source order is preserved
	assert.Equal(t, "111222333", offers[0].ID, "data-id attribute wins over the URL suffix")
	assert.Equal(t, "iPhone 13 jak nowy", offers[0].Title)
	require.NotNil(t, offers[0].Price)
	assert.Equal(t, 650, *offers[0].Price)
	assert.Equal(t, "Warszawa - dzisiaj", offers[0].Location)

	assert.Equal(t, "555666777", offers[1].ID)
	assert.Nil(t, offers[1].Price, "unparseable price text stays absent")
	assert.Equal(t, "do negocjacji", offers[1].PriceText)
}

func TestExtractIDFromLastPathSegment(t *testing.T) {
	html := `<html><body><a href="https://www.olx.pl/d/oferta/iphone-bez-numeru/">iPhone bez numeru</a></body></html>`
	e := NewExtractor("https://www.olx.pl")

	offers, err := e.Extract(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "iphone-bez-numeru", offers[0].ID)
}

func TestExtractEmptyDocument(t *testing.T) {
	e := NewExtractor("https://www.olx.pl")

	offers, err := e.Extract(strings.NewReader("<html><body></body></html>"))
	assert.NoError(t, err)
	assert.Empty(t, offers)
}

func TestExtractPreservesSourceOrder(t *testing.T) {
	html := `
<html><body>
  <a href="/d/oferta/pierwsza-111111/">pierwsza</a>
  <a href="/d/oferta/druga-222222/">druga</a>
  <a href="/d/oferta/trzecia-333333/">trzecia</a>
</body></html>`
	e := NewExtractor("https://www.olx.pl")

	offers, err := e.Extract(strings.NewReader(html))
	require.NoError(t, err)
	require.Len(t, offers, 3)
	assert.Equal(t, []string{"111111", "222222", "333333"},
		[]string{offers[0].ID, offers[1].ID, offers[2].ID})
}
