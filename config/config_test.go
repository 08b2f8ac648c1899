package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 20*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "https://www.olx.pl", cfg.BaseURL)
	assert.Equal(t, []string{"https://www.olx.pl/d/oferty/q/iphone/"}, cfg.SearchURLs)
	assert.Equal(t, "./data/seen_offers.json", cfg.SeenFile)
	assert.Equal(t, "./data/subscribers.json", cfg.SubscribersFile)
	assert.Equal(t, "olxwatch:matches", cfg.RedisStream)
	assert.Empty(t, cfg.RedisAddr, "Redis publishing should be disabled by default")
	assert.Empty(t, cfg.MemcacheAddr, "memcache should be disabled by default")
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("POLL_INTERVAL_SECONDS", "120")
	t.Setenv("SEARCH_URLS", "https://www.olx.pl/d/oferty/q/iphone/, https://www.olx.pl/d/oferty/q/macbook/")
	t.Setenv("REQUIRED_KEYWORDS", "bez blokad")
	t.Setenv("DATA_DIR", "/tmp/olxwatch")

	cfg := LoadConfig()

	assert.Equal(t, 120*time.Second, cfg.PollInterval)
	assert.Len(t, cfg.SearchURLs, 2)
	assert.Equal(t, "https://www.olx.pl/d/oferty/q/macbook/", cfg.SearchURLs[1])
	assert.Equal(t, []string{"bez blokad"}, cfg.RequiredKeywords)
	assert.Equal(t, "/tmp/olxwatch/seen_offers.json", cfg.SeenFile)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.TelegramToken = ""
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	cfg.TelegramToken = "123:abc"
	assert.NoError(t, cfg.Validate())

	cfg.SearchURLs = nil
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.TelegramToken = "123:abc"
	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())
}
