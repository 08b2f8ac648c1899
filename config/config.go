package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"mkowalczyk/olxwatch/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	TelegramToken string

	// Persistence configuration
	DataDir         string
	SeenFile        string
	SubscribersFile string

	// Poller configuration
	PollInterval time.Duration
	FetchTimeout time.Duration
	SearchURLs   []string
	BaseURL      string

	// Filter configuration
	ThresholdsFile   string
	RequiredKeywords []string

	// Rate-limit cache configuration
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Optional Redis match stream
	RedisAddr      string
	RedisDB        int
	RedisStream    string
	RedisMaxLength int

	// Status HTTP server
	StatusAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	pollInterval, _ := strconv.Atoi(getEnv("POLL_INTERVAL_SECONDS", "60"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "20"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))

	dataDir := getEnv("DATA_DIR", "./data")

	return Config{
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DataDir:          dataDir,
		SeenFile:         dataDir + "/seen_offers.json",
		SubscribersFile:  dataDir + "/subscribers.json",
		PollInterval:     time.Duration(pollInterval) * time.Second,
		FetchTimeout:     time.Duration(fetchTimeout) * time.Second,
		SearchURLs:       splitList(getEnv("SEARCH_URLS", "https://www.olx.pl/d/oferty/q/iphone/")),
		BaseURL:          getEnv("BASE_URL", "https://www.olx.pl"),
		ThresholdsFile:   os.Getenv("THRESHOLDS_FILE"),
		RequiredKeywords: splitList(os.Getenv("REQUIRED_KEYWORDS")),
		MemcacheAddr:     os.Getenv("MEMCACHE_ADDR"),
		RateLimitBlock:   time.Duration(blockSeconds) * time.Second,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisDB:          redisDB,
		RedisStream:      getEnv("REDIS_STREAM", "olxwatch:matches"),
		RedisMaxLength:   redisMaxLen,
		StatusAddr:       getEnv("STATUS_ADDR", ":8390"),
		Environment:      getEnv("OLXWATCH_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable for a normal run
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.NewConfiguration(
			"TELEGRAM_BOT_TOKEN is not set; the bot cannot reach the Telegram API. "+
				"Set it in the environment or a .env file, or run with -test for the offline self-test",
			nil)
	}
	if len(c.SearchURLs) == 0 {
		return errors.NewConfiguration("SEARCH_URLS must contain at least one search URL", nil)
	}
	if c.PollInterval <= 0 {
		return errors.NewConfiguration("POLL_INTERVAL_SECONDS must be positive", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma separated value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
