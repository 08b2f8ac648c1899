package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mkowalczyk/olxwatch/config"
	"mkowalczyk/olxwatch/helpers"
	"mkowalczyk/olxwatch/internal/bot"
	"mkowalczyk/olxwatch/internal/filter"
	"mkowalczyk/olxwatch/internal/notify"
	"mkowalczyk/olxwatch/internal/scraper"
	"mkowalczyk/olxwatch/internal/selftest"
	"mkowalczyk/olxwatch/internal/store"
	"mkowalczyk/olxwatch/logger"
	"mkowalczyk/olxwatch/server"
	"mkowalczyk/olxwatch/services/cache"
	"mkowalczyk/olxwatch/services/publisher"
	"mkowalczyk/olxwatch/services/worker"
)

func main() {
	testMode := flag.Bool("test", false, "run the offline self-test and exit")
	flag.Parse()

	if *testMode {
		if err := selftest.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "self-test failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All self-tests passed.")
		return
	}

	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("poll_interval", cfg.PollInterval).
		Int("sources", len(cfg.SearchURLs)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Durable stores
	seenStore := store.NewSeenStore(cfg.SeenFile)
	subscriberStore := store.NewSubscriberStore(cfg.SubscribersFile)

	// Price-threshold table
	rules := filter.DefaultRules()
	if cfg.ThresholdsFile != "" {
		loaded, err := filter.LoadRules(cfg.ThresholdsFile)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.ThresholdsFile).Msg("Falling back to built-in thresholds")
		} else {
			rules = loaded
		}
	}
	filt := filter.New(rules, cfg.RequiredKeywords)

	// Rate-limit cache: in-memory unless memcache is configured
	var cacheSvc cache.CacheService = cache.NewMemoryCache()
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using memcache for rate-limit blocking")
	}

	// Telegram client; a token the API rejects outright is a startup error
	telegram := notify.NewTelegramClient(cfg.TelegramToken)
	if username, err := telegram.GetMe(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not verify bot token with the Telegram API, continuing anyway")
	} else {
		log.Info().Str("bot", username).Msg("Connected to Telegram")
	}

	// Optional Redis match stream
	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisMaxLength)
		defer redisPub.Close()
		pub = redisPub
		log.Info().Str("addr", cfg.RedisAddr).Str("stream", cfg.RedisStream).Msg("Publishing matches to Redis stream")
	}

	notifier := notify.NewNotifier(telegram, subscriberStore, pub)

	// Scrapers for the configured search sources
	fetcher := helpers.NewFetcher(cfg.FetchTimeout)
	factory := func(url string) scraper.Scraper {
		return scraper.NewOLXScraper(url, cfg.BaseURL, fetcher, cacheSvc, cfg.RateLimitBlock)
	}
	scrapers := make([]scraper.Scraper, 0, len(cfg.SearchURLs))
	for _, url := range cfg.SearchURLs {
		scrapers = append(scrapers, factory(url))
	}

	// Create and start the poll worker
	w := worker.NewWorker(ctx, scrapers, factory, seenStore, filt, notifier, cfg.PollInterval)
	w.Start()
	defer w.Stop()

	// Command bot
	commandBot := bot.New(telegram, subscriberStore, seenStore, w)
	go commandBot.Run(ctx)

	// Status server
	statusServer := server.New(seenStore, subscriberStore, w)
	go func() {
		if err := statusServer.Start(cfg.StatusAddr); err != nil {
			log.Error().Err(err).Msg("Status server exited")
		}
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	cancel()

	log.Info().Msg("Shutting down gracefully...")
}
