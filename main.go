package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/promowatch/config"
	"sjsage522/promowatch/helpers"
	"sjsage522/promowatch/internal/extractor"
	"sjsage522/promowatch/internal/fetcher"
	"sjsage522/promowatch/internal/notifier"
	"sjsage522/promowatch/internal/reconciler"
	"sjsage522/promowatch/internal/store"
	"sjsage522/promowatch/logger"
	"sjsage522/promowatch/services/cache"
	"sjsage522/promowatch/services/publisher"
	"sjsage522/promowatch/services/worker"

	"github.com/joho/godotenv"
)

func main() {
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

	log.Info().
		Str("environment", cfg.Environment).
		Str("target", cfg.TargetURL).
		Str("db_file", cfg.DBFile).
		Int("bark_endpoints", len(cfg.BarkURLs)).
		Dur("run_interval", cfg.RunInterval).
		Msg("Starting promotion monitor")
	if !cfg.IsProduction() {
		log.Debug().
			Interface("headers", cfg.Headers).
			Str("selectors_file", cfg.SelectorsFile).
			Str("memcache", cfg.MemcacheAddr).
			Str("redis", cfg.RedisAddr).
			Msg("Effective configuration")
	}

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	rec, err := newReconciler(cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build reconciler")
	}

	w := worker.NewWorker(rec, helpers.NewLogger(cfg.ErrorLogFile), cfg.RunInterval, logger.ForWorker())
	if err := w.Start(ctx); err != nil {
		// A failed run is already journaled; the process still exits cleanly
		log.Warn().Err(err).Msg("Run did not complete")
	}

	log.Info().Msg("Shutting down")
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices connects the optional services that are configured.
// An unreachable service is logged and left out.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{}

	if cfg.MemcacheAddr != "" {
		services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Rate limit guard using Memcache at %s", cfg.MemcacheAddr)
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLen,
		)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := redisPublisher.Ping(pingCtx); err != nil {
			logger.Warn("Redis at %s unreachable, stream endpoint disabled: %v", cfg.RedisAddr, err)
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
				cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		}
	}

	return services
}

// newReconciler wires the extraction, storage and notification pipeline
func newReconciler(cfg *config.Config, services *Services) (*reconciler.Reconciler, error) {
	selectors := extractor.LoadSelectorsWithFallback(cfg.SelectorsFile, logger.ForExtractor())
	ext, err := extractor.New(selectors, cfg.TargetURL, logger.ForExtractor())
	if err != nil {
		return nil, err
	}

	endpoints := notifier.BarkEndpoints(cfg.BarkURLs, cfg.NotifyTimeout)
	if services.Publisher != nil {
		endpoints = append(endpoints, notifier.NewStreamEndpoint(services.Publisher))
	}
	if len(endpoints) == 0 {
		logger.Warn("No notification endpoints configured, new promotions will only be logged")
	}

	return reconciler.New(
		cfg.TargetURL,
		fetcher.New(cfg, services.Cache, logger.ForFetcher()),
		ext,
		store.NewFileStore(cfg.DBFile, logger.ForStore()),
		notifier.New(cfg, logger.ForNotifier(), endpoints...),
		reconciler.WithLogger(logger.ForReconciler()),
	), nil
}
