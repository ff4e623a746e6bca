package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sjsage522/promowatch/config"
	"sjsage522/promowatch/helpers"
	"sjsage522/promowatch/logger"
	"sjsage522/promowatch/services/cache"

	apperrors "sjsage522/promowatch/pkg/errors"
)

const blockKey = "promowatch_rate_limited"

// Fetcher retrieves the target page. When a cache is configured it stops
// hitting the site for BlockTime after being rate limited.
type Fetcher struct {
	client    *http.Client
	headers   map[string]string
	cacheSvc  cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// New creates a fetcher from the configuration. cacheSvc may be nil.
func New(cfg *config.Config, cacheSvc cache.CacheService, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{
		client:    helpers.NewClient(cfg.FetchTimeout),
		headers:   cfg.Headers,
		cacheSvc:  cacheSvc,
		blockTime: cfg.RateLimitBlock,
		log:       log,
	}
}

// Fetch returns the page body as UTF-8 text
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.blocked() {
		return "", apperrors.NewRateLimit(url, f.blockTime)
	}

	f.log.Info().Str("url", url).Msg("Connecting to target page")
	body, err := helpers.FetchWithHeaders(ctx, f.client, url, f.headers)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
			f.block()
		}
		return "", err
	}
	f.log.Info().Str("url", url).Int("bytes", len(body)).Msg("Connection succeeded")

	return string(body), nil
}

// blocked reports whether a previous run recorded a rate limit that has not expired
func (f *Fetcher) blocked() bool {
	if f.cacheSvc == nil || f.blockTime <= 0 {
		return false
	}
	if _, err := f.cacheSvc.Get(blockKey); err != nil {
		if !cache.IsMiss(err) {
			f.log.Debug().Err(err).Msg("Rate limit guard unavailable")
		}
		return false
	}
	f.log.Warn().Dur("block_time", f.blockTime).Msg("Skipping fetch, target is rate limiting us")
	return true
}

func (f *Fetcher) block() {
	if f.cacheSvc == nil || f.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", f.blockTime/time.Second))
	if err := f.cacheSvc.Set(blockKey, value, f.blockTime); err != nil {
		f.log.Warn().Err(err).Msg("Failed to record rate limit block")
	}
}
