package reconciler

import (
	"context"
	"fmt"
	"time"

	"sjsage522/promowatch/helpers"
	"sjsage522/promowatch/internal/extractor"
	"sjsage522/promowatch/internal/store"
	"sjsage522/promowatch/logger"
)

const (
	excerptLength  = 100
	logTitleLength = 20
)

// Fetcher retrieves the page to reconcile
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Notifier pushes an alert for a newly seen promotion
type Notifier interface {
	Send(ctx context.Context, title, body, imageURL string)
}

// Result summarizes one run
type Result struct {
	Found    int
	New      int
	Notified int
	FirstRun bool
}

// Reconciler diffs the promotions on the page against the store and alerts
// on the ones it has never seen
type Reconciler struct {
	url       string
	fetcher   Fetcher
	extractor *extractor.Extractor
	store     store.Store
	notifier  Notifier
	now       func() time.Time
	log       *logger.Logger
}

// Option customizes a Reconciler
type Option func(*Reconciler)

// WithClock sets the clock used to stamp first-seen times
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// New creates a reconciler for the page at url
func New(url string, f Fetcher, e *extractor.Extractor, s store.Store, n Notifier, opts ...Option) *Reconciler {
	r := &Reconciler{
		url:       url,
		fetcher:   f,
		extractor: e,
		store:     s,
		notifier:  n,
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one fetch, extract, diff, notify and persist pass.
//
// A fetch failure aborts the run before the store is touched. A save failure
// is returned together with the Result; alerts already sent are not undone.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	var res Result

	if err := r.store.EnsureDir(); err != nil {
		r.log.Warn().Err(err).Msg("Cannot create data directory")
	}

	markup, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return res, fmt.Errorf("fetch %s: %w", r.url, err)
	}

	known, err := r.store.Load()
	if err != nil {
		r.log.Warn().Err(err).Msg("Store unreadable, treating as empty")
		known = store.Snapshot{}
	}
	res.FirstRun = len(known) == 0
	if res.FirstRun {
		r.log.Info().Msg("First run, recording baseline without notifications")
	}

	working := known.Clone()
	for promo := range r.extractor.Extract(markup) {
		res.Found++

		if _, seen := working[promo.ID]; seen {
			r.log.Debug().Str("title", helpers.Truncate(promo.Title, logTitleLength)).Msg("Already known")
			continue
		}

		r.log.Info().Str("title", promo.Title).Str("code", promo.Code).Msg("New promotion")
		if !res.FirstRun {
			r.notifier.Send(ctx, promo.Title, alertBody(promo), promo.ImageURL)
			res.Notified++
		}

		working[promo.ID] = store.Entry{
			Title:     promo.Title,
			Code:      promo.Code,
			ImageURL:  promo.ImageURL,
			FirstSeen: r.now().Format(store.TimestampLayout),
		}
		res.New++
	}
	r.log.Info().Int("found", res.Found).Msg("Page parsed")

	if err := r.store.Save(working); err != nil {
		r.log.Error().Err(err).Msg("Failed to save store")
		return res, fmt.Errorf("save: %w", err)
	}

	r.log.Info().
		Int("new", res.New).
		Int("notified", res.Notified).
		Int("total", len(working)).
		Msg("Run complete")
	return res, nil
}

func alertBody(p extractor.Promotion) string {
	return fmt.Sprintf("Code: %s\n%s", p.Code, helpers.Truncate(p.Details, excerptLength))
}
