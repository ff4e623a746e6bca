package worker

import (
	"context"
	"time"

	"sjsage522/promowatch/helpers"
	"sjsage522/promowatch/internal/reconciler"
	"sjsage522/promowatch/logger"
)

// Runner performs one reconciliation pass
type Runner interface {
	Run(ctx context.Context) (reconciler.Result, error)
}

// Worker drives the reconciler, either once or on a fixed interval
type Worker struct {
	runner      Runner
	journal     helpers.LoggerInterface
	runInterval time.Duration
	log         *logger.Logger
}

// NewWorker creates a new worker. A zero runInterval means a single run.
func NewWorker(
	runner Runner,
	journal helpers.LoggerInterface,
	runInterval time.Duration,
	log *logger.Logger,
) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		runner:      runner,
		journal:     journal,
		runInterval: runInterval,
		log:         log,
	}
}

// Start runs the reconciler until ctx is cancelled, or once when no
// interval is set. Runs never overlap. The error of the last run is returned.
func (w *Worker) Start(ctx context.Context) error {
	err := w.runOnce(ctx)
	if w.runInterval <= 0 {
		return err
	}

	ticker := time.NewTicker(w.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return nil
		case <-ticker.C:
			err = w.runOnce(ctx)
		}
	}
}

// runOnce runs one pass, logging its duration and journaling failures
func (w *Worker) runOnce(ctx context.Context) error {
	start := time.Now()
	res, err := w.runner.Run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		w.journal.LogError("reconciler", err)
	}

	w.log.Info().
		Int("found", res.Found).
		Int("new", res.New).
		Int("notified", res.Notified).
		Bool("first_run", res.FirstRun).
		Dur("elapsed", elapsed).
		Msg("Run finished")
	w.journal.LogInfo("run took %s", elapsed)

	return err
}
