package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/setlistr/setlistr/internal/pkg/logger"
)

// Sweeper persists lapsed subscriptions as expired.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// SubscriptionSweeper runs a Sweeper on a cron schedule
type SubscriptionSweeper struct {
	sweeper  Sweeper
	schedule string
	timeout  time.Duration
	logger   *logger.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
	running   bool
}

// NewSubscriptionSweeper creates a new sweeper worker. schedule uses the
// six-field cron format with seconds.
func NewSubscriptionSweeper(sweeper Sweeper, schedule string, log *logger.Logger) (*SubscriptionSweeper, error) {
	if _, err := cron.NewParser(cronFields).Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule: %w", err)
	}
	return &SubscriptionSweeper{
		sweeper:  sweeper,
		schedule: schedule,
		timeout:  time.Minute,
		logger:   log,
	}, nil
}

const cronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// Start runs one sweep immediately and then schedules the rest
func (w *SubscriptionSweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("sweeper is already running")
	}

	w.scheduler = cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := w.scheduler.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sweeper: %w", err)
	}

	w.RunOnce(ctx)
	w.scheduler.Start()
	w.running = true

	w.logger.WithFields(map[string]interface{}{
		"schedule": w.schedule,
	}).Info("Subscription sweeper started")

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (w *SubscriptionSweeper) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	<-w.scheduler.Stop().Done()
	w.running = false
	w.logger.Info("Subscription sweeper stopped")
}

// RunOnce performs a single sweep. Failures are logged.
func (w *SubscriptionSweeper) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	n, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.logger.ErrorWithErr(err, "Subscription sweep failed")
		return
	}

	w.logger.WithFields(map[string]interface{}{
		"expired": n,
	}).Debug("Subscription sweep completed")
}
