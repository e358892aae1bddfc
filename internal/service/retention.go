package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RetentionWorker periodically deletes old error logs and schedule
// executions. The ticker only exists between Start and Stop.
type RetentionWorker struct {
	monitoringService *MonitoringService
	logger            *zap.Logger
	interval          time.Duration
	daysToKeep        int

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

func NewRetentionWorker(monitoringService *MonitoringService, logger *zap.Logger, interval time.Duration, daysToKeep int) *RetentionWorker {
	return &RetentionWorker{
		monitoringService: monitoringService,
		logger:            logger,
		interval:          interval,
		daysToKeep:        daysToKeep,
		done:              make(chan struct{}),
	}
}

func (r *RetentionWorker) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker != nil || r.stopped() {
		return
	}
	if r.interval <= 0 {
		r.interval = 24 * time.Hour
	}
	r.ticker = time.NewTicker(r.interval)
	ticks := r.ticker.C

	go func() {
		r.logger.Info("Starting retention worker", zap.Int("days_to_keep", r.daysToKeep))
		for {
			select {
			case <-r.done:
				r.logger.Info("Retention worker stopped")
				return
			case <-ctx.Done():
				r.logger.Info("Retention worker stopped due to context cancellation")
				return
			case <-ticks:
				r.cleanup(ctx)
			}
		}
	}()
}

// Stop is safe to call more than once and without a prior Start.
func (r *RetentionWorker) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker != nil {
		r.ticker.Stop()
	}
	if !r.stopped() {
		close(r.done)
	}
}

func (r *RetentionWorker) stopped() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *RetentionWorker) cleanup(ctx context.Context) {
	if r.daysToKeep <= 0 {
		return
	}
	if err := r.monitoringService.CleanupOldData(ctx, r.daysToKeep); err != nil {
		r.logger.Error("Failed to cleanup old data", zap.Error(err))
		return
	}
	r.logger.Debug("Old data cleaned up")
}
