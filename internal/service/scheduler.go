package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
)

// HourlyChecker is implemented by CronService.
type HourlyChecker interface {
	RunHourlyCheck(ctx context.Context, now time.Time) (*CronSummary, error)
}

// Scheduler runs the hourly check in-process for deployments without an
// external trigger.
type Scheduler struct {
	config  *config.SchedulerConfig
	logger  *zap.Logger
	checker HourlyChecker
	ticker  *time.Ticker
	stopCh  chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, checker HourlyChecker) *Scheduler {
	return &Scheduler{
		config:  cfg,
		logger:  logger,
		checker: checker,
		stopCh:  make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, waiting for external cron trigger")
		return nil
	}

	interval, err := time.ParseDuration(s.config.CheckInterval)
	if err != nil {
		s.logger.Error("Invalid check interval", zap.String("interval", s.config.CheckInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("check_interval", s.config.CheckInterval))

	s.ticker = time.NewTicker(interval)

	// Run first check immediately
	go func() {
		s.logger.Info("Running initial hourly check")
		s.runCheck(ctx)
	}()

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runCheck(ctx)
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runCheck(ctx context.Context) {
	start := time.Now()
	summary, err := s.checker.RunHourlyCheck(ctx, start)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Hourly check failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return
	}

	s.logger.Info("Hourly check finished",
		zap.Int("checked", summary.Checked),
		zap.Int("triggered", summary.Triggered),
		zap.Duration("duration", duration))
}
