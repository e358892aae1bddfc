package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/internal/service/pipeline"
	"github.com/ifuryst/museos/internal/service/store"
)

const (
	CronStatusSkipped = "skipped"
	CronStatusSuccess = "success"
	CronStatusFailed  = "failed"
)

// ScheduleStore is the persistence the hourly check needs.
type ScheduleStore interface {
	ListEnabledSchedules(ctx context.Context) ([]models.ScheduleConfig, error)
	HasExecutionSince(ctx context.Context, scheduleID uint, since time.Time) (bool, error)
	CreateExecution(ctx context.Context, e *models.ScheduleExecution) error
	FinishExecution(ctx context.Context, e *models.ScheduleExecution) error
	MarkScheduleRun(ctx context.Context, scheduleID uint, at time.Time) error
}

type PipelineRunner interface {
	Run(ctx context.Context, req pipeline.Request) *pipeline.Result
}

type ErrorRecorder interface {
	RecordError(ctx context.Context, level, source, title, message string, options ...ErrorLogOption) error
}

type CronResult struct {
	ScheduleID     uint   `json:"schedule_id"`
	UserID         string `json:"user_id"`
	Status         string `json:"status"`
	PostsGenerated int    `json:"posts_generated"`
	Error          string `json:"error,omitempty"`
}

// CronSummary is the response of one hourly check. Checked counts enabled
// schedules, Triggered those whose pipeline actually ran.
type CronSummary struct {
	Checked   int          `json:"checked"`
	Triggered int          `json:"triggered"`
	Results   []CronResult `json:"results"`
}

// CronService is the hourly check. It keeps no state between invocations:
// everything it needs to stay idempotent lives in schedule executions.
type CronService struct {
	store    ScheduleStore
	pipeline PipelineRunner
	recorder ErrorRecorder
	logger   *zap.Logger
}

func NewCronService(store ScheduleStore, runner PipelineRunner, recorder ErrorRecorder, logger *zap.Logger) *CronService {
	return &CronService{
		store:    store,
		pipeline: runner,
		recorder: recorder,
		logger:   logger,
	}
}

// RunHourlyCheck runs the pipeline for every enabled schedule whose hour
// matches now in its own timezone and that has no execution in the last
// hour. One schedule failing never stops the others.
func (c *CronService) RunHourlyCheck(ctx context.Context, now time.Time) (*CronSummary, error) {
	schedules, err := c.store.ListEnabledSchedules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	now = now.UTC()

	summary := &CronSummary{Results: []CronResult{}}
	for _, sc := range schedules {
		summary.Checked++

		due, err := isDue(sc, now)
		if err != nil {
			summary.Results = append(summary.Results, c.fail(ctx, sc, nil, err))
			continue
		}
		if !due {
			continue
		}

		recent, err := c.store.HasExecutionSince(ctx, sc.ID, now.Add(-time.Hour))
		if err != nil {
			summary.Results = append(summary.Results, c.fail(ctx, sc, nil, fmt.Errorf("failed to check executions: %w", err)))
			continue
		}
		if recent {
			summary.Results = append(summary.Results, skipped(sc))
			continue
		}

		result := c.execute(ctx, sc, now)
		if result.Status != CronStatusSkipped {
			summary.Triggered++
		}
		summary.Results = append(summary.Results, result)
	}

	cronChecksTotal.Inc()
	cronTriggeredTotal.Add(float64(summary.Triggered))
	c.logger.Info("Hourly check completed",
		zap.Int("checked", summary.Checked),
		zap.Int("triggered", summary.Triggered))

	return summary, nil
}

func (c *CronService) execute(ctx context.Context, sc models.ScheduleConfig, now time.Time) CronResult {
	exec := &models.ScheduleExecution{
		ScheduleID: sc.ID,
		UserID:     sc.UserID,
		ExecutedAt: now.UTC(),
		Status:     models.ExecutionPending,
	}
	if err := c.store.CreateExecution(ctx, exec); err != nil {
		// Another trigger claimed this hour between the check and the insert.
		if errors.Is(err, store.ErrDuplicate) {
			return skipped(sc)
		}
		return c.fail(ctx, sc, nil, err)
	}

	logger := c.logger.With(zap.Uint("schedule_id", sc.ID), zap.String("user_id", sc.UserID))
	logger.Info("Running scheduled generation", zap.Int("post_count", sc.PostCount))

	result := c.pipeline.Run(ctx, pipeline.Request{
		UserID:  sc.UserID,
		Source:  sc.SourceMode,
		Count:   sc.PostCount,
		Trigger: pipeline.TriggerSchedule,
	})
	if result.Status != pipeline.StatusSuccess {
		err := result.Err
		if err == nil {
			err = errors.New(result.Message)
		}
		failed := c.fail(ctx, sc, exec, err)
		c.markRun(ctx, sc, now, logger)
		return failed
	}

	completed := time.Now().UTC()
	exec.Status = models.ExecutionSuccess
	exec.PostsGenerated = len(result.Data)
	exec.CompletedAt = &completed
	if err := c.store.FinishExecution(ctx, exec); err != nil {
		logger.Error("Failed to finish execution", zap.Error(err))
	}
	c.markRun(ctx, sc, now, logger)

	return CronResult{
		ScheduleID:     sc.ID,
		UserID:         sc.UserID,
		Status:         CronStatusSuccess,
		PostsGenerated: exec.PostsGenerated,
	}
}

// markRun sets the schedule's last run marker, whatever the outcome.
func (c *CronService) markRun(ctx context.Context, sc models.ScheduleConfig, now time.Time, logger *zap.Logger) {
	if err := c.store.MarkScheduleRun(ctx, sc.ID, now.UTC()); err != nil {
		logger.Error("Failed to mark schedule run", zap.Error(err))
	}
}

func skipped(sc models.ScheduleConfig) CronResult {
	return CronResult{
		ScheduleID: sc.ID,
		UserID:     sc.UserID,
		Status:     CronStatusSkipped,
		Error:      "already executed within the last hour",
	}
}

// fail records err for sc and closes exec when one was opened.
func (c *CronService) fail(ctx context.Context, sc models.ScheduleConfig, exec *models.ScheduleExecution, err error) CronResult {
	c.logger.Error("Scheduled generation failed",
		zap.Uint("schedule_id", sc.ID),
		zap.String("user_id", sc.UserID),
		zap.Error(err))
	cronFailuresTotal.Inc()

	if exec != nil {
		completed := time.Now().UTC()
		exec.Status = models.ExecutionFailed
		exec.Error = err.Error()
		exec.CompletedAt = &completed
		if finErr := c.store.FinishExecution(ctx, exec); finErr != nil {
			c.logger.Error("Failed to finish execution", zap.Error(finErr))
		}
	}

	if c.recorder != nil {
		if recErr := c.recorder.RecordError(ctx, LevelError, "cron", "Scheduled generation failed", err.Error(),
			WithUser(sc.UserID), WithSchedule(sc.ID)); recErr != nil {
			c.logger.Error("Failed to record error log", zap.Error(recErr))
		}
	}

	return CronResult{
		ScheduleID: sc.ID,
		UserID:     sc.UserID,
		Status:     CronStatusFailed,
		Error:      err.Error(),
	}
}

// isDue reports whether the hour of sc.TimeOfDay equals the hour of now in
// the schedule's timezone. Minutes are ignored.
func isDue(sc models.ScheduleConfig, now time.Time) (bool, error) {
	tz := sc.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return false, fmt.Errorf("invalid timezone %q: %w", sc.Timezone, err)
	}

	hour, err := ParseHour(sc.TimeOfDay)
	if err != nil {
		return false, err
	}

	return now.In(loc).Hour() == hour, nil
}

// ParseHour returns the hour of an HH:MM time of day.
func ParseHour(timeOfDay string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(timeOfDay), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time of day %q", timeOfDay)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time of day %q", timeOfDay)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q", timeOfDay)
	}
	return hour, nil
}
