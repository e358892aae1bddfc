package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
)

type countingChecker struct {
	calls atomic.Int32
}

func (c *countingChecker) RunHourlyCheck(context.Context, time.Time) (*CronSummary, error) {
	c.calls.Add(1)
	return &CronSummary{}, nil
}

func TestSchedulerDisabled(t *testing.T) {
	checker := &countingChecker{}
	s := NewScheduler(&config.SchedulerConfig{Enabled: false}, zap.NewNop(), checker)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	assert.Zero(t, checker.calls.Load())
}

func TestSchedulerRunsChecks(t *testing.T) {
	checker := &countingChecker{}
	s := NewScheduler(&config.SchedulerConfig{Enabled: true, CheckInterval: "10ms"}, zap.NewNop(), checker)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return checker.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerInvalidInterval(t *testing.T) {
	s := NewScheduler(&config.SchedulerConfig{Enabled: true, CheckInterval: "hourly"}, zap.NewNop(), &countingChecker{})
	assert.Error(t, s.Start(context.Background()))
}
