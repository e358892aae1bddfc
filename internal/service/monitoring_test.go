package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/models"
)

func TestReportFailureRecordsErrorLog(t *testing.T) {
	db := newTestDB(t)
	m := NewMonitoringService(db, zap.NewNop())

	m.ReportFailure(context.Background(), "u1", "rewrite", errors.New("model timeout"), map[string]any{"run_id": "r1"})

	logs, err := m.GetRecentErrors(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, LevelWarn, logs[0].Level)
	assert.Equal(t, "pipeline", logs[0].Source)
	assert.Equal(t, "Candidate failed at rewrite", logs[0].Title)
	assert.Equal(t, "model timeout", logs[0].Message)
	assert.JSONEq(t, `{"run_id":"r1"}`, logs[0].Context)
}

func TestCleanupOldData(t *testing.T) {
	db := newTestDB(t)
	m := NewMonitoringService(db, zap.NewNop())
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -100)
	require.NoError(t, db.Create(&models.ErrorLog{Level: LevelError, Source: "cron", Title: "old", Message: "m", CreatedAt: old}).Error)
	require.NoError(t, db.Create(&models.ErrorLog{Level: LevelError, Source: "cron", Title: "new", Message: "m"}).Error)
	require.NoError(t, db.Create(&models.ScheduleExecution{ScheduleID: 1, UserID: "u1", ExecutedAt: old, Status: models.ExecutionSuccess}).Error)
	require.NoError(t, db.Create(&models.ScheduleExecution{ScheduleID: 1, UserID: "u1", ExecutedAt: time.Now().UTC(), Status: models.ExecutionSuccess}).Error)

	require.NoError(t, m.CleanupOldData(ctx, 90))

	var logs, executions int64
	require.NoError(t, db.Model(&models.ErrorLog{}).Count(&logs).Error)
	require.NoError(t, db.Model(&models.ScheduleExecution{}).Count(&executions).Error)
	assert.Equal(t, int64(1), logs)
	assert.Equal(t, int64(1), executions)
}
