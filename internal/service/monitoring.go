package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ifuryst/museos/internal/models"
)

const (
	LevelError = "ERROR"
	LevelWarn  = "WARN"
)

// MonitoringService persists absorbed failures as ErrorLog rows.
type MonitoringService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewMonitoringService(db *gorm.DB, logger *zap.Logger) *MonitoringService {
	return &MonitoringService{
		db:     db,
		logger: logger,
	}
}

func (m *MonitoringService) RecordError(ctx context.Context, level, source, title, message string, options ...ErrorLogOption) error {
	errorLog := &models.ErrorLog{
		Level:   level,
		Source:  source,
		Title:   title,
		Message: message,
	}

	for _, option := range options {
		option(errorLog)
	}

	return m.db.WithContext(ctx).Create(errorLog).Error
}

// ReportFailure records a candidate the pipeline dropped. Recording errors
// are only logged.
func (m *MonitoringService) ReportFailure(ctx context.Context, userID, stage string, err error, details map[string]any) {
	if recErr := m.RecordError(ctx, LevelWarn, "pipeline", "Candidate failed at "+stage, err.Error(),
		WithUser(userID), WithContext(details)); recErr != nil {
		m.logger.Error("Failed to record error log", zap.Error(recErr))
	}
}

type ErrorLogOption func(*models.ErrorLog)

func WithUser(userID string) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.UserID = userID
	}
}

func WithSchedule(scheduleID uint) ErrorLogOption {
	return func(e *models.ErrorLog) {
		e.ScheduleID = &scheduleID
	}
}

func WithContext(context map[string]any) ErrorLogOption {
	return func(e *models.ErrorLog) {
		if len(context) == 0 {
			return
		}
		if contextBytes, err := json.Marshal(context); err == nil {
			e.Context = string(contextBytes)
		}
	}
}

func (m *MonitoringService) GetRecentErrors(ctx context.Context, userID string, limit int) ([]models.ErrorLog, error) {
	logs := []models.ErrorLog{}
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// CleanupOldData removes error logs and schedule executions older than
// daysToKeep days.
func (m *MonitoringService) CleanupOldData(ctx context.Context, daysToKeep int) error {
	cutoffDate := time.Now().UTC().AddDate(0, 0, -daysToKeep)

	if err := m.db.WithContext(ctx).Where("created_at < ?", cutoffDate).Delete(&models.ErrorLog{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup error logs: %w", err)
	}

	if err := m.db.WithContext(ctx).Where("executed_at < ?", cutoffDate).Delete(&models.ScheduleExecution{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup schedule executions: %w", err)
	}

	return nil
}
