package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduleConfig describes when the hourly trigger should run the pipeline
// for a user. Only the hour of TimeOfDay is significant.
type ScheduleConfig struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     string     `gorm:"uniqueIndex;not null;size:64" json:"user_id"`
	Enabled    bool       `gorm:"default:false;index" json:"enabled"`
	TimeOfDay  string     `gorm:"size:5;not null;default:'09:00'" json:"time_of_day"` // HH:MM
	Timezone   string     `gorm:"size:64;not null;default:'UTC'" json:"timezone"`
	SourceMode SourceType `gorm:"size:20;not null;default:'keyword'" json:"source_mode"`
	PostCount  int        `gorm:"not null;default:3" json:"post_count"`
	LastRunAt  *time.Time `json:"last_run_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type ExecutionStatus string

const (
	ExecutionPending ExecutionStatus = "pending"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// ScheduleExecution is one triggered run of a schedule. Slot is the UTC
// hour of ExecutedAt; a schedule has at most one execution per slot.
type ScheduleExecution struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ScheduleID     uint            `gorm:"not null;index;uniqueIndex:idx_execution_schedule_slot" json:"schedule_id"`
	UserID         string          `gorm:"not null;size:64;index" json:"user_id"`
	ExecutedAt     time.Time       `gorm:"not null;index" json:"executed_at"`
	Slot           string          `gorm:"size:13;not null;uniqueIndex:idx_execution_schedule_slot" json:"-"`
	Status         ExecutionStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	PostsGenerated int             `gorm:"default:0" json:"posts_generated"`
	Error          string          `gorm:"type:text" json:"error,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at"`
}

// ExecutionSlot returns the hour bucket t falls into.
func ExecutionSlot(t time.Time) string {
	return t.UTC().Format("2006-01-02T15")
}

func (e *ScheduleExecution) BeforeCreate(*gorm.DB) error {
	if e.Slot == "" {
		e.Slot = ExecutionSlot(e.ExecutedAt)
	}
	return nil
}
