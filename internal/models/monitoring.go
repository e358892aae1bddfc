package models

import (
	"time"
)

// ErrorLog records failures that were absorbed instead of surfaced to the
// caller, so they stay visible after the request finished.
type ErrorLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Level      string    `gorm:"size:20;not null;index" json:"level"`   // ERROR, WARN, INFO
	Source     string    `gorm:"size:100;not null;index" json:"source"` // pipeline, cron, scraper
	UserID     string    `gorm:"size:64;index" json:"user_id"`
	ScheduleID *uint     `gorm:"index" json:"schedule_id"`
	Title      string    `gorm:"size:500;not null" json:"title"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Context    string    `gorm:"type:text" json:"context"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
