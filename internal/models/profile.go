package models

import "time"

// Profile holds a user's generation settings: who they write as and what
// they want to write about.
type Profile struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	UserID            string      `gorm:"uniqueIndex;not null;size:64" json:"user_id"`
	FullName          string      `gorm:"size:255" json:"full_name"`
	VoiceInstructions string      `gorm:"type:text" json:"voice_instructions"`
	Language          string      `gorm:"size:32;default:'English'" json:"language"`
	Keywords          StringArray `gorm:"type:text" json:"keywords"`
	CreatedAt         time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// Creator is a LinkedIn profile the user monitors as a source.
type Creator struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"not null;size:64;uniqueIndex:idx_creator_user_url" json:"user_id"`
	ProfileURL string    `gorm:"not null;size:500;uniqueIndex:idx_creator_user_url" json:"profile_url"`
	Name       string    `gorm:"size:255" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
