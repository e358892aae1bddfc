package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SourceType string

const (
	SourceTypeKeyword SourceType = "keyword"
	SourceTypeCreator SourceType = "creator"
)

// PostStatus is the lifecycle of a generated draft. The pipeline only ever
// creates drafts; the other states are set by the user.
type PostStatus string

const (
	PostStatusDraft    PostStatus = "draft"
	PostStatusApproved PostStatus = "approved"
	PostStatusPosted   PostStatus = "posted"
	PostStatusRejected PostStatus = "rejected"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusApproved, PostStatusPosted, PostStatusRejected:
		return true
	}
	return false
}

// Engagement is the metric snapshot of the source post at scrape time.
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// CommentRatio is comments per like; likes below one count as one.
func (e Engagement) CommentRatio() float64 {
	return float64(e.Comments) / float64(max(e.Likes, 1))
}

// ShareRatio is shares per like; likes below one count as one.
func (e Engagement) ShareRatio() float64 {
	return float64(e.Shares) / float64(max(e.Likes, 1))
}

type PostMetadata struct {
	Blueprint  json.RawMessage `json:"blueprint,omitempty"`
	Engagement Engagement      `json:"engagement"`
	SourceURL  string          `json:"source_url,omitempty"`
	SourceID   string          `json:"source_id,omitempty"`
	RunID      string          `json:"run_id,omitempty"`
	Trigger    string          `json:"trigger,omitempty"`
}

type GeneratedPost struct {
	ID               uint                             `gorm:"primaryKey" json:"id"`
	UserID           string                           `gorm:"not null;size:64;index" json:"user_id"`
	OriginalContent  string                           `gorm:"type:text" json:"original_content"`
	GeneratedContent string                           `gorm:"type:text;not null" json:"generated_content"`
	SourceType       SourceType                       `gorm:"size:20;not null" json:"source_type"`
	Status           PostStatus                       `gorm:"size:20;default:'draft';index" json:"status"`
	Metadata         datatypes.JSONType[PostMetadata] `json:"metadata"`
	CreatedAt        time.Time                        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt                   `gorm:"index" json:"-"`
}
