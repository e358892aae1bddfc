// Package store is the gorm-backed persistence layer. Every user-facing
// query is scoped by user id.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ifuryst/museos/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// duplicate maps unique violations to ErrDuplicate, also for drivers that
// do not translate errors.
func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
		return ErrDuplicate
	}
	return err
}

// Profiles

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// SaveProfile creates the profile for p.UserID or replaces its settings.
func (s *Store) SaveProfile(ctx context.Context, p *models.Profile) error {
	existing, err := s.GetProfile(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// Creators

func (s *Store) ListCreators(ctx context.Context, userID string) ([]models.Creator, error) {
	creators := []models.Creator{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&creators).Error
	return creators, err
}

func (s *Store) ListCreatorURLs(ctx context.Context, userID string) ([]string, error) {
	var urls []string
	err := s.db.WithContext(ctx).Model(&models.Creator{}).
		Where("user_id = ?", userID).
		Order("id asc").
		Pluck("profile_url", &urls).Error
	return urls, err
}

func (s *Store) CreateCreator(ctx context.Context, c *models.Creator) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create creator: %w", duplicate(err))
	}
	return nil
}

func (s *Store) DeleteCreator(ctx context.Context, userID string, id uint) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.Creator{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete creator: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Generated posts

func (s *Store) CreateGeneratedPost(ctx context.Context, p *models.GeneratedPost) error {
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create generated post: %w", err)
	}
	return nil
}

// ListPosts returns the user's posts, newest first. An empty status lists
// all of them.
func (s *Store) ListPosts(ctx context.Context, userID string, status models.PostStatus) ([]models.GeneratedPost, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	posts := []models.GeneratedPost{}
	err := query.Order("created_at desc, id desc").Find(&posts).Error
	return posts, err
}

func (s *Store) GetPost(ctx context.Context, userID string, id uint) (*models.GeneratedPost, error) {
	var post models.GeneratedPost
	if err := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// UpdatePostStatus is the only mutation allowed on a generated post.
func (s *Store) UpdatePostStatus(ctx context.Context, userID string, id uint, status models.PostStatus) (*models.GeneratedPost, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid post status %q", status)
	}

	result := s.db.WithContext(ctx).Model(&models.GeneratedPost{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update post status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetPost(ctx, userID, id)
}

func (s *Store) DeletePost(ctx context.Context, userID string, id uint) error {
	result := s.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Delete(&models.GeneratedPost{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Schedules

func (s *Store) GetSchedule(ctx context.Context, userID string) (*models.ScheduleConfig, error) {
	var schedule models.ScheduleConfig
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&schedule).Error; err != nil {
		return nil, notFound(err)
	}
	return &schedule, nil
}

// SaveSchedule creates or replaces the user's schedule. LastRunAt is kept.
func (s *Store) SaveSchedule(ctx context.Context, sc *models.ScheduleConfig) error {
	existing, err := s.GetSchedule(ctx, sc.UserID)
	if errors.Is(err, ErrNotFound) {
		if err := s.db.WithContext(ctx).Create(sc).Error; err != nil {
			return fmt.Errorf("failed to create schedule: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	sc.ID = existing.ID
	sc.CreatedAt = existing.CreatedAt
	sc.LastRunAt = existing.LastRunAt
	// Save writes zero values too, so disabling a schedule sticks.
	if err := s.db.WithContext(ctx).Save(sc).Error; err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

func (s *Store) ListEnabledSchedules(ctx context.Context) ([]models.ScheduleConfig, error) {
	var schedules []models.ScheduleConfig
	err := s.db.WithContext(ctx).Where("enabled = ?", true).Order("id asc").Find(&schedules).Error
	return schedules, err
}

func (s *Store) MarkScheduleRun(ctx context.Context, scheduleID uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.ScheduleConfig{}).
		Where("id = ?", scheduleID).
		Update("last_run_at", at).Error
}

// Schedule executions

// HasExecutionSince reports whether the schedule already has an execution
// at or after since.
func (s *Store) HasExecutionSince(ctx context.Context, scheduleID uint, since time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ScheduleExecution{}).
		Where("schedule_id = ? AND executed_at >= ?", scheduleID, since).
		Count(&count).Error
	return count > 0, err
}

// CreateExecution claims the execution slot of e. A second execution of
// the same schedule in the same hour fails with ErrDuplicate.
func (s *Store) CreateExecution(ctx context.Context, e *models.ScheduleExecution) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create execution: %w", duplicate(err))
	}
	return nil
}

// FinishExecution records the outcome of e.
func (s *Store) FinishExecution(ctx context.Context, e *models.ScheduleExecution) error {
	return s.db.WithContext(ctx).Model(e).Updates(map[string]any{
		"status":          e.Status,
		"posts_generated": e.PostsGenerated,
		"error":           e.Error,
		"completed_at":    e.CompletedAt,
	}).Error
}

func (s *Store) ListExecutions(ctx context.Context, userID string, limit int) ([]models.ScheduleExecution, error) {
	if limit <= 0 {
		limit = 20
	}
	executions := []models.ScheduleExecution{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("executed_at desc, id desc").
		Limit(limit).
		Find(&executions).Error
	return executions, err
}
