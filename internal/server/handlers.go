package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/internal/service"
	"github.com/ifuryst/museos/internal/service/pipeline"
	"github.com/ifuryst/museos/internal/service/store"
	"github.com/ifuryst/museos/pkg/util"
)

type generateRequest struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type statusRequest struct {
	Status models.PostStatus `json:"status" binding:"required"`
}

type profileRequest struct {
	FullName          string          `json:"full_name"`
	VoiceInstructions string          `json:"voice_instructions"`
	Language          string          `json:"language"`
	Keywords          json.RawMessage `json:"keywords"`
}

type creatorRequest struct {
	ProfileURL string `json:"profile_url" binding:"required"`
	Name       string `json:"name"`
}

type scheduleRequest struct {
	Enabled    bool   `json:"enabled"`
	TimeOfDay  string `json:"time_of_day"`
	Timezone   string `json:"timezone"`
	SourceMode string `json:"source_mode"`
	PostCount  int    `json:"post_count"`
}

func userID(c *gin.Context) string {
	return c.GetString(service.ContextUserID)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// bindOptionalJSON binds the body into v; an empty body keeps v's defaults.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": pipeline.StatusError, "error": err.Error()})
		return
	}

	source, err := pipeline.ParseSource(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": pipeline.StatusError, "error": err.Error()})
		return
	}

	result := s.Pipeline.Run(c.Request.Context(), pipeline.Request{
		UserID:  userID(c),
		Source:  source,
		Count:   req.Count,
		Trigger: pipeline.TriggerManual,
	})

	switch {
	case result.Status == pipeline.StatusSuccess:
		c.JSON(http.StatusOK, result)
	case errors.Is(result.Err, pipeline.ErrConfiguration):
		c.JSON(http.StatusBadRequest, result)
	default:
		s.Logger.Error("Generation failed", zap.String("user_id", userID(c)), zap.Error(result.Err))
		c.JSON(http.StatusInternalServerError, result)
	}
}

func (s *Server) handleCron(c *gin.Context) {
	summary, err := s.Cron.RunHourlyCheck(c.Request.Context(), time.Now())
	if err != nil {
		s.Logger.Error("Hourly check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Hourly check failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleListPosts(c *gin.Context) {
	status := models.PostStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	posts, err := s.Store.ListPosts(c.Request.Context(), userID(c), status)
	if err != nil {
		s.Logger.Error("Failed to list posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (s *Server) handleUpdatePostStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of draft, approved, posted, rejected"})
		return
	}

	post, err := s.Store.UpdatePostStatus(c.Request.Context(), userID(c), id, req.Status)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to update post status", zap.Uint("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

func (s *Server) handleDeletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := s.Store.DeletePost(c.Request.Context(), userID(c), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to delete post", zap.Uint("post_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	profile, err := s.Store.GetProfile(c.Request.Context(), userID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to get profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (s *Server) handlePutProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keywords, err := parseKeywords(req.Keywords)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keywords must be a list or a comma separated string"})
		return
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "English"
	}

	profile := &models.Profile{
		UserID:            userID(c),
		FullName:          strings.TrimSpace(req.FullName),
		VoiceInstructions: strings.TrimSpace(req.VoiceInstructions),
		Language:          language,
		Keywords:          keywords,
	}
	if err := s.Store.SaveProfile(c.Request.Context(), profile); err != nil {
		s.Logger.Error("Failed to save profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// parseKeywords accepts either a JSON list or a single comma separated
// string.
func parseKeywords(raw json.RawMessage) (models.StringArray, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return models.StringArray{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return util.UniqueFold(util.CleanList(list)), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, err
	}
	return util.ParseList(text), nil
}

func (s *Server) handleListCreators(c *gin.Context) {
	creators, err := s.Store.ListCreators(c.Request.Context(), userID(c))
	if err != nil {
		s.Logger.Error("Failed to list creators", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get creators"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"creators": creators})
}

func (s *Server) handleCreateCreator(c *gin.Context) {
	var req creatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profileURL := strings.TrimSpace(req.ProfileURL)
	if !strings.HasPrefix(profileURL, "https://") && !strings.HasPrefix(profileURL, "http://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_url must be an http(s) URL"})
		return
	}

	creator := &models.Creator{
		UserID:     userID(c),
		ProfileURL: strings.TrimRight(profileURL, "/"),
		Name:       strings.TrimSpace(req.Name),
	}
	err := s.Store.CreateCreator(c.Request.Context(), creator)
	if errors.Is(err, store.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": "Creator already added"})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to create creator", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add creator"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"creator": creator})
}

func (s *Server) handleDeleteCreator(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := s.Store.DeleteCreator(c.Request.Context(), userID(c), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found"})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to delete creator", zap.Uint("creator_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete creator"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Creator deleted"})
}

// handleGetSchedule returns the stored schedule, or the disabled default
// when the user never saved one.
func (s *Server) handleGetSchedule(c *gin.Context) {
	schedule, err := s.Store.GetSchedule(c.Request.Context(), userID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"schedule": models.ScheduleConfig{
			UserID:     userID(c),
			TimeOfDay:  "09:00",
			Timezone:   "UTC",
			SourceMode: models.SourceTypeKeyword,
			PostCount:  s.Config.Pipeline.DefaultCount,
		}})
		return
	}
	if err != nil {
		s.Logger.Error("Failed to get schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (s *Server) handlePutSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := s.scheduleFromRequest(userID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Store.SaveSchedule(c.Request.Context(), schedule); err != nil {
		s.Logger.Error("Failed to save schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

func (s *Server) scheduleFromRequest(userID string, req scheduleRequest) (*models.ScheduleConfig, error) {
	timeOfDay := strings.TrimSpace(req.TimeOfDay)
	if timeOfDay == "" {
		timeOfDay = "09:00"
	}
	if _, err := service.ParseHour(timeOfDay); err != nil {
		return nil, err
	}

	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, errors.New("timezone must be an IANA name such as Europe/Berlin")
	}

	source, err := pipeline.ParseSource(req.SourceMode)
	if err != nil {
		return nil, err
	}

	count := req.PostCount
	if count == 0 {
		count = s.Config.Pipeline.DefaultCount
	}
	if count < 1 || count > s.Config.Pipeline.MaxCount {
		return nil, errors.New("post_count is out of range")
	}

	return &models.ScheduleConfig{
		UserID:     userID,
		Enabled:    req.Enabled,
		TimeOfDay:  timeOfDay,
		Timezone:   timezone,
		SourceMode: source,
		PostCount:  count,
	}, nil
}

func (s *Server) handleListExecutions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	executions, err := s.Store.ListExecutions(c.Request.Context(), userID(c), limit)
	if err != nil {
		s.Logger.Error("Failed to list executions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get executions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": executions})
}

func (s *Server) handleListErrors(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	logs, err := s.Monitoring.GetRecentErrors(c.Request.Context(), userID(c), limit)
	if err != nil {
		s.Logger.Error("Failed to list error logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get error logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"errors": logs})
}
