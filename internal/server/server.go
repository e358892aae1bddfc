package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ifuryst/museos/internal/config"
	"github.com/ifuryst/museos/internal/service"
	"github.com/ifuryst/museos/internal/service/generator"
	"github.com/ifuryst/museos/internal/service/llm"
	"github.com/ifuryst/museos/internal/service/pipeline"
	"github.com/ifuryst/museos/internal/service/scraper"
	"github.com/ifuryst/museos/internal/service/store"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Store      *store.Store
	Pipeline   service.PipelineRunner
	Cron       *service.CronService
	Auth       *service.AuthService
	Monitoring *service.MonitoringService
	Scheduler  *service.Scheduler
	Retention  *service.RetentionWorker
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return New(cfg, db, logger)
}

// New wires every service on top of an open database.
func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.Server.Mode)

	completer, err := llm.NewProvider(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize language model: %w", err)
	}

	st := store.New(db)
	monitoring := service.NewMonitoringService(db, logger)
	orchestrator := pipeline.New(cfg.Pipeline, scraper.New(cfg.Scraper, logger), st, pipeline.Stages{
		Expander:  generator.NewExpander(completer, logger),
		Scorer:    generator.NewScorer(completer, logger),
		Extractor: generator.NewExtractor(completer, logger),
		Rewriter:  generator.NewRewriter(completer, logger),
	}, logger, pipeline.WithReporter(monitoring))
	cron := service.NewCronService(st, orchestrator, monitoring, logger)

	router := gin.New()

	srv := &Server{
		Config:     cfg,
		DB:         db,
		Router:     router,
		Logger:     logger,
		Store:      st,
		Pipeline:   orchestrator,
		Cron:       cron,
		Auth:       service.NewAuthService(logger, cfg.Auth.JWTSecret, cfg.Auth.CronSecret),
		Monitoring: monitoring,
		Scheduler:  service.NewScheduler(&cfg.Scheduler, logger, cron),
		Retention:  service.NewRetentionWorker(monitoring, logger, 24*time.Hour, cfg.Scheduler.RetentionDays),
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.handleHealth)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.Router.Group("/api")
	{
		api.GET("/cron", s.Auth.CronMiddleware(), s.handleCron)

		user := api.Group("", s.Auth.AuthMiddleware())
		{
			user.POST("/generate", s.handleGenerate)

			user.GET("/posts", s.handleListPosts)
			user.PATCH("/posts/:id/status", s.handleUpdatePostStatus)
			user.DELETE("/posts/:id", s.handleDeletePost)

			user.GET("/profile", s.handleGetProfile)
			user.PUT("/profile", s.handlePutProfile)

			user.GET("/creators", s.handleListCreators)
			user.POST("/creators", s.handleCreateCreator)
			user.DELETE("/creators/:id", s.handleDeleteCreator)

			user.GET("/schedule", s.handleGetSchedule)
			user.PUT("/schedule", s.handlePutSchedule)
			user.GET("/schedule/executions", s.handleListExecutions)

			user.GET("/errors", s.handleListErrors)
		}
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Error("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"time":   time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) Start(ctx context.Context) error {
	// Start background workers
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	s.Retention.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop background workers first
	s.Scheduler.Stop()
	s.Retention.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
