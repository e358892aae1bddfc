// Package pipeline runs the fetch, score, extract, rewrite and persist loop
// that turns scraped posts into drafts for one user.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/ifuryst/museos/internal/config"
	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/internal/service/content"
	"github.com/ifuryst/museos/internal/service/store"
	"github.com/ifuryst/museos/pkg/util"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	TriggerManual   = "manual"
	TriggerSchedule = "schedule"

	maxBuffer = 5
	minBuffer = 2
)

// ErrConfiguration marks setup problems the user has to fix before the
// pipeline can run: missing profile, keywords or creators.
var ErrConfiguration = errors.New("pipeline is not configured")

var (
	errRewriteTooShort = errors.New("rewrite is too short")
	errPersist         = errors.New("failed to persist draft")
)

type Request struct {
	UserID  string
	Source  models.SourceType
	Count   int
	Trigger string
}

// Result is also the JSON body of the generate endpoint. Under-delivery is
// reported through PostsProcessed and Message, never through Status.
type Result struct {
	Status         string                 `json:"status"`
	Data           []models.GeneratedPost `json:"data"`
	PostsProcessed int                    `json:"postsProcessed"`
	Message        string                 `json:"message"`
	RunID          string                 `json:"runId,omitempty"`
	Err            error                  `json:"-"`
}

// ParseSource accepts the singular and plural spelling of a source type.
func ParseSource(s string) (models.SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keyword", "keywords", "":
		return models.SourceTypeKeyword, nil
	case "creator", "creators":
		return models.SourceTypeCreator, nil
	}
	return "", fmt.Errorf("unknown source %q", s)
}

type Option func(*Orchestrator)

func WithReporter(r Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

type Orchestrator struct {
	cfg      config.PipelineConfig
	source   Source
	store    Store
	stages   Stages
	reporter Reporter
	logger   *zap.Logger
}

func New(cfg config.PipelineConfig, source Source, st Store, stages Stages, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      withDefaults(cfg),
		source:   source,
		store:    st,
		stages:   stages,
		reporter: nopReporter{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func withDefaults(cfg config.PipelineConfig) config.PipelineConfig {
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 2
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = 10
	}
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = 3
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.MinSourceLength <= 0 {
		cfg.MinSourceLength = 80
	}
	if cfg.MinOutputLength <= 0 {
		cfg.MinOutputLength = 50
	}
	return cfg
}

// clampCount maps a requested count into [1, MaxCount]; zero means the
// configured default.
func (o *Orchestrator) clampCount(n int) int {
	if n == 0 {
		n = o.cfg.DefaultCount
	}
	return min(max(n, 1), o.cfg.MaxCount)
}

// Run executes one pipeline run. Configuration problems return an error
// result wrapping ErrConfiguration before anything is fetched; store
// failures during setup return an error result with the cause.
func (o *Orchestrator) Run(ctx context.Context, req Request) *Result {
	if req.Trigger == "" {
		req.Trigger = TriggerManual
	}
	if req.Source == "" {
		req.Source = models.SourceTypeKeyword
	}

	r := &run{
		id:     uuid.NewString(),
		req:    req,
		target: o.clampCount(req.Count),
		seen:   make(map[string]struct{}),
		saved:  []models.GeneratedPost{},
	}
	logger := o.logger.With(
		zap.String("run_id", r.id),
		zap.String("user_id", req.UserID),
		zap.String("source", string(req.Source)),
		zap.String("trigger", req.Trigger))

	start := time.Now()
	result := o.run(ctx, r, logger)
	result.RunID = r.id

	runsTotal.WithLabelValues(req.Trigger, result.Status).Inc()
	if result.Status == StatusSuccess {
		roundsPerRun.Observe(float64(r.round))
		postsGeneratedTotal.WithLabelValues(string(req.Source)).Add(float64(len(result.Data)))
		logger.Info("Pipeline run completed",
			zap.Int("target", r.target),
			zap.Int("generated", len(result.Data)),
			zap.Int("processed", r.processed),
			zap.Int("rounds", r.round),
			zap.Duration("duration", time.Since(start)))
	} else {
		logger.Warn("Pipeline run failed", zap.Error(result.Err))
	}

	return result
}

func (o *Orchestrator) run(ctx context.Context, r *run, logger *zap.Logger) *Result {
	profile, err := o.store.GetProfile(ctx, r.req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return errorResult(fmt.Errorf("%w: no profile found, configure your settings first", ErrConfiguration))
	}
	if err != nil {
		return errorResult(fmt.Errorf("failed to load profile: %w", err))
	}

	var fetch func(ctx context.Context, buffer int) []models.RawPost
	switch r.req.Source {
	case models.SourceTypeKeyword:
		keywords := util.CleanList(profile.Keywords)
		if len(keywords) == 0 {
			return errorResult(fmt.Errorf("%w: no keywords configured, add keywords in your settings", ErrConfiguration))
		}
		queries := o.stages.Expander.Expand(ctx, keywords)
		logger.Info("Search queries prepared", zap.Strings("queries", queries))
		fetch = func(ctx context.Context, buffer int) []models.RawPost {
			return o.source.FetchByKeywords(ctx, queries, buffer)
		}
	case models.SourceTypeCreator:
		urls, err := o.store.ListCreatorURLs(ctx, r.req.UserID)
		if err != nil {
			return errorResult(fmt.Errorf("failed to load creators: %w", err))
		}
		if len(urls) == 0 {
			return errorResult(fmt.Errorf("%w: no creators configured, add creators to monitor first", ErrConfiguration))
		}
		fetch = func(ctx context.Context, buffer int) []models.RawPost {
			return o.source.FetchByCreators(ctx, urls, buffer)
		}
	default:
		return errorResult(fmt.Errorf("%w: unknown source %q", ErrConfiguration, r.req.Source))
	}

	o.loop(ctx, r, profile, fetch, logger)

	return &Result{
		Status:         StatusSuccess,
		Data:           r.saved,
		PostsProcessed: r.processed,
		Message:        r.message(),
	}
}

func (o *Orchestrator) loop(ctx context.Context, r *run, profile *models.Profile, fetch func(context.Context, int) []models.RawPost, logger *zap.Logger) {
	voice := voiceOf(profile)

	for r.round < o.cfg.MaxRounds {
		remaining := r.remaining()
		if remaining <= 0 {
			return
		}
		if ctx.Err() != nil {
			logger.Warn("Pipeline run cancelled", zap.Int("round", r.round), zap.Error(ctx.Err()))
			return
		}
		r.round++

		buffer := min(maxBuffer, max(minBuffer, remaining*2))
		fresh := r.dedup(fetch(ctx, buffer))
		logger.Info("Fetched candidates",
			zap.Int("round", r.round),
			zap.Int("buffer", buffer),
			zap.Int("new", len(fresh)))
		if len(fresh) == 0 {
			return
		}

		selected := o.stages.Scorer.Select(ctx, fresh)
		if len(selected) == 0 {
			continue
		}

		candidates := selected[:min(len(selected), remaining)]
		var usable []models.RawPost
		for _, c := range candidates {
			if util.RuneLen(content.ExtractText(c)) >= o.cfg.MinSourceLength {
				usable = append(usable, c)
			}
		}
		if len(usable) == 0 {
			continue
		}

		r.processed += len(usable)
		r.saved = append(r.saved, o.generateAll(ctx, r, usable, voice, logger)...)
	}
}

// generateAll processes candidates concurrently. A failed candidate is
// reported and skipped without affecting its siblings.
func (o *Orchestrator) generateAll(ctx context.Context, r *run, candidates []models.RawPost, voice string, logger *zap.Logger) []models.GeneratedPost {
	results := make([]*models.GeneratedPost, len(candidates))

	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			post, stage, err := o.generate(ctx, r, candidate, voice)
			if err != nil {
				candidateFailuresTotal.WithLabelValues(stage).Inc()
				logger.Warn("Candidate dropped",
					zap.String("stage", stage),
					zap.String("source_url", content.ExtractURL(candidate)),
					zap.Error(err))
				o.reporter.ReportFailure(ctx, r.req.UserID, stage, err, map[string]any{
					"run_id":     r.id,
					"round":      r.round,
					"source_url": content.ExtractURL(candidate),
				})
				return nil
			}
			results[i] = post
			return nil
		})
	}
	_ = g.Wait()

	saved := make([]models.GeneratedPost, 0, len(candidates))
	for _, p := range results {
		if p != nil {
			saved = append(saved, *p)
		}
	}
	return saved
}

// generate runs one candidate through scrub, extract, rewrite and persist.
// The returned stage names where a failure happened.
func (o *Orchestrator) generate(ctx context.Context, r *run, candidate models.RawPost, voice string) (*models.GeneratedPost, string, error) {
	cleaned := content.Scrub(content.ExtractText(candidate))
	blueprint := o.stages.Extractor.Extract(ctx, cleaned)

	rewritten, err := o.stages.Rewriter.Rewrite(ctx, blueprint, cleaned, voice)
	if err != nil {
		return nil, "rewrite", err
	}
	if n := util.RuneLen(rewritten); n < o.cfg.MinOutputLength {
		return nil, "rewrite", fmt.Errorf("%w: %d characters", errRewriteTooShort, n)
	}

	if !json.Valid([]byte(blueprint)) {
		blueprint = "{}"
	}
	post := &models.GeneratedPost{
		UserID:           r.req.UserID,
		OriginalContent:  cleaned,
		GeneratedContent: rewritten,
		SourceType:       r.req.Source,
		Status:           models.PostStatusDraft,
		Metadata: datatypes.NewJSONType(models.PostMetadata{
			Blueprint:  json.RawMessage(blueprint),
			Engagement: content.ExtractEngagement(candidate),
			SourceURL:  content.ExtractURL(candidate),
			SourceID:   content.ExtractID(candidate),
			RunID:      r.id,
			Trigger:    r.req.Trigger,
		}),
	}
	if err := o.store.CreateGeneratedPost(ctx, post); err != nil {
		return nil, "persist", fmt.Errorf("%w: %w", errPersist, err)
	}

	return post, "", nil
}

func errorResult(err error) *Result {
	return &Result{
		Status:  StatusError,
		Data:    []models.GeneratedPost{},
		Message: err.Error(),
		Err:     err,
	}
}

func voiceOf(p *models.Profile) string {
	var parts []string
	if p.FullName != "" {
		parts = append(parts, "Author: "+p.FullName+".")
	}
	if v := strings.TrimSpace(p.VoiceInstructions); v != "" {
		parts = append(parts, v)
	}
	lang := p.Language
	if lang == "" {
		lang = "English"
	}
	parts = append(parts, "Write in "+lang+".")
	return strings.Join(parts, "\n")
}
