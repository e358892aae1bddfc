package pipeline

import (
	"context"

	"github.com/ifuryst/museos/internal/models"
)

// Source fetches raw candidate posts. Failures surface as an empty slice.
type Source interface {
	FetchByKeywords(ctx context.Context, queries []string, limitPerQuery int) []models.RawPost
	FetchByCreators(ctx context.Context, profileURLs []string, limitTotal int) []models.RawPost
}

type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListCreatorURLs(ctx context.Context, userID string) ([]string, error)
	CreateGeneratedPost(ctx context.Context, p *models.GeneratedPost) error
}

type Expander interface {
	Expand(ctx context.Context, keywords []string) []string
}

type Scorer interface {
	Select(ctx context.Context, posts []models.RawPost) []models.RawPost
}

type Extractor interface {
	Extract(ctx context.Context, text string) string
}

type Rewriter interface {
	Rewrite(ctx context.Context, blueprint, original, voice string) (string, error)
}

// Stages groups the model-backed steps of a run.
type Stages struct {
	Expander  Expander
	Scorer    Scorer
	Extractor Extractor
	Rewriter  Rewriter
}

// Reporter receives failures the pipeline absorbs instead of returning.
type Reporter interface {
	ReportFailure(ctx context.Context, userID, stage string, err error, details map[string]any)
}

type nopReporter struct{}

func (nopReporter) ReportFailure(context.Context, string, string, error, map[string]any) {}
