package generator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/service/llm"
	"github.com/ifuryst/museos/pkg/fallback"
	"github.com/ifuryst/museos/pkg/util"
)

const maxQueries = 3

// Expander turns profile keywords into search queries.
type Expander struct {
	llm    llm.Completer
	logger *zap.Logger
}

func NewExpander(c llm.Completer, logger *zap.Logger) *Expander {
	return &Expander{llm: c, logger: logger}
}

// Expand returns at most three queries. When the model fails the cleaned
// keywords themselves are used.
func (e *Expander) Expand(ctx context.Context, keywords []string) []string {
	keywords = util.CleanList(keywords)
	if len(keywords) == 0 {
		return []string{}
	}

	queries, used := fallback.Run(ctx,
		func(ctx context.Context) ([]string, error) {
			return e.askModel(ctx, keywords)
		},
		func(q []string) bool { return len(q) > 0 },
		func() []string {
			return keywords[:min(len(keywords), maxQueries)]
		},
	)
	if used {
		fallbacksTotal.WithLabelValues("expand").Inc()
		e.logger.Warn("Query expansion fell back to raw keywords", zap.Strings("keywords", keywords))
	}

	return queries
}

func (e *Expander) askModel(ctx context.Context, keywords []string) ([]string, error) {
	out, err := e.llm.Complete(ctx, []llm.Message{
		llm.System(expandSystemPrompt),
		llm.User("Keywords: " + strings.Join(keywords, ", ")),
	}, llm.Options{JSONMode: true, Temperature: 0.4})
	if err != nil {
		return nil, fmt.Errorf("failed to expand queries: %w", err)
	}

	var resp struct {
		Queries []string `json:"queries"`
	}
	if err := llm.DecodeJSON(out, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	queries := util.UniqueFold(util.CleanList(resp.Queries))
	return queries[:min(len(queries), maxQueries)], nil
}
