package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/internal/service/content"
	"github.com/ifuryst/museos/internal/service/llm"
	"github.com/ifuryst/museos/pkg/fallback"
	"github.com/ifuryst/museos/pkg/util"
)

const (
	MaxSelected = 5

	minScoreTextLength = 50
	rawPrefixFallback  = 3
	maxModelCandidates = 15
	previewLength      = 300
)

// Scorer picks the "hidden gems" among candidate posts: high comment and
// share ratios rather than raw popularity.
type Scorer struct {
	llm    llm.Completer
	logger *zap.Logger
}

func NewScorer(c llm.Completer, logger *zap.Logger) *Scorer {
	return &Scorer{llm: c, logger: logger}
}

type scored struct {
	post       models.RawPost
	text       string
	engagement models.Engagement
}

// Select returns at most MaxSelected posts. It never returns an empty slice
// for a non-empty input.
func (s *Scorer) Select(ctx context.Context, posts []models.RawPost) []models.RawPost {
	if len(posts) == 0 {
		return []models.RawPost{}
	}

	var candidates []scored
	for _, p := range posts {
		c := scored{
			post:       p,
			text:       content.ExtractText(p),
			engagement: content.ExtractEngagement(p),
		}
		if util.RuneLen(c.text) < minScoreTextLength || c.engagement.Likes+c.engagement.Comments <= 0 {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		s.logger.Info("No candidate passed the engagement filter, using raw prefix",
			zap.Int("input", len(posts)))
		return posts[:min(len(posts), rawPrefixFallback)]
	}

	selected, used := fallback.Run(ctx,
		func(ctx context.Context) ([]models.RawPost, error) {
			return s.askModel(ctx, candidates)
		},
		func(p []models.RawPost) bool { return len(p) > 0 },
		func() []models.RawPost {
			return byCommentRatio(candidates)
		},
	)
	if used {
		fallbacksTotal.WithLabelValues("score").Inc()
		s.logger.Warn("Relevance scoring fell back to comment ratio sort",
			zap.Int("candidates", len(candidates)))
	}

	return selected
}

func (s *Scorer) askModel(ctx context.Context, candidates []scored) ([]models.RawPost, error) {
	shown := candidates[:min(len(candidates), maxModelCandidates)]

	var b strings.Builder
	for i, c := range shown {
		fmt.Fprintf(&b, "[%d] likes=%d comments=%d shares=%d comment_ratio=%.3f share_ratio=%.3f\n%s\n\n",
			i, c.engagement.Likes, c.engagement.Comments, c.engagement.Shares,
			c.engagement.CommentRatio(), c.engagement.ShareRatio(),
			util.Truncate(c.text, previewLength))
	}

	out, err := s.llm.Complete(ctx, []llm.Message{
		llm.System(scoreSystemPrompt),
		llm.User(b.String()),
	}, llm.Options{JSONMode: true, Temperature: 0.2})
	if err != nil {
		return nil, fmt.Errorf("failed to score candidates: %w", err)
	}

	var resp struct {
		Indices []int `json:"indices"`
	}
	if err := llm.DecodeJSON(out, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse scoring response: %w", err)
	}

	picked := make(map[int]struct{}, len(resp.Indices))
	selected := make([]models.RawPost, 0, MaxSelected)
	for _, idx := range resp.Indices {
		if idx < 0 || idx >= len(shown) {
			continue
		}
		if _, dup := picked[idx]; dup {
			continue
		}
		picked[idx] = struct{}{}
		selected = append(selected, shown[idx].post)
		if len(selected) == MaxSelected {
			break
		}
	}

	return selected, nil
}

// byCommentRatio is the deterministic ranking: comment/like ratio
// descending, input order on ties.
func byCommentRatio(candidates []scored) []models.RawPost {
	sorted := make([]scored, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].engagement.CommentRatio() > sorted[j].engagement.CommentRatio()
	})

	out := make([]models.RawPost, 0, MaxSelected)
	for _, c := range sorted[:min(len(sorted), MaxSelected)] {
		out = append(out, c.post)
	}
	return out
}
