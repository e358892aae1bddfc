package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
	"github.com/ifuryst/museos/internal/models"
	"github.com/ifuryst/museos/internal/service/store"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	buffers []int
	queries [][]string
	urls    [][]string
	batch   func(call int) []models.RawPost
}

func (f *fakeSource) next(buffer int) []models.RawPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.buffers = append(f.buffers, buffer)
	if f.batch == nil {
		return []models.RawPost{}
	}
	return f.batch(f.calls)
}

func (f *fakeSource) FetchByKeywords(_ context.Context, queries []string, limit int) []models.RawPost {
	f.queries = append(f.queries, queries)
	return f.next(limit)
}

func (f *fakeSource) FetchByCreators(_ context.Context, urls []string, limit int) []models.RawPost {
	f.urls = append(f.urls, urls)
	return f.next(limit)
}

type fakeStore struct {
	mu         sync.Mutex
	profile    *models.Profile
	profileErr error
	creators   []string
	createErr  error
	created    []*models.GeneratedPost
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return nil, store.ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeStore) ListCreatorURLs(context.Context, string) ([]string, error) {
	return f.creators, nil
}

func (f *fakeStore) CreateGeneratedPost(_ context.Context, p *models.GeneratedPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = uint(len(f.created) + 1)
	f.created = append(f.created, p)
	return nil
}

type passExpander struct{}

func (passExpander) Expand(_ context.Context, keywords []string) []string { return keywords }

// firstN keeps the first n posts, like a scorer that trusts input order.
type firstN struct {
	mu    sync.Mutex
	n     int
	calls int
}

func (s *firstN) Select(_ context.Context, posts []models.RawPost) []models.RawPost {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return posts[:min(len(posts), s.n)]
}

type fakeExtractor struct{ out string }

func (f fakeExtractor) Extract(context.Context, string) string { return f.out }

type fakeRewriter struct {
	mu    sync.Mutex
	calls int
	seen  []string
	out   func(original string) (string, error)
}

func (f *fakeRewriter) Rewrite(_ context.Context, _, original, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.seen = append(f.seen, original)
	f.mu.Unlock()
	return f.out(original)
}

func goodRewrite(original string) (string, error) {
	return "Rewritten: " + strings.Repeat("fresh perspective ", 5), nil
}

type recordingReporter struct {
	mu     sync.Mutex
	stages []string
}

func (r *recordingReporter) ReportFailure(_ context.Context, _, stage string, _ error, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func candidate(tag string) models.RawPost {
	return models.RawPost{
		"url":         "https://linkedin.com/posts/" + tag,
		"text":        tag + ": " + strings.Repeat("a lesson learned the hard way ", 4),
		"numLikes":    40,
		"numComments": 12,
	}
}

func batchOf(prefix string, n int) []models.RawPost {
	posts := make([]models.RawPost, n)
	for i := range posts {
		posts[i] = candidate(fmt.Sprintf("%s-%d", prefix, i))
	}
	return posts
}

type harness struct {
	source   *fakeSource
	store    *fakeStore
	scorer   *firstN
	rewriter *fakeRewriter
	reporter *recordingReporter
	o        *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		source: &fakeSource{},
		store: &fakeStore{profile: &models.Profile{
			UserID:            "u1",
			VoiceInstructions: "plain words",
			Keywords:          models.StringArray{"AI"},
		}},
		scorer:   &firstN{n: 5},
		rewriter: &fakeRewriter{out: goodRewrite},
		reporter: &recordingReporter{},
	}
	h.o = New(config.PipelineConfig{}, h.source, h.store, Stages{
		Expander:  passExpander{},
		Scorer:    h.scorer,
		Extractor: fakeExtractor{out: `{"verdict":"ok"}`},
		Rewriter:  h.rewriter,
	}, zap.NewNop(), WithReporter(h.reporter))
	return h
}

func TestRunMeetsTargetInOneRound(t *testing.T) {
	h := newHarness(t)
	h.source.batch = func(call int) []models.RawPost { return batchOf(fmt.Sprint("r", call), 5) }

	res := h.o.Run(context.Background(), Request{UserID: "u1", Source: models.SourceTypeKeyword, Count: 3})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Len(t, res.Data, 3)
	assert.Len(t, h.store.created, 3)
	assert.Equal(t, 1, h.source.calls)
	assert.Equal(t, []int{5}, h.source.buffers)
	assert.Equal(t, [][]string{{"AI"}}, h.source.queries)
	assert.Equal(t, "Generated 3 posts", res.Message)
	assert.NotEmpty(t, res.RunID)

	meta := res.Data[0].Metadata.Data()
	assert.Equal(t, res.RunID, meta.RunID)
	assert.Equal(t, TriggerManual, meta.Trigger)
	assert.Equal(t, 40, meta.Engagement.Likes)
	assert.JSONEq(t, `{"verdict":"ok"}`, string(meta.Blueprint))
	assert.Equal(t, models.PostStatusDraft, res.Data[0].Status)
	assert.Equal(t, models.SourceTypeKeyword, res.Data[0].SourceType)
}

func TestRunEmptySource(t *testing.T) {
	h := newHarness(t)

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 3})

	require.Equal(t, StatusSuccess, res.Status)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Contains(t, res.Message, "0 posts")
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, h.source.calls)
	assert.Zero(t, h.scorer.calls)
}

func TestRunSameCandidateEveryRoundIsAttemptedOnce(t *testing.T) {
	h := newHarness(t)
	h.source.batch = func(int) []models.RawPost { return []models.RawPost{candidate("same")} }
	h.rewriter.out = func(string) (string, error) { return "", errors.New("model down") }

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 2})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Data)
	assert.Equal(t, 1, h.rewriter.calls)
	assert.Equal(t, 2, h.source.calls)
	assert.Equal(t, []string{"rewrite"}, h.reporter.stages)
}

func TestRunAllGenerationFailsExhaustsRounds(t *testing.T) {
	h := newHarness(t)
	h.source.batch = func(call int) []models.RawPost { return batchOf(fmt.Sprint("r", call), 5) }
	h.rewriter.out = func(string) (string, error) { return "", errors.New("rate limited") }

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 3})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Data)
	assert.Empty(t, h.store.created)
	assert.Equal(t, 2, h.source.calls)
	assert.Equal(t, 6, h.rewriter.calls)
	assert.Equal(t, 6, res.PostsProcessed)
}

func TestRunSecondRoundFillsRemainder(t *testing.T) {
	h := newHarness(t)
	h.source.batch = func(call int) []models.RawPost { return batchOf(fmt.Sprint("r", call), 5) }
	h.rewriter.out = func(original string) (string, error) {
		if strings.HasPrefix(original, "r1-0") {
			return "too short", nil
		}
		return goodRewrite(original)
	}

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 3})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Len(t, res.Data, 3)
	assert.Equal(t, []int{5, 2}, h.source.buffers)
	assert.Equal(t, []string{"rewrite"}, h.reporter.stages)
}

func TestRunNeverExceedsCountOrRounds(t *testing.T) {
	for count := 1; count <= 10; count++ {
		h := newHarness(t)
		h.scorer.n = 5
		h.source.batch = func(call int) []models.RawPost { return batchOf(fmt.Sprint("r", call), 8) }

		res := h.o.Run(context.Background(), Request{UserID: "u1", Count: count})

		assert.LessOrEqual(t, len(res.Data), count)
		assert.LessOrEqual(t, h.source.calls, 2)
	}
}

func TestRunClampsCount(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 1, h.o.clampCount(-4))
	assert.Equal(t, 3, h.o.clampCount(0))
	assert.Equal(t, 10, h.o.clampCount(50))
}

func TestRunDropsThinCandidates(t *testing.T) {
	h := newHarness(t)
	h.source.batch = func(int) []models.RawPost {
		return []models.RawPost{
			{"url": "https://x/1", "text": "short but engaging", "numLikes": 10, "numComments": 5},
		}
	}

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 1})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Data)
	assert.Zero(t, h.rewriter.calls)
}

func TestRunScrubsBeforeGenerating(t *testing.T) {
	h := newHarness(t)
	post := candidate("contact")
	post["text"] = post["text"].(string) + " reach me at jane@example.com or https://jane.dev"
	h.source.batch = func(int) []models.RawPost { return []models.RawPost{post} }

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 1})

	require.Len(t, res.Data, 1)
	require.Len(t, h.rewriter.seen, 1)
	assert.NotContains(t, h.rewriter.seen[0], "jane@example.com")
	assert.NotContains(t, res.Data[0].OriginalContent, "https://jane.dev")
}

func TestRunPersistFailureIsIsolated(t *testing.T) {
	h := newHarness(t)
	h.store.createErr = errors.New("connection reset")
	h.source.batch = func(call int) []models.RawPost { return batchOf(fmt.Sprint("r", call), 2) }

	res := h.o.Run(context.Background(), Request{UserID: "u1", Count: 2})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Empty(t, res.Data)
	assert.Contains(t, h.reporter.stages, "persist")
}

func TestRunConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
		req   Request
	}{
		{
			name:  "no profile",
			setup: func(h *harness) { h.store.profile = nil },
			req:   Request{UserID: "u1"},
		},
		{
			name:  "no keywords",
			setup: func(h *harness) { h.store.profile.Keywords = models.StringArray{" "} },
			req:   Request{UserID: "u1", Source: models.SourceTypeKeyword},
		},
		{
			name:  "no creators",
			setup: func(h *harness) {},
			req:   Request{UserID: "u1", Source: models.SourceTypeCreator},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.setup(h)

			res := h.o.Run(context.Background(), tt.req)

			assert.Equal(t, StatusError, res.Status)
			assert.ErrorIs(t, res.Err, ErrConfiguration)
			assert.NotEmpty(t, res.Message)
			assert.Zero(t, h.source.calls)
		})
	}
}

func TestRunStoreFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	h.store.profileErr = errors.New("dial tcp: connection refused")

	res := h.o.Run(context.Background(), Request{UserID: "u1"})

	assert.Equal(t, StatusError, res.Status)
	assert.Error(t, res.Err)
	assert.NotErrorIs(t, res.Err, ErrConfiguration)
	assert.Zero(t, h.source.calls)
}

func TestRunCreatorsSource(t *testing.T) {
	h := newHarness(t)
	h.store.creators = []string{"https://linkedin.com/in/a"}
	h.source.batch = func(call int) []models.RawPost { return batchOf("c", 1) }

	res := h.o.Run(context.Background(), Request{UserID: "u1", Source: models.SourceTypeCreator, Count: 1, Trigger: TriggerSchedule})

	require.Len(t, res.Data, 1)
	assert.Equal(t, [][]string{{"https://linkedin.com/in/a"}}, h.source.urls)
	assert.Equal(t, models.SourceTypeCreator, res.Data[0].SourceType)
	assert.Equal(t, TriggerSchedule, res.Data[0].Metadata.Data().Trigger)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	h := newHarness(t)
	h.source.batch = func(call int) []models.RawPost { return batchOf(fmt.Sprint("r", call), 5) }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := h.o.Run(ctx, Request{UserID: "u1", Count: 3})

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Zero(t, h.source.calls)
}

func TestParseSource(t *testing.T) {
	for in, want := range map[string]models.SourceType{
		"keywords": models.SourceTypeKeyword,
		"Keyword":  models.SourceTypeKeyword,
		"":         models.SourceTypeKeyword,
		"creators": models.SourceTypeCreator,
	} {
		got, err := ParseSource(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSource("rss")
	assert.Error(t, err)
}
