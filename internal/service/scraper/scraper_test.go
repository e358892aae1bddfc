package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ScraperConfig{
		BaseURL:        baseURL,
		Token:          "tok",
		KeywordActorID: "kw~actor",
		ProfileActorID: "profile-actor",
		Timeout:        "5s",
	}, zap.NewNop())
}

func TestFetchByKeywords(t *testing.T) {
	var input map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/acts/kw~actor/run-sync-get-dataset-items", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))

		_, _ = w.Write([]byte(`[{"text":"first","numLikes":12},{"text":"second"}]`))
	}))
	defer server.Close()

	posts := newTestClient(server.URL).FetchByKeywords(context.Background(), []string{"ai agents", "llm ops"}, 4)
	require.Len(t, posts, 2)
	assert.Equal(t, "first", posts[0]["text"])
	assert.Equal(t, json.Number("12"), posts[0]["numLikes"])

	assert.Equal(t, []any{"ai agents", "llm ops"}, input["searchQueries"])
	assert.Equal(t, float64(4), input["maxResults"])
}

func TestFetchByCreators(t *testing.T) {
	var input map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acts/profile-actor/run-sync-get-dataset-items", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	posts := newTestClient(server.URL).FetchByCreators(context.Background(), []string{"https://linkedin.com/in/a"}, 5)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Equal(t, []any{"https://linkedin.com/in/a"}, input["profileUrls"])
}

func TestFetchFailuresReturnEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"not":"a list"`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			posts := newTestClient(server.URL).FetchByKeywords(context.Background(), []string{"x"}, 2)
			assert.NotNil(t, posts)
			assert.Empty(t, posts)
		})
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	posts := newTestClient(url).FetchByCreators(context.Background(), []string{"u"}, 2)
	assert.Empty(t, posts)
}

func TestNewReturnsUnconfigured(t *testing.T) {
	f := New(config.ScraperConfig{}, zap.NewNop())
	assert.IsType(t, Unconfigured{}, f)
	assert.Empty(t, f.FetchByKeywords(context.Background(), []string{"a"}, 3))
	assert.Empty(t, f.FetchByCreators(context.Background(), []string{"a"}, 3))
}

func TestEmptyInputSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	assert.Empty(t, c.FetchByKeywords(context.Background(), nil, 3))
	assert.Empty(t, c.FetchByCreators(context.Background(), nil, 3))
	assert.False(t, called)
}
