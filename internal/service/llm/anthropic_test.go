package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifuryst/museos/internal/config"
)

func TestAnthropicProvider_Complete(t *testing.T) {
	var got anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-API-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"world"}]}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider(config.LLMConfig{
		Model:  "claude-test",
		APIKey: "sk-ant",
		APIURL: server.URL,
	}, 5*time.Second)

	out, err := p.Complete(context.Background(), []Message{System("you write posts"), User("go")}, Options{JSONMode: true})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)

	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, 2048, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.System, "you write posts")
	assert.Contains(t, got.System, jsonOnlyInstruction)
}

func TestAnthropicProvider_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider(config.LLMConfig{Model: "claude-test", APIKey: "k", APIURL: server.URL}, time.Second)
	_, err := p.Complete(context.Background(), []Message{User("go")}, Options{})
	assert.Error(t, err)
}
