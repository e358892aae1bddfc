// Package llm is a minimal chat-completion client. The pipeline needs one
// call shape (messages in, text out, optionally JSON) so that is all the
// Completer interface offers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/config"
)

// ErrNotConfigured is returned by the Unconfigured completer.
var ErrNotConfigured = errors.New("language model is not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message { return Message{Role: "user", Content: content} }

type Options struct {
	// JSONMode asks the model for a single JSON object.
	JSONMode bool
	// Temperature overrides the configured default when non-zero.
	Temperature float64
}

type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Unconfigured stands in when no API key is set. Every call fails with
// ErrNotConfigured, which callers treat like any other model failure.
type Unconfigured struct{}

func (Unconfigured) Complete(context.Context, []Message, Options) (string, error) {
	return "", ErrNotConfigured
}

type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
}

// NewProvider builds the completer named by cfg.Provider. A missing API key
// yields Unconfigured rather than an error so the service still starts.
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	name := strings.ToLower(cfg.Provider)

	if cfg.APIKey == "" {
		logger.Warn("Language model API key missing, model calls will use fallbacks",
			zap.String("provider", name))
		return Unconfigured{}, nil
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 60 * time.Second
	}

	var c Completer
	switch name {
	case "openai":
		c = NewOpenAIProvider(cfg, timeout)
	case "anthropic":
		c = NewAnthropicProvider(cfg, timeout)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	logger.Info("Language model configured", zap.String("provider", name), zap.String("model", cfg.Model))
	return &instrumented{next: c, provider: name, model: cfg.Model}, nil
}

type instrumented struct {
	next     Completer
	provider string
	model    string
}

func (i *instrumented) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	start := time.Now()
	out, err := i.next.Complete(ctx, messages, opts)
	llmDuration.WithLabelValues(i.provider, i.model).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	llmCallsTotal.WithLabelValues(i.provider, i.model, status).Inc()

	return out, err
}
