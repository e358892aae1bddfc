package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/service/llm"
	"github.com/ifuryst/museos/pkg/fallback"
)

// Extractor asks the model for the Blueprint of a post.
type Extractor struct {
	llm    llm.Completer
	logger *zap.Logger
}

func NewExtractor(c llm.Completer, logger *zap.Logger) *Extractor {
	return &Extractor{llm: c, logger: logger}
}

// Extract returns the blueprint as compact JSON, or EmptyBlueprint when the
// model call or parsing fails.
func (e *Extractor) Extract(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return EmptyBlueprint
	}

	blueprint, used := fallback.Run(ctx,
		func(ctx context.Context) (string, error) {
			return e.askModel(ctx, text)
		},
		nil,
		func() string { return EmptyBlueprint },
	)
	if used {
		fallbacksTotal.WithLabelValues("extract").Inc()
		e.logger.Warn("Structure extraction failed, continuing without blueprint")
	}

	return blueprint
}

func (e *Extractor) askModel(ctx context.Context, text string) (string, error) {
	out, err := e.llm.Complete(ctx, []llm.Message{
		llm.System(extractSystemPrompt),
		llm.User("Post:\n" + text),
	}, llm.Options{JSONMode: true, Temperature: 0.3})
	if err != nil {
		return "", fmt.Errorf("failed to extract blueprint: %w", err)
	}

	obj, err := llm.ExtractJSONObject(out)
	if err != nil {
		return "", fmt.Errorf("failed to parse blueprint: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(obj)); err != nil {
		return "", fmt.Errorf("failed to compact blueprint: %w", err)
	}
	if buf.String() == EmptyBlueprint {
		return "", errors.New("model returned an empty blueprint")
	}

	return buf.String(), nil
}
