package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ifuryst/museos/internal/service/llm"
)

// ErrEmptyRewrite is returned when the model answers with no text.
var ErrEmptyRewrite = errors.New("model returned an empty rewrite")

type Rewriter struct {
	llm    llm.Completer
	logger *zap.Logger
}

func NewRewriter(c llm.Completer, logger *zap.Logger) *Rewriter {
	return &Rewriter{llm: c, logger: logger}
}

// Rewrite writes a new post that follows blueprint in the given voice. A
// failed call is returned as an error; the original text is never handed
// back in its place.
func (r *Rewriter) Rewrite(ctx context.Context, blueprint, original, voice string) (string, error) {
	out, err := r.llm.Complete(ctx, []llm.Message{
		llm.System(rewriteSystemPrompt),
		llm.User(buildRewritePrompt(blueprint, original, voice)),
	}, llm.Options{Temperature: 0.8})
	if err != nil {
		return "", fmt.Errorf("failed to rewrite post: %w", err)
	}

	out = unwrapQuotes(strings.TrimSpace(out))
	if out == "" {
		return "", ErrEmptyRewrite
	}
	return out, nil
}

// unwrapQuotes drops one pair of quotes wrapped around the whole reply. A
// post that opens and closes with separate quotations keeps them.
func unwrapQuotes(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	if strings.Contains(inner, `"`) {
		return s
	}
	return strings.TrimSpace(inner)
}

func buildRewritePrompt(blueprint, original, voice string) string {
	var b strings.Builder

	if bp, ok := ParseBlueprint(blueprint); ok {
		b.WriteString("Blueprint:\n")
		b.WriteString(blueprint)
		b.WriteString("\n\n")
		if bp.Hook.Type != "" {
			fmt.Fprintf(&b, "Open with a %s hook.\n", bp.Hook.Type)
		}
		if len(bp.NarrativeArc.Phases) > 0 {
			fmt.Fprintf(&b, "Follow this arc: %s.\n", strings.Join(bp.NarrativeArc.Phases, " -> "))
		}
		if bp.Formatting.Length != "" {
			fmt.Fprintf(&b, "Target length: %s.\n", bp.Formatting.Length)
		}
		if bp.ReplicationStrategy != "" {
			fmt.Fprintf(&b, "Strategy: %s\n", bp.ReplicationStrategy)
		}
	} else {
		b.WriteString("No blueprint is available. Keep the structure and length of the original.\n")
	}

	if voice = strings.TrimSpace(voice); voice != "" {
		b.WriteString("\nVoice and language:\n")
		b.WriteString(voice)
		b.WriteString("\n")
	}

	b.WriteString("\nOriginal post (reference only, do not copy):\n")
	b.WriteString(original)

	return b.String()
}
