// Package fallback runs an unreliable primary computation (usually a language
// model call) and falls through to a deterministic one when the primary
// errors or produces a result the caller does not accept.
package fallback

import (
	"context"

	"github.com/failsafe-go/failsafe-go"
	fsfallback "github.com/failsafe-go/failsafe-go/fallback"
)

// Run executes primary and returns its result when it succeeds and accept
// approves it (a nil accept approves everything). Otherwise the result of
// deterministic is returned. The second return value reports whether the
// deterministic path was taken.
func Run[T any](ctx context.Context, primary func(ctx context.Context) (T, error), accept func(T) bool, deterministic func() T) (T, bool) {
	if ctx.Err() != nil {
		return deterministic(), true
	}

	used := false
	policy := fsfallback.NewBuilderWithFunc[T](func(exec failsafe.Execution[T]) (T, error) {
		used = true
		return deterministic(), nil
	}).
		HandleIf(func(result T, err error) bool {
			if err != nil {
				return true
			}
			return accept != nil && !accept(result)
		}).
		Build()

	result, err := failsafe.With[T](policy).Get(func() (T, error) {
		return primary(ctx)
	})
	if err != nil {
		return deterministic(), true
	}

	return result, used
}

