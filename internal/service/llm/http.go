package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// statusError is a non-2xx response whose body has already been drained.
type statusError struct {
	provider string
	status   string
	code     int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s: %s", e.provider, e.status, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= http.StatusInternalServerError
}

// doWithRetry sends the request built by build, retrying transport errors,
// 429 and 5xx with exponential backoff. A successful return always carries a
// 2xx response the caller must close.
func doWithRetry(ctx context.Context, client *http.Client, provider string, rc retryConfig, build func() (*http.Request, error)) (*http.Response, error) {
	maxDelay := rc.baseDelay * 10
	policy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(_ *http.Response, err error) bool {
			if err == nil || ctx.Err() != nil {
				return false
			}
			var se *statusError
			if errors.As(err, &se) {
				return se.retryable()
			}
			return true
		}).
		WithBackoff(rc.baseDelay, maxDelay).
		WithJitterFactor(0.1).
		WithMaxRetries(max(rc.maxRetries, 0)).
		Build()

	return failsafe.With[*http.Response](policy).WithContext(ctx).Get(func() (*http.Response, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: request failed: %w", provider, err)
		}
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &statusError{
				provider: provider,
				status:   resp.Status,
				code:     resp.StatusCode,
				body:     strings.TrimSpace(string(body)),
			}
		}
		return resp, nil
	})
}
