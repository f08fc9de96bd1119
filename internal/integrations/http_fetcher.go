package integrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

const maxResponseSize = 4 << 20 // 4 MB

// HTTPFetcher retrieves URL contents with a timeout, a response size limit
// and bounded retries on transient failures.
type HTTPFetcher struct {
	client  *http.Client
	retries uint64
	backoff time.Duration
}

// NewHTTPFetcher creates a new HTTPFetcher with the given timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		retries: 3,
		backoff: 500 * time.Millisecond,
	}
}

// WithRetries overrides the retry count and initial backoff.
func (f *HTTPFetcher) WithRetries(n uint64, backoff time.Duration) *HTTPFetcher {
	f.retries = n
	f.backoff = backoff
	return f
}

// Fetch retrieves the URL content, limited to 4 MB. Connection errors and
// 5xx/429 responses are retried with exponential backoff; other 4xx
// responses fail immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, retry.WithMaxRetries(f.retries, retry.NewExponential(f.backoff)), func(ctx context.Context) error {
		b, err := f.fetchOnce(ctx, url)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return err
			}
			return retry.RetryableError(err)
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("fetch %q: HTTP %d", e.url, e.code)
}

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &statusError{url: url, code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
