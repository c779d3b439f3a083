package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 10 * time.Minute
	// DefaultRetries is the number of extra attempts after the first.
	DefaultRetries = 3
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "cyrene/1.0"
)

// Client performs GET requests with retries.
type Client struct {
	http      *http.Client
	userAgent string
	retries   int
	backoff   func(attempt int) time.Duration
	progress  Progress
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithBackoff replaces the delay between attempts.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = fn }
}

// WithProgress sets the progress reporter used for downloads.
func WithProgress(p Progress) Option {
	return func(c *Client) { c.progress = p }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient returns a Client with the default timeout, retry and user agent.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt-1)) * time.Second
		},
		progress: noopProgress{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open issues a GET and returns the body once a 200 response arrives.
// Network errors and 5xx responses are retried; other statuses fail at once.
// The caller must close the returned response body.
func (c *Client) Open(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	var lastErr *FetchError

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.log.Debug().Str("url", url).Int("attempt", attempt).Dur("delay", delay).Msg("retrying request")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &FetchError{URL: url, Err: ctx.Err()}
			}
		}

		resp, err := c.openOnce(ctx, url, header)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, &FetchError{URL: url, Err: ctx.Err()}
		}
		if !err.retryable() {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) openOnce(ctx context.Context, url string, header http.Header) (*http.Response, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return resp, nil
}

// Get fetches url and returns the whole body.
func (c *Client) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	resp, err := c.Open(ctx, url, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

// download opens url and wraps its body in a progress-counting reader.
func (c *Client) download(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.Open(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("url", url).Int64("size", resp.ContentLength).Msg("downloading")

	tracker := c.progress.Start(path.Base(resp.Request.URL.Path), resp.ContentLength)
	return &trackedBody{
		Reader: &countingReader{r: resp.Body, t: tracker},
		body:   resp.Body,
		t:      tracker,
	}, nil
}

type trackedBody struct {
	io.Reader
	body io.Closer
	t    Tracker
}

func (b *trackedBody) Close() error {
	b.t.Done()
	return b.body.Close()
}
