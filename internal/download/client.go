package download

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"launcher/internal/logging"
)

const userAgent = "launcher/1.0"

// Client fetches release archives over HTTP. It never retries; a failed
// fetch is reported to the caller as-is.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero, the default, means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithLogger sets the logger used for transfer diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "download")
	}
}

// NewClient constructs a Client. GitHub release URLs redirect to a CDN, so
// redirects are followed.
func NewClient(opts ...Option) *Client {
	http := resty.New().
		SetRetryCount(0).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", userAgent)
	c := &Client{http: http, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected HTTP status %d", e.URL, e.StatusCode)
}

// Fetch downloads url into dest, creating dest's parent directories. A
// partially written dest is removed on failure.
func (c *Client) Fetch(ctx context.Context, url, dest string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("GET %s: %w", url, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		_ = os.Remove(dest)
		return &StatusError{URL: url, StatusCode: code}
	}

	attrs := []logging.Attr{
		logging.String("url", url),
		logging.String("dest", dest),
		logging.Duration("elapsed", resp.Time()),
	}
	if info, err := os.Stat(dest); err == nil {
		attrs = append(attrs, logging.Int64("bytes", info.Size()))
	}
	c.logger.Debug("archive fetched", logging.Args(attrs...)...)
	return nil
}
