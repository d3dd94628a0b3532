// Package fetch downloads binary payloads (reference images, generated
// results) over HTTP with a bounded body size.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

const (
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "cut-generation-client/1.0"
	// DefaultMaxBytes caps a single download.
	DefaultMaxBytes int64 = 32 << 20
)

// Result holds a downloaded payload.
type Result struct {
	URL         string
	Data        []byte
	ContentType string
	StatusCode  int
}

// Error represents a failed download.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Client.
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	Headers    map[string]string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// DefaultOptions returns the defaults used when nil options are given.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// Client performs GET requests for binary content.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	headers    map[string]string
	logger     *infra.Logger
}

// NewClient builds a Client, filling unset options with defaults.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		headers:    opts.Headers,
		logger:     logger,
	}
}

// Fetch downloads rawURL. Non-2xx responses and bodies larger than the
// configured limit return an *Error.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "build request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "http request", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "read body", StatusCode: resp.StatusCode, Cause: err}
	}
	if int64(len(data)) > c.maxBytes {
		return nil, &Error{URL: rawURL, Message: fmt.Sprintf("body exceeds %d bytes", c.maxBytes), StatusCode: resp.StatusCode}
	}

	c.logger.Debug().
		Str("url", rawURL).
		Int("bytes", len(data)).
		Msg("fetch: downloaded")

	return &Result{
		URL:         rawURL,
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}
