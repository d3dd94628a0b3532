// Package genjob is the HTTP client for the asynchronous image generation
// service: jobs are submitted once and then polled for status.
package genjob

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("genjob: api key is required")

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("genjob: status %d: %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("genjob: status %d: %s", e.StatusCode, e.Message)
}

// Options configures the generation client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs submit and status calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type submitRequest struct {
	Prompt            string `json:"prompt"`
	ReferenceImage    string `json:"reference_image,omitempty"`
	ReferenceImageURL string `json:"reference_image_url,omitempty"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	StyleID           string `json:"style_id,omitempty"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

type statusResponse struct {
	Status     string   `json:"status"`
	Progress   *float64 `json:"progress"`
	ResultURLs []string `json:"result_urls"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewClient constructs a client with defaults for unset options.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("genjob: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("genjob: invalid base url: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit creates a generation job and returns its id. An empty id in an
// otherwise successful response is reported as domain.ErrNoJobID.
func (c *Client) Submit(ctx context.Context, req domain.SubmitRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	payload := submitRequest{
		Prompt:            strings.TrimSpace(req.Prompt),
		ReferenceImageURL: strings.TrimSpace(req.ReferenceImageURL),
		Width:             req.Width,
		Height:            req.Height,
		StyleID:           strings.TrimSpace(req.StyleID),
	}
	if len(req.ReferenceImage) > 0 {
		payload.ReferenceImage = base64.StdEncoding.EncodeToString(req.ReferenceImage)
	}

	var decoded submitResponse
	if err := c.do(ctx, http.MethodPost, "/v1/tasks", payload, &decoded); err != nil {
		return "", err
	}
	taskID := strings.TrimSpace(decoded.TaskID)
	if taskID == "" {
		return "", domain.ErrNoJobID
	}
	c.logger.Debug().
		Str("task_id", taskID).
		Int("width", req.Width).
		Int("height", req.Height).
		Bool("with_reference", payload.ReferenceImage != "").
		Msg("genjob: task submitted")
	return taskID, nil
}

// Status fetches the current state of a job.
func (c *Client) Status(ctx context.Context, jobID string) (domain.JobStatus, error) {
	if !c.HasCredentials() {
		return domain.JobStatus{}, ErrMissingAPIKey
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return domain.JobStatus{}, domain.ErrNoJobID
	}
	var decoded statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(jobID), nil, &decoded); err != nil {
		return domain.JobStatus{}, err
	}
	status := domain.JobStatus{
		State:      domain.JobState(strings.ToLower(strings.TrimSpace(decoded.Status))),
		ResultURLs: nonEmpty(decoded.ResultURLs),
	}
	if decoded.Progress != nil {
		status.Progress = int(*decoded.Progress)
	}
	return status, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("genjob: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("genjob: build request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("genjob: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("genjob: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			if msg := firstNonEmpty(detail.Message, detail.Error); msg != "" {
				apiErr.Message = msg
				apiErr.Code = detail.Code
			}
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("genjob: decode response: %w", err)
	}
	return nil
}

func nonEmpty(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var _ domain.GenerationService = (*Client)(nil)
