// Package board is the HTTP client for the shared visual board service
// (Miro REST v2 compatible).
package board

import (
	"bytes"
	"context"
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

// ErrMissingToken indicates that the client was configured without credentials.
var ErrMissingToken = errors.New("board: api token is required")

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("board: status %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	Token          string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Origin string  `json:"origin"`
}

type geometry struct {
	Width float64 `json:"width,omitempty"`
}

type imageItem struct {
	Data struct {
		URL   string `json:"url"`
		Title string `json:"title,omitempty"`
	} `json:"data"`
	Position position `json:"position"`
	Geometry geometry `json:"geometry"`
}

type textItem struct {
	Data struct {
		Content string `json:"content"`
	} `json:"data"`
	Position position `json:"position"`
	Geometry geometry `json:"geometry"`
}

type boardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type boardResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.miro.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.token != ""
}

// CreateBoard creates a board and returns its id.
func (c *Client) CreateBoard(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("board: name is required")
	}
	var out boardResponse
	req := boardRequest{Name: name, Description: "Generated cuts"}
	if err := c.do(ctx, http.MethodPost, "/v2/boards", req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("board: create returned no id")
	}
	c.logger.Info().Str("board_id", out.ID).Str("name", name).Msg("board: created")
	return out.ID, nil
}

// GetBoard confirms the board exists and returns its canonical id.
func (c *Client) GetBoard(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("board: id is required")
	}
	var out boardResponse
	if err := c.do(ctx, http.MethodGet, "/v2/boards/"+url.PathEscape(id), nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("board %s: %w", id, domain.ErrNotFound)
		}
		return "", err
	}
	if out.ID == "" {
		return id, nil
	}
	return out.ID, nil
}

// UploadImage places an image item by URL, centred on pos.
func (c *Client) UploadImage(ctx context.Context, boardID, imageURL string, pos domain.Position, label string, width float64) error {
	var item imageItem
	item.Data.URL = imageURL
	item.Data.Title = label
	item.Position = position{X: pos.X, Y: pos.Y, Origin: "center"}
	item.Geometry = geometry{Width: width}
	return c.do(ctx, http.MethodPost, "/v2/boards/"+url.PathEscape(boardID)+"/images", item, nil)
}

// CreateTextLabel places a text item centred on pos.
func (c *Client) CreateTextLabel(ctx context.Context, boardID, text string, pos domain.Position, width float64) error {
	var item textItem
	item.Data.Content = text
	item.Position = position{X: pos.X, Y: pos.Y, Origin: "center"}
	item.Geometry = geometry{Width: width}
	return c.do(ctx, http.MethodPost, "/v2/boards/"+url.PathEscape(boardID)+"/texts", item, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.HasCredentials() {
		return ErrMissingToken
	}
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("board: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("board: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("board: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("board: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Message != "" {
			msg = detail.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("board: decode response: %w", err)
	}
	return nil
}

var _ domain.BoardService = (*Client)(nil)
