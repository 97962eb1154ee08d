package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/me/kitlend/internal/logging"
)

// TokenStore persists the bearer credential used by the client.
// Load returns an empty string and a nil error when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Client provides methods to interact with the lending backend.
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     TokenStore
	logger     *slog.Logger
}

// NewClient creates a new API client. tokens supplies the credential for the
// Authorization header and receives it on login.
func NewClient(config Config, tokens TokenStore, logger *slog.Logger) *Client {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		tokens: tokens,
		logger: logging.Component(logger, "api-client"),
	}
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Response is a completed 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// JSON is true when the body is JSON, by content type or by content.
	JSON bool
}

// Text returns the body as trimmed text.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Body))
}

// Payload returns the JSON payload with a top-level {data: ...} envelope
// removed. It returns nil for empty or non-JSON bodies.
func (r *Response) Payload() json.RawMessage {
	if !r.JSON {
		return nil
	}
	return unwrapData(r.Body)
}

// Do performs an HTTP request against path and returns the response.
// body, when non-nil, is sent as JSON. Non-2xx responses return *HTTPError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	return c.do(ctx, method+" "+path, method, path, body, true)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// do executes one request. auth controls whether the stored credential is
// attached.
func (c *Client) do(ctx context.Context, op, method, path string, body any, auth bool) (*Response, error) {
	url := c.config.BaseURL + path
	reqID := uuid.New().String()
	logger := c.logger.With("op", op, "request_id", reqID)

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, wrapError(op, fmt.Errorf("marshal request: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, wrapError(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		token, err := c.tokens.Load(ctx)
		if err != nil {
			return nil, wrapError(op, fmt.Errorf("load credential: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger.Debug("HTTP request", "method", method, "url", url)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, wrapError(op, ctxErr)
		}
		logger.Debug("HTTP request failed", "error", err)
		return nil, wrapError(op, fmt.Errorf("%w: %w", ErrUnreachable, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(op, fmt.Errorf("read response: %w", err))
	}

	logger.Debug("HTTP response", "status", resp.StatusCode, "duration", time.Since(start).String(), "bytes", len(respBody))

	isJSON := isJSONBody(resp.Header.Get("Content-Type"), respBody)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, wrapError(op, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, respBody, isJSON),
			Body:       string(respBody),
		})
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		JSON:       isJSON,
	}, nil
}

// isJSONBody reports whether a response body should be treated as JSON.
// A JSON content type wins; otherwise a body that parses as a JSON object or
// array counts.
func isJSONBody(contentType string, body []byte) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if mt == "application/json" || strings.HasSuffix(mt, "+json") {
			return json.Valid(body)
		}
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid(trimmed)
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(status int, body []byte, isJSON bool) string {
	if isJSON {
		var fields struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(body, &fields) == nil {
			if fields.Message != "" {
				return fields.Message
			}
			if fields.Error != "" {
				return fields.Error
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
