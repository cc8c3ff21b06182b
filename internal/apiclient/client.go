package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every remote call when the config leaves it unset
const DefaultTimeout = 10 * time.Second

// Call describes one finished remote call for telemetry
type Call struct {
	Method     string
	Endpoint   string // path template, e.g. /api/notifications/{product}
	StatusCode int
	Duration   time.Duration
	Outcome    Class
}

// Recorder receives one Call per remote request
type Recorder interface {
	RecordCall(ctx context.Context, call Call)
}

// Config configures a Client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Recorder   Recorder
	Logger     *slog.Logger
}

// Client talks to the stock-management API
type Client struct {
	baseURL    string
	httpClient *http.Client
	recorder   Recorder
	logger     *slog.Logger
}

// New creates a new API client
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		recorder:   cfg.Recorder,
		logger:     logger,
	}
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout of the underlying HTTP client
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// request is one outbound call. endpoint is the low-cardinality path
// template used for metrics and logs; path is the concrete path.
type request struct {
	method      string
	endpoint    string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// doJSON issues req and decodes a 2xx body into T
func doJSON[T any](ctx context.Context, c *Client, req request) (*T, error) {
	raw, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Error("API response did not match schema", "endpoint", req.endpoint, "error", err)
		return nil, &DecodeError{Endpoint: req.endpoint, Err: err}
	}
	return &out, nil
}

// jsonBody marshals v as a request body
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// do sends the request and returns the raw body of a 2xx response
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	} else if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, RequestIDFromContext(ctx))

	c.logger.Debug("API request", "method", r.method, "url", target)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.record(ctx, r, 0, start, ClassCanceled)
			return nil, fmt.Errorf("request to %s canceled: %w", r.endpoint, err)
		}
		c.logger.Warn("API request failed", "endpoint", r.endpoint, "error", err)
		c.record(ctx, r, 0, start, ClassUnreachable)
		return nil, &ConnectivityError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("Failed to read API response", "endpoint", r.endpoint, "error", err)
		c.record(ctx, r, resp.StatusCode, start, ClassUnreachable)
		return nil, &ConnectivityError{BaseURL: c.baseURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("API response", "endpoint", r.endpoint, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Detail: parseDetail(body)}
		c.logger.Error("API error response", "endpoint", r.endpoint, "status", resp.StatusCode, "detail", apiErr.Detail)
		c.record(ctx, r, resp.StatusCode, start, ClassServerError)
		return nil, apiErr
	}

	c.record(ctx, r, resp.StatusCode, start, ClassNone)
	return body, nil
}

func (c *Client) record(ctx context.Context, r request, status int, start time.Time, outcome Class) {
	if c.recorder == nil {
		return
	}
	c.recorder.RecordCall(ctx, Call{
		Method:     r.method,
		Endpoint:   r.endpoint,
		StatusCode: status,
		Duration:   time.Since(start),
		Outcome:    outcome,
	})
}

// parseDetail extracts the "detail" field of an error body. String details
// are returned as is; structured ones (validation errors) as compact JSON.
func parseDetail(body []byte) string {
	var errBody struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil || len(errBody.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(errBody.Detail, &detail); err == nil {
		return detail
	}
	if string(errBody.Detail) == "null" {
		return ""
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, errBody.Detail); err != nil {
		return ""
	}
	return compact.String()
}
