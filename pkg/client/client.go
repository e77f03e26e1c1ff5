// Package client is the Go SDK for the molsmarts HTTP API.
//
// A Client talks to one API server.  Encode requests go through Encoder(),
// SD file jobs through Jobs() and stored patterns through Patterns().
// Transient failures (transport errors, 5xx) are retried with exponential
// backoff; 429 responses honour Retry-After.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/molsmarts/pkg/errors"
)

// Version is the SDK version sent in the User-Agent header.
const Version = "0.1.0"

const (
	contentTypeJSON = "application/json"
	contentTypeSDF  = "chemical/x-mdl-sdfile"
)

// Logger is the minimal logging surface the client needs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	encoder      *EncoderClient
	encoderOnce  sync.Once
	jobs         *JobsClient
	jobsOnce     sync.Once
	patterns     *PatternsClient
	patternsOnce sync.Once
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("molsmarts: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// envelope mirrors the server's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail,omitempty"`
	} `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// request is one API call.  body is sent as is with contentType.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

// response carries what callers need beyond the decoded data.
type response struct {
	statusCode int
	header     http.Header
}

// NewClient returns a client for the API at baseURL.  apiKey may be empty
// when the server is not behind an authenticating gateway.
func NewClient(baseURL string, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "client: baseURL is required")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "client: invalid baseURL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeValidation, "client: baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		userAgent:    fmt.Sprintf("molsmarts-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Encoder() *EncoderClient {
	c.encoderOnce.Do(func() {
		c.encoder = &EncoderClient{client: c}
	})
	return c.encoder
}

func (c *Client) Jobs() *JobsClient {
	c.jobsOnce.Do(func() {
		c.jobs = &JobsClient{client: c}
	})
	return c.jobs
}

func (c *Client) Patterns() *PatternsClient {
	c.patternsOnce.Do(func() {
		c.patterns = &PatternsClient{client: c}
	})
	return c.patterns
}

// do sends req, retrying transient failures, and decodes the data of a
// successful envelope into result.
func (c *Client) do(ctx context.Context, req request, result interface{}) (*response, error) {
	fullURL := c.baseURL + "/" + strings.TrimPrefix(req.path, "/")
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.logger.Debugf("Retry attempt %d after %v", attempt, backoff)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var bodyReader io.Reader
		if req.body != nil {
			bodyReader = bytes.NewReader(req.body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		requestID := uuid.NewString()
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if req.body != nil {
			httpReq.Header.Set("Content-Type", req.contentType)
		}
		httpReq.Header.Set("Accept", contentTypeJSON)
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		duration := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			continue
		}

		c.logger.Debugf("%s %s %d (%v)", req.method, req.path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.retryMax {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
				c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
				select {
				case <-time.After(time.Duration(seconds) * time.Second):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}

		out := &response{statusCode: resp.StatusCode, header: resp.Header}

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp.StatusCode, respBody, requestID)
			lastErr = apiErr
			// 501 means the server lacks the feature; asking again will not help.
			if apiErr.IsServerError() && resp.StatusCode != http.StatusNotImplemented {
				continue
			}
			return out, apiErr
		}

		if result != nil && len(respBody) > 0 {
			var env envelope
			if err := json.Unmarshal(respBody, &env); err != nil {
				return out, fmt.Errorf("failed to unmarshal response: %w", err)
			}
			if len(env.Data) > 0 {
				if err := json.Unmarshal(env.Data, result); err != nil {
					return out, fmt.Errorf("failed to unmarshal response data: %w", err)
				}
			}
		}

		return out, nil
	}

	return nil, lastErr
}

func decodeAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	if len(body) == 0 {
		return apiErr
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Detail = env.Error.Detail
		if env.RequestID != "" {
			apiErr.RequestID = env.RequestID
		}
		return apiErr
	}
	apiErr.Message = string(body)
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query}, result)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, result interface{}) (*response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, request{method: http.MethodPost, path: path, body: data, contentType: contentTypeJSON}, result)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if q := int64(backoff / 4); q > 0 {
		backoff += time.Duration(rand.Int63n(q))
	}
	return backoff
}

func invalidArg(msg string) error {
	return errors.New(errors.ErrCodeValidation, msg)
}

//Personal.AI order the ending
