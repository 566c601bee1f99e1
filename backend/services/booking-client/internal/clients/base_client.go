package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// BaseClient performs authenticated JSON calls against the booking server.
type BaseClient struct {
	baseURL string
	client  HTTPDoer
	token   *Token
	now     func() time.Time
	logger  *zap.Logger
}

// Option customizes a BaseClient.
type Option func(*BaseClient)

// WithToken attaches a bearer token to every request.
func WithToken(token *Token) Option {
	return func(c *BaseClient) { c.token = token }
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *BaseClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *BaseClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewBaseClient builds client with base URL.
func NewBaseClient(baseURL string, client HTTPDoer, opts ...Option) *BaseClient {
	c := &BaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *BaseClient) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do executes HTTP request and returns status/body.
func (c *BaseClient) Do(ctx context.Context, method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	if c.token.Expired(c.now()) {
		return 0, nil, ErrTokenExpired
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if !c.token.Empty() {
		req.Header.Set("Authorization", c.token.AuthHeader())
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	started := c.now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("booking api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	c.logger.Debug("booking api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", c.now().Sub(started)),
	)
	return resp.StatusCode, respBody, nil
}

// getJSON issues a GET and decodes a 2xx body into out.
func (c *BaseClient) getJSON(ctx context.Context, path string, out interface{}) error {
	status, body, err := c.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return decodeResponse(status, body, out)
}

// sendJSON encodes payload, issues the request and decodes a 2xx body into out.
func (c *BaseClient) sendJSON(ctx context.Context, method, path string, payload interface{}, headers map[string]string, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	status, body, err := c.Do(ctx, method, path, data, headers)
	if err != nil {
		return err
	}
	return decodeResponse(status, body, out)
}

func decodeResponse(status int, body []byte, out interface{}) error {
	if status < 200 || status >= 300 {
		return newAPIError(status, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	// Accept both bare payloads and {"data": ...} envelopes.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 {
		body = envelope.Data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// NewDefaultHTTPClient returns *http.Client. A zero timeout keeps the transport default.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
