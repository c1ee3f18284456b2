// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

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
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the retrieval service (default: http://localhost:8000)
	BaseURL string

	// AuthURL is the auth service (default: http://localhost:5000)
	AuthURL string

	// QueryTimeout bounds POST /api/query (default: 120s)
	QueryTimeout time.Duration

	// UploadTimeout bounds POST /api/upload-pdf (default: 60s)
	UploadTimeout time.Duration

	// RequestTimeout bounds every other call (default: 30s)
	RequestTimeout time.Duration

	// RatePerSec and Burst configure the limiter. Zero rate disables it.
	RatePerSec float64
	Burst      int

	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://localhost:8000",
		AuthURL:        "http://localhost:5000",
		QueryTimeout:   120 * time.Second,
		UploadTimeout:  60 * time.Second,
		RequestTimeout: 30 * time.Second,
		RatePerSec:     5,
		Burst:          5,
		UserAgent:      "lexora-tui",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the LexoraAI backend.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger

	mu    sync.RWMutex
	token func() string
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	def := DefaultConfig()

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = def.AuthURL
	}
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = def.QueryTimeout
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = def.UploadTimeout
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	config.AuthURL = strings.TrimRight(config.AuthURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		// Per-call deadlines come from the context.
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if config.RatePerSec > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RatePerSec), burst)
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
		log:        logger.With("component", "api"),
	}
}

// Config returns the effective configuration.
func (c *Client) Config() ClientConfig {
	return *c.config
}

// SetTokenSource installs the bearer token provider. A nil function or an
// empty token sends no Authorization header.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	c.token = fn
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	fn := c.token
	c.mu.RUnlock()
	if fn == nil {
		return ""
	}
	return fn()
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

type request struct {
	method      string
	url         string
	body        io.Reader
	contentType string
	timeout     time.Duration
}

func (c *Client) endpoint(base, path string, query url.Values) string {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to marshal request", Cause: err}
	}
	return bytes.NewReader(data), nil
}

// do sends r and returns the raw 2xx body. Non-2xx answers become a
// *ClientError carrying the server's own text when it sent one.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "rate limit wait exceeds deadline", Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidRequest, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, r, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, r, err)
	}

	c.log.Debug("request completed",
		"method", r.method, "url", r.url, "status", resp.StatusCode,
		"duration", time.Since(start), "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, body)
	}
	return body, nil
}

func (c *Client) transportError(ctx context.Context, r request, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.log.Warn("request timed out", "method", r.method, "url", r.url, "timeout", r.timeout)
		return &ClientError{
			Type:    ErrTypeTimeout,
			Message: fmt.Sprintf("request timed out after %s", r.timeout),
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request canceled", Cause: err}
	}
	c.log.Warn("request failed", "method", r.method, "url", r.url, "error", err)
	host := r.url
	if u, perr := url.Parse(r.url); perr == nil {
		host = u.Host
	}
	return &ClientError{Type: ErrTypeConnection, Message: "cannot reach " + host, Cause: err}
}

func statusError(resp *http.Response, body []byte) error {
	typ := ErrTypeStatus
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		typ = ErrTypeUnauthorized
	}
	msg := serverMessage(body)
	if msg == "" {
		msg = "request failed: " + resp.Status
	}
	return &ClientError{Type: typ, Message: msg, Status: resp.StatusCode}
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, base, path string, in any, timeout time.Duration) ([]byte, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint(base, path, nil),
		body:        body,
		contentType: "application/json",
		timeout:     timeout,
	})
}
