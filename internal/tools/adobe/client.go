// Package adobe implements the Adobe Target Admin API tools.
package adobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"targetmcp/internal/domain"
)

const (
	contentType = "application/vnd.adobe.target.v1+json"

	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 1024
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Status, e.Body)
}

// Client talks to the Target Admin API for one organisation.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	activityID string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLimiter throttles outbound requests with l.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(cfg domain.AdobeConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		token:      cfg.Token(),
		activityID: cfg.ActivityID,
		http:       &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	if c.baseURL == "" {
		c.baseURL = domain.DefaultAdobeBaseURL
	}
	if c.activityID == "" {
		c.activityID = domain.DefaultAdobeActivityID
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("adobe")
	return c
}

// UpdateActivity PUTs body to /{tenant}/target/activities/ab/{activityID}/{resource}
// and returns the decoded response. An empty activityID selects the configured one.
func (c *Client) UpdateActivity(ctx context.Context, tenant, activityID, resource string, body any) (any, error) {
	if tenant == "" {
		return nil, fmt.Errorf("tenant is required")
	}
	if activityID == "" {
		activityID = c.activityID
	}
	path := "/" + url.PathEscape(tenant) + "/target/activities/ab/" + url.PathEscape(activityID) + "/" + resource

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType+", application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", http.MethodPut, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("target request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(raw))
		if len(text) > maxErrorBodyLen {
			text = text[:maxErrorBodyLen]
		}
		return nil, &APIError{
			Method:     http.MethodPut,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       text,
		}
	}
	return decodeBody(raw), nil
}

func decodeBody(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return map[string]any{}
	}
	var out any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return string(trimmed)
	}
	return out
}
