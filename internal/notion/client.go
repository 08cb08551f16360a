// Package notion is a throttled client for the Notion REST API that decodes
// pages, block trees and database listings into domain models.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/starford/notionmd/internal/apperr"
)

// Upstream call outcomes reported to the observer.
const (
	OutcomeOK           = "ok"
	OutcomeRetry        = "retry"
	OutcomeNotFound     = "not_found"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

const (
	defaultBaseURL = "https://api.notion.com"
	defaultVersion = "2022-06-28"
	maxBackoff     = 8 * time.Second
	maxRetryAfter  = 30 * time.Second
)

// Config holds the client settings.
type Config struct {
	BaseURL        string
	Version        string
	Timeout        time.Duration
	RateLimit      float64
	Burst          int
	MaxConcurrency int
	MaxRetries     int
}

// Client talks to the Notion API. It is safe for concurrent use; all calls
// share one rate limiter and one concurrency bound.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	logger  *slog.Logger
	observe func(outcome string)
	backoff time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithObserver registers a callback invoked once per HTTP attempt.
func WithObserver(fn func(outcome string)) Option {
	return func(c *Client) { c.observe = fn }
}

// WithBackoff sets the base delay between retries.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// New creates a Client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	cfg.Burst = max(cfg.Burst, 1)
	cfg.MaxConcurrency = max(cfg.MaxConcurrency, 1)
	cfg.MaxRetries = max(cfg.MaxRetries, 0)

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		logger:  slog.Default(),
		observe: func(string) {},
		backoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the error object Notion returns with non-2xx responses.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notion: status %d", e.Status)
	}
	return fmt.Sprintf("notion: %s (%s)", e.Message, e.Code)
}

// do sends one API request, retrying rate-limited and server failures, and
// decodes a successful response into out.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("missing notion token: %w", apperr.ErrUnauthorized)
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		status, data, retryAfter, err := c.send(ctx, method, path, token, payload)

		var failure error
		switch {
		case err != nil && ctx.Err() != nil:
			return fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		case err != nil:
			failure = err
		case status >= 200 && status < 300:
			c.observe(OutcomeOK)
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode %s response: %w", path, err)
			}
			return nil
		case status == http.StatusTooManyRequests || status >= 500:
			failure = decodeAPIError(status, data)
		default:
			return c.classify(status, data)
		}

		if attempt >= c.cfg.MaxRetries {
			c.observe(OutcomeError)
			return fmt.Errorf("%s %s after %d attempts: %w: %w", method, path, attempt+1, apperr.ErrTransient, failure)
		}
		c.observe(OutcomeRetry)

		wait := c.delay(attempt, retryAfter)
		c.logger.Debug("retrying notion request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.String("error", failure.Error()))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		case <-timer.C:
		}
	}
}

// send performs a single attempt under the limiter and concurrency bound.
func (c *Client) send(ctx context.Context, method, path, token string, payload []byte) (int, []byte, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, 0, err
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return 0, nil, 0, err
	}
	defer c.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Notion-Version", c.cfg.Version)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// classify maps a non-retryable failure to an application error.
func (c *Client) classify(status int, data []byte) error {
	apiErr := decodeAPIError(status, data)
	switch status {
	case http.StatusBadRequest:
		c.observe(OutcomeInvalid)
		return fmt.Errorf("%w: %w", apperr.ErrValidation, apiErr)
	case http.StatusUnauthorized, http.StatusForbidden:
		c.observe(OutcomeUnauthorized)
		return fmt.Errorf("%w: %w", apperr.ErrUnauthorized, apiErr)
	case http.StatusNotFound:
		c.observe(OutcomeNotFound)
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, apiErr)
	default:
		c.observe(OutcomeError)
		return apiErr
	}
}

func decodeAPIError(status int, data []byte) *apiError {
	e := &apiError{}
	if err := json.Unmarshal(data, e); err != nil || e.Status == 0 {
		e.Status = status
	}
	return e
}

// delay returns how long to wait before the next attempt. A server-supplied
// Retry-After wins over exponential backoff.
func (c *Client) delay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, maxRetryAfter)
	}
	d := c.backoff << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
