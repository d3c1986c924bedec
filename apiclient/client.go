// Package apiclient talks to the remote tournament platform REST API on
// behalf of a viewer. Every call forwards the viewer's bearer token.
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
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	// ErrTransport wraps network failures and unreadable responses.
	ErrTransport = errors.New("remote service unreachable")
	// ErrNoBracket is returned by GetBracket when the tournament has no bracket yet.
	ErrNoBracket = errors.New("bracket not generated")
	// ErrInvalidID is returned before any request when an id is not numeric.
	ErrInvalidID = errors.New("invalid id")
)

// APIError is a non-2xx response of the remote service.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: remote returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: remote returned %d", e.Op, e.StatusCode)
}

// Rejected reports a client-side (4xx) rejection.
func (e *APIError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Observer receives the outcome of every remote call. metrics.Recorder implements it.
type Observer interface {
	ObserveRemoteCall(op string, status int, err error, elapsed time.Duration)
}

type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Location  *time.Location
	Logger    *slog.Logger
	Observer  Observer
}

type Client struct {
	BaseURL  string
	HTTP     *http.Client
	limiter  *rate.Limiter
	loc      *time.Location
	logger   *slog.Logger
	observer Observer
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: opts.Timeout},
		limiter:  limiter,
		loc:      opts.Location,
		logger:   opts.Logger,
		observer: opts.Observer,
	}
}

// do sends one request. body is JSON-encoded when non-nil; out is decoded from
// a JSON response when non-nil. The raw response body is returned as well.
func (c *Client) do(ctx context.Context, op, token, method, path string, body, out interface{}) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.observe(op, 0, err, start)
		return nil, fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		c.observe(op, resp.StatusCode, err, start)
		return nil, fmt.Errorf("%s: %w: read body: %v", op, ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.observe(op, resp.StatusCode, apiErr, start)
		c.logger.Warn("remote call rejected",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("request_id", req.Header.Get("X-Request-ID")))
		return raw, apiErr
	}
	c.observe(op, resp.StatusCode, nil, start)

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("%s: %w: decode response: %v", op, ErrTransport, err)
		}
	}
	return raw, nil
}

func (c *Client) observe(op string, status int, err error, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRemoteCall(op, status, err, time.Since(start))
	}
}
