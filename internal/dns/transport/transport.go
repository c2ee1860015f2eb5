// Package transport is the HTTP client shared by every DNS provider. It
// applies the engine timeout, retries idempotent requests on transient
// failures and translates transport errors into domain.ErrNetwork.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/log"
	"nathanbeddoewebdev/dnsctl/internal/retry"
)

const maxBodyBytes = 8 << 20

// Option configures a Client.
type Option func(*options)

type options struct {
	roundTripper http.RoundTripper
	retry        *retry.Config
}

// WithRoundTripper replaces the default HTTP transport. The conformance
// suite uses it to route requests through the fixture recorder.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.roundTripper = rt
	}
}

// WithRetry replaces the retry configuration derived from the engine
// settings.
func WithRetry(cfg retry.Config) Option {
	return func(o *options) {
		o.retry = &cfg
	}
}

// Client sends provider requests.
type Client struct {
	provider string
	http     *http.Client
	retry    retry.Config
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New returns a Client for the named provider using cfg's timeout and
// retry attempts.
func New(provider string, cfg engine.Config, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = engine.DefaultTimeout
	}

	rc := retry.DefaultConfig().Attempts(max(cfg.RetryAttempts, 1))
	if o.retry != nil {
		rc = *o.retry
	}

	return &Client{
		provider: provider,
		http:     &http.Client{Timeout: timeout, Transport: o.roundTripper},
		retry:    rc,
	}
}

// Do sends req and reads the whole response body. Failures to reach the
// backend, including timeouts, wrap domain.ErrNetwork. HTTP error
// statuses are returned as a normal Response for the provider to map.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	req = req.WithContext(ctx)
	elapsed := log.Elapsed("elapsed")

	var resp *Response
	attempt := 0
	cfg := c.retry
	if !idempotent(req.Method) {
		cfg = cfg.Attempts(1)
	}
	cfg.OnRetry = func(n int, err error, delay time.Duration) {
		log.S(ctx).Debugw("retrying request",
			"provider", c.provider, "method", req.Method, "path", req.URL.Path,
			"attempt", n, "delay", delay, zap.Error(err))
	}

	err := retry.Do(ctx, cfg, isRetryable, func() error {
		attempt++
		r, err := c.send(req, attempt)
		if err != nil {
			return err
		}
		resp = r
		if retryableStatus(r.StatusCode) {
			return &statusError{code: r.StatusCode, after: retryAfter(r.Header)}
		}
		return nil
	})

	var se *statusError
	if errors.As(err, &se) && resp != nil {
		err = nil
	}

	if err != nil {
		log.S(ctx).Debugw("request failed",
			"provider", c.provider, "method", req.Method, "host", req.URL.Host, "path", req.URL.Path,
			elapsed, zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, req.Method, redact(req.URL), unwrapURLError(err))
	}

	log.S(ctx).Debugw("request done",
		"provider", c.provider, "method", req.Method, "host", req.URL.Host, "path", req.URL.Path,
		"status", resp.StatusCode, elapsed)
	return resp, nil
}

func (c *Client) send(req *http.Request, attempt int) (*Response, error) {
	if attempt > 1 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Body = body
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

type statusError struct {
	code  int
	after time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d", e.code)
}

func (e *statusError) RetryAfter() time.Duration { return e.after }

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. Absent or malformed values yield zero.
func retryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(time.Until(at), 0)
	}
	return 0
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return true
	}
	return retry.IsRetryable(err)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// redact drops the query string, which may carry credentials.
func redact(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// unwrapURLError strips *url.Error, whose message repeats the full URL.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
