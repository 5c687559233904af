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
	"strings"
	"time"

	"pulse-cli/internal/metrics"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// TokenSource yields the current bearer token ("" when signed out).
type TokenSource interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Options struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; 0 disables the limiter.
	RateLimit float64
	RateBurst int

	Tokens  TokenSource
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Transport overrides the base round tripper (tests).
	Transport http.RoundTripper
}

// Client talks to the Project Pulse REST API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	log     *slog.Logger
}

func New(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var rt http.RoundTripper = base
	if opts.Tokens != nil {
		rt = &bearerTransport{tokens: opts.Tokens, base: base}
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		http:    &http.Client{Timeout: timeout, Transport: rt},
		limiter: limiter,
		metrics: opts.Metrics,
		log:     log,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// bearerTransport attaches Authorization only while a token exists.
type bearerTransport struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := strings.TrimSpace(t.tokens.Token())
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	ot := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
		Base:   t.base,
	}
	return ot.RoundTrip(req)
}

// do issues one request. in (when non-nil) is sent as JSON; out (when non-nil) receives the
// decoded 2xx body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, op, method, path, in, out)
	c.metrics.ObserveAPI(op, time.Since(start), outcome(err))
	if err != nil {
		c.log.Debug("api request failed", "op", op, "method", method, "path", path, "err", err)
	} else {
		c.log.Debug("api request", "op", op, "method", method, "path", path, "duration_ms", time.Since(start).Milliseconds())
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &NetworkError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode >= 400 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: parseDetail(raw)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrInvalidResponse, err)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.IsServer() {
			return "server_error"
		}
		return "client_error"
	}
	if IsNetwork(err) {
		return "network_error"
	}
	return "error"
}
