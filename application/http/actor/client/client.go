package client

import (
	"context"
	"log/slog"
	"sync"

	"rawhttp/application/http"
	"rawhttp/transport"
	"rawhttp/transport/tls"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Client issues GET and POST requests over TLS.
// Its only state is the base header set; every call builds its own
// request, connection and response, so calls may run concurrently.
type Client struct {
	dialer transport.Dialer
	opts   Options

	logger *slog.Logger
	clock  clock.Clock

	mu      sync.RWMutex
	headers http.Header
}

func New(
	d transport.Dialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		dialer: d,
		opts:   opts,
		logger: logger,
		clock:  clock,
		headers: http.Header{
			"User-Agent": userAgent,
			"Accept":     "*/*",
			"Connection": "close",
		},
	}
}

// NewDefault returns a Client on the shared TLS connector.
func NewDefault() *Client {
	return New(tls.DefaultConnector(), slog.Default(), clock.New(), DefaultOptions)
}

// SetHeader sets a base header sent with every later call.
// It replaces any previous value under the same name, defaults included.
func (c *Client) SetHeader(name, value string) *Client {
	c.mu.Lock()
	c.headers.Set(name, value)
	c.mu.Unlock()
	return c
}

// HeaderAuthorization sets "Authorization: Bearer <token>".
func (c *Client) HeaderAuthorization(token string) *Client {
	return c.SetHeader("Authorization", "Bearer "+token)
}

// Headers returns a copy of the base headers.
func (c *Client) Headers() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.send(ctx, http.NewRequest(url, c.Headers()).Get())
}

func (c *Client) Post(ctx context.Context, url string, body string) (*http.Response, error) {
	return c.send(ctx, http.NewRequest(url, c.Headers()).Post(body))
}

func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	host, port := req.Addr()
	logger := c.logger.With(
		slog.String("method", req.Method()),
		slog.String("host", host),
		slog.Uint64("port", uint64(port)),
		slog.String("path", req.URL().Path),
	)

	logger.Debug("sending request", slog.Int("bytes", len(req.Bytes())))

	start := c.clock.Now()
	resp, err := req.Send(ctx, c.dialer, c.opts.Decode)
	elapsed := c.clock.Since(start)
	if err != nil {
		logger.Debug("request failed", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		return nil, errors.Wrapf(err, "%s %s", req.Method(), host)
	}

	resp.Elapsed = elapsed

	if resp.Truncated {
		logger.Warn("chunked body ended early on a malformed chunk size",
			slog.Int("bytes", len(resp.Body)),
		)
	}

	logger.Debug("received response",
		slog.Uint64("status", uint64(resp.Status.Code)),
		slog.Int("bytes", len(resp.Body)),
		slog.Duration("elapsed", elapsed),
	)

	return resp, nil
}
