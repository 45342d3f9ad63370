// Package api is the JSON-over-HTTP client for the supply-chain backend.
// Every request goes through the bearer transport, so call sites never touch
// credentials.
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
	"time"

	"github.com/dukerupert/supplyline/internal/transport"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	baseURL *url.URL
	hc      *http.Client
}

type Option func(*options)

type options struct {
	base    http.RoundTripper
	timeout time.Duration
	logger  *slog.Logger
}

// WithBaseTransport sets the RoundTripper under the bearer transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a client for baseURL. Paths passed to Do are resolved relative
// to it, so a base of "https://host/api/v1/" and a path of "orders" hits
// "https://host/api/v1/orders".
func New(baseURL string, tokens transport.TokenSource, opts ...Option) (*Client, error) {
	o := options{timeout: 30 * time.Second, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	rt := &transport.Logging{
		Logger: o.logger,
		Base:   &transport.Bearer{Base: o.base, Tokens: tokens},
	}
	return &Client{
		baseURL: u,
		hc:      &http.Client{Transport: rt, Timeout: o.timeout},
	}, nil
}

// HTTPClient returns a client sharing the authenticated transport but without
// an overall timeout, for long-lived connections bounded by a context.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Transport: c.hc.Transport}
}

// URL resolves path, which may carry a query string, against the base URL.
func (c *Client) URL(path string) *url.URL {
	path = strings.TrimPrefix(path, "/")
	ref, err := url.Parse(path)
	if err != nil || ref.IsAbs() {
		ref = &url.URL{Path: path}
	}
	return c.baseURL.ResolveReference(ref)
}

// Do sends body (if non-nil) as JSON and decodes the response into out (if
// non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path).String(), buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	// A 2xx with an empty body leaves out untouched.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) *StatusError {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	detail := body.Message
	if detail == "" {
		detail = body.Error
	}
	return &StatusError{Code: resp.StatusCode, Message: StatusMessage(resp.StatusCode, detail)}
}

// StatusMessage turns a status code into a message fit for display.
func StatusMessage(code int, detail string) string {
	var msg string
	switch code {
	case http.StatusBadRequest:
		msg = "The request was invalid"
	case http.StatusUnauthorized:
		msg = "Invalid credentials or session expired"
	case http.StatusForbidden:
		msg = "You do not have permission to do that"
	case http.StatusNotFound:
		msg = "Not found"
	case http.StatusConflict:
		msg = "Already exists"
	default:
		if code >= 500 {
			msg = "The server is unavailable, try again later"
		} else {
			msg = fmt.Sprintf("Request failed with status %d", code)
		}
	}
	if detail != "" {
		return msg + ": " + detail
	}
	return msg
}
