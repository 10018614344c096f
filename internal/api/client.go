// Package api is the HTTP client for the command service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/httpheaders"
	"github.com/lydakis/cmdconsole/internal/log"
	"github.com/lydakis/cmdconsole/internal/response"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

const defaultMaxBodyBytes = 8 << 20

// ErrResponseTooLarge is returned when a reply body exceeds the client limit.
var ErrResponseTooLarge = errors.New("response too large")

// Client sends requests described by a config.Connection. It holds no
// connection state of its own, so a Connection changed after a call starts
// never affects that call.
type Client struct {
	http    *http.Client
	log     zerolog.Logger
	newID   func() string
	now     func() time.Time
	maxBody int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger used for per-call debug entries.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxBodyBytes caps how much of a reply body is read. Non-positive
// values keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New returns a Client.
func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		log:     log.WithComponent("api"),
		newID:   uuid.NewString,
		now:     time.Now,
		maxBody: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a received reply. Body is the decoded JSON (numbers as
// json.Number), response.RawBody for non-JSON text, or nil when empty.
type Result struct {
	Status    int
	Body      any
	Raw       []byte
	Latency   time.Duration
	RequestID string
}

// OK reports whether the status is 2xx.
func (r *Result) OK() bool {
	return r != nil && response.Success(r.Status)
}

// do performs one round trip. A non-nil error means no response was
// received; Result still carries the latency and request id in that case.
func (c *Client) do(ctx context.Context, conn config.Connection, method, path string, body any) (*Result, error) {
	rid := c.newID()
	res := &Result{RequestID: rid}
	ctx = log.ContextWithRequestID(ctx, rid)
	logger := log.WithContext(ctx, c.log)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return res, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(conn.BaseURL, path), reader)
	if err != nil {
		return res, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	httpheaders.Apply(req.Header, conn.Headers())
	req.Header.Set(RequestIDHeader, rid)

	start := c.now()
	resp, err := c.http.Do(req)
	res.Latency = c.now().Sub(start)
	if err != nil {
		logger.Debug().Err(err).Str("method", method).Str("path", path).Dur("latency", res.Latency).Msg("request failed")
		return res, err
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	res.Raw, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		logger.Debug().Err(err).Str("method", method).Str("path", path).Int("status", res.Status).Msg("reading response failed")
		return res, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(res.Raw)) > c.maxBody {
		res.Raw = nil
		logger.Debug().Str("method", method).Str("path", path).Int("status", res.Status).Int64("limit", c.maxBody).Msg("response too large")
		return res, fmt.Errorf("%w: body exceeds %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	res.Body = decodeBody(res.Raw)

	logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", res.Status).
		Dur("latency", res.Latency).
		Int("bytes", len(res.Raw)).
		Msg("request")
	return res, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return response.RawBody(raw)
	}
	return v
}

// decodeInto re-decodes a result into a typed value.
func decodeInto(res *Result, out any) error {
	if len(bytes.TrimSpace(res.Raw)) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(res.Raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
