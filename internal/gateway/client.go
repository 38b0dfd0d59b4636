// Package gateway talks to the remote booking REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/booking-admin/internal/logging"
)

// DefaultTimeout bounds every call when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// TokenSource supplies the bearer token and is told when the server rejects it.
type TokenSource interface {
	Token() (string, bool)
	Invalidate(ctx context.Context) error
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *slog.Logger
	// NewRequestID overrides uuid.NewString for request ids.
	NewRequestID func() string
}

// Client performs JSON calls against the remote API. No call is retried.
type Client struct {
	base      *url.URL
	timeout   time.Duration
	http      *http.Client
	tokens    TokenSource
	logger    *slog.Logger
	requestID func() string
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("gateway: invalid base URL %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewRequestID == nil {
		opts.NewRequestID = uuid.NewString
	}
	return &Client{
		base:      base,
		timeout:   opts.Timeout,
		http:      opts.HTTPClient,
		tokens:    opts.Tokens,
		logger:    opts.Logger.With("component", "gateway"),
		requestID: opts.NewRequestID,
	}, nil
}

// call describes one request.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	// auth attaches the bearer token and short-circuits without one.
	auth bool
}

type listEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// FetchList GETs path and decodes the "data" array of the response into out,
// which must be a pointer to a slice.
func (c *Client) FetchList(ctx context.Context, path string, query url.Values, out any) error {
	req := call{op: "fetch", method: http.MethodGet, path: path, query: query, auth: true}
	body, err := c.do(ctx, req)
	if err != nil {
		return err
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return c.malformed(req, fmt.Errorf("decode envelope: %w", err))
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || data[0] != '[' {
		return c.malformed(req, errors.New(`"data" is not an array`))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.malformed(req, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

// Create POSTs payload to path. When out is non-nil the created record is
// decoded into it, unwrapping a {"data": {...}} envelope when present.
func (c *Client) Create(ctx context.Context, path string, payload, out any) error {
	req := call{op: "create", method: http.MethodPost, path: path, body: payload, auth: true}
	body, err := c.do(ctx, req)
	if err != nil || out == nil || len(bytes.TrimSpace(body)) == 0 {
		return err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		data := bytes.TrimSpace(envelope.Data)
		if len(data) == 0 || data[0] != '{' {
			return c.malformed(req, errors.New(`"data" is not an object`))
		}
		body = data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.malformed(req, fmt.Errorf("decode created record: %w", err))
	}
	return nil
}

func (c *Client) malformed(req call, err error) error {
	gwErr := &Error{Kind: KindMalformedResponse, Op: req.op, Endpoint: req.path, Err: err}
	c.logger.Warn("gateway response malformed", "op", req.op, "endpoint", req.path, "error", err)
	return gwErr
}

// do sends req under the client timeout and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, req call) (body []byte, err error) {
	logger := c.loggerFor(ctx).With("op", req.op, "endpoint", req.path)
	started := time.Now()
	status := 0
	defer func() {
		attrs := []any{"status", status, "duration", time.Since(started)}
		if err != nil {
			kind, _ := KindOf(err)
			logger.Warn("gateway request failed", append(attrs, "error", err, "error_kind", string(kind))...)
			return
		}
		logger.Debug("gateway request completed", attrs...)
	}()

	var token string
	if req.auth {
		var ok bool
		if c.tokens != nil {
			token, ok = c.tokens.Token()
		}
		if !ok || token == "" {
			return nil, &Error{Kind: KindUnauthenticated, Op: req.op, Endpoint: req.path}
		}
	}

	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode %s payload: %w", req.op, err)
		}
		payload = bytes.NewReader(encoded)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, req.method, c.endpoint(req.path, req.query), payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", c.requestIDFor(ctx))
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.transportError(ctx, req, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, req, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(ctx, req, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) transportError(parent context.Context, req call, err error) error {
	gwErr := &Error{Op: req.op, Endpoint: req.path, Err: err}

	var netErr net.Error
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		gwErr.Kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		gwErr.Kind = KindTimeout
	default:
		gwErr.Kind = KindNetworkUnreachable
	}
	return gwErr
}

func (c *Client) statusError(ctx context.Context, req call, status int, body []byte) error {
	gwErr := &Error{Kind: KindServerRejected, Op: req.op, Endpoint: req.path, Status: status, Message: serverMessage(body)}

	if status == http.StatusUnauthorized && req.auth {
		gwErr.Kind = KindUnauthorized
		if c.tokens != nil {
			if err := c.tokens.Invalidate(context.WithoutCancel(ctx)); err != nil {
				c.loggerFor(ctx).Error("failed to invalidate session", "error", err)
			}
		}
	}
	return gwErr
}

// serverMessage extracts "message" (or "error") from a JSON error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// requestIDFor forwards the id of the inbound request when there is one.
func (c *Client) requestIDFor(ctx context.Context) string {
	if id, ok := logging.RequestIDFromContext(ctx); ok {
		return id
	}
	return c.requestID()
}

func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger.With("component", "gateway")
	}
	return c.logger
}
