// Package httpclient is the single request sender the client uses to reach the
// EasyEats backend. Request interceptors run before every send; error
// interceptors observe every failure before it is returned to the caller.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/easyeats/easyeats/internal/logging"
)

const maxResponseBytes = 8 << 20

// RequestInterceptor may mutate an outgoing request. Returning an error aborts
// the call with a setup error.
type RequestInterceptor func(ctx context.Context, req *http.Request) error

// ErrorInterceptor observes a failed call. It cannot recover it.
type ErrorInterceptor func(ctx context.Context, err *Error)

// Response is a successful (2xx) reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v. Empty bodies decode to nothing.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 || v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client sends requests relative to a fixed base URL.
type Client struct {
	baseURL      string
	http         *http.Client
	onRequest    []RequestInterceptor
	onError      []ErrorInterceptor
	defaultHeads http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) { c.onRequest = append(c.onRequest, fn) }
}

// WithErrorInterceptor appends an error interceptor.
func WithErrorInterceptor(fn ErrorInterceptor) Option {
	return func(c *Client) { c.onError = append(c.onError, fn) }
}

// New builds a client for baseURL. Requests default to Content-Type application/json.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		http:         &http.Client{},
		defaultHeads: http.Header{"Content-Type": []string{"application/json"}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, path string, body Body) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, path string, body Body) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends one request. Failures are returned as *Error after the error
// interceptors have seen them. No retries are attempted.
func (c *Client) Do(ctx context.Context, method, path string, body Body) (*Response, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, c.fail(ctx, &Error{Kind: KindSetup, Method: method, Path: path, Err: err})
	}

	for _, intercept := range c.onRequest {
		if err := intercept(ctx, req); err != nil {
			return nil, c.fail(ctx, &Error{Kind: KindSetup, Method: method, Path: path, Err: err})
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, &Error{Kind: KindNetwork, Method: method, Path: path, Err: err})
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.fail(ctx, &Error{Kind: KindNetwork, Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(ctx, &Error{Kind: KindResponse, Method: method, Path: path, Status: resp.StatusCode, Body: data})
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body Body) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		var err error
		reader, contentType, err = body.encode()
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.defaultHeads {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) fail(ctx context.Context, err *Error) error {
	for _, intercept := range c.onError {
		intercept(ctx, err)
	}
	return err
}

// LogErrors logs every failure at a level matching its kind.
func LogErrors() ErrorInterceptor {
	return func(ctx context.Context, err *Error) {
		logger := logging.FromContext(ctx)
		switch err.Kind {
		case KindResponse:
			logger.Warn("api error", "method", err.Method, "path", err.Path, "status", err.Status, "message", err.Message())
		case KindNetwork:
			logger.Error("network error", "method", err.Method, "path", err.Path, "error", err.Err)
		default:
			logger.Error("request setup error", "method", err.Method, "path", err.Path, "error", err.Err)
		}
	}
}
