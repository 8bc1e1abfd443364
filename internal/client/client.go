// Package client is a typed client for the VidAdmin backend REST API.
package client

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

	"github.com/dekarrin/vadm/internal/serr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader is the header every request carries a fresh UUID in, so a
// request can be found in the backend's logs.
const RequestIDHeader = "X-Request-ID"

// Client makes calls against the backend API. Once a token is set with
// SetToken, every request carries it as a bearer credential. A Client is not
// safe for concurrent modification of its token, but concurrent requests are
// fine.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
	token   string
}

// Option configures a Client.
type Option func(c *Client)

// WithHTTPClient makes the Client send requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger makes the Client log each request to log.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithToken sets the initial bearer token.
func WithToken(tok string) Option {
	return func(c *Client) {
		c.token = tok
	}
}

// New creates a Client for the API rooted at baseURL, for example
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken replaces the bearer token sent with subsequent requests. An empty
// token stops the Authorization header from being sent.
func (c *Client) SetToken(tok string) {
	c.token = tok
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the root URL the Client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// send performs the request and returns the response body of a 2xx response.
// Any other response is turned into a serr.Error whose causes identify the
// class of failure.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) ([]byte, string, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Str("request_id", reqID).Msg("request failed")
		return nil, "", serr.New(method+" "+path, err, serr.ErrTransport)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", serr.New(method+" "+path+": read response", err, serr.ErrTransport)
	}

	evt := c.log.Debug()
	if resp.StatusCode >= 400 {
		evt = c.log.Warn()
	}
	evt.
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Str("request_id", reqID).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		// the body may not be JSON at all; status alone is enough then
		_ = json.Unmarshal(respData, &errResp)
		return nil, "", serr.New(method+" "+path, serr.FromStatus(resp.StatusCode, errResp.Error))
	}

	return respData, resp.Header.Get("Content-Type"), nil
}

// do performs a JSON request and decodes the response into out, if out is not
// nil.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	data, _, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return serr.New(method+" "+path+": decode response", err, serr.ErrBodyUnmarshal)
	}
	return nil
}

// idPath builds an endpoint path with an escaped id segment.
func idPath(prefix, id string, suffix ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
