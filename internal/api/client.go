// Package api wraps the library REST endpoints: auth headers, a per call
// deadline, the error taxonomy and the URL dispatch table.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"library-client/pkg/logger"
)

const (
	DefaultTimeout  = 5000 * time.Millisecond
	DefaultPageSize = 25

	HeaderUsername  = "X-Username"
	HeaderRequestID = "X-Request-ID"
)

// Credentials are attached to every outgoing call.
type Credentials struct {
	AccessToken string
	Username    string
}

// TokenSource yields current credentials, refreshing them first when due.
// It may block; the refresh happens before the request is sent.
type TokenSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// Response is a completed 2xx call.
type Response struct {
	Status int
	Data   []byte
}

// Client issues REST calls rooted at a base URL such as http://host/api.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	timeout time.Duration
	log     zerolog.Logger
}

type Option func(*Client)

// WithTimeout overrides the per call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client. tokens may be nil for anonymous calls.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    defaultHTTPClient(),
		tokens:  tokens,
		timeout: DefaultTimeout,
		log:     logger.Component("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// PostForm sends form encoded values, as the OAuth token endpoint expects.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, form)
}

// Do performs one call. A url.Values body is form encoded, anything else is
// JSON. Non-2xx statuses come back as *Error, an expired deadline as
// KindServiceUnavailable and a canceled ctx as context.Canceled.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	creds, err := c.credentials(ctx)
	if err != nil {
		return nil, err
	}

	contentType := "application/json"
	var payload io.Reader
	switch b := body.(type) {
	case nil:
	case url.Values:
		contentType = "application/x-www-form-urlencoded"
		payload = strings.NewReader(b.Encode())
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(HeaderRequestID, requestID)
	if creds.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	}
	if creds.Username != "" {
		req.Header.Set(HeaderUsername, creds.Username)
	}

	start := time.Now()
	resp, data, err := c.roundTrip(req)
	if err != nil {
		err = transportError(ctx, reqCtx, err)
		c.log.Debug().Err(err).
			Str("method", method).Str("path", path).Str("request_id", requestID).
			Dur("latency", time.Since(start)).
			Msg("request failed")
		return nil, err
	}

	c.log.Debug().
		Str("method", method).Str("path", path).Str("request_id", requestID).
		Int("status", resp.StatusCode).Dur("latency", time.Since(start)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, FromStatus(resp.StatusCode, errorMessage(data))
	}
	return &Response{Status: resp.StatusCode, Data: data}, nil
}

func (c *Client) credentials(ctx context.Context) (Credentials, error) {
	if c.tokens == nil {
		return Credentials{}, nil
	}
	creds, err := c.tokens.Credentials(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Credentials{}, ctxErr
		}
		// the server answers 401 for a missing token
		c.log.Warn().Err(err).Msg("credentials unavailable")
		return Credentials{}, nil
	}
	return creds, nil
}

// roundTrip reads the whole body while the deadline still applies.
func (c *Client) roundTrip(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, data, nil
}

func transportError(parent, reqCtx context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return context.Canceled
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindServiceUnavailable, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

// errorMessage extracts {"message": ...} from an error body, falling back to the raw text.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(data))
}
