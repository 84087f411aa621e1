// Package httpapi is the JSON client for the library backend. Every response
// is wrapped in the backend envelope {success, data, message, count, error}.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/id"
	"lectern/internal/platform/logging"
)

const maxDocumentBytes = 256 << 20

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
}

type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HasData reports whether the envelope carried a non-null data member.
func (e Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case apperrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Anonymous requests are sent without a bearer token and never trigger
	// the unauthorized hook (login and register).
	Anonymous bool
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	ids            id.Generator
	logger         *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithIDs(ids id.Generator) Option {
	return func(c *Client) { c.ids = ids }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		ids:     id.UUID{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDiscard(c.logger)
	return c
}

// SetTokenSource installs the session context used for bearer tokens. It is
// set after construction because the auth module itself talks through this
// client.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// OnUnauthorized registers a hook fired when an authenticated call gets 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Do sends req and decodes the envelope. When out is non-nil and the envelope
// carries data, data is decoded into out.
func (c *Client) Do(ctx context.Context, req Request, out any) (Envelope, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return Envelope{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.Anonymous {
		if err := c.authorize(ctx, httpReq); err != nil {
			return Envelope{}, err
		}
	}

	resp, err := c.send(httpReq)
	if err != nil {
		return Envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Envelope{}, c.statusError(resp.StatusCode, raw, req.Anonymous)
	}

	env := Envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return Envelope{}, fmt.Errorf("decode response envelope: %w", err)
		}
	}
	if out != nil && env.HasData() {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return Envelope{}, fmt.Errorf("decode response data: %w", err)
		}
	}
	return env, nil
}

// Download fetches raw bytes from a backend path with the bearer token.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if err := c.authorize(ctx, httpReq); err != nil {
		return nil, err
	}
	return c.download(httpReq, false)
}

// DownloadURL fetches raw bytes from an absolute URL without credentials, for
// signed or public document links.
func (c *Client) DownloadURL(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: document url %q", apperrors.ErrInvalidInput, rawURL)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.download(httpReq, true)
}

func (c *Client) download(httpReq *http.Request, anonymous bool) ([]byte, error) {
	resp, err := c.send(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, c.statusError(resp.StatusCode, raw, anonymous)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(payload) > maxDocumentBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", maxDocumentBytes)
	}
	return payload, nil
}

func (c *Client) authorize(ctx context.Context, httpReq *http.Request) error {
	if c.tokens == nil {
		return apperrors.ErrNotAuthenticated
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) send(httpReq *http.Request) (*http.Response, error) {
	requestID := c.ids.New()
	httpReq.Header.Set("X-Request-ID", requestID)
	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", httpReq.Method, "path", httpReq.URL.Path, "request_id", requestID, "err", err)
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, httpReq.URL.Path, err)
	}
	c.logger.Debug("request", "method", httpReq.Method, "path", httpReq.URL.Path, "status", resp.StatusCode, "request_id", requestID, "took", time.Since(started))
	return resp, nil
}

func (c *Client) statusError(status int, raw []byte, anonymous bool) error {
	statusErr := &StatusError{StatusCode: status}
	env := Envelope{}
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != nil {
			statusErr.Code = env.Error.Code
			statusErr.Message = env.Error.Message
		} else {
			statusErr.Message = env.Message
		}
	}
	if status == http.StatusUnauthorized && !anonymous && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	return statusErr
}

// IsNotFound reports whether err is a backend 404 or a local not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
