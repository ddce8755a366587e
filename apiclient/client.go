package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "github.com/careplanhq/portal-client/internal/errors"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	selfEndpoint  = "/auth/me"
	loginEndpoint = "/auth/login"

	headerRequestID = "X-Request-ID"
)

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIConfig is the slice of configuration the adapter needs.
type APIConfig interface {
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

// SessionController is the slice of the session store the adapter needs:
// read the current token and, after an unrecoverable 401, evict the session.
type SessionController interface {
	Token() (string, bool)
	Authenticated() bool
	ForceLogout()
}

// Client is the single choke point for outbound portal API calls. It resolves
// the base address from configuration, merges JSON headers, attaches the
// bearer token when the session holds one and classifies every response for
// the session controller before re-surfacing it to the caller.
type Client struct {
	base    *url.URL
	http    httpClient
	session SessionController
	logger  zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying transport (primarily for testing).
func WithHTTPClient(hc httpClient) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New initialises the adapter. The session controller is required: every
// request consults it for the token and every 401 consults it for eviction.
func New(cfg APIConfig, session SessionController, options ...ClientOption) (*Client, error) {
	if session == nil {
		return nil, errors.New("[apiclient.New] session controller is required")
	}
	base, err := url.Parse(cfg.GetAPIBaseURL())
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] parsing base URL")
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: cfg.GetHTTPTimeout()},
		session: session,
		logger:  zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Do dispatches a request. body is marshalled to JSON when non-nil, header
// entries are merged over the defaults. The response is always returned after
// classification, whatever its status; classification only adds the forced
// logout side effect. Callers own closing the response body.
func (c *Client) Do(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.Do] marshalling body")
		}
	}

	target := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Do] building request")
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(headerRequestID, uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client.Do] %s %s", method, path)
	}

	c.applyClassification(RequestContext{Method: method, Path: path, Body: payload}, resp.StatusCode)
	return resp, nil
}

// applyClassification is the effect-execution step behind the pure Classify.
// The authenticated check keeps several concurrently failing requests from
// triggering duplicate or looping logouts.
func (c *Client) applyClassification(req RequestContext, statusCode int) {
	if !Classify(req, statusCode).ForceLogout {
		return
	}
	if !c.session.Authenticated() {
		return
	}
	c.logger.Warn().
		Str("method", req.Method).
		Str("path", req.Path).
		Msg("unauthorized response, evicting session")
	c.session.ForceLogout()
}

// DoJSON dispatches a request and decodes a 2xx JSON response into out.
// Non-2xx statuses come back as a *StatusError so callers keep full
// visibility into failures.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "[Client.DoJSON] reading %s %s response", method, path)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Body: raw}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "[Client.DoJSON] decoding %s %s response", method, path)
	}
	return nil
}

// StatusError is a non-2xx portal API response, surfaced unchanged.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal api responded %d", e.StatusCode)
}

// Unwrap maps well-known statuses onto the shared sentinels so callers can
// use errors.Is without inspecting status codes.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return errs.ErrUnauthorized
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusNotFound:
		return errs.ErrNotFound
	}
	return nil
}
