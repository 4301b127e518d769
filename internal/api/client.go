// Package api implements the synchronization contract with the forum
// persistence API: one request/response round-trip per call, cookie-based
// sessions, and a uniform failure classification applied to every endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"parley/internal/config"
	"parley/internal/models"
	"parley/internal/observability"

	"github.com/google/uuid"
)

const (
	// SessionCookie is the name of the JWT session cookie the server sets.
	SessionCookie = "jwt"

	// IdempotencyHeader carries a per-submission key so the server can
	// drop an accidentally re-sent mutation instead of applying it twice.
	IdempotencyHeader = "X-Idempotency-Key"
)

// loginPath is exempt from the forced-logout-on-401 contract: a 401 here is
// a rejected credential, not an expired session.
const loginPath = "/api/login"

// Client is the HTTP client for the forum API. All requests share a cookie
// jar, so the session cookie set by login rides along automatically.
type Client struct {
	base *url.URL
	http *http.Client
	log  *observability.Logger

	// onAuthExpired is invoked whenever any call is rejected with 401.
	// Forcing the local session out on 401 is a contract of this layer,
	// not a per-caller choice.
	onAuthExpired func()
}

// New creates a client for the configured server.
func New(cfg *config.Config) (*Client, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.ServerURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base: base,
		http: &http.Client{Jar: jar, Timeout: cfg.RequestTimeout},
		log:  observability.GlobalLogger,
	}, nil
}

// OnAuthExpired registers the hook run when the server reports an expired or
// missing session. There is exactly one; the session store owns it.
func (c *Client) OnAuthExpired(fn func()) {
	c.onAuthExpired = fn
}

// SessionToken returns the current session cookie value, or "" when logged out.
func (c *Client) SessionToken() string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == SessionCookie {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken seeds or clears the session cookie. Used when restoring a
// persisted session at startup and when tearing one down.
func (c *Client) SetSessionToken(token string) {
	cookie := &http.Cookie{Name: SessionCookie, Value: token, Path: "/"}
	if token == "" {
		cookie.MaxAge = -1
	}
	c.http.Jar.SetCookies(c.base, []*http.Cookie{cookie})
}

// do executes a single round-trip and decodes the response into out (when
// non-nil). There is no batching, retry, or queueing: a failure surfaces as
// a classified error and the caller's local state stays untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return models.NewTransportError(err)
		}
		reader = bytes.NewReader(encoded)
	}

	// path arrives with dynamic segments already escaped (url.PathEscape),
	// so it is used verbatim as the request path.
	target := *c.base
	target.RawPath = path
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return models.NewTransportError(err)
	}
	target.Path = unescaped
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return models.NewTransportError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set(IdempotencyHeader, uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		classified := c.classify(resp)
		c.log.Warn("api call failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"error", classified.Error(),
		)
		return classified
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewTransportError(err)
	}
	return nil
}

// classify maps a failed response onto the error taxonomy. 401 additionally
// fires the auth-expired hook so the local session is cleared no matter
// which operation tripped it.
func (c *Client) classify(resp *http.Response) *models.AppError {
	var payload models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onAuthExpired != nil && resp.Request.URL.Path != loginPath {
			c.onAuthExpired()
		}
		return models.NewAuthRequiredError(payload.Error)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return models.NewUnavailableError()
	case resp.StatusCode == http.StatusNotFound:
		if payload.Error == "" {
			payload.Error = "Not found"
		}
		return models.NewNotFoundError(payload.Error)
	case resp.StatusCode < http.StatusInternalServerError:
		// Remaining 4xx: the server's message is surfaced verbatim.
		if payload.Error == "" {
			payload.Error = "An error occurred"
		}
		return models.NewValidationError(payload.Error)
	default:
		return models.NewTransportError(fmt.Errorf("server returned status %d", resp.StatusCode))
	}
}
