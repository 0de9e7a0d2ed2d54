package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sharkymark/nuon-mcp/internal/errors"
)

// requestTimeout bounds every outbound call so a wedged backend cannot hang
// a tool invocation indefinitely.
const requestTimeout = 30 * time.Second

// tokenPath is the OAuth 2.0 client-credentials token endpoint, relative to
// the login URL.
const tokenPath = "/services/oauth2/token"

// Credentials holds the client-credentials grant inputs, sourced from the
// process environment.
type Credentials struct {
	ClientID     string
	ClientSecret string
	LoginURL     string
}

// Session owns the OAuth token lifecycle for one remote source: lazy
// authentication on first need, silent refresh on expiry, and a guarantee
// that at most one token exchange is in flight at a time.
type Session struct {
	label  string
	creds  Credentials
	logger *slog.Logger

	// mu serializes token exchanges and guards the fields below. Two
	// callers that both observe "no token" must not both hit the token
	// endpoint.
	mu          sync.Mutex
	accessToken string
	instanceURL string
	client      *http.Client
	closed      bool

	// exchanges counts completed token exchanges; exposed for tests.
	exchanges int
}

// NewSession creates an unauthenticated session. No network activity happens
// until the first call needs a token.
func NewSession(label string, creds Credentials, logger *slog.Logger) *Session {
	return &Session{label: label, creds: creds, logger: logger}
}

// httpClient lazily creates the underlying client. Caller must hold mu.
func (s *Session) httpClient() *http.Client {
	if s.client == nil {
		s.client = &http.Client{Timeout: requestTimeout}
	}
	return s.client
}

// tokenResponse is the token endpoint's success payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

// tokenErrorResponse is the token endpoint's 400 payload.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ensure returns the current token and instance URL, performing the initial
// exchange when the session is still unauthenticated. Concurrent callers are
// serialized; all observe the single resulting token.
func (s *Session) ensure(ctx context.Context) (token, instanceURL string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == "" {
		if err := s.exchangeLocked(ctx); err != nil {
			return "", "", err
		}
	}
	return s.accessToken, s.instanceURL, nil
}

// refresh replaces the token, but only if it still equals stale — when
// another caller already refreshed, the exchange is skipped and the newer
// token returned.
func (s *Session) refresh(ctx context.Context, stale string) (token, instanceURL string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken == stale {
		if err := s.exchangeLocked(ctx); err != nil {
			return "", "", err
		}
	}
	return s.accessToken, s.instanceURL, nil
}

// Authenticate forces the initial token exchange. Used at call time; exposed
// so callers can fail fast on bad credentials.
func (s *Session) Authenticate(ctx context.Context) error {
	_, _, err := s.ensure(ctx)
	return err
}

// exchangeLocked posts client-credentials to the token endpoint and stores
// the resulting token and instance URL. Caller must hold mu. Every failure
// mode surfaces as AuthFailure; nothing is silently retried.
func (s *Session) exchangeLocked(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", s.creds.ClientID)
	form.Set("client_secret", s.creds.ClientSecret)

	authURL := strings.TrimRight(s.creds.LoginURL, "/") + tokenPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(errors.AuthFailure,
			fmt.Sprintf("invalid login URL for %q", s.label), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return errors.Wrap(errors.AuthFailure,
			fmt.Sprintf("network error connecting to Salesforce for %q; check SF_LOGIN_URL and connectivity", s.label), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(errors.AuthFailure,
			fmt.Sprintf("failed reading authentication response for %q", s.label), err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		var errResp tokenErrorResponse
		msg := "unknown error"
		if json.Unmarshal(body, &errResp) == nil {
			if errResp.ErrorDescription != "" {
				msg = errResp.ErrorDescription
			} else if errResp.Error != "" {
				msg = errResp.Error
			}
		}
		return errors.Newf(errors.AuthFailure,
			"Salesforce authentication failed for %q: %s; check SF_CLIENT_ID and SF_CLIENT_SECRET", s.label, msg)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.Newf(errors.AuthFailure,
			"Salesforce authentication failed for %q: invalid credentials", s.label)
	case resp.StatusCode != http.StatusOK:
		return errors.Newf(errors.AuthFailure,
			"Salesforce authentication failed for %q: HTTP %d: %s", s.label, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return errors.Wrap(errors.AuthFailure,
			fmt.Sprintf("unexpected authentication response for %q", s.label), err)
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return errors.Newf(errors.AuthFailure,
			"unexpected authentication response for %q: missing access_token or instance_url", s.label)
	}

	s.accessToken = tok.AccessToken
	s.instanceURL = tok.InstanceURL
	s.exchanges++

	s.logger.Debug("Authenticated with Salesforce",
		"label", s.label,
		"instanceURL", s.instanceURL,
	)
	return nil
}

// Call issues an authenticated request against the instance API and returns
// the raw response body. Authenticates first when unauthenticated. On a 401
// it re-authenticates exactly once and retries the call exactly once; a
// second 401 surfaces as an upstream error rather than looping against a
// persistently invalid credential.
func (s *Session) Call(ctx context.Context, endpoint, method string, params url.Values) ([]byte, error) {
	token, instance, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := s.do(ctx, instance, endpoint, method, params, token)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		// Token expired: refresh and retry once.
		token, instance, err = s.refresh(ctx, token)
		if err != nil {
			return nil, err
		}
		status, body, err = s.do(ctx, instance, endpoint, method, params, token)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return nil, errors.Newf(errors.RateLimited,
			"Salesforce API rate limit exceeded for %q; wait a moment and try again", s.label)
	case status != http.StatusOK:
		return nil, errors.Newf(errors.UpstreamError,
			"Salesforce API error for %q: HTTP %d: %s", s.label, status, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// do performs a single HTTP round trip with the bearer header.
func (s *Session) do(ctx context.Context, instance, endpoint, method string, params url.Values, token string) (int, []byte, error) {
	u := instance + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return 0, nil, errors.Wrap(errors.UpstreamError,
			fmt.Sprintf("invalid API request for %q", s.label), err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	s.mu.Lock()
	client := s.httpClient()
	s.mu.Unlock()

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(errors.UpstreamError,
			fmt.Sprintf("network error calling Salesforce API for %q", s.label), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(errors.UpstreamError,
			fmt.Sprintf("failed reading Salesforce API response for %q", s.label), err)
	}

	return resp.StatusCode, body, nil
}

// Close releases the underlying connection pool. Safe to call on an unopened
// or already-closed session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
}
