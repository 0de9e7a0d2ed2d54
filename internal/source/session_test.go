package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/sharkymark/nuon-mcp/internal/errors"
	"github.com/sharkymark/nuon-mcp/internal/logging"
)

// fakeOrg simulates the token endpoint and a data endpoint with scriptable
// responses per call.
type fakeOrg struct {
	mu         sync.Mutex
	tokenCalls int
	dataCalls  int

	// tokenStatus and tokenBody override the default success response when
	// tokenStatus is non-zero.
	tokenStatus int
	tokenBody   string

	// dataStatuses are consumed one per data call; after they run out the
	// endpoint answers 200.
	dataStatuses []int
}

func (f *fakeOrg) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokenCalls++
		n := f.tokenCalls
		status, body := f.tokenStatus, f.tokenBody
		f.mu.Unlock()

		if r.Method != http.MethodPost {
			t.Errorf("token endpoint called with method %s", r.Method)
		}
		if err := r.ParseForm(); err == nil {
			if got := r.PostFormValue("grant_type"); got != "client_credentials" {
				t.Errorf("grant_type = %q, want client_credentials", got)
			}
		}

		if status != 0 {
			w.WriteHeader(status)
			fmt.Fprint(w, body)
			return
		}
		// Tokens are numbered so tests can tell a refresh from a reuse.
		resp := map[string]string{
			"access_token": fmt.Sprintf("token-%d", n),
			"instance_url": "http://" + r.Host,
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.dataCalls++
		var status int
		if len(f.dataStatuses) > 0 {
			status = f.dataStatuses[0]
			f.dataStatuses = f.dataStatuses[1:]
		} else {
			status = http.StatusOK
		}
		f.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, "nope")
			return
		}
		fmt.Fprintf(w, `{"auth":%q}`, r.Header.Get("Authorization"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSession(t *testing.T, org *fakeOrg) *Session {
	t.Helper()
	srv := org.server(t)
	creds := Credentials{
		ClientID:     "client",
		ClientSecret: "secret",
		LoginURL:     srv.URL,
	}
	s := NewSession("crm", creds, logging.NewDiscard())
	t.Cleanup(s.Close)
	return s
}

func TestSessionAuthenticate(t *testing.T) {
	org := &fakeOrg{}
	session := newTestSession(t, org)

	if err := session.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if org.tokenCalls != 1 {
		t.Errorf("token endpoint hit %d times, want 1", org.tokenCalls)
	}

	// A second Authenticate reuses the existing token.
	if err := session.Authenticate(context.Background()); err != nil {
		t.Fatalf("second Authenticate failed: %v", err)
	}
	if org.tokenCalls != 1 {
		t.Errorf("token endpoint hit %d times after reuse, want 1", org.tokenCalls)
	}
}

func TestSessionAuthenticateBadCredentials(t *testing.T) {
	org := &fakeOrg{
		tokenStatus: http.StatusBadRequest,
		tokenBody:   `{"error":"invalid_client","error_description":"client identifier invalid"}`,
	}
	session := newTestSession(t, org)

	err := session.Authenticate(context.Background())
	if err == nil {
		t.Fatal("expected authentication error")
	}
	if errors.CodeOf(err) != errors.AuthFailure {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.AuthFailure)
	}
	if !strings.Contains(err.Error(), "client identifier invalid") {
		t.Errorf("error should carry the server's description, got: %v", err)
	}
}

func TestSessionAuthenticateMissingFields(t *testing.T) {
	org := &fakeOrg{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"abc"}`,
	}
	session := newTestSession(t, org)

	err := session.Authenticate(context.Background())
	if errors.CodeOf(err) != errors.AuthFailure {
		t.Fatalf("error = %v, want AUTH_FAILURE", err)
	}
}

func TestSessionConcurrentAuthenticateSingleExchange(t *testing.T) {
	org := &fakeOrg{}
	session := newTestSession(t, org)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := session.Authenticate(context.Background()); err != nil {
				t.Errorf("Authenticate failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if session.exchanges != 1 {
		t.Errorf("exchanges = %d, want exactly 1", session.exchanges)
	}
}

func TestSessionCallRetriesOnceOn401(t *testing.T) {
	org := &fakeOrg{dataStatuses: []int{http.StatusUnauthorized}}
	session := newTestSession(t, org)

	body, err := session.Call(context.Background(), "/data", "GET", nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !strings.Contains(string(body), "token-2") {
		t.Errorf("retry should use the refreshed token, got body %s", body)
	}
	if org.tokenCalls != 2 {
		t.Errorf("token endpoint hit %d times, want 2 (initial + refresh)", org.tokenCalls)
	}
	if org.dataCalls != 2 {
		t.Errorf("data endpoint hit %d times, want 2 (original + retry)", org.dataCalls)
	}
}

func TestSessionCallDoubleUnauthorized(t *testing.T) {
	org := &fakeOrg{dataStatuses: []int{http.StatusUnauthorized, http.StatusUnauthorized}}
	session := newTestSession(t, org)

	_, err := session.Call(context.Background(), "/data", "GET", nil)
	if err == nil {
		t.Fatal("expected error on persistent 401")
	}
	if errors.CodeOf(err) != errors.UpstreamError {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.UpstreamError)
	}
	// Exactly one retry: no third data call, no third token exchange.
	if org.dataCalls != 2 {
		t.Errorf("data endpoint hit %d times, want 2", org.dataCalls)
	}
}

func TestSessionCallRateLimited(t *testing.T) {
	org := &fakeOrg{dataStatuses: []int{http.StatusTooManyRequests}}
	session := newTestSession(t, org)

	_, err := session.Call(context.Background(), "/data", "GET", nil)
	if errors.CodeOf(err) != errors.RateLimited {
		t.Fatalf("error = %v, want RATE_LIMITED", err)
	}
}

func TestSessionCallPassesQueryParams(t *testing.T) {
	org := &fakeOrg{}
	session := newTestSession(t, org)

	params := url.Values{}
	params.Set("q", "SELECT Id FROM Account")
	if _, err := session.Call(context.Background(), "/data", "GET", params); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
}

func TestSessionCloseIdempotent(t *testing.T) {
	session := NewSession("crm", Credentials{
		ClientID: "c", ClientSecret: "s", LoginURL: "http://example.invalid",
	}, logging.NewDiscard())

	session.Close()
	session.Close()
}
