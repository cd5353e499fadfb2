package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// echo is what the test server reports back about a request
type echo struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       map[string]string `json:"query"`
	Body        string            `json:"body"`
	ContentType string            `json:"content_type"`
	Auth        string            `json:"auth"`
	Custom      string            `json:"custom"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		status := http.StatusOK
		if r.Method == http.MethodPost {
			status = http.StatusCreated
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(echo{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       q,
			Body:        string(body),
			ContentType: r.Header.Get("Content-Type"),
			Auth:        r.Header.Get("Authorization"),
			Custom:      r.Header.Get("X-Custom"),
		})
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/echo", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestDoMethods(t *testing.T) {
	srv := newServer(t)
	c := NewClient()

	tests := []struct {
		method   Method
		expected int
		wantVerb string
	}{
		{GET, 200, http.MethodGet},
		{POST, 201, http.MethodPost},
		{PUT, 200, http.MethodPut},
		{PATCH, 200, http.MethodPatch},
		{DELETE, 200, http.MethodDelete},
		{GETUnchecked, 0, http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			resp, err := c.Do(context.Background(), Request{
				Method:         tt.method,
				URI:            srv.URL + "/echo",
				Body:           `{"name":"grid"}`,
				ContentType:    ContentTypeJSON,
				Headers:        map[string]string{"X-Custom": "yes"},
				Query:          map[string]string{"page": "2"},
				ExpectedStatus: tt.expected,
			})
			if err != nil {
				t.Fatalf("Do failed: %v", err)
			}

			var e echo
			if err := resp.JSON(&e); err != nil {
				t.Fatal(err)
			}
			if e.Method != tt.wantVerb {
				t.Errorf("server saw %s, want %s", e.Method, tt.wantVerb)
			}
			if e.Query["page"] != "2" || e.Custom != "yes" || e.ContentType != ContentTypeJSON {
				t.Errorf("request details lost: %+v", e)
			}
			if e.Body != `{"name":"grid"}` {
				t.Errorf("body = %q", e.Body)
			}
		})
	}
}

func TestDoStatusVerification(t *testing.T) {
	srv := newServer(t)
	c := NewClient()

	resp, err := c.Do(context.Background(), Request{Method: GET, URI: srv.URL + "/missing", ExpectedStatus: 200})
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if serr.Expected != 200 || serr.Actual != 404 {
		t.Errorf("StatusError = %+v", serr)
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Error("response should be returned along with the status error")
	}
	if !strings.Contains(serr.Body, "not here") {
		t.Errorf("body not kept: %q", serr.Body)
	}

	if _, err := c.Do(context.Background(), Request{Method: GETUnchecked, URI: srv.URL + "/missing", ExpectedStatus: 200}); err != nil {
		t.Errorf("unchecked GET failed: %v", err)
	}

	if _, err := c.Do(context.Background(), Request{Method: DELETE, URI: srv.URL + "/missing", ExpectedStatus: 404}); err != nil {
		t.Errorf("expected 404 should pass: %v", err)
	}
}

func TestDoRedirects(t *testing.T) {
	srv := newServer(t)
	c := NewClient()

	resp, err := c.Do(context.Background(), Request{Method: GETRedirect, URI: srv.URL + "/redirect"})
	if err != nil {
		t.Fatalf("GET_REDIRECT failed: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/echo" {
		t.Errorf("Location = %q", loc)
	}

	resp, err = c.Do(context.Background(), Request{Method: GET, URI: srv.URL + "/redirect", ExpectedStatus: 200})
	if err != nil {
		t.Fatalf("GET through redirect failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 after following", resp.StatusCode)
	}
}

func TestDoInvalidRequests(t *testing.T) {
	c := NewClient()

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "unknown method", req: Request{Method: "HEAD", URI: "http://localhost/x"}, wantErr: ErrUnsupportedMethod},
		{name: "missing uri", req: Request{Method: GET}},
		{name: "bad status", req: Request{Method: GET, URI: "http://localhost/x", ExpectedStatus: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Do(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBasicAuth(t *testing.T) {
	srv := newServer(t)
	user, pass := gofakeit.Username(), gofakeit.Password(true, true, true, false, false, 12)
	c := NewClient(WithBasicAuth(user, pass))

	resp, err := c.Get(context.Background(), srv.URL+"/echo", 200)
	if err != nil {
		t.Fatal(err)
	}
	var e echo
	if err := resp.JSON(&e); err != nil {
		t.Fatal(err)
	}

	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.SetBasicAuth(user, pass)
	if e.Auth != r.Header.Get("Authorization") {
		t.Errorf("Authorization = %q, want %q", e.Auth, r.Header.Get("Authorization"))
	}

	// A request header overrides the client credentials.
	resp, err = c.Do(context.Background(), Request{
		Method:  GET,
		URI:     srv.URL + "/echo",
		Headers: map[string]string{"Authorization": "Bearer token"},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.JSON(&e)
	if e.Auth != "Bearer token" {
		t.Errorf("Authorization = %q, want the request header", e.Auth)
	}
}

func TestPostJSON(t *testing.T) {
	srv := newServer(t)
	c := NewClient()

	resp, err := c.PostJSON(context.Background(), srv.URL+"/echo", map[string]string{"build": "nightly"}, http.StatusCreated)
	if err != nil {
		t.Fatalf("PostJSON failed: %v", err)
	}
	var e echo
	resp.JSON(&e)
	if e.Body != `{"build":"nightly"}` || e.ContentType != ContentTypeJSON {
		t.Errorf("echo = %+v", e)
	}
}

func TestWithTimeoutOrder(t *testing.T) {
	tests := []struct {
		name string
		opts func(shared *http.Client) []Option
	}{
		{"timeout after client", func(shared *http.Client) []Option {
			return []Option{WithHTTPClient(shared), WithTimeout(3 * time.Second)}
		}},
		{"timeout before client", func(shared *http.Client) []Option {
			return []Option{WithTimeout(3 * time.Second), WithHTTPClient(shared)}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shared := &http.Client{Timeout: time.Minute}
			c := NewClient(tt.opts(shared)...)

			if c.http.Timeout != 3*time.Second {
				t.Errorf("client timeout = %s, want 3s", c.http.Timeout)
			}
			if c.noRedirect.Timeout != 3*time.Second {
				t.Errorf("no-redirect timeout = %s, want 3s", c.noRedirect.Timeout)
			}
			if shared.Timeout != time.Minute {
				t.Errorf("caller's client was modified: timeout = %s", shared.Timeout)
			}
		})
	}
}

func TestWithHTTPClientKeepsTimeout(t *testing.T) {
	shared := &http.Client{Timeout: 7 * time.Second}
	c := NewClient(WithHTTPClient(shared))

	if c.http.Timeout != 7*time.Second {
		t.Errorf("timeout = %s, want the supplied client's 7s", c.http.Timeout)
	}
	if c.http == shared {
		t.Error("expected the client to work on a copy")
	}
}
