// Package api sends HTTP requests for API checks and verifies the response
// status against what the test expects.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/livefir/gridkit"
	"golang.org/x/net/publicsuffix"
)

// Method selects the HTTP verb and how the response is checked.
type Method string

const (
	GET Method = "GET"
	// GETRedirect does not follow redirects and skips status verification
	GETRedirect Method = "GET_REDIRECT"
	// GETUnchecked follows redirects and skips status verification
	GETUnchecked Method = "GET_WITHOUT_STATUS_CODE_VERIFICATION"
	POST         Method = "POST"
	PUT          Method = "PUT"
	PATCH        Method = "PATCH"
	DELETE       Method = "DELETE"
)

// ErrUnsupportedMethod is returned for a Method outside the constants above
var ErrUnsupportedMethod = errors.New("unsupported method")

// verb returns the wire method and whether the status should be checked
func (m Method) verb() (string, bool, error) {
	switch m {
	case GET:
		return http.MethodGet, true, nil
	case GETRedirect, GETUnchecked:
		return http.MethodGet, false, nil
	case POST:
		return http.MethodPost, true, nil
	case PUT:
		return http.MethodPut, true, nil
	case PATCH:
		return http.MethodPatch, true, nil
	case DELETE:
		return http.MethodDelete, true, nil
	default:
		return "", false, fmt.Errorf("%w: %s", ErrUnsupportedMethod, m)
	}
}

// Common content types
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeText = "text/plain"
	ContentTypeXML  = "application/xml"
)

// Request describes one API call.
type Request struct {
	Method      Method `validate:"required"`
	URI         string `validate:"required,url"`
	Body        string
	ContentType string
	Headers     map[string]string
	Query       map[string]string
	// ExpectedStatus is compared with the response status for checked
	// methods. Zero means 200.
	ExpectedStatus int `validate:"omitempty,min=100,max=599"`
}

// Response is the fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// String returns the body as text
func (r *Response) String() string {
	return string(r.Body)
}

// StatusError reports a response whose status differs from the expected one
type StatusError struct {
	Method   Method
	URI      string
	Expected int
	Actual   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: expected status code <%d> but was <%d>", e.Method, e.URI, e.Expected, e.Actual)
}

// Client sends Requests.
type Client struct {
	http       *http.Client
	noRedirect *http.Client
	logger     *slog.Logger
	validate   *validator.Validate
	authHeader string
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying client. The Client works on a copy,
// so later options never modify c.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds each request, whatever client WithHTTPClient supplies
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithBasicAuth sends basic credentials with every request that does not set
// its own Authorization header
func WithBasicAuth(user, pass string) Option {
	return func(cl *Client) {
		cl.authHeader = gridkit.BasicAuthHeader(user, pass)
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient creates a Client with a cookie jar and a one minute timeout
func NewClient(opts ...Option) *Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c := &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: gridkit.LongWait,
		},
		logger:   gridkit.Logger(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.http
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc

	nr := hc
	nr.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	c.noRedirect = &nr
	return c
}

// Do sends req and reads the whole response. For checked methods a status
// other than ExpectedStatus returns the response together with a
// *StatusError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	verb, checked, err := req.Method.verb()
	if err != nil {
		return nil, err
	}
	expected := req.ExpectedStatus
	if expected == 0 {
		expected = http.StatusOK
	}

	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID)
	log.Info("hitting method",
		"method", req.Method,
		"uri", req.URI,
		"body", req.Body,
		"headers", req.Headers,
		"query", req.Query,
		"content_type", req.ContentType,
		"expected_status", expected,
	)

	httpReq, err := c.build(ctx, verb, req)
	if err != nil {
		return nil, err
	}

	client := c.http
	if req.Method == GETRedirect {
		client = c.noRedirect
	}

	start := time.Now()
	httpResp, err := client.Do(httpReq)
	if err != nil {
		log.Error("request failed", "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URI, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}
	log.Info("response received", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if checked && resp.StatusCode != expected {
		serr := &StatusError{
			Method:   req.Method,
			URI:      req.URI,
			Expected: expected,
			Actual:   resp.StatusCode,
			Body:     string(body),
		}
		log.Error("unexpected status code", "expected", expected, "actual", resp.StatusCode)
		return resp, serr
	}
	return resp, nil
}

func (c *Client) build(ctx context.Context, verb string, req Request) (*http.Request, error) {
	u, err := url.Parse(req.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid uri %q: %w", req.URI, err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, verb, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if c.authHeader != "" {
		httpReq.Header.Set(gridkit.AuthorizationHeader, c.authHeader)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	return httpReq, nil
}

// Get is Do with GET and the expected status
func (c *Client) Get(ctx context.Context, uri string, expectedStatus int) (*Response, error) {
	return c.Do(ctx, Request{Method: GET, URI: uri, ExpectedStatus: expectedStatus})
}

// PostJSON marshals v and sends it with POST
func (c *Client) PostJSON(ctx context.Context, uri string, v interface{}, expectedStatus int) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}
	return c.Do(ctx, Request{
		Method:         POST,
		URI:            uri,
		Body:           string(body),
		ContentType:    ContentTypeJSON,
		ExpectedStatus: expectedStatus,
	})
}
