// Package client issues HTTP requests against a running application and
// exposes status, headers, and body for assertion. A client is in one of
// two modes: raw clients never follow redirects, so 3xx statuses and
// Location headers stay observable; resolved clients follow redirects, for
// asserting on the terminal response.
package client

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/utrolig/route-contract-tests/framework"
)

const defaultRequestTimeoutMS = 5000

// RequestSpec describes one request. It is a value object constructed per
// call.
type RequestSpec struct {
	// Path is resolved against the client's base URL.
	Path string
	// Method defaults to GET.
	Method string
	// Headers are set on the request, overriding any implied header.
	Headers map[string]string
	// Form, when non-nil, is sent urlencoded as the request body.
	Form url.Values
}

// Options configures a Client.
type Options struct {
	// TimeoutMS bounds each request, connection to body included, so a hung
	// server cannot stall the suite.
	TimeoutMS ldvalue.OptionalInt
	// Logger receives request/response debug lines.
	Logger framework.Logger
}

// Client issues requests against one base URL. Use Raw or Resolved to get
// the mode a test needs; the derived clients share the base URL, timeout,
// and logger.
type Client struct {
	baseURL    string
	timeout    time.Duration
	follow     bool
	logger     framework.Logger
	httpClient *http.Client
}

// New creates a client in raw mode.
func New(baseURL string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	timeout := time.Duration(opts.TimeoutMS.OrElse(defaultRequestTimeoutMS)) * time.Millisecond
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    timeout,
		logger:     logger,
		httpClient: newHTTPClient(timeout, false),
	}
}

// Raw returns a client that never follows redirects.
func (c *Client) Raw() *Client {
	return c.withFollow(false)
}

// Resolved returns a client that follows redirects to the terminal
// response.
func (c *Client) Resolved() *Client {
	return c.withFollow(true)
}

func (c *Client) withFollow(follow bool) *Client {
	if c.follow == follow {
		return c
	}
	derived := *c
	derived.follow = follow
	derived.httpClient = newHTTPClient(c.timeout, follow)
	return &derived
}

func newHTTPClient(timeout time.Duration, follow bool) *http.Client {
	httpClient := &http.Client{Timeout: timeout}
	if !follow {
		httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return httpClient
}

// Do executes the request and reads the whole response.
func (c *Client) Do(spec RequestSpec) (*ResponseView, error) {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if spec.Form != nil {
		body = strings.NewReader(spec.Form.Encode())
	}
	req, err := http.NewRequest(method, c.baseURL+spec.Path, body)
	if err != nil {
		return nil, err
	}
	if spec.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range spec.Headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Printf("%s %s -> %d (%d bytes)", method, spec.Path, resp.StatusCode, len(data))
	return &ResponseView{Status: resp.StatusCode, Headers: resp.Header, Body: data}, nil
}
