package routefs

import (
	"context"
	"net/http"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// FetchResponse is the observed result of a handler-initiated fetch.
type FetchResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// FetchFunc performs an outbound request on behalf of a route handler. A
// target beginning with "/" resolves against the running application's own
// base URL (an internal waterfall); an absolute URL goes out over the
// network. The function is scoped to the application that invoked the
// handler and is bounded by that application's request timeout.
type FetchFunc func(ctx context.Context, target string) (*FetchResponse, error)

// RouteContext is what an API route handler receives: the incoming request,
// the path parameters bound by the route pattern, and a Fetch scoped to the
// running application.
type RouteContext struct {
	Request *http.Request
	Params  map[string]string
	Fetch   FetchFunc
}

// HandlerFunc is the content of an API route file. Returning an error
// produces a 500 response.
type HandlerFunc func(*RouteContext) (*Response, error)

// Response is a handler's reply, normally produced by JSON, Redirect, or
// Forward.
type Response struct {
	Status      int
	ContentType string
	Location    string
	Body        []byte
}

// JSON builds a 200 response whose body is the value's compact JSON
// encoding, with content type "application/json; charset=utf-8".
func JSON(value ldvalue.Value) *Response {
	return &Response{
		Status:      http.StatusOK,
		ContentType: "application/json; charset=utf-8",
		Body:        []byte(value.JSONString()),
	}
}

// Redirect builds a 302 response to the given location.
func Redirect(location string) *Response {
	return &Response{Status: http.StatusFound, Location: location}
}

// Forward passes an upstream fetch result through untouched: same status,
// same body bytes, and the upstream's own Content-Type value as-is, never
// rewritten.
func Forward(upstream *FetchResponse) *Response {
	return &Response{
		Status:      upstream.Status,
		ContentType: upstream.Header.Get("Content-Type"),
		Body:        upstream.Body,
	}
}
