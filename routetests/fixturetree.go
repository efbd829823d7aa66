package routetests

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/utrolig/route-contract-tests/routefs"
)

const indexPageSource = `<!DOCTYPE html>
<html>
<head><title>Route contract fixture</title></head>
<body>
<h1 id="title">Route contract fixture</h1>
<nav>
<a id="nav-redirect" href="/redirect">Redirect</a>
</nav>
<form id="redirect-form" data-enhance method="post" action="/redirect-to">
<input type="hidden" name="destination" value="/redirect-destination">
<button id="redirect-submit" type="submit">Take me there</button>
</form>
<section id="counter">
<span id="count">0</span>
<button id="increment" type="button" data-action="increment" data-target="#count">Increment</button>
</section>
</body>
</html>
`

const redirectedPageSource = `<!DOCTYPE html>
<html>
<head><title>Redirected</title></head>
<body><h1 id="redirected-title">You were redirected</h1></body>
</html>
`

const redirectDestinationPageSource = `<!DOCTYPE html>
<html>
<head><title>Destination</title></head>
<body><p id="redirect-destination">You made it!</p></body>
</html>
`

func jsonField(key, value string) *routefs.Response {
	return routefs.JSON(ldvalue.ObjectBuild().Set(key, ldvalue.String(value)).Build())
}

// DefaultTree returns the canonical route tree the suite tests against:
// pages with progressive enhancement, redirect routes, literal, dynamic,
// and catch-all API routes, internal fetch waterfalls, and routes that
// fetch from the external origin. An external target run with -url must
// serve the same surface.
//
// externalOriginURL is the base URL of the origin the external fetch routes
// call. Its /json endpoint is expected to answer {"hello":"world"} with a
// bare application/json content type.
func DefaultTree(externalOriginURL string) *routefs.Tree {
	origin := strings.TrimSuffix(externalOriginURL, "/")
	tree := routefs.New()
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}

	must(tree.AddPage("index", indexPageSource))
	must(tree.AddPage("redirected", redirectedPageSource))
	must(tree.AddPage("redirect-destination", redirectDestinationPageSource))

	must(tree.AddHandler("redirect", "GET",
		func(*routefs.RouteContext) (*routefs.Response, error) {
			return routefs.Redirect("/redirected"), nil
		}))
	must(tree.AddHandler("redirect-to", "POST",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			return routefs.Redirect(ctx.Request.PostFormValue("destination")), nil
		}))

	must(tree.AddHandler("data.json", "GET",
		func(*routefs.RouteContext) (*routefs.Response, error) {
			return jsonField("file", "data.json"), nil
		}))

	must(tree.AddHandler("api/greeting/hello", "GET",
		func(*routefs.RouteContext) (*routefs.Response, error) {
			return jsonField("hello", "world"), nil
		}))
	must(tree.AddHandler("api/greeting/[name]", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			return jsonField("welcome", ctx.Params["name"]), nil
		}))
	must(tree.AddHandler("api/greeting/[...unmatched]", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			return jsonField("goodbye", ctx.Params["unmatched"]), nil
		}))

	must(tree.AddHandler("api/request", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			return jsonField("header", ctx.Request.Header.Get("x-test-header")), nil
		}))

	must(tree.AddHandler("api/waterfall", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			upstream, err := ctx.Fetch(ctx.Request.Context(), "/api/greeting/hello")
			if err != nil {
				return nil, err
			}
			return routefs.Forward(upstream), nil
		}))
	must(tree.AddHandler("api/double-waterfall", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			upstream, err := ctx.Fetch(ctx.Request.Context(), "/api/waterfall")
			if err != nil {
				return nil, err
			}
			return routefs.Forward(upstream), nil
		}))

	fetchOrigin := func(ctx *routefs.RouteContext) (*routefs.FetchResponse, error) {
		if origin == "" {
			return nil, errors.New("no external origin is configured")
		}
		return ctx.Fetch(ctx.Request.Context(), origin+"/json")
	}
	must(tree.AddHandler("api/external-fetch", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			upstream, err := fetchOrigin(ctx)
			if err != nil {
				return nil, err
			}
			var value ldvalue.Value
			if err := json.Unmarshal(upstream.Body, &value); err != nil {
				return nil, fmt.Errorf("external origin returned invalid JSON: %w", err)
			}
			return routefs.JSON(value), nil
		}))
	must(tree.AddHandler("api/fetch", "GET",
		func(ctx *routefs.RouteContext) (*routefs.Response, error) {
			upstream, err := fetchOrigin(ctx)
			if err != nil {
				return nil, err
			}
			return routefs.Forward(upstream), nil
		}))

	return tree
}
