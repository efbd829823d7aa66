package routetests

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/utrolig/route-contract-tests/browser"
	"github.com/utrolig/route-contract-tests/client"
	"github.com/utrolig/route-contract-tests/framework"
)

// Capabilities a target environment can provide. Tests that need one gate
// themselves with T.RequireCapability and are skipped when it is missing.
const (
	// CapabilityExternalFetch means the external origin the application's
	// fetch routes point at is reachable.
	CapabilityExternalFetch = "external-fetch"
)

var AllCapabilities = []string{
	CapabilityExternalFetch,
}

// SuiteEnvironment describes the application under test and what the suite
// may assume about it.
type SuiteEnvironment struct {
	// BaseURL is the root of the running application.
	BaseURL string
	// Capabilities lists the capabilities the target provides.
	Capabilities []string
	// RequestTimeoutMS bounds each request issued by the test clients.
	RequestTimeoutMS ldvalue.OptionalInt
	// BrowserTimeoutMS bounds browser navigations and selector waits.
	BrowserTimeoutMS ldvalue.OptionalInt
}

// HasCapability reports whether the target declared the capability.
func (e *SuiteEnvironment) HasCapability(capability string) bool {
	for _, c := range e.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// T represents a test or subtest in the route contract suite.
//
// It implements the same basic functionality as Go's testing.T, but in an
// environment that is outside of the Go test runner, with debug logging
// captured per case. Those features are provided by the lower-level
// framework package.
//
// It also provides functionality specific to route testing: an HTTP client
// in raw (no redirect following) and resolved (follows redirects) modes,
// and browser sessions with scripts on or off. To make assertions, use the
// assert and require packages, passing the *T as if it were a *testing.T.
// Many of the interaction methods have assertions built in, so an
// unexpected transport failure ends the test immediately instead of every
// test repeating that boilerplate.
type T struct {
	context   *framework.Context
	env       *SuiteEnvironment
	rawClient *client.Client
}

func newTestScope(context *framework.Context, env *SuiteEnvironment) *T {
	return &T{
		context: context,
		env:     env,
		rawClient: client.New(env.BaseURL, client.Options{
			TimeoutMS: env.RequestTimeoutMS,
			Logger:    context.DebugLogger(),
		}),
	}
}

// Errorf is called by assertions to log a test failure. It does not cause
// an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to
// the test logger at the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer registers a cleanup to run when this test case ends, whether it
// passed, failed, or was skipped.
func (t *T) Defer(cleanup func()) {
	t.context.Defer(cleanup)
}

// RequireCapability skips this test if the target environment did not
// declare the capability.
func (t *T) RequireCapability(capability string) {
	if !t.env.HasCapability(capability) {
		t.context.SkipWithReason(fmt.Sprintf("target does not have capability %q", capability))
	}
}

// RequestRaw performs a request without following redirects, so 3xx
// responses can be asserted on directly. It fails and immediately exits the
// test on a transport error; an HTTP error status is not a transport error.
func (t *T) RequestRaw(spec client.RequestSpec) *client.ResponseView {
	resp, err := t.rawClient.Do(spec)
	require.NoError(t, err)
	return resp
}

// Request performs a request following any redirects to the final response.
func (t *T) Request(spec client.RequestSpec) *client.ResponseView {
	resp, err := t.rawClient.Resolved().Do(spec)
	require.NoError(t, err)
	return resp
}

// Get issues a redirect-following GET.
func (t *T) Get(path string) *client.ResponseView {
	return t.Request(client.RequestSpec{Path: path})
}

// GetRaw issues a GET that does not follow redirects.
func (t *T) GetRaw(path string) *client.ResponseView {
	return t.RequestRaw(client.RequestSpec{Path: path})
}

// PostForm issues a redirect-following form POST.
func (t *T) PostForm(path string, form url.Values) *client.ResponseView {
	return t.Request(client.RequestSpec{Path: path, Method: http.MethodPost, Form: form})
}

// PostFormRaw issues a form POST that does not follow redirects.
func (t *T) PostFormRaw(path string, form url.Values) *client.ResponseView {
	return t.RequestRaw(client.RequestSpec{Path: path, Method: http.MethodPost, Form: form})
}

// RequireJSONBody parses the response body as JSON, failing the test
// immediately if it is not valid JSON.
func (t *T) RequireJSONBody(resp *client.ResponseView) ldvalue.Value {
	value, err := resp.JSON()
	require.NoError(t, err)
	return value
}

// InBrowser runs the action with a fresh browser session pointed at the
// application under test.
func (t *T) InBrowser(scriptsEnabled bool, action func(*browser.Session)) {
	session := browser.NewSession(t.env.BaseURL, browser.Options{
		ScriptsEnabled: scriptsEnabled,
		TimeoutMS:      t.env.BrowserTimeoutMS,
		Logger:         t.context.DebugLogger(),
	})
	action(session)
}

// Goto navigates the session, failing the test immediately on error.
func (t *T) Goto(session *browser.Session, path string) {
	require.NoError(t, session.Goto(path))
}

// ClickOn clicks the first element matching the selector, failing the test
// immediately on error.
func (t *T) ClickOn(session *browser.Session, selector string) {
	require.NoError(t, session.Click(selector))
}

// RequireText returns the trimmed text of the first element matching the
// selector, failing the test immediately if there is none.
func (t *T) RequireText(session *browser.Session, selector string) string {
	text, err := session.Text(selector)
	require.NoError(t, err)
	return text
}
