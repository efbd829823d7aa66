package browser

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const indexPage = `<!DOCTYPE html>
<html><body>
<a id="go" href="/second">Second page</a>
<form id="redirect-form" data-enhance method="post" action="/redirect-to">
<input type="hidden" name="destination" value="/landing">
<button id="submit" type="submit">Go</button>
</form>
<form id="search-form" action="/search">
<input type="text" name="q" value="route">
<button id="search" type="submit">Search</button>
</form>
<span id="count">0</span>
<button id="inc" type="button" data-action="increment" data-target="#count">+1</button>
</body></html>`

// startPageServer serves a small site whose scripted and unscripted flows
// end on the same documents.
func startPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	serveHTML := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, body)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		serveHTML(w, indexPage)
	})
	mux.HandleFunc("/second", func(w http.ResponseWriter, r *http.Request) {
		serveHTML(w, `<h1 id="second-title">Second page</h1>`)
	})
	mux.HandleFunc("/landing", func(w http.ResponseWriter, r *http.Request) {
		serveHTML(w, `<div id="landing">You made it!</div>`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		serveHTML(w, fmt.Sprintf(`<h1 id="result">q=%s</h1>`, r.URL.Query().Get("q")))
	})
	mux.HandleFunc("/redirect-to", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = r.ParseForm()
		http.Redirect(w, r, r.PostForm.Get("destination"), http.StatusFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestSessionLoadsPagesAndReadsText(t *testing.T) {
	server := startPageServer(t)
	s := NewSession(server.URL, Options{})

	_, err := s.Content()
	require.Error(t, err, "no document before the first navigation")

	require.NoError(t, s.Goto("/"))
	assert.Equal(t, "/", s.Location())

	text, err := s.Text("#count")
	require.NoError(t, err)
	assert.Equal(t, "0", text)

	content, err := s.Content()
	require.NoError(t, err)
	assert.Contains(t, content, `id="go"`)

	_, err = s.Text("#missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no element matches")
}

func TestSessionFollowsLinks(t *testing.T) {
	server := startPageServer(t)
	s := NewSession(server.URL, Options{})

	require.NoError(t, s.Goto("/"))
	require.NoError(t, s.Click("#go"))

	assert.Equal(t, "/second", s.Location())
	text, err := s.Text("#second-title")
	require.NoError(t, err)
	assert.Equal(t, "Second page", text)
}

func TestSessionFormSubmissionIsEquivalentInBothScriptModes(t *testing.T) {
	server := startPageServer(t)
	contents := make(map[bool]string)

	for _, scripts := range []bool{false, true} {
		t.Run(fmt.Sprintf("scriptsEnabled=%t", scripts), func(t *testing.T) {
			s := NewSession(server.URL, Options{ScriptsEnabled: scripts})
			require.NoError(t, s.Goto("/"))
			require.NoError(t, s.Click("#submit"))

			assert.Equal(t, "/landing", s.Location())
			text, err := s.Text("#landing")
			require.NoError(t, err)
			assert.Equal(t, "You made it!", text)

			content, err := s.Content()
			require.NoError(t, err)
			contents[scripts] = content
		})
	}

	assert.Equal(t, contents[false], contents[true],
		"the final document should not depend on script execution")
}

func TestSessionSubmitsPlainGetForms(t *testing.T) {
	server := startPageServer(t)
	s := NewSession(server.URL, Options{})

	require.NoError(t, s.Goto("/"))
	require.NoError(t, s.Click("#search"))

	assert.Equal(t, "/search", s.Location())
	text, err := s.Text("#result")
	require.NoError(t, err)
	assert.Equal(t, "q=route", text)
}

func TestSessionCounterActionNeedsScripts(t *testing.T) {
	server := startPageServer(t)

	scripted := NewSession(server.URL, Options{ScriptsEnabled: true})
	require.True(t, scripted.ScriptsEnabled())
	require.NoError(t, scripted.Goto("/"))
	require.NoError(t, scripted.Click("#inc"))
	require.NoError(t, scripted.Click("#inc"))
	text, err := scripted.Text("#count")
	require.NoError(t, err)
	assert.Equal(t, "2", text)
	assert.Equal(t, "/", scripted.Location(), "incrementing must not navigate")

	inert := NewSession(server.URL, Options{ScriptsEnabled: false})
	require.NoError(t, inert.Goto("/"))
	require.NoError(t, inert.Click("#inc"), "inert clicks are not errors")
	text, err = inert.Text("#count")
	require.NoError(t, err)
	assert.Equal(t, "0", text)
}

func TestSessionWaitForSelector(t *testing.T) {
	server := startPageServer(t)
	s := NewSession(server.URL, Options{TimeoutMS: ldvalue.NewOptionalInt(100)})

	require.NoError(t, s.Goto("/"))
	require.NoError(t, s.WaitForSelector("#count"))

	err := s.WaitForSelector("#never-appears")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestSessionClickOnInertElementDoesNothing(t *testing.T) {
	server := startPageServer(t)
	s := NewSession(server.URL, Options{})

	require.NoError(t, s.Goto("/"))
	require.NoError(t, s.Click("#count"))
	assert.Equal(t, "/", s.Location())

	err := s.Click("#missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no element matches")
}

func TestCollectFormValues(t *testing.T) {
	doc := parseDocument(t, `<form id="f">`+
		`<input type="text" name="q" value="hello">`+
		`<input type="hidden" name="destination" value="/landing">`+
		`<input type="checkbox" name="agree" checked>`+
		`<input type="checkbox" name="optional">`+
		`<input type="radio" name="pick" value="a" checked>`+
		`<input type="radio" name="pick" value="b">`+
		`<textarea name="note">a note</textarea>`+
		`<input type="submit" name="unused" value="x">`+
		`<button id="b" type="submit" name="go" value="now">Send</button>`+
		`</form>`)
	form := mustFind(t, doc, "#f")
	submitter := mustFind(t, doc, "#b")

	values := collectFormValues(form, submitter)

	assert.Equal(t, "hello", values.Get("q"))
	assert.Equal(t, "/landing", values.Get("destination"))
	assert.Equal(t, "on", values.Get("agree"), "checked boxes without a value submit \"on\"")
	assert.NotContains(t, values, "optional")
	assert.Equal(t, []string{"a"}, values["pick"], "only the checked radio participates")
	assert.Equal(t, "a note", values.Get("note"))
	assert.NotContains(t, values, "unused", "unclicked submit inputs stay out")
	assert.Equal(t, "now", values.Get("go"), "the clicked submitter's name/value is appended")
}
