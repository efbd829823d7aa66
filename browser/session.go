// Package browser drives a served application the way a browser would,
// without a real rendering engine: it loads pages over HTTP, follows
// redirects, and models link navigation, form submission, and a small
// declarative click-action vocabulary on the parsed DOM. Script execution
// is a per-session switch. With scripts disabled, every interaction uses
// plain link/form semantics; with scripts enabled, forms marked
// data-enhance submit through a fetch-style pipeline and elements with a
// data-action attribute become live controls. An application honoring the
// progressive-enhancement contract produces the same terminal document
// either way.
package browser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/utrolig/route-contract-tests/framework"
)

const defaultNavigationTimeoutMS = 5000
const waitPollInterval = time.Millisecond * 20

// Options configures a Session.
type Options struct {
	// ScriptsEnabled turns on the scripted behaviors: enhanced form
	// submission and data-action controls.
	ScriptsEnabled bool
	// TimeoutMS bounds each navigation request and each WaitForSelector.
	TimeoutMS ldvalue.OptionalInt
	// Logger receives the session's debug output.
	Logger framework.Logger
}

// Session is one independent browsing context: its own current document,
// location, and HTTP client. Sessions share nothing, so tests can open as
// many as they like against the same application.
type Session struct {
	id         string
	baseURL    string
	scripts    bool
	timeout    time.Duration
	logger     framework.Logger
	httpClient *http.Client
	location   *url.URL
	doc        *html.Node
}

func NewSession(baseURL string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	timeout := time.Duration(opts.TimeoutMS.OrElse(defaultNavigationTimeoutMS)) * time.Millisecond
	s := &Session{
		id:         uuid.New().String(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		scripts:    opts.ScriptsEnabled,
		timeout:    timeout,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
	s.logger.Printf("[session %s] created (scripts enabled: %t)", s.id, s.scripts)
	return s
}

// ScriptsEnabled reports whether the session executes scripted behaviors.
func (s *Session) ScriptsEnabled() bool {
	return s.scripts
}

// Goto loads the given path, following redirects.
func (s *Session) Goto(path string) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	s.logger.Printf("[session %s] goto %s", s.id, path)
	return s.load(http.MethodGet, target, nil)
}

// Location returns the path of the current document.
func (s *Session) Location() string {
	if s.location == nil {
		return ""
	}
	return s.location.Path
}

// Content returns the serialized current document.
func (s *Session) Content() (string, error) {
	if s.doc == nil {
		return "", errors.New("no document loaded")
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, s.doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text returns the trimmed text content of the first element matching the
// selector.
func (s *Session) Text(selectorStr string) (string, error) {
	node, err := s.find(selectorStr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(textContent(node)), nil
}

// WaitForSelector polls the current document until an element matches the
// selector, bounded by the session timeout.
func (s *Session) WaitForSelector(selectorStr string) error {
	sel, err := parseSelector(selectorStr)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(s.timeout)
	for {
		if s.doc != nil && findFirst(s.doc, sel) != nil {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timed out waiting for %q at %s", selectorStr, s.Location())
		}
		time.Sleep(waitPollInterval)
	}
}

// Click acts on the first element matching the selector: anchors navigate,
// submit controls submit their form, and (with scripts enabled) elements
// with a data-action attribute run their action. Clicks that a browser
// would ignore are ignored here too.
func (s *Session) Click(selectorStr string) error {
	node, err := s.find(selectorStr)
	if err != nil {
		return err
	}

	if node.Data == "a" {
		if href, ok := attr(node, "href"); ok {
			s.logger.Printf("[session %s] following link to %s", s.id, href)
			target, err := s.resolve(href)
			if err != nil {
				return err
			}
			return s.load(http.MethodGet, target, nil)
		}
	}

	if action, ok := attr(node, "data-action"); ok {
		if !s.scripts {
			s.logger.Printf("[session %s] click on %q is inert with scripts disabled", s.id, selectorStr)
			return nil
		}
		return s.runAction(node, action)
	}

	if isSubmitControl(node) {
		if form := ancestorForm(node); form != nil {
			return s.submitForm(form, node)
		}
	}

	s.logger.Printf("[session %s] click on %q had no effect", s.id, selectorStr)
	return nil
}

func isSubmitControl(n *html.Node) bool {
	switch n.Data {
	case "button":
		typ, ok := attr(n, "type")
		return !ok || strings.EqualFold(typ, "submit")
	case "input":
		typ, _ := attr(n, "type")
		return strings.EqualFold(typ, "submit")
	}
	return false
}

func (s *Session) runAction(node *html.Node, action string) error {
	switch action {
	case "increment":
		targetSel, ok := attr(node, "data-target")
		if !ok {
			return errors.New("increment control has no data-target")
		}
		sel, err := parseSelector(targetSel)
		if err != nil {
			return err
		}
		target := findFirst(s.doc, sel)
		if target == nil {
			return fmt.Errorf("no element matches %q at %s", targetSel, s.Location())
		}
		count, _ := strconv.Atoi(strings.TrimSpace(textContent(target)))
		setTextContent(target, strconv.Itoa(count+1))
		s.logger.Printf("[session %s] incremented %s to %d", s.id, targetSel, count+1)
		return nil
	default:
		return fmt.Errorf("unknown click action %q", action)
	}
}

func (s *Session) submitForm(form, submitter *html.Node) error {
	values := collectFormValues(form, submitter)
	method := http.MethodGet
	if m, ok := attr(form, "method"); ok && m != "" {
		method = strings.ToUpper(m)
	}
	actionRef, _ := attr(form, "action")
	target, err := s.resolve(actionRef)
	if err != nil {
		return err
	}

	if s.scripts && hasAttr(form, "data-enhance") {
		s.logger.Printf("[session %s] enhanced submission: %s %s", s.id, method, target.Path)
	} else {
		s.logger.Printf("[session %s] form submission: %s %s", s.id, method, target.Path)
	}

	if method == http.MethodGet {
		target.RawQuery = values.Encode()
		return s.load(http.MethodGet, target, nil)
	}
	return s.load(method, target, values)
}

// collectFormValues gathers the form's successful controls plus the named
// submitter, in document order.
func collectFormValues(form, submitter *html.Node) url.Values {
	values := url.Values{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isElement(n) {
			switch n.Data {
			case "input":
				name, ok := attr(n, "name")
				if ok && name != "" {
					typ, _ := attr(n, "type")
					switch strings.ToLower(typ) {
					case "submit", "button", "reset":
						// only the clicked submitter participates
					case "checkbox", "radio":
						if hasAttr(n, "checked") {
							value, _ := attr(n, "value")
							if value == "" {
								value = "on"
							}
							values.Add(name, value)
						}
					default:
						value, _ := attr(n, "value")
						values.Add(name, value)
					}
				}
			case "textarea":
				if name, ok := attr(n, "name"); ok && name != "" {
					values.Add(name, textContent(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)
	if submitter != nil {
		if name, ok := attr(submitter, "name"); ok && name != "" {
			value, _ := attr(submitter, "value")
			values.Add(name, value)
		}
	}
	return values
}

func (s *Session) find(selectorStr string) (*html.Node, error) {
	if s.doc == nil {
		return nil, errors.New("no document loaded")
	}
	sel, err := parseSelector(selectorStr)
	if err != nil {
		return nil, err
	}
	node := findFirst(s.doc, sel)
	if node == nil {
		return nil, fmt.Errorf("no element matches %q at %s", selectorStr, s.Location())
	}
	return node, nil
}

func (s *Session) resolve(ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if s.location != nil {
		return s.location.ResolveReference(parsed), nil
	}
	base, err := url.Parse(s.baseURL + "/")
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(parsed), nil
}

// load performs the request, follows redirects, and replaces the current
// document and location with the terminal response.
func (s *Session) load(method string, target *url.URL, form url.Values) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target.String(), body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return err
	}
	s.doc = doc
	s.location = resp.Request.URL
	s.logger.Printf("[session %s] now at %s (status %d)", s.id, s.location.Path, resp.StatusCode)
	return nil
}
