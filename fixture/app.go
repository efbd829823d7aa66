// Package fixture turns a virtual route file tree into a running
// application. Build materializes the tree into a temporary workspace
// (page files plus a manifest of the compiled route table) and wires the
// ranked-match router; Start binds a localhost listener and serves the
// routes; Stop releases the listener and the workspace. The application
// executes the route handler contract defined in routefs, including the
// capability-scoped Fetch that handlers use for internal waterfalls and
// calls to external origins.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/utrolig/route-contract-tests/framework"
	"github.com/utrolig/route-contract-tests/routefs"
	"github.com/utrolig/route-contract-tests/router"
)

const defaultFetchTimeoutMS = 5000

// BuildOptions configures a fixture application.
type BuildOptions struct {
	// Logger receives the application's debug output (startup, request
	// routing, handler errors). Defaults to a null logger.
	Logger framework.Logger

	// FetchTimeoutMS bounds every outbound request made through a handler's
	// Fetch, so a hung origin cannot stall the suite.
	FetchTimeoutMS ldvalue.OptionalInt
}

// App is a built fixture application. Obtain one from Build, then call
// Start to serve it and Stop to release everything it holds.
type App struct {
	workspaceDir string
	buildID      string
	table        *router.Table
	entries      []*routeEntry
	logger       framework.Logger
	fetchTimeout time.Duration
	httpClient   *http.Client

	lock    sync.Mutex
	server  *http.Server
	baseURL string
	stopped bool
}

// routeEntry is everything registered under one route pattern: at most one
// page plus any number of method-keyed handlers.
type routeEntry struct {
	pattern  router.Pattern
	pageFile string // absolute path of the materialized page source
	pageRel  string // workspace-relative path, recorded in the manifest
	handlers map[string]routefs.HandlerFunc
}

// Build compiles the tree into an App. It parses every file path into the
// route table (a malformed path or an ambiguous route is an error here),
// creates a fresh temporary workspace, and materializes page sources and
// the route manifest into it. The workspace is removed again if the build
// fails partway, and otherwise lives until Stop.
func Build(tree *routefs.Tree, opts BuildOptions) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}

	files := tree.Files()
	if len(files) == 0 {
		return nil, errors.New("route tree has no files")
	}

	workspace, err := os.MkdirTemp("", "route-fixture-")
	if err != nil {
		return nil, fmt.Errorf("could not create workspace: %w", err)
	}
	built := false
	defer func() {
		if !built {
			_ = os.RemoveAll(workspace)
		}
	}()

	table := router.NewTable()
	byPattern := make(map[string]*routeEntry)
	var entries []*routeEntry

	for _, f := range files {
		pattern, err := router.ParsePattern(f.Path)
		if err != nil {
			return nil, err
		}
		entry := byPattern[pattern.String()]
		if entry == nil {
			entry = &routeEntry{pattern: pattern, handlers: make(map[string]routefs.HandlerFunc)}
			if err := table.Add(pattern, entry); err != nil {
				return nil, err
			}
			byPattern[pattern.String()] = entry
			entries = append(entries, entry)
		}
		if f.IsPage() {
			// Aliases like "nested" and "nested/index" resolve to the same
			// pattern, so this can collide even though the tree deduplicates
			// by raw path.
			if entry.pageFile != "" || entry.handlers[http.MethodGet] != nil {
				return nil, fmt.Errorf("route %s is already registered for GET", pattern)
			}
			rel := filepath.Join("pages", filepath.FromSlash(f.Path)+".html")
			abs := filepath.Join(workspace, rel)
			if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
				return nil, fmt.Errorf("could not materialize %s: %w", rel, err)
			}
			if err := os.WriteFile(abs, []byte(f.Source), 0644); err != nil {
				return nil, fmt.Errorf("could not materialize %s: %w", rel, err)
			}
			entry.pageFile = abs
			entry.pageRel = filepath.ToSlash(rel)
		} else {
			if entry.handlers[f.Method] != nil || (f.Method == http.MethodGet && entry.pageFile != "") {
				return nil, fmt.Errorf("route %s is already registered for %s", pattern, f.Method)
			}
			entry.handlers[f.Method] = f.Handler
		}
	}

	app := &App{
		workspaceDir: workspace,
		buildID:      uuid.New().String(),
		table:        table,
		entries:      entries,
		logger:       logger,
		fetchTimeout: time.Duration(opts.FetchTimeoutMS.OrElse(defaultFetchTimeoutMS)) * time.Millisecond,
		httpClient:   &http.Client{},
	}
	if err := app.writeManifest(); err != nil {
		return nil, err
	}

	logger.Printf("Built application %s (%d routes) in %s", app.buildID, len(entries), workspace)
	built = true
	return app, nil
}

// Start binds a localhost listener on an ephemeral port and serves the
// application, returning the reachable base URL. It does not return until
// the listener is confirmed to accept requests. Calling Start on an
// already-started App just returns the existing base URL.
func (a *App) Start() (string, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.stopped {
		return "", errors.New("application has been stopped")
	}
	if a.server != nil {
		return a.baseURL, nil
	}

	listener, err := bindListener(a.logger)
	if err != nil {
		return "", err
	}
	server, baseURL, err := serveUntilReady(listener, http.HandlerFunc(a.serveHTTP))
	if err != nil {
		_ = listener.Close()
		return "", err
	}
	a.server = server
	a.baseURL = baseURL
	a.logger.Printf("Application listening at %s", baseURL)
	return baseURL, nil
}

// Stop shuts the server down and removes the workspace. It is idempotent
// and safe to call whether or not Start succeeded, so a single deferred
// Stop covers every exit path.
func (a *App) Stop() {
	a.lock.Lock()
	if a.stopped {
		a.lock.Unlock()
		return
	}
	a.stopped = true
	server := a.server
	workspace := a.workspaceDir
	a.lock.Unlock()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		_ = server.Shutdown(ctx)
		cancel()
	}
	if workspace != "" {
		_ = os.RemoveAll(workspace)
	}
	a.logger.Printf("Application stopped")
}

// BaseURL returns the address Start bound, or "" before Start.
func (a *App) BaseURL() string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.baseURL
}

// BuildID returns the unique identifier assigned to this build.
func (a *App) BuildID() string {
	return a.buildID
}

// WorkspaceDir returns the temporary directory holding the materialized
// build output. It exists from Build until Stop.
func (a *App) WorkspaceDir() string {
	return a.workspaceDir
}

// ManifestPath returns the location of the compiled route manifest.
func (a *App) ManifestPath() string {
	return filepath.Join(a.workspaceDir, "manifest.json")
}

func (a *App) serveHTTP(w http.ResponseWriter, r *http.Request) {
	match, ok := a.table.Match(r.URL.Path)
	if !ok {
		a.logger.Printf("No route matches %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	entry := match.Value.(*routeEntry)
	if entry.pageFile != "" && r.Method == http.MethodGet {
		a.servePage(w, entry)
		return
	}
	handler := entry.handlers[r.Method]
	if handler == nil {
		a.logger.Printf("Method %s is not allowed for %s", r.Method, entry.pattern)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	a.serveRoute(w, r, handler, match.Params)
}

// servePage reads the materialized page file on every request; the
// workspace is the page's backing store, not a build-time convenience.
func (a *App) servePage(w http.ResponseWriter, entry *routeEntry) {
	data, err := os.ReadFile(entry.pageFile)
	if err != nil {
		a.logger.Printf("Could not read page file for %s: %s", entry.pattern, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) serveRoute(w http.ResponseWriter, r *http.Request, handler routefs.HandlerFunc, params map[string]string) {
	a.logger.Printf("%s %s matched with params %v", r.Method, r.URL.Path, params)
	resp, err := handler(&routefs.RouteContext{Request: r, Params: params, Fetch: a.fetch})
	if err != nil {
		a.logger.Printf("Handler for %s %s failed: %s", r.Method, r.URL.Path, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if resp == nil {
		http.Error(w, "handler returned no response", http.StatusInternalServerError)
		return
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	if resp.Location != "" {
		w.Header().Set("Location", resp.Location)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// fetch is the FetchFunc injected into every handler invocation. A target
// beginning with "/" is an internal waterfall and resolves against the
// app's own base URL; anything else must be an absolute URL.
func (a *App) fetch(ctx context.Context, target string) (*routefs.FetchResponse, error) {
	resolved := target
	if strings.HasPrefix(target, "/") {
		base := a.BaseURL()
		if base == "" {
			return nil, errors.New("application is not started")
		}
		resolved = base + target
	}
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Fetched %s: status %d, %d bytes", resolved, resp.StatusCode, len(body))
	return &routefs.FetchResponse{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
