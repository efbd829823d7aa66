package fixture

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
)

// manifest is the build artifact written to manifest.json in the workspace,
// describing the compiled route table.
type manifest struct {
	BuildID string          `json:"buildId"`
	Routes  []manifestRoute `json:"routes"`
}

type manifestRoute struct {
	Pattern string   `json:"pattern"`
	Kind    string   `json:"kind"`
	Methods []string `json:"methods"`
	Source  string   `json:"source,omitempty"`
}

func (a *App) manifest() manifest {
	man := manifest{BuildID: a.buildID}
	for _, entry := range a.entries {
		man.Routes = append(man.Routes, manifestRoute{
			Pattern: entry.pattern.String(),
			Kind:    entry.kind(),
			Methods: entry.methods(),
			Source:  entry.pageRel,
		})
	}
	return man
}

func (a *App) writeManifest() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a.manifest()); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(a.workspaceDir, "manifest.json"), buf.Bytes(), 0644)
}

func (e *routeEntry) kind() string {
	switch {
	case e.pageFile != "" && len(e.handlers) > 0:
		return "page+handler"
	case e.pageFile != "":
		return "page"
	default:
		return "handler"
	}
}

// methods lists the route's accepted methods sorted, a page counting as GET.
func (e *routeEntry) methods() []string {
	set := make(map[string]bool)
	if e.pageFile != "" {
		set[http.MethodGet] = true
	}
	for m := range e.handlers {
		set[m] = true
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
