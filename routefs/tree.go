// Package routefs models an application's route definitions as a virtual
// file tree: an ordered set of route files identified by their
// route-significant paths, assembled in memory before anything is
// materialized to disk.
//
// Paths follow the file-route naming convention: relative, slash-joined
// segments, where a plain segment matches literally, "[name]" binds a single
// dynamic segment, and "[...name]" binds all remaining segments. The
// basename "index" stands for the enclosing directory's root. A literal
// extension in the final segment (such as "data.json") is served under that
// exact path. Paths are not validated here; a malformed path surfaces as an
// error when the tree is built into an application.
package routefs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// File is a single route definition. Exactly one of Source (a page served as
// HTML) or Handler (an API route) is set. Method applies to handler files
// only and is always stored uppercase; a page occupies GET.
type File struct {
	Path    string
	Method  string
	Source  string
	Handler HandlerFunc
}

// IsPage reports whether the file is a page rather than an API route.
func (f File) IsPage() bool {
	return f.Handler == nil
}

// Tree is an ordered collection of route files making up one application.
// Files are immutable once added, and identity is (path, method): adding the
// same combination twice is an error. The build step consumes a snapshot
// from Files, so mutating a Tree after building cannot affect the built
// application.
type Tree struct {
	files    []File
	occupied map[string]bool
}

func New() *Tree {
	return &Tree{occupied: make(map[string]bool)}
}

// AddPage adds a page file whose source text is served as HTML.
func (t *Tree) AddPage(path, source string) error {
	if err := t.reserve(path, http.MethodGet); err != nil {
		return err
	}
	t.files = append(t.files, File{Path: path, Source: source})
	return nil
}

// AddHandler adds an API route file. An empty method is treated as GET.
func (t *Tree) AddHandler(path, method string, handler HandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("route file %q has a nil handler", path)
	}
	m := normalizeMethod(method)
	if err := t.reserve(path, m); err != nil {
		return err
	}
	t.files = append(t.files, File{Path: path, Method: m, Handler: handler})
	return nil
}

// Files returns the route files in declaration order. The returned slice is
// a copy.
func (t *Tree) Files() []File {
	files := make([]File, len(t.files))
	copy(files, t.files)
	return files
}

func (t *Tree) reserve(path, method string) error {
	if path == "" {
		return errors.New("route file path must not be empty")
	}
	key := method + " " + path
	if t.occupied[key] {
		return fmt.Errorf("duplicate route file %q for method %s", path, method)
	}
	t.occupied[key] = true
	return nil
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}
