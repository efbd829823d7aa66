// Package router matches request paths against file-route patterns with
// explicit ranked precedence: literal segments beat dynamic "[name]"
// segments, which beat catch-all "[...name]" segments, at the first position
// where two candidate patterns differ. Matching is deterministic and
// independent of the order patterns were added; two patterns with the same
// shape are rejected as ambiguous when added.
package router

import (
	"errors"
	"fmt"
	"strings"
)

type segmentKind int

const (
	kindLiteral segmentKind = iota
	kindDynamic
	kindCatchAll
)

type segment struct {
	kind segmentKind
	// text is the literal value for kindLiteral, the capture name otherwise.
	text string
}

// Pattern is a parsed route path. Obtain one from ParsePattern; the zero
// value matches nothing.
type Pattern struct {
	segments  []segment
	canonical string
	shape     string
}

// ParsePattern parses a route-file path (relative, slash-joined, no leading
// slash) into a Pattern. The basename "index" denotes the enclosing
// directory's root, so "index" parses to the root pattern and "nested/index"
// to "/nested". A catch-all segment is only allowed in the final position,
// and capture names must be unique within one path.
func ParsePattern(path string) (Pattern, error) {
	if path == "" {
		return Pattern{}, errors.New("route path must not be empty")
	}
	raw := strings.Split(path, "/")
	if raw[len(raw)-1] == "index" {
		raw = raw[:len(raw)-1]
	}
	segments := make([]segment, 0, len(raw))
	names := make(map[string]bool)
	for i, s := range raw {
		seg, err := parseSegment(s)
		if err != nil {
			return Pattern{}, fmt.Errorf("route path %q: %w", path, err)
		}
		if seg.kind == kindCatchAll && i != len(raw)-1 {
			return Pattern{}, fmt.Errorf("route path %q: catch-all segment must be last", path)
		}
		if seg.kind != kindLiteral {
			if names[seg.text] {
				return Pattern{}, fmt.Errorf("route path %q: duplicate capture name %q", path, seg.text)
			}
			names[seg.text] = true
		}
		segments = append(segments, seg)
	}
	return Pattern{
		segments:  segments,
		canonical: joinSegments(segments, false),
		shape:     joinSegments(segments, true),
	}, nil
}

func parseSegment(s string) (segment, error) {
	if s == "" {
		return segment{}, errors.New("empty path segment")
	}
	if strings.HasPrefix(s, "[") || strings.HasSuffix(s, "]") {
		if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
			return segment{}, fmt.Errorf("malformed segment %q", s)
		}
		name := s[1 : len(s)-1]
		kind := kindDynamic
		if strings.HasPrefix(name, "...") {
			kind = kindCatchAll
			name = name[len("..."):]
		}
		if name == "" {
			return segment{}, fmt.Errorf("segment %q has no capture name", s)
		}
		if strings.ContainsAny(name, "[]") {
			return segment{}, fmt.Errorf("malformed segment %q", s)
		}
		return segment{kind: kind, text: name}, nil
	}
	if strings.ContainsAny(s, "[]") {
		return segment{}, fmt.Errorf("malformed segment %q", s)
	}
	return segment{kind: kindLiteral, text: s}, nil
}

// String returns the pattern in canonical URL form with a leading slash;
// the root pattern is "/".
func (p Pattern) String() string {
	return p.canonical
}

// match binds the pattern against already-split request path segments. A
// dynamic segment binds exactly one segment; a catch-all binds all remaining
// segments slash-joined and requires at least one.
func (p Pattern) match(segments []string) (map[string]string, bool) {
	var params map[string]string
	for i, seg := range p.segments {
		if i >= len(segments) {
			return nil, false
		}
		switch seg.kind {
		case kindLiteral:
			if segments[i] != seg.text {
				return nil, false
			}
		case kindDynamic:
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.text] = segments[i]
		case kindCatchAll:
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.text] = strings.Join(segments[i:], "/")
			return params, true
		}
	}
	if len(p.segments) != len(segments) {
		return nil, false
	}
	return params, true
}

// moreSpecific reports whether a outranks b for a path both match: at the
// first position where the segment kinds differ, literal beats dynamic and
// dynamic beats catch-all. With identical kinds throughout the shared
// length, the pattern that consumes segments exactly outranks the one whose
// catch-all absorbs them.
func moreSpecific(a, b Pattern) bool {
	n := len(a.segments)
	if len(b.segments) < n {
		n = len(b.segments)
	}
	for i := 0; i < n; i++ {
		if a.segments[i].kind != b.segments[i].kind {
			return a.segments[i].kind < b.segments[i].kind
		}
	}
	return len(a.segments) > len(b.segments)
}

// joinSegments renders segments as a URL path. With anonymous=true, capture
// names are erased so that two patterns differing only in their names render
// identically; that rendering is the pattern's shape, used for ambiguity
// detection.
func joinSegments(segments []segment, anonymous bool) string {
	if len(segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		switch seg.kind {
		case kindLiteral:
			b.WriteString(seg.text)
		case kindDynamic:
			if anonymous {
				b.WriteString("[*]")
			} else {
				b.WriteString("[" + seg.text + "]")
			}
		case kindCatchAll:
			if anonymous {
				b.WriteString("[...]")
			} else {
				b.WriteString("[..." + seg.text + "]")
			}
		}
	}
	return b.String()
}
