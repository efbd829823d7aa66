package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// The selector language is the small subset the suite needs: a compound
// selector combines a tag name, "#id", ".class", and "[attr=value]" parts,
// and whitespace between compounds means descendant.

type attrCond struct {
	name     string
	value    string
	hasValue bool
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrCond
}

type selector []compound

func parseSelector(s string) (selector, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty selector")
	}
	sel := make(selector, 0, len(parts))
	for _, part := range parts {
		c, err := parseCompound(part)
		if err != nil {
			return nil, fmt.Errorf("bad selector %q: %w", s, err)
		}
		sel = append(sel, c)
	}
	return sel, nil
}

func parseCompound(s string) (compound, error) {
	var c compound
	rest := s
	readName := func() string {
		end := strings.IndexAny(rest, "#.[")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		return name
	}

	if rest != "" && rest[0] != '#' && rest[0] != '.' && rest[0] != '[' {
		c.tag = strings.ToLower(readName())
	}
	for rest != "" {
		switch rest[0] {
		case '#':
			rest = rest[1:]
			id := readName()
			if id == "" {
				return c, fmt.Errorf("missing id after '#'")
			}
			c.id = id
		case '.':
			rest = rest[1:]
			class := readName()
			if class == "" {
				return c, fmt.Errorf("missing class after '.'")
			}
			c.classes = append(c.classes, class)
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated '['")
			}
			body := rest[1:end]
			rest = rest[end+1:]
			cond := attrCond{name: body}
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				cond.name = body[:eq]
				cond.value = strings.Trim(body[eq+1:], `"'`)
				cond.hasValue = true
			}
			if cond.name == "" {
				return c, fmt.Errorf("missing attribute name in '[]'")
			}
			c.attrs = append(c.attrs, cond)
		default:
			return c, fmt.Errorf("unexpected %q", rest[0])
		}
	}
	if c.tag == "" && c.id == "" && len(c.classes) == 0 && len(c.attrs) == 0 {
		return c, fmt.Errorf("empty compound selector")
	}
	return c, nil
}

// matches reports whether n is matched by the selector: the final compound
// must match n itself and the preceding compounds must match ancestors of n
// in order.
func (sel selector) matches(n *html.Node) bool {
	if len(sel) == 0 || !sel[len(sel)-1].matches(n) {
		return false
	}
	idx := len(sel) - 2
	for a := n.Parent; a != nil && idx >= 0; a = a.Parent {
		if isElement(a) && sel[idx].matches(a) {
			idx--
		}
	}
	return idx < 0
}

func (c compound) matches(n *html.Node) bool {
	if !isElement(n) {
		return false
	}
	if c.tag != "" && n.Data != c.tag {
		return false
	}
	if c.id != "" {
		id, ok := attr(n, "id")
		if !ok || id != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		classAttr, _ := attr(n, "class")
		have := strings.Fields(classAttr)
		for _, want := range c.classes {
			found := false
			for _, cls := range have {
				if cls == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, cond := range c.attrs {
		value, ok := attr(n, cond.name)
		if !ok {
			return false
		}
		if cond.hasValue && value != cond.value {
			return false
		}
	}
	return true
}
