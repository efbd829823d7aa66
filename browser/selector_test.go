package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustFind(t *testing.T, doc *html.Node, selectorStr string) *html.Node {
	t.Helper()
	sel, err := parseSelector(selectorStr)
	require.NoError(t, err)
	node := findFirst(doc, sel)
	require.NotNil(t, node, "expected a match for %q", selectorStr)
	return node
}

func assertNoMatch(t *testing.T, doc *html.Node, selectorStr string) {
	t.Helper()
	sel, err := parseSelector(selectorStr)
	require.NoError(t, err)
	assert.Nil(t, findFirst(doc, sel), "expected no match for %q", selectorStr)
}

func TestSelectorMatchesTagIdClassAndAttribute(t *testing.T) {
	doc := parseDocument(t, `<div id="outer" class="wrap main">`+
		`<form data-enhance method="post"><input type="text" name="q"></form>`+
		`<span id="count" class="num">3</span></div>`)

	assert.Equal(t, "span", mustFind(t, doc, "span").Data)
	assert.Equal(t, "form", mustFind(t, doc, "[data-enhance]").Data)
	assert.Equal(t, "input", mustFind(t, doc, "input[type=text]").Data)
	assert.Equal(t, "form", mustFind(t, doc, `form[method="post"]`).Data)

	id, _ := attr(mustFind(t, doc, "#count"), "id")
	assert.Equal(t, "count", id)
	id, _ = attr(mustFind(t, doc, ".num"), "id")
	assert.Equal(t, "count", id)
	id, _ = attr(mustFind(t, doc, "span.num#count"), "id")
	assert.Equal(t, "count", id)
	id, _ = attr(mustFind(t, doc, ".wrap.main"), "id")
	assert.Equal(t, "outer", id)

	assertNoMatch(t, doc, ".missing")
	assertNoMatch(t, doc, "span[type=text]")
	assertNoMatch(t, doc, "input[type=checkbox]")
}

func TestSelectorDescendantCombinator(t *testing.T) {
	doc := parseDocument(t, `<div id="a"><form><p><input id="inner"></p></form>`+
		`<input id="sibling"></div>`)

	id, _ := attr(mustFind(t, doc, "form input"), "id")
	assert.Equal(t, "inner", id)
	id, _ = attr(mustFind(t, doc, "div form p input"), "id")
	assert.Equal(t, "inner", id)

	// Ancestors must match in document order, not just be present somewhere.
	assertNoMatch(t, doc, "p form input")
	assertNoMatch(t, doc, "form #sibling")
}

func TestParseSelectorRejectsMalformedInput(t *testing.T) {
	for _, bad := range []string{
		"",
		"   ",
		"#",
		".",
		"#.x",
		"..a",
		"div[",
		"div[attr",
		"[=x]",
		"div[a=b]x",
	} {
		_, err := parseSelector(bad)
		assert.Error(t, err, "selector %q should not parse", bad)
	}
}
