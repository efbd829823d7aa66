package routefs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func nullHandler(*RouteContext) (*Response, error) {
	return JSON(ldvalue.Null()), nil
}

func TestTreeKeepsDeclarationOrder(t *testing.T) {
	tree := New()
	require.NoError(t, tree.AddPage("index", "<html></html>"))
	require.NoError(t, tree.AddHandler("api/greeting/[name]", "", nullHandler))
	require.NoError(t, tree.AddHandler("redirect-to", "POST", nullHandler))

	files := tree.Files()
	require.Len(t, files, 3)
	assert.Equal(t, "index", files[0].Path)
	assert.Equal(t, "api/greeting/[name]", files[1].Path)
	assert.Equal(t, "redirect-to", files[2].Path)
}

func TestTreeNormalizesHandlerMethods(t *testing.T) {
	tree := New()
	require.NoError(t, tree.AddHandler("a", "", nullHandler))
	require.NoError(t, tree.AddHandler("b", "post", nullHandler))

	files := tree.Files()
	assert.Equal(t, http.MethodGet, files[0].Method)
	assert.Equal(t, http.MethodPost, files[1].Method)
	assert.False(t, files[1].IsPage())
}

func TestTreeRejectsDuplicateRegistration(t *testing.T) {
	tree := New()
	require.NoError(t, tree.AddPage("page", "<p>1</p>"))
	require.NoError(t, tree.AddHandler("api/data", "GET", nullHandler))

	assert.Error(t, tree.AddPage("page", "<p>2</p>"))
	assert.Error(t, tree.AddHandler("api/data", "get", nullHandler))

	// A page occupies GET, so a GET handler at the same path collides too.
	assert.Error(t, tree.AddHandler("page", "GET", nullHandler))

	// Same path with a different method is a distinct file.
	assert.NoError(t, tree.AddHandler("api/data", "POST", nullHandler))
}

func TestTreeRejectsEmptyPathAndNilHandler(t *testing.T) {
	tree := New()
	assert.Error(t, tree.AddPage("", "<html></html>"))
	assert.Error(t, tree.AddHandler("", "GET", nullHandler))
	assert.Error(t, tree.AddHandler("api/data", "GET", nil))
}

func TestTreeFilesReturnsACopy(t *testing.T) {
	tree := New()
	require.NoError(t, tree.AddPage("index", "<html></html>"))

	files := tree.Files()
	files[0].Path = "mutated"

	assert.Equal(t, "index", tree.Files()[0].Path)
}
