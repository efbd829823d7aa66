package routetests

import (
	"net/url"

	"github.com/stretchr/testify/assert"

	"github.com/utrolig/route-contract-tests/browser"
)

func DoPageTests(t *T) {
	t.Run("landing page", func(t *T) {
		resp := t.Get("/")
		assert.Equal(t, 200, resp.Status)
		assert.Contains(t, resp.Headers.Get("Content-Type"), "text/html",
			"pages must be served as HTML")
		assert.Contains(t, resp.BodyText(), `id="title"`)
	})

	t.Run("unknown path is a 404", func(t *T) {
		resp := t.GetRaw("/no/such/page")
		assert.Equal(t, 404, resp.Status)
	})

	t.Run("page routes reject non-GET methods", func(t *T) {
		resp := t.PostFormRaw("/", url.Values{})
		assert.Equal(t, 405, resp.Status)
	})

	t.Run("renders in a browser", func(t *T) {
		t.InBrowser(false, func(s *browser.Session) {
			t.Goto(s, "/")
			assert.Equal(t, "Route contract fixture", t.RequireText(s, "h1#title"))
			assert.Equal(t, "0", t.RequireText(s, "#count"))
		})
	})

	t.Run("counter increments only with scripts", func(t *T) {
		t.InBrowser(true, func(s *browser.Session) {
			t.Goto(s, "/")
			t.ClickOn(s, "#increment")
			t.ClickOn(s, "#increment")
			assert.Equal(t, "2", t.RequireText(s, "#count"))
			assert.Equal(t, "/", s.Location(), "incrementing must not navigate")
		})
		t.InBrowser(false, func(s *browser.Session) {
			t.Goto(s, "/")
			t.ClickOn(s, "#increment")
			assert.Equal(t, "0", t.RequireText(s, "#count"),
				"the counter must stay inert without scripts")
		})
	})
}
