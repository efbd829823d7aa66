package routetests

import (
	"fmt"
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrolig/route-contract-tests/browser"
)

func DoRedirectTests(t *T) {
	t.Run("redirect route carries a Location header", func(t *T) {
		resp := t.GetRaw("/redirect")
		assert.Equal(t, 302, resp.Status)
		assert.Equal(t, "/redirected", resp.Headers.Get("Location"))
	})

	t.Run("redirect resolves end to end", func(t *T) {
		resp := t.Get("/redirect")
		assert.Equal(t, 200, resp.Status)
		assert.Contains(t, resp.BodyText(), `id="redirected-title"`)
	})

	t.Run("form post redirects to the posted destination", func(t *T) {
		form := url.Values{"destination": {"/redirect-destination"}}

		raw := t.PostFormRaw("/redirect-to", form)
		assert.Equal(t, 302, raw.Status)
		assert.Equal(t, "/redirect-destination", raw.Headers.Get("Location"))

		resolved := t.PostForm("/redirect-to", form)
		assert.Equal(t, 200, resolved.Status)
		assert.Contains(t, resolved.BodyText(), "You made it!")
	})

	for _, scriptsEnabled := range []bool{false, true} {
		t.Run(fmt.Sprintf("browser form flow (scripts enabled: %t)", scriptsEnabled), func(t *T) {
			t.InBrowser(scriptsEnabled, func(s *browser.Session) {
				t.Goto(s, "/")
				t.ClickOn(s, "#redirect-submit")
				require.NoError(t, s.WaitForSelector("#redirect-destination"))
				assert.Equal(t, "/redirect-destination", s.Location())
				assert.Equal(t, "You made it!", t.RequireText(s, "#redirect-destination"))
			})
		})
	}

	t.Run("browser link navigation follows the redirect", func(t *T) {
		t.InBrowser(false, func(s *browser.Session) {
			t.Goto(s, "/")
			t.ClickOn(s, "#nav-redirect")
			assert.Equal(t, "/redirected", s.Location())
			assert.Equal(t, "You were redirected", t.RequireText(s, "#redirected-title"))
		})
	})
}
