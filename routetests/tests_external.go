package routetests

import (
	"github.com/stretchr/testify/assert"
)

func DoExternalFetchTests(t *T) {
	t.RequireCapability(CapabilityExternalFetch)

	t.Run("forwarded response keeps the origin's own content type", func(t *T) {
		resp := t.Get("/api/fetch")
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"),
			"pass-through responses must not be normalized")
		assert.Equal(t, `{"hello":"world"}`, resp.BodyText())
	})

	t.Run("re-emitted response uses the application's content type", func(t *T) {
		resp := t.Get("/api/external-fetch")
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, "application/json; charset=utf-8", resp.Headers.Get("Content-Type"))
		value := t.RequireJSONBody(resp)
		assert.Equal(t, "world", value.GetByKey("hello").StringValue())
	})
}
