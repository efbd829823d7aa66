package routetests

import (
	"github.com/stretchr/testify/assert"

	"github.com/utrolig/route-contract-tests/client"
)

func DoAPIRouteTests(t *T) {
	t.Run("literal route", func(t *T) {
		resp := t.Get("/api/greeting/hello")
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, "application/json; charset=utf-8", resp.Headers.Get("Content-Type"))
		assert.Equal(t, `{"hello":"world"}`, resp.BodyText())
	})

	t.Run("dynamic segment", func(t *T) {
		resp := t.Get("/api/greeting/harry-potter")
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, "application/json; charset=utf-8", resp.Headers.Get("Content-Type"))
		assert.Equal(t, `{"welcome":"harry-potter"}`, resp.BodyText(),
			"the dynamic route must win over the catch-all for a single segment")
	})

	t.Run("catch-all absorbs the remaining segments", func(t *T) {
		resp := t.Get("/api/greeting/he/who/must/not/be/named")
		assert.Equal(t, 200, resp.Status)
		value := t.RequireJSONBody(resp)
		assert.Equal(t, "he/who/must/not/be/named", value.GetByKey("goodbye").StringValue())
	})

	t.Run("catch-all needs at least one segment", func(t *T) {
		resp := t.GetRaw("/api/greeting")
		assert.Equal(t, 404, resp.Status)
	})

	t.Run("handler sees request headers", func(t *T) {
		resp := t.Request(client.RequestSpec{
			Path:    "/api/request",
			Headers: map[string]string{"x-test-header": "from-the-suite"},
		})
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, `{"header":"from-the-suite"}`, resp.BodyText())
	})

	t.Run("literal extension route", func(t *T) {
		resp := t.Get("/data.json")
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, "application/json; charset=utf-8", resp.Headers.Get("Content-Type"))
		assert.Equal(t, `{"file":"data.json"}`, resp.BodyText())
	})

	t.Run("api routes reject undeclared methods", func(t *T) {
		resp := t.RequestRaw(client.RequestSpec{Path: "/api/greeting/hello", Method: "PUT"})
		assert.Equal(t, 405, resp.Status)
	})
}
