package routetests

import (
	"github.com/stretchr/testify/assert"
)

func DoWaterfallTests(t *T) {
	t.Run("waterfall matches the direct response", func(t *T) {
		direct := t.Get("/api/greeting/hello")
		waterfall := t.Get("/api/waterfall")

		assert.Equal(t, 200, waterfall.Status)
		assert.Equal(t, direct.BodyText(), waterfall.BodyText(),
			"the re-fetched body must be identical to the direct one")
		assert.Equal(t, direct.Headers.Get("Content-Type"), waterfall.Headers.Get("Content-Type"))
	})

	t.Run("double waterfall is transitive", func(t *T) {
		direct := t.Get("/api/greeting/hello")
		doubled := t.Get("/api/double-waterfall")

		assert.Equal(t, 200, doubled.Status)
		assert.Equal(t, direct.BodyText(), doubled.BodyText())
		assert.Equal(t, direct.Headers.Get("Content-Type"), doubled.Headers.Get("Content-Type"))
	})
}
