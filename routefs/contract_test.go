package routefs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestJSONResponse(t *testing.T) {
	resp := JSON(ldvalue.ObjectBuild().Set("welcome", ldvalue.String("harry-potter")).Build())

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)
	assert.Equal(t, `{"welcome":"harry-potter"}`, string(resp.Body))
	assert.Equal(t, "", resp.Location)
}

func TestRedirectResponse(t *testing.T) {
	resp := Redirect("/redirected")

	assert.Equal(t, 302, resp.Status)
	assert.Equal(t, "/redirected", resp.Location)
	assert.Empty(t, resp.Body)
}

func TestForwardKeepsUpstreamResponseVerbatim(t *testing.T) {
	upstream := &FetchResponse{
		Status: 200,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   []byte(`{"hello":"world"}`),
	}

	resp := Forward(upstream)

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Equal(t, `{"hello":"world"}`, string(resp.Body))
}
