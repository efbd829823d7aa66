package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ResponseView is a read-only view of a completed response.
type ResponseView struct {
	Status  int
	Headers http.Header
	Body    []byte

	jsonOnce  sync.Once
	jsonValue ldvalue.Value
	jsonErr   error
}

// BodyText returns the body as a string.
func (v *ResponseView) BodyText() string {
	return string(v.Body)
}

// JSON parses the body as JSON. Parsing happens at most once; the result is
// cached for later calls.
func (v *ResponseView) JSON() (ldvalue.Value, error) {
	v.jsonOnce.Do(func() {
		if err := json.Unmarshal(v.Body, &v.jsonValue); err != nil {
			v.jsonValue = ldvalue.Null()
			v.jsonErr = fmt.Errorf("response body is not valid JSON: %w", err)
		}
	})
	return v.jsonValue, v.jsonErr
}
