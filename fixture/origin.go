package fixture

import (
	"context"
	"net/http"
	"sync"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"

	"github.com/utrolig/route-contract-tests/framework"
)

// StandInOrigin is a separately-listening server that stands in for a
// genuine external origin, so external-fetch routes stay exercisable with
// no network egress. It serves the documented origin contract: GET /json
// answers 200 with body {"hello":"world"} and a bare application/json
// content type (no charset — that distinction is part of the contract). A
// real origin configured in its place must serve the same resource.
type StandInOrigin struct {
	baseURL  string
	requests <-chan httphelpers.HTTPRequestInfo

	lock    sync.Mutex
	server  *http.Server
	stopped bool
}

// StartStandInOrigin binds the origin on an ephemeral localhost port and
// returns once it is accepting requests.
func StartStandInOrigin(logger framework.Logger) (*StandInOrigin, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	mux := http.NewServeMux()
	mux.Handle("/json", httphelpers.HandlerWithResponse(200, headers, []byte(`{"hello":"world"}`)))
	recording, requests := httphelpers.RecordingHandler(mux)

	listener, err := bindListener(logger)
	if err != nil {
		return nil, err
	}
	server, baseURL, err := serveUntilReady(listener, recording)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	logger.Printf("Stand-in external origin listening at %s", baseURL)
	return &StandInOrigin{baseURL: baseURL, requests: requests, server: server}, nil
}

// BaseURL returns the origin's address.
func (o *StandInOrigin) BaseURL() string {
	return o.baseURL
}

// Requests exposes the recorded incoming requests, most useful for
// verifying that a route really called out to the origin.
func (o *StandInOrigin) Requests() <-chan httphelpers.HTTPRequestInfo {
	return o.requests
}

// Stop shuts the origin down. Idempotent.
func (o *StandInOrigin) Stop() {
	o.lock.Lock()
	if o.stopped {
		o.lock.Unlock()
		return
	}
	o.stopped = true
	server := o.server
	o.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	_ = server.Shutdown(ctx)
	cancel()
}
