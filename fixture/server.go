package fixture

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/utrolig/route-contract-tests/framework"
)

const maxBindAttempts = 3
const listenerReadyTimeout = time.Second * 10
const serverShutdownTimeout = time.Second * 5

// bindListener binds a localhost listener on an ephemeral port. A failed
// bind is retried on a fresh port a fixed number of times before giving up.
func bindListener(logger framework.Logger) (net.Listener, error) {
	var lastErr error
	for attempt := 1; attempt <= maxBindAttempts; attempt++ {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err == nil {
			return listener, nil
		}
		lastErr = err
		logger.Printf("Listener bind attempt %d failed: %s", attempt, err)
	}
	return nil, fmt.Errorf("could not bind a listener in %d attempts: %w", maxBindAttempts, lastErr)
}

// serveUntilReady starts serving on the listener and polls it until it is
// definitely accepting requests. HEAD requests are answered directly with
// 200 so the poll works regardless of what routes the handler knows.
func serveUntilReady(listener net.Listener, handler http.Handler) (*http.Server, string, error) {
	baseURL := "http://" + listener.Addr().String()
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == "HEAD" {
				w.WriteHeader(200)
				return
			}
			handler.ServeHTTP(w, r)
		}),
	}
	go func() {
		_ = server.Serve(listener) // returns ErrServerClosed once the server is stopped
	}()

	deadline := time.NewTimer(listenerReadyTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()
	for {
		select {
		case <-deadline.C:
			return nil, "", fmt.Errorf("could not detect own listener at %s", listener.Addr())
		case <-ticker.C:
			resp, err := http.DefaultClient.Head(baseURL)
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == 200 {
					return server, baseURL, nil
				}
			}
		}
	}
}
