package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// NewIPv4Server starts an httptest server bound to 127.0.0.1 and closes it
// when the test completes.
func NewIPv4Server(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen on tcp4: %v", err)
	}

	server := httptest.NewUnstartedServer(handler)
	server.Listener = listener
	server.Start()

	t.Cleanup(server.Close)
	return server
}

// CountingHandler wraps a handler and counts the requests it serves.
type CountingHandler struct {
	handler http.Handler
	calls   atomic.Int64
}

// NewCountingHandler wraps handler.
func NewCountingHandler(handler http.Handler) *CountingHandler {
	return &CountingHandler{handler: handler}
}

func (c *CountingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.calls.Add(1)
	c.handler.ServeHTTP(w, r)
}

// Calls returns the number of requests served so far.
func (c *CountingHandler) Calls() int {
	return int(c.calls.Load())
}

// JSONHandler always answers with status and body as application/json.
func JSONHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
