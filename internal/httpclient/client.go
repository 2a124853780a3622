// Package httpclient provides the shared outbound HTTP client used by the
// ExposureBus (subscriber notification) and the PlacementController
// (emulator polling and move commands), grounded on the same
// http.Transport-construction style the emulator's teacher uses for its own
// outbound HTTP (see internal/netutil).
package httpclient

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Options controls client construction.
type Options struct {
	// Timeout bounds an entire round trip (dial, TLS, headers, body).
	Timeout time.Duration
	// UserAgent overrides the default User-Agent when non-empty.
	UserAgent string
}

const defaultUserAgent = "mnedge/1.0"

// userAgentTransport sets a default User-Agent on every request that
// doesn't already carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// New builds an *http.Client configured for HTTP/2 where the server
// supports it (ForceAttemptHTTP2 and ConfigureTransport enable "h2" ALPN
// negotiation over TLS; plain-HTTP endpoints are spoken to over HTTP/1.1).
func New(opts Options) *http.Client {
	transport := &http.Transport{
		ForceAttemptHTTP2: true,
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		// ConfigureTransport only fails on a misconfigured transport; ours
		// is freshly constructed, so this is unreachable in practice.
		panic("httpclient: configure http2: " + err.Error())
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &http.Client{
		Transport: &userAgentTransport{base: transport, userAgent: userAgent},
		Timeout:   timeout,
	}
}
