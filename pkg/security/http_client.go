package security

import (
	"crypto/tls"
	"net/http"
	"time"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTLSHandshakeTimeout is the default timeout for TLS handshakes
	DefaultTLSHandshakeTimeout = 10 * time.Second

	// DefaultIdleConnTimeout is the default timeout for idle connections
	DefaultIdleConnTimeout = 90 * time.Second

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns = 100

	// MaxIdleConnsPerHost is the maximum number of idle connections per host
	MaxIdleConnsPerHost = 10

	// requestSlack lets the per-request context deadline fire before the
	// client-wide timeout, so timeouts classify from the context.
	requestSlack = 5 * time.Second
)

// InferenceHTTPClient returns the client shared by all requests to the
// inference endpoint. Individual requests carry their own, shorter deadline;
// timeout is the longest of them. insecure skips TLS verification and is only
// meant for a self-signed endpoint on a trusted network.
func InferenceHTTPClient(timeout time.Duration, insecure bool) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{
		Timeout:   timeout + requestSlack,
		Transport: newTransport(timeout+requestSlack, insecure),
	}
}

func newTransport(headerTimeout time.Duration, insecure bool) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: insecure, //nolint:gosec // opt-in via configuration
		},
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		MaxIdleConns:          MaxIdleConns,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		ResponseHeaderTimeout: headerTimeout,
	}
}
