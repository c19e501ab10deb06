package app

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the client shared by page, robots.txt and LLM
// requests. Per-request deadlines come from the callers' contexts; timeout
// is only the outer bound.
func newHTTPClient(timeout time.Duration, concurrency int) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   concurrency,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}
