package customHttpClient

import (
	"net/http"

	"github.com/akolanti/docmind/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooled = &http.Client{Transport: customTransport}

// Pooled is shared by every outbound API client so embedding and chat
// calls reuse connections instead of re-dialing per request.
func Pooled() *http.Client {
	return pooled
}
