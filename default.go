package uplink

import "sync"

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// SetDefault installs the process-wide Client returned by Default. Apps with
// one outbox set it once at startup instead of threading the client through
// every call site.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient = c
}

// Default returns the process-wide Client, or nil when none was installed.
func Default() *Client {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClient
}
