// Package transport sends one record's payload to one endpoint with one
// verb. It knows nothing about queues, retries, or persistence.
package transport

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Request describes a single delivery call. The target URL is
// base + endpoint + suffix; the suffix is appended verbatim.
type Request struct {
	BaseURL    string
	Endpoint   string
	PathSuffix string
	Method     string
	Headers    map[string]string
	Body       json.RawMessage
	Timeout    time.Duration
}

// Response is whatever the server answered, success or not. Classifying the
// status against a queue's success set is the engine's job.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport issues delivery calls. Implementations return a Response for any
// HTTP status and a domain.TransportError only when no response was produced.
type Transport interface {
	Request(ctx context.Context, req Request) (Response, error)
}
