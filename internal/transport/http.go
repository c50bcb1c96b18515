package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"uplink/internal/domain"
)

// HTTP is the net/http transport. One instance is shared across a whole
// cycle; per-request timeouts come from the Request, not the client.
type HTTP struct {
	client *http.Client
}

var _ Transport = (*HTTP)(nil)

// NewHTTP builds a transport around a fresh client.
func NewHTTP() *HTTP {
	return &HTTP{client: &http.Client{}}
}

func (h *HTTP) Request(ctx context.Context, req Request) (Response, error) {
	if !domain.ValidMethod(req.Method) {
		return Response{}, fmt.Errorf("unsupported method %q", req.Method)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, JoinURL(req.BaseURL, req.Endpoint, req.PathSuffix), body)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return Response{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &domain.TransportError{Err: err}
	}

	return Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// JoinURL concatenates base, endpoint and suffix. The base/endpoint boundary
// is normalized to a single slash; the suffix is appended verbatim so queue
// configs control their own shape.
func JoinURL(base, endpoint, suffix string) string {
	base = strings.TrimSuffix(base, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return base + endpoint + suffix
}
