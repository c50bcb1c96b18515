package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	rejected := UserMessage(&RejectionError{StatusCode: 422})
	if rejected != "The server rejected this change (code 422)." {
		t.Fatalf("rejection message = %q", rejected)
	}

	transport := UserMessage(&TransportError{Err: errors.New("dial tcp: timeout")})
	if transport != "Could not reach the server. The change will be retried." {
		t.Fatalf("transport message = %q", transport)
	}

	unknown := UserMessage(errors.New("boom"))
	if unknown != "Sync failed unexpectedly. The change will be retried." {
		t.Fatalf("fallback message = %q", unknown)
	}
}

func TestUserMessageSeesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("deliver notes/abc: %w", &TransportError{Err: errors.New("conn refused")})
	if got := UserMessage(wrapped); got != "Could not reach the server. The change will be retried." {
		t.Fatalf("wrapped transport message = %q", got)
	}

	wrapped = fmt.Errorf("deliver notes/abc: %w", &RejectionError{StatusCode: 409})
	if got := UserMessage(wrapped); got != "The server rejected this change (code 409)." {
		t.Fatalf("wrapped rejection message = %q", got)
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &TransportError{Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected Unwrap to expose the cause")
	}
	if err.Error() == "" {
		t.Fatalf("expected a descriptive message")
	}
}

func TestRejectionErrorMessage(t *testing.T) {
	err := &RejectionError{StatusCode: 500}
	var rej *RejectionError
	if !errors.As(err, &rej) || rej.StatusCode != 500 {
		t.Fatalf("errors.As lost the status code")
	}
}
