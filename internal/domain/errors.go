package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate is returned when enqueueing a (queue, local id) pair that
	// already exists.
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound is returned when updating or fetching an absent record.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownQueue is returned for caller operations naming a queue that
	// was never registered.
	ErrUnknownQueue = errors.New("queue is not registered")
	// ErrDuplicateQueue is returned when registering a queue name twice.
	ErrDuplicateQueue = errors.New("queue name already registered")
	// ErrAuthentication aborts a whole cycle: no usable credential.
	ErrAuthentication = errors.New("no usable sync credential")
	// ErrInterrupted is the cooperative halt raised when the app becomes
	// foreground mid-cycle. Benign: committed outcomes stand.
	ErrInterrupted = errors.New("sync interrupted by foreground transition")
)

// TransportError wraps a network-level failure: the request never produced
// an HTTP response. Recoverable; drives the retry path.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError marks a response received with a status outside the
// queue's success set. Same retry path as a transport failure.
type RejectionError struct {
	StatusCode int
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("server rejected request with status %d", e.StatusCode)
}

// UserMessage normalizes any attempt error to short, non-technical,
// user-displayable text. Raw error detail never reaches the store.
func UserMessage(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return fmt.Sprintf("The server rejected this change (code %d).", rej.StatusCode)
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "Could not reach the server. The change will be retried."
	}
	return "Sync failed unexpectedly. The change will be retried."
}
