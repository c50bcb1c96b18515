package domain

import (
	"time"

	json "github.com/goccy/go-json"
)

// Record is one locally originated mutation awaiting delivery.
//
// A record exists in the store iff it has not been durably confirmed
// delivered; confirmed delivery deletes it. Payload bytes are kept verbatim
// so the caller's JSON object, including its key order, survives every
// round-trip. Optional fields marshal as explicit nulls because the flat
// persisted layout carries every field.
type Record struct {
	LocalID       string          `json:"local_id"`
	QueueName     string          `json:"queue_name"`
	Payload       json.RawMessage `json:"payload"`
	ServerID      *string         `json:"server_id"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at"`
	ErrorMessage  *string         `json:"error_message"`
	RetryCount    int             `json:"retry_count"`
	PathSuffix    *string         `json:"path_suffix"`
}

// Eligible reports whether the record may be fetched for another attempt
// under the given retry budget. Stuck in_progress rows and dead rows are
// never eligible.
func (r Record) Eligible(maxRetries int) bool {
	if r.Status != StatusPending && r.Status != StatusFailed {
		return false
	}
	return r.RetryCount < maxRetries
}
