package domain

import "fmt"

const (
	defaultMaxRetries = 5

	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

var defaultSuccessStatuses = []int{200, 201, 204}

// Serializer converts a caller model into the flat JSON-compatible mapping
// that becomes the record payload. It is bound at registration time so the
// enqueue call site stays untyped.
type Serializer func(model any) (map[string]any, error)

// IDExtractor pulls the server-assigned id out of a decoded single-level
// response object. Returning "" means no id was found.
type IDExtractor func(body map[string]any) string

// SuffixBuilder derives a per-record endpoint suffix (e.g. "/<server_id>").
// It takes precedence over the record's static path suffix.
type SuffixBuilder func(rec Record) string

// SuccessHook runs after a record is confirmed delivered and deleted.
// serverID is empty unless an extractor was configured and matched.
type SuccessHook func(localID, serverID string)

// FailureHook runs after a failed attempt is persisted. message is the
// normalized user-facing error text.
type FailureHook func(localID, message string)

// QueueConfig is the static registration describing one queue's delivery
// contract. It is immutable after registration, and Name must never be
// renamed post-release: renaming orphans persisted records.
type QueueConfig struct {
	Name            string
	Endpoint        string
	Method          string
	SuccessStatuses []int
	MaxRetries      int
	Headers         map[string]string
	Serialize       Serializer
	ExtractID       IDExtractor
	PathSuffix      SuffixBuilder
	OnSuccess       SuccessHook
	OnFailure       FailureHook
}

// Validate checks the fields a registration must provide.
func (c QueueConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("queue config: name is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("queue config %q: endpoint is required", c.Name)
	}
	if c.Method != "" && !ValidMethod(c.Method) {
		return fmt.Errorf("queue config %q: unsupported method %q", c.Name, c.Method)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("queue config %q: negative max retries", c.Name)
	}
	return nil
}

// Normalized returns a copy with defaults applied: POST method, a
// {200, 201, 204} success set, and a retry budget of 5.
func (c QueueConfig) Normalized() QueueConfig {
	if c.Method == "" {
		c.Method = MethodPost
	}
	if len(c.SuccessStatuses) == 0 {
		c.SuccessStatuses = append([]int(nil), defaultSuccessStatuses...)
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	return c
}

// Accepts reports whether the response status counts as a delivery success.
func (c QueueConfig) Accepts(status int) bool {
	for _, s := range c.SuccessStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidMethod reports whether m is one of the supported delivery verbs.
func ValidMethod(m string) bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}
