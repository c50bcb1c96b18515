package domain

import "time"

// Outcome is the ephemeral result of one delivery attempt. It is reported,
// never persisted.
type Outcome struct {
	QueueName  string
	LocalID    string
	Success    bool
	ServerID   string
	Error      string
	StatusCode int
}

// Summary aggregates one orchestration cycle.
//
// SkipReason is set when a guard short-circuited the cycle; a skipped cycle
// still counts as an overall success so the outer scheduler applies no extra
// backoff. Interrupted records a cooperative foreground halt.
type Summary struct {
	Delivered   int
	Failed      int
	SkipReason  string
	Interrupted bool
	CompletedAt time.Time
}

// Ran reports whether the cycle got past the guard chain.
func (s Summary) Ran() bool {
	return s.SkipReason == ""
}
