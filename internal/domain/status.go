package domain

// Status is the lifecycle state of a queued record.
//
// The integer values are the persisted ordinals; they must never be
// reordered because stores written by earlier builds decode by ordinal.
type Status int

const (
	// StatusPending marks a record awaiting its first delivery attempt.
	StatusPending Status = 0
	// StatusInProgress marks a record whose attempt has started. It is
	// persisted before dispatch so a crash mid-flight leaves durable evidence.
	StatusInProgress Status = 1
	// StatusSynced marks a confirmed delivery. It is only ever reported:
	// delivered records are deleted from the store, never kept as synced.
	StatusSynced Status = 2
	// StatusFailed marks a failed attempt that is eligible for retry.
	StatusFailed Status = 3
	// StatusDead marks a record that exhausted its retries. Terminal until
	// manually removed or requeued.
	StatusDead Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusSynced:
		return "synced"
	case StatusFailed:
		return "failed"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the persisted ordinals.
func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusDead
}
