package store

import (
	"path/filepath"
	"testing"
	"time"

	"uplink/internal/domain"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uplink.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(queue, localID string, status domain.Status, retries int) domain.Record {
	return domain.Record{
		LocalID:    localID,
		QueueName:  queue,
		Payload:    []byte(`{"title":"hello"}`),
		Status:     status,
		CreatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		RetryCount: retries,
	}
}

func strptr(s string) *string { return &s }
