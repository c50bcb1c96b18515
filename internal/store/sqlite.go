package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "modernc.org/sqlite"

	"uplink/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_records (
  queue_name      TEXT NOT NULL,
  local_id        TEXT NOT NULL,
  payload         BLOB NOT NULL,
  server_id       TEXT,
  status          INTEGER NOT NULL DEFAULT 0,
  created_at      INTEGER NOT NULL,
  last_attempt_at INTEGER,
  error_message   TEXT,
  retry_count     INTEGER NOT NULL DEFAULT 0,
  path_suffix     TEXT,
  PRIMARY KEY (queue_name, local_id)
);
CREATE INDEX IF NOT EXISTS idx_sync_records_eligible
  ON sync_records(queue_name, status, retry_count, created_at);
CREATE TABLE IF NOT EXISTS sync_flags (
  name       TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
`

const recordColumns = `queue_name, local_id, payload, server_id, status, created_at, last_attempt_at, error_message, retry_count, path_suffix`

// SQLite is the file-backed Store. WAL mode plus a busy timeout let a
// foreground and a background context hold the same file open concurrently;
// single-writer-per-key remains a cooperative property of the callers.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// Open creates or opens the store file and applies the schema. Idempotent:
// every execution context calls it on startup.
func Open(path string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite single writer

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure store schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// EnsureSchema creates tables if they don't exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Enqueue(ctx context.Context, rec domain.Record) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sync_records (`+recordColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.QueueName, rec.LocalID, []byte(rec.Payload), rec.ServerID, int(rec.Status),
		rec.CreatedAt.UnixNano(), nanosPtr(rec.LastAttemptAt), rec.ErrorMessage,
		rec.RetryCount, rec.PathSuffix)
	if isConstraintError(err) {
		return fmt.Errorf("enqueue %s/%s: %w", rec.QueueName, rec.LocalID, domain.ErrDuplicate)
	}
	return err
}

func (s *SQLite) Get(ctx context.Context, queue, localID string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+recordColumns+` FROM sync_records WHERE queue_name=? AND local_id=?`, queue, localID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, domain.ErrNotFound
	}
	return rec, err
}

func (s *SQLite) GetAll(ctx context.Context, queue string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+recordColumns+` FROM sync_records WHERE queue_name=?
ORDER BY created_at ASC, local_id ASC`, queue)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (s *SQLite) GetPending(ctx context.Context, queue string, maxRetries int) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+recordColumns+` FROM sync_records
WHERE queue_name=? AND status IN (?,?) AND retry_count < ?
ORDER BY created_at ASC, local_id ASC`,
		queue, int(domain.StatusPending), int(domain.StatusFailed), maxRetries)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (s *SQLite) Update(ctx context.Context, rec domain.Record) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE sync_records
SET payload=?, server_id=?, status=?, created_at=?, last_attempt_at=?, error_message=?, retry_count=?, path_suffix=?
WHERE queue_name=? AND local_id=?`,
		[]byte(rec.Payload), rec.ServerID, int(rec.Status), rec.CreatedAt.UnixNano(),
		nanosPtr(rec.LastAttemptAt), rec.ErrorMessage, rec.RetryCount, rec.PathSuffix,
		rec.QueueName, rec.LocalID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update %s/%s: %w", rec.QueueName, rec.LocalID, domain.ErrNotFound)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, queue, localID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_records WHERE queue_name=? AND local_id=?`, queue, localID)
	return err
}

func (s *SQLite) PendingCount(ctx context.Context, queues ...string) (int, error) {
	query := `SELECT COUNT(*) FROM sync_records`
	args := make([]any, 0, len(queues))
	if len(queues) > 0 {
		query += ` WHERE queue_name IN (` + placeholders(len(queues)) + `)`
		for _, q := range queues {
			args = append(args, q)
		}
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *SQLite) Clear(ctx context.Context, queues ...string) error {
	query := `DELETE FROM sync_records`
	args := make([]any, 0, len(queues))
	if len(queues) > 0 {
		query += ` WHERE queue_name IN (` + placeholders(len(queues)) + `)`
		for _, q := range queues {
			args = append(args, q)
		}
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.Record, error) {
	var (
		rec         domain.Record
		payload     []byte
		serverID    sql.NullString
		status      int
		createdAt   int64
		lastAttempt sql.NullInt64
		errMsg      sql.NullString
		suffix      sql.NullString
	)
	err := row.Scan(&rec.QueueName, &rec.LocalID, &payload, &serverID, &status,
		&createdAt, &lastAttempt, &errMsg, &rec.RetryCount, &suffix)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Payload = payload
	rec.Status = domain.Status(status)
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	if lastAttempt.Valid {
		t := time.Unix(0, lastAttempt.Int64).UTC()
		rec.LastAttemptAt = &t
	}
	if serverID.Valid {
		v := serverID.String
		rec.ServerID = &v
	}
	if errMsg.Valid {
		v := errMsg.String
		rec.ErrorMessage = &v
	}
	if suffix.Valid {
		v := suffix.String
		rec.PathSuffix = &v
	}
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]domain.Record, error) {
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nanosPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// Extended sqlite result codes keep the base code in the lower 8 bits.
	const sqliteConstraintBase = 19
	return sqliteErr.Code()&0xff == sqliteConstraintBase
}
